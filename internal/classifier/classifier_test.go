package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBaseline(t *testing.T) {
	snap := Classify("")

	assert.Equal(t, []string{BaselineDevice}, snap.SuggestedDevices)
	assert.Equal(t, []string{BaselineService}, snap.SuggestedServices)
	assert.Empty(t, snap.RiskFlags)
	assert.Equal(t, 0.85, snap.Confidence)
	assert.NotEmpty(t, snap.Reasoning)
}

func TestClassifyFallDetection(t *testing.T) {
	snap := Classify("patient has history of falls and dizziness")

	assert.Contains(t, snap.SuggestedDevices, "Fall Sensor")
	assert.Contains(t, snap.RiskFlags, FlagHighFallRisk)
	assert.Equal(t, 0.90, snap.Confidence)
}

func TestClassifyCaseInsensitive(t *testing.T) {
	snap := Classify("Client FORGETS her Medication")

	assert.Contains(t, snap.SuggestedDevices, "Med Dispenser")
	assert.Contains(t, snap.RiskFlags, FlagMedicationAdherence)
}

func TestClassifyUnionSemantics(t *testing.T) {
	snap := Classify("forgets medication, lives alone, history of falls")

	assert.Contains(t, snap.SuggestedDevices, "Fall Sensor")
	assert.Contains(t, snap.SuggestedDevices, "Med Dispenser")
	assert.Contains(t, snap.SuggestedServices, "Wellness Check Calls")
	// Isolation contributes a service but no risk flag.
	assert.ElementsMatch(t, []string{FlagHighFallRisk, FlagMedicationAdherence}, snap.RiskFlags)
	assert.Equal(t, 0.90, snap.Confidence)
}

func TestClassifyNoDuplicates(t *testing.T) {
	// Several keywords from the same rule group must add the device once.
	snap := Classify("dizzy, poor balance, repeated falls")

	count := 0
	for _, d := range snap.SuggestedDevices {
		if d == "Fall Sensor" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{BaselineDevice, "Fall Sensor"}, snap.SuggestedDevices)
}

func TestClassifyDeterministic(t *testing.T) {
	text := "client wanders at night and forgets pills"

	first := Classify(text)
	second := Classify(text)

	assert.Equal(t, first, second)
}

func TestClassifyWanderingRule(t *testing.T) {
	snap := Classify("early dementia, got lost twice last month")

	assert.Contains(t, snap.SuggestedDevices, "GPS Tracker")
	assert.Contains(t, snap.RiskFlags, FlagWandering)
}
