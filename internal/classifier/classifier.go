// Package classifier implements the rule-based intake triage that maps
// free-text nurse observations to a device/service recommendation snapshot.
// The rules are deliberately deterministic keyword matches so every suggestion
// traces back to a reasoning clause a clinician can audit before approving.
package classifier

import (
	"strings"

	"github.com/careloop/careops-api/internal/model"
)

// Baseline items every client receives regardless of the intake text.
const (
	BaselineDevice  = "Smart Hub"
	BaselineService = "24/7 Monitoring"
)

// Risk flag names attached by the rules.
const (
	FlagHighFallRisk        = "High Fall Risk"
	FlagMedicationAdherence = "Medication Adherence Risk"
	FlagWandering           = "Wandering Risk"
)

const (
	defaultConfidence      = 0.90
	baselineOnlyConfidence = 0.85
)

type rule struct {
	keywords []string
	device   string
	service  string
	riskFlag string
	reason   string
}

// Rules are evaluated in order and independently; several rules may match the
// same text and each contributes its own device, flag and reasoning clause.
var rules = []rule{
	{
		keywords: []string{"fall", "dizzy", "balance"},
		device:   "Fall Sensor",
		riskFlag: FlagHighFallRisk,
		reason:   "Fall or balance concerns detected; recommending a fall sensor.",
	},
	{
		keywords: []string{"medication", "pills", "forget"},
		device:   "Med Dispenser",
		riskFlag: FlagMedicationAdherence,
		reason:   "Medication adherence concerns detected; recommending an automated dispenser.",
	},
	{
		keywords: []string{"wander", "lost", "dementia"},
		device:   "GPS Tracker",
		riskFlag: FlagWandering,
		reason:   "Cognitive decline indicators detected; recommending location tracking.",
	},
	{
		keywords: []string{"alone", "lonely"},
		service:  "Wellness Check Calls",
		reason:   "Social isolation indicators detected; recommending scheduled wellness calls.",
	},
}

const baselineOnlyReason = "No specific risk indicators detected; recommending the standard safety package."

// Classify maps free-text clinical notes to a recommendation snapshot.
// It is pure and deterministic: the same text always yields the same snapshot,
// and empty input yields the baseline-only result.
func Classify(text string) model.AIAnalysisSnapshot {
	lowered := strings.ToLower(text)

	devices := newOrderedSet(BaselineDevice)
	services := newOrderedSet(BaselineService)
	flags := newOrderedSet()
	var reasons []string

	for _, r := range rules {
		if !matchesAny(lowered, r.keywords) {
			continue
		}
		if r.device != "" {
			devices.add(r.device)
		}
		if r.service != "" {
			services.add(r.service)
		}
		if r.riskFlag != "" {
			flags.add(r.riskFlag)
		}
		reasons = append(reasons, r.reason)
	}

	confidence := defaultConfidence
	if devices.len() == 1 {
		reasons = append(reasons, baselineOnlyReason)
		confidence = baselineOnlyConfidence
	}

	return model.AIAnalysisSnapshot{
		SuggestedDevices:  devices.values(),
		SuggestedServices: services.values(),
		RiskFlags:         flags.values(),
		Reasoning:         strings.Join(reasons, " "),
		Confidence:        confidence,
	}
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// orderedSet keeps insertion order while guaranteeing set semantics, so a
// keyword matched through several rules never duplicates an entry.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(initial ...string) *orderedSet {
	s := &orderedSet{seen: make(map[string]struct{})}
	for _, item := range initial {
		s.add(item)
	}
	return s
}

func (s *orderedSet) add(item string) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

func (s *orderedSet) len() int { return len(s.items) }

func (s *orderedSet) values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
