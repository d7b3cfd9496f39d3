package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNotifierDeliversExactlyOnce(t *testing.T) {
	n := NewNotifier()

	var got []Change
	n.Subscribe(func(c Change) {
		got = append(got, c)
	})

	n.Notify(Change{Resource: "case", Operation: "create", EntityID: uuid.New()})
	n.Notify(Change{Resource: "case", Operation: "approve", EntityID: uuid.New()})

	assert.Len(t, got, 2)
	assert.Equal(t, "create", got[0].Operation)
	assert.Equal(t, "approve", got[1].Operation)
	assert.False(t, got[0].OccurredAt.IsZero())
}

func TestNotifierUnsubscribe(t *testing.T) {
	n := NewNotifier()

	count := 0
	id := n.Subscribe(func(Change) { count++ })

	n.Notify(Change{Resource: "client", Operation: "create"})
	n.Unsubscribe(id)
	n.Notify(Change{Resource: "client", Operation: "update"})

	assert.Equal(t, 1, count)
}

func TestNotifierMultipleSubscribers(t *testing.T) {
	n := NewNotifier()

	first, second := 0, 0
	n.Subscribe(func(Change) { first++ })
	n.Subscribe(func(Change) { second++ })

	n.Notify(Change{Resource: "care_plan", Operation: "activate"})

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}
