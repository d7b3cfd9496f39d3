package model

import (
	"time"

	"github.com/google/uuid"
)

type TimelineEventType string

const (
	TimelineEventAssessment TimelineEventType = "ASSESSMENT"
	TimelineEventCarePlan   TimelineEventType = "CARE_PLAN"
	TimelineEventOrder      TimelineEventType = "ORDER"
	TimelineEventDevice     TimelineEventType = "DEVICE"
	TimelineEventSystem     TimelineEventType = "SYSTEM"
)

type TimelineSource string

const (
	TimelineSourceAI    TimelineSource = "AI"
	TimelineSourceHuman TimelineSource = "HUMAN"
)

// TimelineEvent is one append-only audit record on a client's timeline.
// Events are never mutated or removed once logged.
type TimelineEvent struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	ClientID  uuid.UUID         `db:"client_id" json:"client_id"`
	Type      TimelineEventType `db:"type" json:"type"`
	Source    TimelineSource    `db:"source" json:"source"`
	Summary   string            `db:"summary" json:"summary"`
	Actor     string            `db:"actor" json:"actor"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

type TimelineFilters struct {
	ClientID uuid.UUID
	Type     TimelineEventType
}
