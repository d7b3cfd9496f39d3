package model

import (
	"time"

	"github.com/google/uuid"
)

type HandoverStatus string

const (
	HandoverStatusPending   HandoverStatus = "PENDING"
	HandoverStatusSent      HandoverStatus = "SENT"
	HandoverStatusFailed    HandoverStatus = "FAILED"
	HandoverStatusCancelled HandoverStatus = "CANCELLED"
)

// HandoverTask records the deferred hand-off of a freshly created case to the
// fulfillment subsystem. The task fires after DueAt and appends the SYSTEM
// timeline event; cancelling the case before then cancels the task.
type HandoverTask struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	CaseID       uuid.UUID      `db:"case_id" json:"case_id"`
	ClientID     uuid.UUID      `db:"client_id" json:"client_id"`
	Status       HandoverStatus `db:"status" json:"status"`
	DueAt        time.Time      `db:"due_at" json:"due_at"`
	ErrorMessage *string        `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time     `db:"processed_at" json:"processed_at,omitempty"`
}
