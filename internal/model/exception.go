package model

import (
	"time"

	"github.com/google/uuid"
)

type ExceptionStatus string

const (
	ExceptionStatusOpen     ExceptionStatus = "OPEN"
	ExceptionStatusResolved ExceptionStatus = "RESOLVED"
)

// ExceptionRecord is an operational blocker raised against a case, e.g. stock
// shortage or a failed installation visit. Approving the case resolves any
// open exceptions pointing at it.
type ExceptionRecord struct {
	Base
	CaseID     uuid.UUID       `db:"case_id" json:"case_id"`
	Reason     string          `db:"reason" json:"reason"`
	Status     ExceptionStatus `db:"status" json:"status"`
	ResolvedAt *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
}

type CreateExceptionRequest struct {
	CaseID string `json:"case_id" binding:"required,uuid"`
	Reason string `json:"reason" binding:"required"`
}

type ExceptionFilters struct {
	CaseID uuid.UUID
	Status ExceptionStatus
}
