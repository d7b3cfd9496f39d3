package model

import (
	"time"

	"github.com/google/uuid"
)

type CarePlanStatus string

const (
	CarePlanStatusActive     CarePlanStatus = "ACTIVE"
	CarePlanStatusSuperseded CarePlanStatus = "SUPERSEDED"
	CarePlanStatusClosed     CarePlanStatus = "CLOSED"
)

// DefaultReviewIntervalDays is applied when a plan is synthesized from an
// approved assessment without an explicit interval.
const DefaultReviewIntervalDays = 90

// CarePlan is the agreed device/service contract for a client. At most one
// plan per client is ACTIVE at any time; activating a new plan supersedes
// the previous one.
type CarePlan struct {
	Base
	ClientID           uuid.UUID      `db:"client_id" json:"client_id"`
	AssessmentID       *uuid.UUID     `db:"assessment_id" json:"assessment_id,omitempty"`
	Goals              string         `db:"goals" json:"goals"`
	Requirements       string         `db:"requirements" json:"requirements"`
	AgreedDevices      []string       `db:"-" json:"agreed_devices"`
	AgreedServices     []string       `db:"-" json:"agreed_services"`
	ReviewDate         time.Time      `db:"review_date" json:"review_date"`
	ReviewIntervalDays int            `db:"review_interval_days" json:"review_interval_days"`
	Notes              string         `db:"notes" json:"notes"`
	Status             CarePlanStatus `db:"status" json:"status"`
	CreatedBy          string         `db:"created_by" json:"created_by"`
}

// CarePlanOverrides carries caller adjustments applied on top of the values
// synthesized from an approved assessment. Nil fields keep the derived value.
type CarePlanOverrides struct {
	Goals              *string  `json:"goals,omitempty"`
	Requirements       *string  `json:"requirements,omitempty"`
	AgreedDevices      []string `json:"agreed_devices,omitempty"`
	AgreedServices     []string `json:"agreed_services,omitempty"`
	ReviewIntervalDays *int     `json:"review_interval_days,omitempty"`
	Notes              *string  `json:"notes,omitempty"`
}

type CreateCarePlanFromAssessmentRequest struct {
	AssessmentID string             `json:"assessment_id" binding:"required,uuid"`
	CreatedBy    string             `json:"created_by" binding:"required"`
	Overrides    *CarePlanOverrides `json:"overrides,omitempty"`
}

type CarePlanFilters struct {
	ClientID uuid.UUID
	Status   CarePlanStatus
}
