package model

import (
	"time"

	"github.com/google/uuid"
)

type JobType string

const (
	JobTypeInstall     JobType = "INSTALL"
	JobTypeMaintenance JobType = "MAINTENANCE"
	JobTypeReturn      JobType = "RETURN"
)

type JobStatus string

const (
	JobStatusPlanned   JobStatus = "PLANNED"
	JobStatusEnRoute   JobStatus = "EN_ROUTE"
	JobStatusOnSite    JobStatus = "ON_SITE"
	JobStatusCompleted JobStatus = "COMPLETED"
)

// Job is a field visit (installation, maintenance or return pickup) scheduled
// for an installer or nurse.
type Job struct {
	Base
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	CaseID       *uuid.UUID `db:"case_id" json:"case_id,omitempty"`
	AssignedTo   string     `db:"assigned_to" json:"assigned_to"`
	Type         JobType    `db:"type" json:"type"`
	Status       JobStatus  `db:"status" json:"status"`
	ScheduledFor time.Time  `db:"scheduled_for" json:"scheduled_for"`
	Notes        string     `db:"notes" json:"notes"`
}

type CreateJobRequest struct {
	ClientID     string    `json:"client_id" binding:"required,uuid"`
	CaseID       string    `json:"case_id" binding:"omitempty,uuid"`
	AssignedTo   string    `json:"assigned_to" binding:"required"`
	Type         JobType   `json:"type" binding:"required,oneof=INSTALL MAINTENANCE RETURN"`
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
	Notes        string    `json:"notes"`
}

type JobFilters struct {
	ClientID   uuid.UUID
	AssignedTo string
	Status     JobStatus
}
