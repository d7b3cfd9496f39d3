package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
)

// All repository interfaces in one file
type (
	CareOrgRepository interface {
		Create(ctx context.Context, org *model.CareOrg) error
		Get(ctx context.Context, id uuid.UUID) (*model.CareOrg, error)
		List(ctx context.Context) ([]*model.CareOrg, error)
	}

	// ClientRepository stores care recipients. Clients are never deleted,
	// only status-transitioned, so the interface has no Delete.
	ClientRepository interface {
		Create(ctx context.Context, client *model.Client) error
		Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
		Update(ctx context.Context, client *model.Client) error
		List(ctx context.Context, filters *model.ClientFilters) ([]*model.Client, error)
	}

	AssessmentRepository interface {
		Create(ctx context.Context, assessment *model.Assessment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Assessment, error)
		Update(ctx context.Context, assessment *model.Assessment) error
		// List returns assessments matching the filters, newest first.
		List(ctx context.Context, filters *model.AssessmentFilters) ([]*model.Assessment, error)
	}

	CarePlanRepository interface {
		Create(ctx context.Context, plan *model.CarePlan) error
		Get(ctx context.Context, id uuid.UUID) (*model.CarePlan, error)
		Update(ctx context.Context, plan *model.CarePlan) error
		List(ctx context.Context, filters *model.CarePlanFilters) ([]*model.CarePlan, error)
		// ListActiveForClient returns every ACTIVE plan for the client. The
		// lifecycle manager expects at most one; more is an invariant breach.
		ListActiveForClient(ctx context.Context, clientID uuid.UUID) ([]*model.CarePlan, error)
	}

	CaseRepository interface {
		Create(ctx context.Context, c *model.Case) error
		Get(ctx context.Context, id uuid.UUID) (*model.Case, error)
		Update(ctx context.Context, c *model.Case) error
		List(ctx context.Context, filters *model.CaseFilters) ([]*model.Case, error)
	}

	// TimelineRepository is append-only: events can be created and listed,
	// never updated or removed.
	TimelineRepository interface {
		Create(ctx context.Context, event *model.TimelineEvent) error
		// List returns events matching the filters, newest first.
		List(ctx context.Context, filters *model.TimelineFilters) ([]*model.TimelineEvent, error)
		Count(ctx context.Context) (int, error)
	}

	DeviceRepository interface {
		Create(ctx context.Context, device *model.Device) error
		Get(ctx context.Context, id uuid.UUID) (*model.Device, error)
		Update(ctx context.Context, device *model.Device) error
		List(ctx context.Context, filters *model.DeviceFilters) ([]*model.Device, error)
	}

	JobRepository interface {
		Create(ctx context.Context, job *model.Job) error
		Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
		Update(ctx context.Context, job *model.Job) error
		List(ctx context.Context, filters *model.JobFilters) ([]*model.Job, error)
	}

	ExceptionRepository interface {
		Create(ctx context.Context, exc *model.ExceptionRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.ExceptionRecord, error)
		Update(ctx context.Context, exc *model.ExceptionRecord) error
		List(ctx context.Context, filters *model.ExceptionFilters) ([]*model.ExceptionRecord, error)
		ListOpenForCase(ctx context.Context, caseID uuid.UUID) ([]*model.ExceptionRecord, error)
	}

	// HandoverRepository tracks deferred case hand-offs for the out-of-process
	// worker. The in-process scheduler bypasses it.
	HandoverRepository interface {
		Create(ctx context.Context, task *model.HandoverTask) error
		GetPendingDue(ctx context.Context, now time.Time, limit int) ([]*model.HandoverTask, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.HandoverStatus, errMsg *string) error
		CancelForCase(ctx context.Context, caseID uuid.UUID) error
	}
)
