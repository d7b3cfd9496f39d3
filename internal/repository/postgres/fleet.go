package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type deviceRepository struct {
	db *sqlx.DB
}

func NewDeviceRepository(db *sqlx.DB) repository.DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) Create(ctx context.Context, device *model.Device) error {
	query := `
		INSERT INTO devices (id, care_org_id, serial_number, product_name, status,
			client_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		device.ID, device.CareOrgID, device.SerialNumber, device.ProductName,
		device.Status, device.ClientID, device.CreatedAt, device.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *deviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	var device model.Device
	err := r.db.GetContext(ctx, &device, `SELECT * FROM devices WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("device", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return &device, nil
}

func (r *deviceRepository) Update(ctx context.Context, device *model.Device) error {
	query := `UPDATE devices SET status = $1, client_id = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, device.Status, device.ClientID, time.Now(), device.ID)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("device", nil)
	}
	return nil
}

func (r *deviceRepository) List(ctx context.Context, filters *model.DeviceFilters) ([]*model.Device, error) {
	query := `SELECT * FROM devices WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters != nil {
		if filters.CareOrgID != uuid.Nil {
			query += fmt.Sprintf(" AND care_org_id = $%d", idx)
			args = append(args, filters.CareOrgID)
			idx++
		}
		if filters.ClientID != uuid.Nil {
			query += fmt.Sprintf(" AND client_id = $%d", idx)
			args = append(args, filters.ClientID)
			idx++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", idx)
			args = append(args, filters.Status)
			idx++
		}
	}
	query += " ORDER BY serial_number"

	var devices []*model.Device
	if err := r.db.SelectContext(ctx, &devices, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

type jobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) repository.JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (id, client_id, case_id, assigned_to, type, status,
			scheduled_for, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.ClientID, job.CaseID, job.AssignedTo, job.Type, job.Status,
		job.ScheduledFor, job.Notes, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *jobRepository) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := r.db.GetContext(ctx, &job, `SELECT * FROM jobs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("job", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	query := `UPDATE jobs SET assigned_to = $1, status = $2, scheduled_for = $3, notes = $4, updated_at = $5 WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		job.AssignedTo, job.Status, job.ScheduledFor, job.Notes, time.Now(), job.ID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("job", nil)
	}
	return nil
}

func (r *jobRepository) List(ctx context.Context, filters *model.JobFilters) ([]*model.Job, error) {
	query := `SELECT * FROM jobs WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters != nil {
		if filters.ClientID != uuid.Nil {
			query += fmt.Sprintf(" AND client_id = $%d", idx)
			args = append(args, filters.ClientID)
			idx++
		}
		if filters.AssignedTo != "" {
			query += fmt.Sprintf(" AND assigned_to = $%d", idx)
			args = append(args, filters.AssignedTo)
			idx++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", idx)
			args = append(args, filters.Status)
			idx++
		}
	}
	query += " ORDER BY scheduled_for"

	var jobs []*model.Job
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

type exceptionRepository struct {
	db *sqlx.DB
}

func NewExceptionRepository(db *sqlx.DB) repository.ExceptionRepository {
	return &exceptionRepository{db: db}
}

func (r *exceptionRepository) Create(ctx context.Context, exc *model.ExceptionRecord) error {
	query := `
		INSERT INTO exceptions (id, case_id, reason, status, resolved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		exc.ID, exc.CaseID, exc.Reason, exc.Status, exc.ResolvedAt,
		exc.CreatedAt, exc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create exception: %w", err)
	}
	return nil
}

func (r *exceptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.ExceptionRecord, error) {
	var exc model.ExceptionRecord
	err := r.db.GetContext(ctx, &exc, `SELECT * FROM exceptions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("exception", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exception: %w", err)
	}
	return &exc, nil
}

func (r *exceptionRepository) Update(ctx context.Context, exc *model.ExceptionRecord) error {
	query := `UPDATE exceptions SET status = $1, resolved_at = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, exc.Status, exc.ResolvedAt, time.Now(), exc.ID)
	if err != nil {
		return fmt.Errorf("failed to update exception: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("exception", nil)
	}
	return nil
}

func (r *exceptionRepository) List(ctx context.Context, filters *model.ExceptionFilters) ([]*model.ExceptionRecord, error) {
	query := `SELECT * FROM exceptions WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters != nil {
		if filters.CaseID != uuid.Nil {
			query += fmt.Sprintf(" AND case_id = $%d", idx)
			args = append(args, filters.CaseID)
			idx++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", idx)
			args = append(args, filters.Status)
			idx++
		}
	}
	query += " ORDER BY created_at"

	var excs []*model.ExceptionRecord
	if err := r.db.SelectContext(ctx, &excs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	return excs, nil
}

func (r *exceptionRepository) ListOpenForCase(ctx context.Context, caseID uuid.UUID) ([]*model.ExceptionRecord, error) {
	return r.List(ctx, &model.ExceptionFilters{
		CaseID: caseID,
		Status: model.ExceptionStatusOpen,
	})
}
