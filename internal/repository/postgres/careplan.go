package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type carePlanRepository struct {
	db *sqlx.DB
}

func NewCarePlanRepository(db *sqlx.DB) repository.CarePlanRepository {
	return &carePlanRepository{db: db}
}

type carePlanRow struct {
	ID                 uuid.UUID            `db:"id"`
	ClientID           uuid.UUID            `db:"client_id"`
	AssessmentID       *uuid.UUID           `db:"assessment_id"`
	Goals              string               `db:"goals"`
	Requirements       string               `db:"requirements"`
	AgreedDevices      pq.StringArray       `db:"agreed_devices"`
	AgreedServices     pq.StringArray       `db:"agreed_services"`
	ReviewDate         time.Time            `db:"review_date"`
	ReviewIntervalDays int                  `db:"review_interval_days"`
	Notes              string               `db:"notes"`
	Status             model.CarePlanStatus `db:"status"`
	CreatedBy          string               `db:"created_by"`
	CreatedAt          time.Time            `db:"created_at"`
	UpdatedAt          time.Time            `db:"updated_at"`
}

func (row *carePlanRow) toModel() *model.CarePlan {
	return &model.CarePlan{
		Base:               model.Base{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		ClientID:           row.ClientID,
		AssessmentID:       row.AssessmentID,
		Goals:              row.Goals,
		Requirements:       row.Requirements,
		AgreedDevices:      row.AgreedDevices,
		AgreedServices:     row.AgreedServices,
		ReviewDate:         row.ReviewDate,
		ReviewIntervalDays: row.ReviewIntervalDays,
		Notes:              row.Notes,
		Status:             row.Status,
		CreatedBy:          row.CreatedBy,
	}
}

func (r *carePlanRepository) Create(ctx context.Context, plan *model.CarePlan) error {
	query := `
		INSERT INTO care_plans (id, client_id, assessment_id, goals, requirements,
			agreed_devices, agreed_services, review_date, review_interval_days,
			notes, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		plan.ID, plan.ClientID, plan.AssessmentID, plan.Goals, plan.Requirements,
		pq.StringArray(plan.AgreedDevices), pq.StringArray(plan.AgreedServices),
		plan.ReviewDate, plan.ReviewIntervalDays, plan.Notes, plan.Status,
		plan.CreatedBy, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create care plan: %w", err)
	}
	return nil
}

func (r *carePlanRepository) Get(ctx context.Context, id uuid.UUID) (*model.CarePlan, error) {
	var row carePlanRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM care_plans WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("care plan", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get care plan: %w", err)
	}
	return row.toModel(), nil
}

func (r *carePlanRepository) Update(ctx context.Context, plan *model.CarePlan) error {
	query := `
		UPDATE care_plans
		SET goals = $1, requirements = $2, agreed_devices = $3, agreed_services = $4,
			review_date = $5, review_interval_days = $6, notes = $7, status = $8, updated_at = $9
		WHERE id = $10
	`
	res, err := r.db.ExecContext(ctx, query,
		plan.Goals, plan.Requirements, pq.StringArray(plan.AgreedDevices),
		pq.StringArray(plan.AgreedServices), plan.ReviewDate, plan.ReviewIntervalDays,
		plan.Notes, plan.Status, time.Now(), plan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update care plan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("care plan", nil)
	}
	return nil
}

func (r *carePlanRepository) List(ctx context.Context, filters *model.CarePlanFilters) ([]*model.CarePlan, error) {
	query := `SELECT * FROM care_plans WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters != nil {
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
	query += " ORDER BY created_at"

	var rows []carePlanRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list care plans: %w", err)
	}

	plans := make([]*model.CarePlan, 0, len(rows))
	for i := range rows {
		plans = append(plans, rows[i].toModel())
	}
	return plans, nil
}

func (r *carePlanRepository) ListActiveForClient(ctx context.Context, clientID uuid.UUID) ([]*model.CarePlan, error) {
	return r.List(ctx, &model.CarePlanFilters{
		ClientID: clientID,
		Status:   model.CarePlanStatusActive,
	})
}
