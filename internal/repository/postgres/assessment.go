package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
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

type assessmentRepository struct {
	db *sqlx.DB
}

func NewAssessmentRepository(db *sqlx.DB) repository.AssessmentRepository {
	return &assessmentRepository{db: db}
}

type assessmentRow struct {
	ID                  uuid.UUID              `db:"id"`
	ClientID            uuid.UUID              `db:"client_id"`
	PerformedBy         string                 `db:"performed_by"`
	Date                time.Time              `db:"date"`
	Type                model.AssessmentType   `db:"type"`
	RiskLevel           model.RiskLevel        `db:"risk_level"`
	NeedsSummary        string                 `db:"needs_summary"`
	Notes               string                 `db:"notes"`
	RecommendedDevices  pq.StringArray         `db:"recommended_devices"`
	RecommendedServices pq.StringArray         `db:"recommended_services"`
	Status              model.AssessmentStatus `db:"status"`
	AIAnalysis          []byte                 `db:"ai_analysis"`
	CreatedAt           time.Time              `db:"created_at"`
	UpdatedAt           time.Time              `db:"updated_at"`
}

func (row *assessmentRow) toModel() (*model.Assessment, error) {
	a := &model.Assessment{
		Base:                model.Base{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		ClientID:            row.ClientID,
		PerformedBy:         row.PerformedBy,
		Date:                row.Date,
		Type:                row.Type,
		RiskLevel:           row.RiskLevel,
		NeedsSummary:        row.NeedsSummary,
		Notes:               row.Notes,
		RecommendedDevices:  row.RecommendedDevices,
		RecommendedServices: row.RecommendedServices,
		Status:              row.Status,
	}
	if len(row.AIAnalysis) > 0 {
		var snap model.AIAnalysisSnapshot
		if err := json.Unmarshal(row.AIAnalysis, &snap); err != nil {
			return nil, fmt.Errorf("failed to decode AI analysis: %w", err)
		}
		a.AIAnalysis = &snap
	}
	return a, nil
}

func encodeSnapshot(snap *model.AIAnalysisSnapshot) ([]byte, error) {
	if snap == nil {
		return nil, nil
	}
	return json.Marshal(snap)
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *model.Assessment) error {
	snapshot, err := encodeSnapshot(assessment.AIAnalysis)
	if err != nil {
		return fmt.Errorf("failed to encode AI analysis: %w", err)
	}

	query := `
		INSERT INTO assessments (id, client_id, performed_by, date, type, risk_level,
			needs_summary, notes, recommended_devices, recommended_services, status,
			ai_analysis, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, query,
		assessment.ID, assessment.ClientID, assessment.PerformedBy, assessment.Date,
		assessment.Type, assessment.RiskLevel, assessment.NeedsSummary, assessment.Notes,
		pq.StringArray(assessment.RecommendedDevices), pq.StringArray(assessment.RecommendedServices),
		assessment.Status, snapshot, assessment.CreatedAt, assessment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func (r *assessmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	var row assessmentRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM assessments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("assessment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return row.toModel()
}

// Update only touches mutable fields; the AI snapshot is immutable after
// creation so it is deliberately excluded.
func (r *assessmentRepository) Update(ctx context.Context, assessment *model.Assessment) error {
	query := `
		UPDATE assessments
		SET risk_level = $1, needs_summary = $2, notes = $3,
			recommended_devices = $4, recommended_services = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	res, err := r.db.ExecContext(ctx, query,
		assessment.RiskLevel, assessment.NeedsSummary, assessment.Notes,
		pq.StringArray(assessment.RecommendedDevices), pq.StringArray(assessment.RecommendedServices),
		assessment.Status, time.Now(), assessment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("assessment", nil)
	}
	return nil
}

func (r *assessmentRepository) List(ctx context.Context, filters *model.AssessmentFilters) ([]*model.Assessment, error) {
	query := `SELECT * FROM assessments WHERE 1=1`
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
	query += " ORDER BY date DESC"

	var rows []assessmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	assessments := make([]*model.Assessment, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, nil
}
