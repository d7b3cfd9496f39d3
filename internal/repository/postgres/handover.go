package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type handoverRepository struct {
	db *sqlx.DB
}

func NewHandoverRepository(db *sqlx.DB) repository.HandoverRepository {
	return &handoverRepository{db: db}
}

func (r *handoverRepository) Create(ctx context.Context, task *model.HandoverTask) error {
	query := `
		INSERT INTO handover_tasks (id, case_id, client_id, status, due_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.CaseID, task.ClientID, task.Status, task.DueAt, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create handover task: %w", err)
	}
	return nil
}

// GetPendingDue claims due tasks with SKIP LOCKED so concurrent workers never
// process the same hand-off twice.
func (r *handoverRepository) GetPendingDue(ctx context.Context, now time.Time, limit int) ([]*model.HandoverTask, error) {
	query := `
		SELECT * FROM handover_tasks
		WHERE status = $1 AND due_at <= $2
		ORDER BY due_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	`
	var tasks []*model.HandoverTask
	if err := r.db.SelectContext(ctx, &tasks, query, model.HandoverStatusPending, now, limit); err != nil {
		return nil, fmt.Errorf("failed to get pending handover tasks: %w", err)
	}
	return tasks, nil
}

func (r *handoverRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.HandoverStatus, errMsg *string) error {
	query := `
		UPDATE handover_tasks
		SET status = $1, error_message = $2, processed_at = $3
		WHERE id = $4
	`
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, status, errMsg, &now, id)
	if err != nil {
		return fmt.Errorf("failed to update handover task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("handover task", nil)
	}
	return nil
}

func (r *handoverRepository) CancelForCase(ctx context.Context, caseID uuid.UUID) error {
	query := `UPDATE handover_tasks SET status = $1 WHERE case_id = $2 AND status = $3`
	_, err := r.db.ExecContext(ctx, query,
		model.HandoverStatusCancelled, caseID, model.HandoverStatusPending)
	if err != nil {
		return fmt.Errorf("failed to cancel handover tasks: %w", err)
	}
	return nil
}
