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

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type caseRepository struct {
	db *sqlx.DB
}

func NewCaseRepository(db *sqlx.DB) repository.CaseRepository {
	return &caseRepository{db: db}
}

type caseRow struct {
	ID          uuid.UUID        `db:"id"`
	ClientID    uuid.UUID        `db:"client_id"`
	CareOrgID   uuid.UUID        `db:"care_org_id"`
	CarePlanID  *uuid.UUID       `db:"care_plan_id"`
	Status      model.CaseStatus `db:"status"`
	Items       []byte           `db:"items"`
	RequestedBy string           `db:"requested_by"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

func (row *caseRow) toModel() (*model.Case, error) {
	c := &model.Case{
		Base:        model.Base{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		ClientID:    row.ClientID,
		CareOrgID:   row.CareOrgID,
		CarePlanID:  row.CarePlanID,
		Status:      row.Status,
		RequestedBy: row.RequestedBy,
	}
	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &c.Items); err != nil {
			return nil, fmt.Errorf("failed to decode case items: %w", err)
		}
	}
	return c, nil
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("failed to encode case items: %w", err)
	}

	query := `
		INSERT INTO cases (id, client_id, care_org_id, care_plan_id, status, items,
			requested_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.ClientID, c.CareOrgID, c.CarePlanID, c.Status, items,
		c.RequestedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

func (r *caseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	var row caseRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM cases WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("case", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return row.toModel()
}

func (r *caseRepository) Update(ctx context.Context, c *model.Case) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("failed to encode case items: %w", err)
	}

	query := `UPDATE cases SET status = $1, items = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, c.Status, items, time.Now(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("case", nil)
	}
	return nil
}

func (r *caseRepository) List(ctx context.Context, filters *model.CaseFilters) ([]*model.Case, error) {
	query := `SELECT * FROM cases WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters != nil {
		if filters.ClientID != uuid.Nil {
			query += fmt.Sprintf(" AND client_id = $%d", idx)
			args = append(args, filters.ClientID)
			idx++
		}
		if filters.CareOrgID != uuid.Nil {
			query += fmt.Sprintf(" AND care_org_id = $%d", idx)
			args = append(args, filters.CareOrgID)
			idx++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", idx)
			args = append(args, filters.Status)
			idx++
		}
	}
	query += " ORDER BY created_at"

	var rows []caseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	cases := make([]*model.Case, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}
