package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type careOrgRepository struct {
	db *sqlx.DB
}

func NewCareOrgRepository(db *sqlx.DB) repository.CareOrgRepository {
	return &careOrgRepository{db: db}
}

func (r *careOrgRepository) Create(ctx context.Context, org *model.CareOrg) error {
	query := `
		INSERT INTO care_orgs (id, name, region, contact_email, contact_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		org.ID, org.Name, org.Region, org.ContactEmail, org.ContactPhone,
		org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create care org: %w", err)
	}
	return nil
}

func (r *careOrgRepository) Get(ctx context.Context, id uuid.UUID) (*model.CareOrg, error) {
	var org model.CareOrg
	err := r.db.GetContext(ctx, &org, `SELECT * FROM care_orgs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("care org", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get care org: %w", err)
	}
	return &org, nil
}

func (r *careOrgRepository) List(ctx context.Context) ([]*model.CareOrg, error) {
	var orgs []*model.CareOrg
	if err := r.db.SelectContext(ctx, &orgs, `SELECT * FROM care_orgs ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list care orgs: %w", err)
	}
	return orgs, nil
}
