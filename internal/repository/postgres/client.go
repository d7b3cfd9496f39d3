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

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

// clientRow flattens the JSONB contact list for scanning.
type clientRow struct {
	ID                uuid.UUID          `db:"id"`
	CareOrgID         uuid.UUID          `db:"care_org_id"`
	Name              string             `db:"name"`
	DateOfBirth       time.Time          `db:"date_of_birth"`
	Status            model.ClientStatus `db:"status"`
	RiskLevel         model.RiskLevel    `db:"risk_level"`
	Address           string             `db:"address"`
	Phone             string             `db:"phone"`
	Email             string             `db:"email"`
	EmergencyContacts []byte             `db:"emergency_contacts"`
	CreatedAt         time.Time          `db:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at"`
}

func (row *clientRow) toModel() (*model.Client, error) {
	client := &model.Client{
		Base:        model.Base{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		CareOrgID:   row.CareOrgID,
		Name:        row.Name,
		DateOfBirth: row.DateOfBirth,
		Status:      row.Status,
		RiskLevel:   row.RiskLevel,
		Address:     row.Address,
		Phone:       row.Phone,
		Email:       row.Email,
	}
	if len(row.EmergencyContacts) > 0 {
		if err := json.Unmarshal(row.EmergencyContacts, &client.EmergencyContacts); err != nil {
			return nil, fmt.Errorf("failed to decode emergency contacts: %w", err)
		}
	}
	return client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	contacts, err := json.Marshal(client.EmergencyContacts)
	if err != nil {
		return fmt.Errorf("failed to encode emergency contacts: %w", err)
	}

	query := `
		INSERT INTO clients (id, care_org_id, name, date_of_birth, status, risk_level,
			address, phone, email, emergency_contacts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		client.ID, client.CareOrgID, client.Name, client.DateOfBirth,
		client.Status, client.RiskLevel, client.Address, client.Phone,
		client.Email, contacts, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var row clientRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM clients WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("client", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return row.toModel()
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	contacts, err := json.Marshal(client.EmergencyContacts)
	if err != nil {
		return fmt.Errorf("failed to encode emergency contacts: %w", err)
	}

	query := `
		UPDATE clients
		SET name = $1, status = $2, risk_level = $3, address = $4, phone = $5,
			email = $6, emergency_contacts = $7, updated_at = $8
		WHERE id = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		client.Name, client.Status, client.RiskLevel, client.Address,
		client.Phone, client.Email, contacts, time.Now(), client.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("client", nil)
	}
	return nil
}

func (r *clientRepository) List(ctx context.Context, filters *model.ClientFilters) ([]*model.Client, error) {
	query := `SELECT * FROM clients WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters != nil {
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
		if filters.RiskLevel != "" {
			query += fmt.Sprintf(" AND risk_level = $%d", idx)
			args = append(args, filters.RiskLevel)
			idx++
		}
	}
	query += " ORDER BY created_at"

	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]*model.Client, 0, len(rows))
	for i := range rows {
		client, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}
