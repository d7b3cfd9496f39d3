package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
)

type timelineRepository struct {
	db *sqlx.DB
}

func NewTimelineRepository(db *sqlx.DB) repository.TimelineRepository {
	return &timelineRepository{db: db}
}

// Create inserts the event. The timeline table never sees UPDATE or DELETE.
func (r *timelineRepository) Create(ctx context.Context, event *model.TimelineEvent) error {
	query := `
		INSERT INTO timeline_events (id, client_id, type, source, summary, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.ClientID, event.Type, event.Source,
		event.Summary, event.Actor, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append timeline event: %w", err)
	}
	return nil
}

func (r *timelineRepository) List(ctx context.Context, filters *model.TimelineFilters) ([]*model.TimelineEvent, error) {
	query := `SELECT * FROM timeline_events WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters != nil {
		if filters.ClientID != uuid.Nil {
			query += fmt.Sprintf(" AND client_id = $%d", idx)
			args = append(args, filters.ClientID)
			idx++
		}
		if filters.Type != "" {
			query += fmt.Sprintf(" AND type = $%d", idx)
			args = append(args, filters.Type)
			idx++
		}
	}
	query += " ORDER BY created_at DESC"

	var events []*model.TimelineEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list timeline events: %w", err)
	}
	return events, nil
}

func (r *timelineRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM timeline_events`); err != nil {
		return 0, fmt.Errorf("failed to count timeline events: %w", err)
	}
	return count, nil
}
