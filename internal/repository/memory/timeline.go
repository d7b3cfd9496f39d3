package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
)

type timelineRepository struct {
	store *Store
}

func NewTimelineRepository(store *Store) repository.TimelineRepository {
	return &timelineRepository{store: store}
}

func cloneTimelineEvent(e *model.TimelineEvent) *model.TimelineEvent {
	out := *e
	return &out
}

// Create appends the event. There is deliberately no update or delete path.
func (r *timelineRepository) Create(ctx context.Context, event *model.TimelineEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.timeline = append(r.store.timeline, cloneTimelineEvent(event))
	return nil
}

// List returns matching events newest first (reverse insertion order).
func (r *timelineRepository) List(ctx context.Context, filters *model.TimelineFilters) ([]*model.TimelineEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.TimelineEvent
	for i := len(r.store.timeline) - 1; i >= 0; i-- {
		e := r.store.timeline[i]
		if filters != nil {
			if filters.ClientID != uuid.Nil && e.ClientID != filters.ClientID {
				continue
			}
			if filters.Type != "" && e.Type != filters.Type {
				continue
			}
		}
		out = append(out, cloneTimelineEvent(e))
	}
	return out, nil
}

func (r *timelineRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return len(r.store.timeline), nil
}
