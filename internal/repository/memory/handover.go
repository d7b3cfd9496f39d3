package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type handoverRepository struct {
	store *Store
}

func NewHandoverRepository(store *Store) repository.HandoverRepository {
	return &handoverRepository{store: store}
}

func cloneHandover(t *model.HandoverTask) *model.HandoverTask {
	out := *t
	if t.ErrorMessage != nil {
		s := *t.ErrorMessage
		out.ErrorMessage = &s
	}
	if t.ProcessedAt != nil {
		ts := *t.ProcessedAt
		out.ProcessedAt = &ts
	}
	return &out
}

func (r *handoverRepository) Create(ctx context.Context, task *model.HandoverTask) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.handovers = append(r.store.handovers, cloneHandover(task))
	return nil
}

func (r *handoverRepository) GetPendingDue(ctx context.Context, now time.Time, limit int) ([]*model.HandoverTask, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.HandoverTask
	for _, t := range r.store.handovers {
		if t.Status != model.HandoverStatusPending || t.DueAt.After(now) {
			continue
		}
		out = append(out, cloneHandover(t))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *handoverRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.HandoverStatus, errMsg *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.handovers {
		if t.ID == id {
			t.Status = status
			t.ErrorMessage = errMsg
			if status == model.HandoverStatusSent || status == model.HandoverStatusFailed {
				now := time.Now()
				t.ProcessedAt = &now
			}
			return nil
		}
	}
	return apperrors.NotFound("handover task", nil)
}

func (r *handoverRepository) CancelForCase(ctx context.Context, caseID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.handovers {
		if t.CaseID == caseID && t.Status == model.HandoverStatusPending {
			t.Status = model.HandoverStatusCancelled
		}
	}
	return nil
}
