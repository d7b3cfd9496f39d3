package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type exceptionRepository struct {
	store *Store
}

func NewExceptionRepository(store *Store) repository.ExceptionRepository {
	return &exceptionRepository{store: store}
}

func cloneException(e *model.ExceptionRecord) *model.ExceptionRecord {
	out := *e
	if e.ResolvedAt != nil {
		t := *e.ResolvedAt
		out.ResolvedAt = &t
	}
	return &out
}

func (r *exceptionRepository) Create(ctx context.Context, exc *model.ExceptionRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.exceptions = append(r.store.exceptions, cloneException(exc))
	return nil
}

func (r *exceptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.ExceptionRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.exceptions {
		if e.ID == id {
			return cloneException(e), nil
		}
	}
	return nil, apperrors.NotFound("exception", nil)
}

func (r *exceptionRepository) Update(ctx context.Context, exc *model.ExceptionRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, e := range r.store.exceptions {
		if e.ID == exc.ID {
			r.store.exceptions[i] = cloneException(exc)
			return nil
		}
	}
	return apperrors.NotFound("exception", nil)
}

func (r *exceptionRepository) List(ctx context.Context, filters *model.ExceptionFilters) ([]*model.ExceptionRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.ExceptionRecord
	for _, e := range r.store.exceptions {
		if filters != nil {
			if filters.CaseID != uuid.Nil && e.CaseID != filters.CaseID {
				continue
			}
			if filters.Status != "" && e.Status != filters.Status {
				continue
			}
		}
		out = append(out, cloneException(e))
	}
	return out, nil
}

func (r *exceptionRepository) ListOpenForCase(ctx context.Context, caseID uuid.UUID) ([]*model.ExceptionRecord, error) {
	return r.List(ctx, &model.ExceptionFilters{
		CaseID: caseID,
		Status: model.ExceptionStatusOpen,
	})
}
