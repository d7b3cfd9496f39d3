package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type caseRepository struct {
	store *Store
}

func NewCaseRepository(store *Store) repository.CaseRepository {
	return &caseRepository{store: store}
}

func cloneCase(c *model.Case) *model.Case {
	out := *c
	if c.Items != nil {
		out.Items = make([]model.CaseItem, len(c.Items))
		copy(out.Items, c.Items)
	}
	if c.CarePlanID != nil {
		id := *c.CarePlanID
		out.CarePlanID = &id
	}
	return &out
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.cases = append(r.store.cases, cloneCase(c))
	return nil
}

func (r *caseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.cases {
		if c.ID == id {
			return cloneCase(c), nil
		}
	}
	return nil, apperrors.NotFound("case", nil)
}

func (r *caseRepository) Update(ctx context.Context, c *model.Case) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, existing := range r.store.cases {
		if existing.ID == c.ID {
			r.store.cases[i] = cloneCase(c)
			return nil
		}
	}
	return apperrors.NotFound("case", nil)
}

func (r *caseRepository) List(ctx context.Context, filters *model.CaseFilters) ([]*model.Case, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Case
	for _, c := range r.store.cases {
		if filters != nil {
			if filters.ClientID != uuid.Nil && c.ClientID != filters.ClientID {
				continue
			}
			if filters.CareOrgID != uuid.Nil && c.CareOrgID != filters.CareOrgID {
				continue
			}
			if filters.Status != "" && c.Status != filters.Status {
				continue
			}
		}
		out = append(out, cloneCase(c))
	}
	return out, nil
}
