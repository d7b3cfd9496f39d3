package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type carePlanRepository struct {
	store *Store
}

func NewCarePlanRepository(store *Store) repository.CarePlanRepository {
	return &carePlanRepository{store: store}
}

func cloneCarePlan(p *model.CarePlan) *model.CarePlan {
	out := *p
	out.AgreedDevices = copyStrings(p.AgreedDevices)
	out.AgreedServices = copyStrings(p.AgreedServices)
	if p.AssessmentID != nil {
		id := *p.AssessmentID
		out.AssessmentID = &id
	}
	return &out
}

func (r *carePlanRepository) Create(ctx context.Context, plan *model.CarePlan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.carePlans = append(r.store.carePlans, cloneCarePlan(plan))
	return nil
}

func (r *carePlanRepository) Get(ctx context.Context, id uuid.UUID) (*model.CarePlan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.carePlans {
		if p.ID == id {
			return cloneCarePlan(p), nil
		}
	}
	return nil, apperrors.NotFound("care plan", nil)
}

func (r *carePlanRepository) Update(ctx context.Context, plan *model.CarePlan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, p := range r.store.carePlans {
		if p.ID == plan.ID {
			r.store.carePlans[i] = cloneCarePlan(plan)
			return nil
		}
	}
	return apperrors.NotFound("care plan", nil)
}

func (r *carePlanRepository) List(ctx context.Context, filters *model.CarePlanFilters) ([]*model.CarePlan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.CarePlan
	for _, p := range r.store.carePlans {
		if filters != nil {
			if filters.ClientID != uuid.Nil && p.ClientID != filters.ClientID {
				continue
			}
			if filters.Status != "" && p.Status != filters.Status {
				continue
			}
		}
		out = append(out, cloneCarePlan(p))
	}
	return out, nil
}

func (r *carePlanRepository) ListActiveForClient(ctx context.Context, clientID uuid.UUID) ([]*model.CarePlan, error) {
	return r.List(ctx, &model.CarePlanFilters{
		ClientID: clientID,
		Status:   model.CarePlanStatusActive,
	})
}
