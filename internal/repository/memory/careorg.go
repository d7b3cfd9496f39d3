package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type careOrgRepository struct {
	store *Store
}

func NewCareOrgRepository(store *Store) repository.CareOrgRepository {
	return &careOrgRepository{store: store}
}

func cloneCareOrg(org *model.CareOrg) *model.CareOrg {
	out := *org
	return &out
}

func (r *careOrgRepository) Create(ctx context.Context, org *model.CareOrg) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.careOrgs = append(r.store.careOrgs, cloneCareOrg(org))
	return nil
}

func (r *careOrgRepository) Get(ctx context.Context, id uuid.UUID) (*model.CareOrg, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, org := range r.store.careOrgs {
		if org.ID == id {
			return cloneCareOrg(org), nil
		}
	}
	return nil, apperrors.NotFound("care org", nil)
}

func (r *careOrgRepository) List(ctx context.Context) ([]*model.CareOrg, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*model.CareOrg, 0, len(r.store.careOrgs))
	for _, org := range r.store.careOrgs {
		out = append(out, cloneCareOrg(org))
	}
	return out, nil
}
