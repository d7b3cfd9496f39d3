package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type clientRepository struct {
	store *Store
}

func NewClientRepository(store *Store) repository.ClientRepository {
	return &clientRepository{store: store}
}

func cloneClient(c *model.Client) *model.Client {
	out := *c
	if c.EmergencyContacts != nil {
		out.EmergencyContacts = make([]model.EmergencyContact, len(c.EmergencyContacts))
		copy(out.EmergencyContacts, c.EmergencyContacts)
	}
	return &out
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.clients = append(r.store.clients, cloneClient(client))
	return nil
}

func (r *clientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.clients {
		if c.ID == id {
			return cloneClient(c), nil
		}
	}
	return nil, apperrors.NotFound("client", nil)
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, c := range r.store.clients {
		if c.ID == client.ID {
			r.store.clients[i] = cloneClient(client)
			return nil
		}
	}
	return apperrors.NotFound("client", nil)
}

func (r *clientRepository) List(ctx context.Context, filters *model.ClientFilters) ([]*model.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Client
	for _, c := range r.store.clients {
		if filters != nil {
			if filters.CareOrgID != uuid.Nil && c.CareOrgID != filters.CareOrgID {
				continue
			}
			if filters.Status != "" && c.Status != filters.Status {
				continue
			}
			if filters.RiskLevel != "" && c.RiskLevel != filters.RiskLevel {
				continue
			}
		}
		out = append(out, cloneClient(c))
	}
	return out, nil
}
