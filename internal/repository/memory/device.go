package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type deviceRepository struct {
	store *Store
}

func NewDeviceRepository(store *Store) repository.DeviceRepository {
	return &deviceRepository{store: store}
}

func cloneDevice(d *model.Device) *model.Device {
	out := *d
	if d.ClientID != nil {
		id := *d.ClientID
		out.ClientID = &id
	}
	return &out
}

func (r *deviceRepository) Create(ctx context.Context, device *model.Device) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.devices = append(r.store.devices, cloneDevice(device))
	return nil
}

func (r *deviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, d := range r.store.devices {
		if d.ID == id {
			return cloneDevice(d), nil
		}
	}
	return nil, apperrors.NotFound("device", nil)
}

func (r *deviceRepository) Update(ctx context.Context, device *model.Device) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, d := range r.store.devices {
		if d.ID == device.ID {
			r.store.devices[i] = cloneDevice(device)
			return nil
		}
	}
	return apperrors.NotFound("device", nil)
}

func (r *deviceRepository) List(ctx context.Context, filters *model.DeviceFilters) ([]*model.Device, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Device
	for _, d := range r.store.devices {
		if filters != nil {
			if filters.CareOrgID != uuid.Nil && d.CareOrgID != filters.CareOrgID {
				continue
			}
			if filters.ClientID != uuid.Nil && (d.ClientID == nil || *d.ClientID != filters.ClientID) {
				continue
			}
			if filters.Status != "" && d.Status != filters.Status {
				continue
			}
		}
		out = append(out, cloneDevice(d))
	}
	return out, nil
}
