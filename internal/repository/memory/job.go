package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type jobRepository struct {
	store *Store
}

func NewJobRepository(store *Store) repository.JobRepository {
	return &jobRepository{store: store}
}

func cloneJob(j *model.Job) *model.Job {
	out := *j
	if j.CaseID != nil {
		id := *j.CaseID
		out.CaseID = &id
	}
	return &out
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.jobs = append(r.store.jobs, cloneJob(job))
	return nil
}

func (r *jobRepository) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, j := range r.store.jobs {
		if j.ID == id {
			return cloneJob(j), nil
		}
	}
	return nil, apperrors.NotFound("job", nil)
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, j := range r.store.jobs {
		if j.ID == job.ID {
			r.store.jobs[i] = cloneJob(job)
			return nil
		}
	}
	return apperrors.NotFound("job", nil)
}

func (r *jobRepository) List(ctx context.Context, filters *model.JobFilters) ([]*model.Job, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Job
	for _, j := range r.store.jobs {
		if filters != nil {
			if filters.ClientID != uuid.Nil && j.ClientID != filters.ClientID {
				continue
			}
			if filters.AssignedTo != "" && j.AssignedTo != filters.AssignedTo {
				continue
			}
			if filters.Status != "" && j.Status != filters.Status {
				continue
			}
		}
		out = append(out, cloneJob(j))
	}
	return out, nil
}
