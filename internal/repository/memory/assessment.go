package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type assessmentRepository struct {
	store *Store
}

func NewAssessmentRepository(store *Store) repository.AssessmentRepository {
	return &assessmentRepository{store: store}
}

func cloneAssessment(a *model.Assessment) *model.Assessment {
	out := *a
	out.RecommendedDevices = copyStrings(a.RecommendedDevices)
	out.RecommendedServices = copyStrings(a.RecommendedServices)
	if a.AIAnalysis != nil {
		snap := *a.AIAnalysis
		snap.SuggestedDevices = copyStrings(a.AIAnalysis.SuggestedDevices)
		snap.SuggestedServices = copyStrings(a.AIAnalysis.SuggestedServices)
		snap.RiskFlags = copyStrings(a.AIAnalysis.RiskFlags)
		out.AIAnalysis = &snap
	}
	return &out
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *model.Assessment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.assessments = append(r.store.assessments, cloneAssessment(assessment))
	return nil
}

func (r *assessmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.assessments {
		if a.ID == id {
			return cloneAssessment(a), nil
		}
	}
	return nil, apperrors.NotFound("assessment", nil)
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *model.Assessment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, a := range r.store.assessments {
		if a.ID == assessment.ID {
			r.store.assessments[i] = cloneAssessment(assessment)
			return nil
		}
	}
	return apperrors.NotFound("assessment", nil)
}

func (r *assessmentRepository) List(ctx context.Context, filters *model.AssessmentFilters) ([]*model.Assessment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Assessment
	for _, a := range r.store.assessments {
		if filters != nil {
			if filters.ClientID != uuid.Nil && a.ClientID != filters.ClientID {
				continue
			}
			if filters.Status != "" && a.Status != filters.Status {
				continue
			}
		}
		out = append(out, cloneAssessment(a))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}
