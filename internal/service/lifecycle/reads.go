package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

func (s *Service) GetAssessment(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	return s.assessments.Get(ctx, id)
}

func (s *Service) ListAssessmentsForClient(ctx context.Context, clientID uuid.UUID) ([]*model.Assessment, error) {
	return s.assessments.List(ctx, &model.AssessmentFilters{ClientID: clientID})
}

func (s *Service) GetCarePlan(ctx context.Context, id uuid.UUID) (*model.CarePlan, error) {
	return s.carePlans.Get(ctx, id)
}

// GetActiveCarePlan returns the client's single ACTIVE plan. Zero active plans
// is a NotFound; more than one means the activation invariant is broken.
func (s *Service) GetActiveCarePlan(ctx context.Context, clientID uuid.UUID) (*model.CarePlan, error) {
	active, err := s.carePlans.ListActiveForClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}
	switch len(active) {
	case 0:
		return nil, apperrors.NotFound("active care plan", nil)
	case 1:
		return active[0], nil
	default:
		return nil, apperrors.Internal(fmt.Sprintf("client %s has %d active care plans", clientID, len(active)), nil)
	}
}

func (s *Service) ListCarePlansForClient(ctx context.Context, clientID uuid.UUID) ([]*model.CarePlan, error) {
	return s.carePlans.List(ctx, &model.CarePlanFilters{ClientID: clientID})
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	return s.cases.Get(ctx, id)
}

func (s *Service) ListCases(ctx context.Context, filters *model.CaseFilters) ([]*model.Case, error) {
	return s.cases.List(ctx, filters)
}

func (s *Service) ListTimeline(ctx context.Context, filters *model.TimelineFilters) ([]*model.TimelineEvent, error) {
	return s.timeline.List(ctx, filters)
}
