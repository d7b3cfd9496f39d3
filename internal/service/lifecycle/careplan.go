package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

const fallbackGoal = "Maintain safe independent living at home"

// CreateCarePlanFromAssessment synthesizes a plan from an approved assessment
// and activates it. Goals derive from the needs summary, agreed items from the
// human-confirmed recommended lists, review defaults to 90 days out.
func (s *Service) CreateCarePlanFromAssessment(ctx context.Context, assessmentID uuid.UUID, createdBy string, overrides *model.CarePlanOverrides) (*model.CarePlan, error) {
	assessment, err := s.assessments.Get(ctx, assessmentID)
	if err != nil {
		s.countError("create_care_plan", err)
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	if assessment.Status != model.AssessmentStatusApproved {
		err := apperrors.InvalidTransition("care plan requires an approved assessment")
		s.countError("create_care_plan", err)
		return nil, err
	}

	goals := assessment.NeedsSummary
	if goals == "" {
		goals = fallbackGoal
	}

	now := time.Now()
	sourceID := assessment.ID
	plan := &model.CarePlan{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClientID:           assessment.ClientID,
		AssessmentID:       &sourceID,
		Goals:              goals,
		AgreedDevices:      assessment.RecommendedDevices,
		AgreedServices:     assessment.RecommendedServices,
		ReviewIntervalDays: model.DefaultReviewIntervalDays,
		CreatedBy:          createdBy,
	}
	applyOverrides(plan, overrides)
	plan.ReviewDate = now.AddDate(0, 0, plan.ReviewIntervalDays)

	if err := s.ActivateCarePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func applyOverrides(plan *model.CarePlan, overrides *model.CarePlanOverrides) {
	if overrides == nil {
		return
	}
	if overrides.Goals != nil {
		plan.Goals = *overrides.Goals
	}
	if overrides.Requirements != nil {
		plan.Requirements = *overrides.Requirements
	}
	if overrides.AgreedDevices != nil {
		plan.AgreedDevices = overrides.AgreedDevices
	}
	if overrides.AgreedServices != nil {
		plan.AgreedServices = overrides.AgreedServices
	}
	if overrides.ReviewIntervalDays != nil {
		plan.ReviewIntervalDays = *overrides.ReviewIntervalDays
	}
	if overrides.Notes != nil {
		plan.Notes = *overrides.Notes
	}
}

// ActivateCarePlan enforces the single-active-plan invariant: any currently
// ACTIVE plan for the client is marked SUPERSEDED before the new plan is
// inserted as ACTIVE, all inside the client's critical section.
func (s *Service) ActivateCarePlan(ctx context.Context, plan *model.CarePlan) error {
	if _, err := s.clients.Get(ctx, plan.ClientID); err != nil {
		s.countError("activate_care_plan", err)
		return fmt.Errorf("failed to resolve client: %w", err)
	}

	lock := s.clientLocks.lock(plan.ClientID)
	defer lock.Unlock()

	active, err := s.carePlans.ListActiveForClient(ctx, plan.ClientID)
	if err != nil {
		return fmt.Errorf("failed to list active plans: %w", err)
	}
	for _, prev := range active {
		prev.Status = model.CarePlanStatusSuperseded
		prev.UpdatedAt = time.Now()
		if err := s.carePlans.Update(ctx, prev); err != nil {
			return fmt.Errorf("failed to supersede plan %s: %w", prev.ID, err)
		}
	}

	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}
	plan.Status = model.CarePlanStatusActive
	plan.UpdatedAt = time.Now()
	if err := s.carePlans.Create(ctx, plan); err != nil {
		return fmt.Errorf("failed to create care plan: %w", err)
	}

	// Two ACTIVE plans after activation means the lifecycle manager itself is
	// broken, not that the caller passed bad input.
	check, err := s.carePlans.ListActiveForClient(ctx, plan.ClientID)
	if err == nil && len(check) != 1 {
		err := apperrors.Internal(fmt.Sprintf("client %s has %d active care plans", plan.ClientID, len(check)), nil)
		s.logger.Error(err, "care plan invariant violated")
		return err
	}

	if s.metrics != nil {
		s.metrics.ActiveCarePlans.Set(float64(s.countActivePlans(ctx)))
	}

	s.logEvent(ctx, plan.ClientID, model.TimelineEventCarePlan, model.TimelineSourceHuman,
		fmt.Sprintf("Care plan activated with %d devices and %d services", len(plan.AgreedDevices), len(plan.AgreedServices)),
		plan.CreatedBy)

	s.countOp("activate_care_plan")
	s.notify("care_plan", "activate", plan.ID, plan.ClientID)
	return nil
}

// CloseCarePlan ends service under an active plan. SUPERSEDED and CLOSED are
// terminal, so only ACTIVE plans can be closed.
func (s *Service) CloseCarePlan(ctx context.Context, id uuid.UUID, actor string) error {
	plan, err := s.carePlans.Get(ctx, id)
	if err != nil {
		s.countError("close_care_plan", err)
		return fmt.Errorf("failed to get care plan: %w", err)
	}
	if plan.Status != model.CarePlanStatusActive {
		err := apperrors.InvalidTransition(fmt.Sprintf("cannot close care plan in status %s", plan.Status))
		s.countError("close_care_plan", err)
		return err
	}

	plan.Status = model.CarePlanStatusClosed
	plan.UpdatedAt = time.Now()
	if err := s.carePlans.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to update care plan: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ActiveCarePlans.Set(float64(s.countActivePlans(ctx)))
	}

	s.logEvent(ctx, plan.ClientID, model.TimelineEventCarePlan, model.TimelineSourceHuman,
		"Care plan closed", actor)

	s.countOp("close_care_plan")
	s.notify("care_plan", "close", plan.ID, plan.ClientID)
	return nil
}

func (s *Service) countActivePlans(ctx context.Context) int {
	plans, err := s.carePlans.List(ctx, &model.CarePlanFilters{Status: model.CarePlanStatusActive})
	if err != nil {
		return 0
	}
	return len(plans)
}
