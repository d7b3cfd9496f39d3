package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/handover"
	"github.com/careloop/careops-api/internal/model"
	apperrors "github.com/careloop/careops-api/pkg/errors"
)

// handoverActor names the automated fulfillment bridge on SYSTEM events.
const handoverActor = "fulfillment-bridge"

// CreateCase opens a fulfillment case in NEW status, logs the ORDER event
// synchronously and schedules the deferred hand-off to fulfillment. Items
// default to the originating care plan's agreed lists when none are given.
func (s *Service) CreateCase(ctx context.Context, input *CreateCaseInput) (*model.Case, error) {
	if input.RequestedBy == "" {
		return nil, apperrors.Validation("requested_by is required", nil)
	}
	if _, err := s.clients.Get(ctx, input.ClientID); err != nil {
		s.countError("create_case", err)
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}

	items := input.Items
	if len(items) == 0 && input.CarePlanID != nil {
		plan, err := s.carePlans.Get(ctx, *input.CarePlanID)
		if err != nil {
			s.countError("create_case", err)
			return nil, fmt.Errorf("failed to resolve care plan: %w", err)
		}
		items = itemsFromPlan(plan)
	}

	now := time.Now()
	c := &model.Case{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClientID:    input.ClientID,
		CareOrgID:   input.CareOrgID,
		CarePlanID:  input.CarePlanID,
		Status:      model.CaseStatusNew,
		Items:       items,
		RequestedBy: input.RequestedBy,
	}

	if err := s.cases.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	s.logEvent(ctx, c.ClientID, model.TimelineEventOrder, model.TimelineSourceHuman,
		fmt.Sprintf("Order created with %d items", len(c.Items)), input.RequestedBy)

	s.scheduleHandover(ctx, c, now)

	s.countOp("create_case")
	s.notify("case", "create", c.ID, c.ClientID)
	return c, nil
}

// scheduleHandover defers the hand-off through whichever mechanism is wired:
// the in-process timer scheduler, or the handover repository the worker polls.
func (s *Service) scheduleHandover(ctx context.Context, c *model.Case, createdAt time.Time) {
	task := handover.Task{CaseID: c.ID, ClientID: c.ClientID, CreatedAt: createdAt}

	if s.scheduler != nil {
		s.scheduler.Schedule(task)
		return
	}
	if s.handovers == nil {
		return
	}
	record := &model.HandoverTask{
		ID:        uuid.New(),
		CaseID:    c.ID,
		ClientID:  c.ClientID,
		Status:    model.HandoverStatusPending,
		DueAt:     createdAt.Add(s.handoverDelay),
		CreatedAt: createdAt,
	}
	if err := s.handovers.Create(ctx, record); err != nil {
		s.logger.Error(err, "failed to enqueue handover task", "case_id", c.ID.String())
	}
}

const handoverDelayDefault = 1500 * time.Millisecond

// CompleteHandover appends the SYSTEM timeline event marking the case as
// handed over to fulfillment. It runs after the scheduled delay, from the
// timer scheduler or the worker. A case closed in the meantime is skipped.
func (s *Service) CompleteHandover(ctx context.Context, task handover.Task) error {
	c, err := s.cases.Get(ctx, task.CaseID)
	if err != nil {
		s.countError("complete_handover", err)
		return fmt.Errorf("failed to resolve case for handover: %w", err)
	}
	if c.Status == model.CaseStatusClosed {
		s.logger.Debug("skipping handover for closed case", "case_id", c.ID.String())
		return nil
	}

	s.logEvent(ctx, task.ClientID, model.TimelineEventSystem, model.TimelineSourceAI,
		"Order handed over to fulfillment for stock allocation", handoverActor)

	s.countOp("complete_handover")
	s.notify("timeline", "handover", task.CaseID, task.ClientID)
	return nil
}

// ApproveCase advances NEW -> APPROVED and resolves any open exceptions
// pointing at the case. Re-approval is rejected, not silently ignored.
func (s *Service) ApproveCase(ctx context.Context, id uuid.UUID, actor string) error {
	c, err := s.cases.Get(ctx, id)
	if err != nil {
		s.countError("approve_case", err)
		return fmt.Errorf("failed to get case: %w", err)
	}
	if c.Status != model.CaseStatusNew {
		err := apperrors.InvalidTransition(fmt.Sprintf("cannot approve case in status %s", c.Status))
		s.countError("approve_case", err)
		return err
	}

	c.Status = model.CaseStatusApproved
	c.UpdatedAt = time.Now()
	if err := s.cases.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}

	s.resolveOpenExceptions(ctx, c.ID, actor)

	s.logEvent(ctx, c.ClientID, model.TimelineEventOrder, model.TimelineSourceHuman,
		"Order approved by operations", actor)

	s.countOp("approve_case")
	s.notify("case", "approve", c.ID, c.ClientID)
	return nil
}

// AdvanceCase moves a case strictly forward along the fulfillment pipeline.
// Setting an earlier or equal status is rejected as an InvalidTransition.
func (s *Service) AdvanceCase(ctx context.Context, id uuid.UUID, next model.CaseStatus, actor, summary string) error {
	if !model.ValidCaseStatus(next) {
		err := apperrors.Validation(fmt.Sprintf("unknown case status %q", next), nil)
		s.countError("advance_case", err)
		return err
	}

	c, err := s.cases.Get(ctx, id)
	if err != nil {
		s.countError("advance_case", err)
		return fmt.Errorf("failed to get case: %w", err)
	}
	if !model.CaseStatusAdvances(c.Status, next) {
		err := apperrors.InvalidTransition(fmt.Sprintf("case cannot move from %s to %s", c.Status, next))
		s.countError("advance_case", err)
		return err
	}

	c.Status = next
	c.UpdatedAt = time.Now()
	if err := s.cases.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}

	if next == model.CaseStatusClosed {
		s.cancelHandover(ctx, c.ID)
	}

	if summary == "" {
		summary = fmt.Sprintf("Order advanced to %s", next)
	}
	s.logEvent(ctx, c.ClientID, model.TimelineEventOrder, model.TimelineSourceHuman, summary, actor)

	s.countOp("advance_case")
	s.notify("case", "advance", c.ID, c.ClientID)
	return nil
}

func (s *Service) cancelHandover(ctx context.Context, caseID uuid.UUID) {
	if s.scheduler != nil {
		s.scheduler.Cancel(caseID)
	}
	if s.handovers != nil {
		if err := s.handovers.CancelForCase(ctx, caseID); err != nil {
			s.logger.Error(err, "failed to cancel handover tasks", "case_id", caseID.String())
		}
	}
}

// resolveOpenExceptions clears blockers associated with an approved case.
func (s *Service) resolveOpenExceptions(ctx context.Context, caseID uuid.UUID, actor string) {
	open, err := s.exceptions.ListOpenForCase(ctx, caseID)
	if err != nil {
		s.logger.Error(err, "failed to list open exceptions", "case_id", caseID.String())
		return
	}
	for _, exc := range open {
		now := time.Now()
		exc.Status = model.ExceptionStatusResolved
		exc.ResolvedAt = &now
		exc.UpdatedAt = now
		if err := s.exceptions.Update(ctx, exc); err != nil {
			s.logger.Error(err, "failed to resolve exception", "exception_id", exc.ID.String())
		}
	}
	if len(open) > 0 {
		s.logger.Info("resolved exceptions on case approval",
			"case_id", caseID.String(), "count", len(open), "actor", actor)
	}
}

func itemsFromPlan(plan *model.CarePlan) []model.CaseItem {
	var items []model.CaseItem
	for _, d := range plan.AgreedDevices {
		items = append(items, model.CaseItem{Name: d, Kind: model.CaseItemDevice, Quantity: 1})
	}
	for _, svc := range plan.AgreedServices {
		items = append(items, model.CaseItem{Name: svc, Kind: model.CaseItemService, Quantity: 1})
	}
	return items
}
