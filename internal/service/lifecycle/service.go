// Package lifecycle owns the Assessment -> CarePlan -> Case progression and
// the single-active-plan invariant. It is the sole writer of the client
// timeline: every state transition appends exactly one event.
package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/classifier"
	"github.com/careloop/careops-api/internal/handover"
	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
	"github.com/careloop/careops-api/pkg/event"
	"github.com/careloop/careops-api/pkg/logger"
	"github.com/careloop/careops-api/pkg/metrics"
)

type LifecycleService interface {
	CreateAssessment(ctx context.Context, input *CreateAssessmentInput) (*model.Assessment, error)
	ApproveAssessment(ctx context.Context, id uuid.UUID, approvedBy string, finalDevices, finalServices []string) error
	CreateCarePlanFromAssessment(ctx context.Context, assessmentID uuid.UUID, createdBy string, overrides *model.CarePlanOverrides) (*model.CarePlan, error)
	ActivateCarePlan(ctx context.Context, plan *model.CarePlan) error
	CloseCarePlan(ctx context.Context, id uuid.UUID, actor string) error
	CreateCase(ctx context.Context, input *CreateCaseInput) (*model.Case, error)
	ApproveCase(ctx context.Context, id uuid.UUID, actor string) error
	AdvanceCase(ctx context.Context, id uuid.UUID, next model.CaseStatus, actor, summary string) error
	CompleteHandover(ctx context.Context, task handover.Task) error

	GetAssessment(ctx context.Context, id uuid.UUID) (*model.Assessment, error)
	ListAssessmentsForClient(ctx context.Context, clientID uuid.UUID) ([]*model.Assessment, error)
	GetCarePlan(ctx context.Context, id uuid.UUID) (*model.CarePlan, error)
	GetActiveCarePlan(ctx context.Context, clientID uuid.UUID) (*model.CarePlan, error)
	ListCarePlansForClient(ctx context.Context, clientID uuid.UUID) ([]*model.CarePlan, error)
	GetCase(ctx context.Context, id uuid.UUID) (*model.Case, error)
	ListCases(ctx context.Context, filters *model.CaseFilters) ([]*model.Case, error)
	ListTimeline(ctx context.Context, filters *model.TimelineFilters) ([]*model.TimelineEvent, error)
}

type CreateAssessmentInput struct {
	ClientID     uuid.UUID
	PerformedBy  string
	Type         model.AssessmentType
	RiskLevel    model.RiskLevel
	NeedsSummary string
	Notes        string
}

type CreateCaseInput struct {
	ClientID    uuid.UUID
	CareOrgID   uuid.UUID
	CarePlanID  *uuid.UUID
	Items       []model.CaseItem
	RequestedBy string
}

type Service struct {
	clients     repository.ClientRepository
	assessments repository.AssessmentRepository
	carePlans   repository.CarePlanRepository
	cases       repository.CaseRepository
	timeline    repository.TimelineRepository
	exceptions  repository.ExceptionRepository
	handovers   repository.HandoverRepository

	scheduler     handover.Scheduler
	handoverDelay time.Duration
	notifier      event.Notifier
	logger        *logger.Logger
	metrics       *metrics.Metrics

	// clientLocks serializes plan activation per client so no reader ever
	// observes two simultaneously ACTIVE plans.
	clientLocks keyedMutex
}

// Deps bundles the service's collaborators. Scheduler, Handovers and Metrics
// are optional: the API process uses the in-process scheduler, the worker
// deployment uses the handover repository instead.
type Deps struct {
	Clients       repository.ClientRepository
	Assessments   repository.AssessmentRepository
	CarePlans     repository.CarePlanRepository
	Cases         repository.CaseRepository
	Timeline      repository.TimelineRepository
	Exceptions    repository.ExceptionRepository
	Handovers     repository.HandoverRepository
	Scheduler     handover.Scheduler
	HandoverDelay time.Duration
	Notifier      event.Notifier
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
}

func NewService(deps Deps) *Service {
	if deps.HandoverDelay <= 0 {
		deps.HandoverDelay = handoverDelayDefault
	}
	return &Service{
		clients:       deps.Clients,
		assessments:   deps.Assessments,
		carePlans:     deps.CarePlans,
		cases:         deps.Cases,
		timeline:      deps.Timeline,
		exceptions:    deps.Exceptions,
		handovers:     deps.Handovers,
		scheduler:     deps.Scheduler,
		handoverDelay: deps.HandoverDelay,
		notifier:      deps.Notifier,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
	}
}

// SetScheduler wires the handover scheduler after construction; the scheduler
// needs the service's CompleteHandover as its fire callback.
func (s *Service) SetScheduler(sched handover.Scheduler) {
	s.scheduler = sched
}

// CreateAssessment constructs a DRAFT assessment. When the nurse supplied
// intake text the classifier runs once and its snapshot is frozen onto the
// assessment. Drafts are provisional, so nothing is logged to the timeline.
func (s *Service) CreateAssessment(ctx context.Context, input *CreateAssessmentInput) (*model.Assessment, error) {
	if input.PerformedBy == "" {
		return nil, apperrors.Validation("performed_by is required", nil)
	}
	if _, err := s.clients.Get(ctx, input.ClientID); err != nil {
		s.countError("create_assessment", err)
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}

	now := time.Now()
	assessment := &model.Assessment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClientID:     input.ClientID,
		PerformedBy:  input.PerformedBy,
		Date:         now,
		Type:         input.Type,
		RiskLevel:    input.RiskLevel,
		NeedsSummary: input.NeedsSummary,
		Notes:        input.Notes,
		Status:       model.AssessmentStatusDraft,
	}

	if text := strings.TrimSpace(input.NeedsSummary + " " + input.Notes); text != "" {
		snapshot := classifier.Classify(text)
		assessment.AIAnalysis = &snapshot
		assessment.RecommendedDevices = snapshot.SuggestedDevices
		assessment.RecommendedServices = snapshot.SuggestedServices
		if s.metrics != nil {
			s.metrics.ClassifierRuns.Inc()
			for _, flag := range snapshot.RiskFlags {
				s.metrics.ClassifierRiskFlags.WithLabelValues(flag).Inc()
			}
		}
	}

	if err := s.assessments.Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	s.countOp("create_assessment")
	s.notify("assessment", "create", assessment.ID, assessment.ClientID)
	return assessment, nil
}

// ApproveAssessment transitions DRAFT -> APPROVED and freezes the recommended
// lists to the human-confirmed selection. A nil final list means the reviewer
// accepted the suggestions as-is, so the existing list is kept. Approving an
// already-approved assessment is an InvalidTransition, never a silent re-log.
func (s *Service) ApproveAssessment(ctx context.Context, id uuid.UUID, approvedBy string, finalDevices, finalServices []string) error {
	assessment, err := s.assessments.Get(ctx, id)
	if err != nil {
		s.countError("approve_assessment", err)
		return fmt.Errorf("failed to get assessment: %w", err)
	}
	if assessment.Status == model.AssessmentStatusApproved {
		err := apperrors.InvalidTransition("assessment is already approved")
		s.countError("approve_assessment", err)
		return err
	}

	assessment.Status = model.AssessmentStatusApproved
	if finalDevices != nil {
		assessment.RecommendedDevices = finalDevices
	}
	if finalServices != nil {
		assessment.RecommendedServices = finalServices
	}
	assessment.UpdatedAt = time.Now()

	if err := s.assessments.Update(ctx, assessment); err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}

	// The nurse-assigned risk carries over to the client record.
	if client, err := s.clients.Get(ctx, assessment.ClientID); err == nil {
		if client.RiskLevel != assessment.RiskLevel {
			client.RiskLevel = assessment.RiskLevel
			client.UpdatedAt = time.Now()
			if err := s.clients.Update(ctx, client); err != nil {
				s.logger.Error(err, "failed to update client risk level", "client_id", client.ID.String())
			}
		}
	}

	s.logEvent(ctx, assessment.ClientID, model.TimelineEventAssessment, model.TimelineSourceHuman,
		fmt.Sprintf("Assessment approved with %d devices and %d services",
			len(assessment.RecommendedDevices), len(assessment.RecommendedServices)),
		approvedBy)

	s.countOp("approve_assessment")
	s.notify("assessment", "approve", assessment.ID, assessment.ClientID)
	return nil
}

// logEvent appends one timeline record. The timeline is append-only; this is
// the only write path and it never updates or removes events.
func (s *Service) logEvent(ctx context.Context, clientID uuid.UUID, eventType model.TimelineEventType, source model.TimelineSource, summary, actor string) {
	entry := &model.TimelineEvent{
		ID:        uuid.New(),
		ClientID:  clientID,
		Type:      eventType,
		Source:    source,
		Summary:   summary,
		Actor:     actor,
		CreatedAt: time.Now(),
	}
	if err := s.timeline.Create(ctx, entry); err != nil {
		// An unloggable transition is a serious defect, but the state change
		// itself already committed; surface loudly instead of failing the op.
		s.logger.Error(err, "failed to append timeline event",
			"client_id", clientID.String(), "type", string(eventType))
		return
	}
	if s.metrics != nil {
		s.metrics.TimelineEvents.Inc()
	}
}

func (s *Service) notify(resource, operation string, entityID, clientID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(event.Change{
		Resource:  resource,
		Operation: operation,
		EntityID:  entityID,
		ClientID:  clientID,
	})
}

func (s *Service) countOp(operation string) {
	if s.metrics != nil {
		s.metrics.LifecycleOperations.WithLabelValues(operation, "success").Inc()
	}
}

func (s *Service) countError(operation string, err error) {
	if s.metrics != nil {
		s.metrics.LifecycleOperations.WithLabelValues(operation, "error").Inc()
		s.metrics.LifecycleErrors.WithLabelValues(operation, fmt.Sprintf("%d", apperrors.CodeOf(err))).Inc()
	}
}

// keyedMutex hands out one mutex per key, lazily.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (k *keyedMutex) lock(key uuid.UUID) *sync.Mutex {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m
}
