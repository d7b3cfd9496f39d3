package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/careops-api/internal/handover"
	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	"github.com/careloop/careops-api/internal/repository/memory"
	apperrors "github.com/careloop/careops-api/pkg/errors"
	"github.com/careloop/careops-api/pkg/event"
	"github.com/careloop/careops-api/pkg/logger"
)

type fixture struct {
	svc        *Service
	clients    repository.ClientRepository
	carePlans  repository.CarePlanRepository
	cases      repository.CaseRepository
	timeline   repository.TimelineRepository
	exceptions repository.ExceptionRepository
	notifier   event.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		clients:    memory.NewClientRepository(store),
		carePlans:  memory.NewCarePlanRepository(store),
		cases:      memory.NewCaseRepository(store),
		timeline:   memory.NewTimelineRepository(store),
		exceptions: memory.NewExceptionRepository(store),
		notifier:   event.NewNotifier(),
	}
	f.svc = NewService(Deps{
		Clients:     f.clients,
		Assessments: memory.NewAssessmentRepository(store),
		CarePlans:   f.carePlans,
		Cases:       f.cases,
		Timeline:    f.timeline,
		Exceptions:  f.exceptions,
		Notifier:    f.notifier,
		Logger:      logger.NewLogger(nil),
	})
	return f
}

// withScheduler attaches a short-delay timer scheduler firing CompleteHandover.
func (f *fixture) withScheduler(t *testing.T, delay time.Duration) {
	t.Helper()

	sched := handover.NewTimerScheduler(delay, func(ctx context.Context, task handover.Task) {
		_ = f.svc.CompleteHandover(ctx, task)
	}, logger.NewLogger(nil), nil)
	t.Cleanup(sched.Shutdown)
	f.svc.SetScheduler(sched)
}

func (f *fixture) createClient(t *testing.T, name string) *model.Client {
	t.Helper()

	now := time.Now()
	client := &model.Client{
		Base:        model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		CareOrgID:   uuid.New(),
		Name:        name,
		DateOfBirth: time.Date(1946, 3, 12, 0, 0, 0, 0, time.UTC),
		Status:      model.ClientStatusActive,
		RiskLevel:   model.RiskLevelLow,
	}
	require.NoError(t, f.clients.Create(context.Background(), client))
	return client
}

func (f *fixture) timelineCount(t *testing.T) int {
	t.Helper()

	n, err := f.timeline.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestCreateAssessmentRunsClassifier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	assessment, err := f.svc.CreateAssessment(ctx, &CreateAssessmentInput{
		ClientID:     client.ID,
		PerformedBy:  "Nurse Anna",
		Type:         model.AssessmentTypeInitial,
		RiskLevel:    model.RiskLevelMedium,
		NeedsSummary: "history of falls and dizziness",
	})
	require.NoError(t, err)

	assert.Equal(t, model.AssessmentStatusDraft, assessment.Status)
	require.NotNil(t, assessment.AIAnalysis)
	assert.Contains(t, assessment.RecommendedDevices, "Fall Sensor")
	assert.Contains(t, assessment.AIAnalysis.RiskFlags, "High Fall Risk")

	// Drafts are provisional: nothing on the timeline yet.
	assert.Equal(t, 0, f.timelineCount(t))
}

func TestCreateAssessmentWithoutTextSkipsClassifier(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "Henk")

	assessment, err := f.svc.CreateAssessment(context.Background(), &CreateAssessmentInput{
		ClientID:    client.ID,
		PerformedBy: "Nurse Anna",
		Type:        model.AssessmentTypeReview,
		RiskLevel:   model.RiskLevelLow,
	})
	require.NoError(t, err)
	assert.Nil(t, assessment.AIAnalysis)
	assert.Empty(t, assessment.RecommendedDevices)
}

func TestCreateAssessmentUnknownClient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateAssessment(context.Background(), &CreateAssessmentInput{
		ClientID:    uuid.New(),
		PerformedBy: "Nurse Anna",
		Type:        model.AssessmentTypeInitial,
		RiskLevel:   model.RiskLevelLow,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestApproveAssessmentFreezesFinalLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	assessment, err := f.svc.CreateAssessment(ctx, &CreateAssessmentInput{
		ClientID:     client.ID,
		PerformedBy:  "Nurse Anna",
		Type:         model.AssessmentTypeInitial,
		RiskLevel:    model.RiskLevelHigh,
		NeedsSummary: "forgets medication",
	})
	require.NoError(t, err)

	// The lead nurse trims the AI suggestions before approving.
	finalDevices := []string{"Smart Hub"}
	finalServices := []string{"24/7 Monitoring"}
	require.NoError(t, f.svc.ApproveAssessment(ctx, assessment.ID, "Lead Nurse Bo", finalDevices, finalServices))

	approved, err := f.svc.GetAssessment(ctx, assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssessmentStatusApproved, approved.Status)
	assert.Equal(t, finalDevices, approved.RecommendedDevices)
	assert.Equal(t, finalServices, approved.RecommendedServices)
	// The AI snapshot stays untouched for audit.
	require.NotNil(t, approved.AIAnalysis)
	assert.Contains(t, approved.AIAnalysis.SuggestedDevices, "Med Dispenser")

	// Client risk follows the nurse-assigned level.
	updated, err := f.clients.Get(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RiskLevelHigh, updated.RiskLevel)

	assert.Equal(t, 1, f.timelineCount(t))
}

func TestApproveAssessmentNilListsKeepSuggestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	assessment, err := f.svc.CreateAssessment(ctx, &CreateAssessmentInput{
		ClientID:     client.ID,
		PerformedBy:  "Nurse Anna",
		Type:         model.AssessmentTypeInitial,
		RiskLevel:    model.RiskLevelHigh,
		NeedsSummary: "history of falls in the bathroom",
	})
	require.NoError(t, err)

	// Approving without final lists accepts the AI suggestions as-is.
	require.NoError(t, f.svc.ApproveAssessment(ctx, assessment.ID, "Lead Nurse Bo", nil, nil))

	approved, err := f.svc.GetAssessment(ctx, assessment.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, approved.RecommendedDevices)
	assert.Contains(t, approved.RecommendedDevices, "Fall Sensor")
	assert.Contains(t, approved.RecommendedServices, "24/7 Monitoring")

	// A plan synthesized from the assessment carries the kept suggestions.
	plan, err := f.svc.CreateCarePlanFromAssessment(ctx, assessment.ID, "Coordinator Eva", nil)
	require.NoError(t, err)
	assert.Contains(t, plan.AgreedDevices, "Fall Sensor")
	assert.NotEmpty(t, plan.AgreedServices)

	// An empty non-nil list is an explicit clearing, not an omission.
	second, err := f.svc.CreateAssessment(ctx, &CreateAssessmentInput{
		ClientID:     client.ID,
		PerformedBy:  "Nurse Anna",
		Type:         model.AssessmentTypeReview,
		RiskLevel:    model.RiskLevelLow,
		NeedsSummary: "forgets medication",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.ApproveAssessment(ctx, second.ID, "Lead Nurse Bo", []string{}, nil))

	cleared, err := f.svc.GetAssessment(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.RecommendedDevices)
	assert.Contains(t, cleared.RecommendedServices, "24/7 Monitoring")
}

func TestApproveAssessmentTwiceRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	assessment, err := f.svc.CreateAssessment(ctx, &CreateAssessmentInput{
		ClientID:    client.ID,
		PerformedBy: "Nurse Anna",
		Type:        model.AssessmentTypeInitial,
		RiskLevel:   model.RiskLevelLow,
		Notes:       "doing well",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ApproveAssessment(ctx, assessment.ID, "Lead Nurse Bo", nil, nil))
	err = f.svc.ApproveAssessment(ctx, assessment.ID, "Lead Nurse Bo", nil, nil)
	assert.True(t, apperrors.IsInvalidTransition(err))

	// Rejected re-approval must not re-log.
	assert.Equal(t, 1, f.timelineCount(t))
}

func TestApproveAssessmentUnknownID(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ApproveAssessment(context.Background(), uuid.New(), "Lead Nurse Bo", nil, nil)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateCarePlanRequiresApprovedAssessment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	assessment, err := f.svc.CreateAssessment(ctx, &CreateAssessmentInput{
		ClientID:    client.ID,
		PerformedBy: "Nurse Anna",
		Type:        model.AssessmentTypeInitial,
		RiskLevel:   model.RiskLevelLow,
		Notes:       "stable",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateCarePlanFromAssessment(ctx, assessment.ID, "Lead Nurse Bo", nil)
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestSingleActivePlanInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	var planIDs []uuid.UUID
	for i := 0; i < 4; i++ {
		plan := &model.CarePlan{
			ClientID:           client.ID,
			Goals:              "stay mobile",
			AgreedDevices:      []string{"Smart Hub"},
			ReviewIntervalDays: model.DefaultReviewIntervalDays,
			CreatedBy:          "Lead Nurse Bo",
		}
		require.NoError(t, f.svc.ActivateCarePlan(ctx, plan))
		planIDs = append(planIDs, plan.ID)
	}

	plans, err := f.svc.ListCarePlansForClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, plans, 4)

	activeCount := 0
	for _, p := range plans {
		switch p.Status {
		case model.CarePlanStatusActive:
			activeCount++
			assert.Equal(t, planIDs[len(planIDs)-1], p.ID)
		case model.CarePlanStatusSuperseded:
		default:
			t.Fatalf("unexpected plan status %s", p.Status)
		}
	}
	assert.Equal(t, 1, activeCount)

	active, err := f.svc.GetActiveCarePlan(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, planIDs[len(planIDs)-1], active.ID)
}

func TestActivateCarePlanUnknownClient(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ActivateCarePlan(context.Background(), &model.CarePlan{
		ClientID:  uuid.New(),
		CreatedBy: "Lead Nurse Bo",
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCloseCarePlanTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	plan := &model.CarePlan{ClientID: client.ID, CreatedBy: "Lead Nurse Bo"}
	require.NoError(t, f.svc.ActivateCarePlan(ctx, plan))

	require.NoError(t, f.svc.CloseCarePlan(ctx, plan.ID, "Lead Nurse Bo"))
	err := f.svc.CloseCarePlan(ctx, plan.ID, "Lead Nurse Bo")
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestCaseForwardOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	c, err := f.svc.CreateCase(ctx, &CreateCaseInput{
		ClientID:    client.ID,
		CareOrgID:   client.CareOrgID,
		Items:       []model.CaseItem{{Name: "Smart Hub", Kind: model.CaseItemDevice, Quantity: 1}},
		RequestedBy: "Coordinator Kim",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusNew, c.Status)

	require.NoError(t, f.svc.ApproveCase(ctx, c.ID, "Ops Sam"))
	require.NoError(t, f.svc.AdvanceCase(ctx, c.ID, model.CaseStatusStockAllocated, "Ops Sam", ""))
	// Skipping INSTALLATION_PENDING is a valid forward move; only direction is
	// enforced, not step size.
	require.NoError(t, f.svc.AdvanceCase(ctx, c.ID, model.CaseStatusInstalled, "Installer Jo", ""))

	// Regression and no-op transitions are rejected.
	err = f.svc.AdvanceCase(ctx, c.ID, model.CaseStatusApproved, "Ops Sam", "")
	assert.True(t, apperrors.IsInvalidTransition(err))
	err = f.svc.AdvanceCase(ctx, c.ID, model.CaseStatusInstalled, "Ops Sam", "")
	assert.True(t, apperrors.IsInvalidTransition(err))

	err = f.svc.AdvanceCase(ctx, c.ID, "TELEPORTED", "Ops Sam", "")
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))

	got, err := f.svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusInstalled, got.Status)
}

func TestApproveCaseTwiceRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	c, err := f.svc.CreateCase(ctx, &CreateCaseInput{
		ClientID:    client.ID,
		CareOrgID:   client.CareOrgID,
		RequestedBy: "Coordinator Kim",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ApproveCase(ctx, c.ID, "Ops Sam"))
	err = f.svc.ApproveCase(ctx, c.ID, "Ops Sam")
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestApproveCaseResolvesOpenExceptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	c, err := f.svc.CreateCase(ctx, &CreateCaseInput{
		ClientID:    client.ID,
		CareOrgID:   client.CareOrgID,
		RequestedBy: "Coordinator Kim",
	})
	require.NoError(t, err)

	now := time.Now()
	exc := &model.ExceptionRecord{
		Base:   model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		CaseID: c.ID,
		Reason: "hub out of stock",
		Status: model.ExceptionStatusOpen,
	}
	require.NoError(t, f.exceptions.Create(ctx, exc))

	require.NoError(t, f.svc.ApproveCase(ctx, c.ID, "Ops Sam"))

	resolved, err := f.exceptions.Get(ctx, exc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExceptionStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
}

func TestTimelineAppendOnlyAccounting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	assessment, err := f.svc.CreateAssessment(ctx, &CreateAssessmentInput{
		ClientID:     client.ID,
		PerformedBy:  "Nurse Anna",
		Type:         model.AssessmentTypeInitial,
		RiskLevel:    model.RiskLevelMedium,
		NeedsSummary: "history of falls",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.timelineCount(t))

	require.NoError(t, f.svc.ApproveAssessment(ctx, assessment.ID, "Lead Nurse Bo",
		assessment.RecommendedDevices, assessment.RecommendedServices))
	assert.Equal(t, 1, f.timelineCount(t))

	plan, err := f.svc.CreateCarePlanFromAssessment(ctx, assessment.ID, "Lead Nurse Bo", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.timelineCount(t))

	c, err := f.svc.CreateCase(ctx, &CreateCaseInput{
		ClientID:    client.ID,
		CareOrgID:   client.CareOrgID,
		CarePlanID:  &plan.ID,
		RequestedBy: "Coordinator Kim",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.timelineCount(t))

	require.NoError(t, f.svc.ApproveCase(ctx, c.ID, "Ops Sam"))
	assert.Equal(t, 4, f.timelineCount(t))

	// Already-logged events keep their fields.
	events, err := f.svc.ListTimeline(ctx, &model.TimelineFilters{ClientID: client.ID})
	require.NoError(t, err)
	require.Len(t, events, 4)
	for _, e := range events {
		assert.Equal(t, client.ID, e.ClientID)
		assert.NotEmpty(t, e.Summary)
		assert.False(t, e.CreatedAt.IsZero())
	}
}

func TestNotifierCalledOncePerMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	var changes []event.Change
	f.notifier.Subscribe(func(c event.Change) {
		changes = append(changes, c)
	})

	assessment, err := f.svc.CreateAssessment(ctx, &CreateAssessmentInput{
		ClientID:    client.ID,
		PerformedBy: "Nurse Anna",
		Type:        model.AssessmentTypeInitial,
		RiskLevel:   model.RiskLevelLow,
		Notes:       "stable",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.ApproveAssessment(ctx, assessment.ID, "Lead Nurse Bo", nil, nil))

	require.Len(t, changes, 2)
	assert.Equal(t, "create", changes[0].Operation)
	assert.Equal(t, "approve", changes[1].Operation)
}

func TestEndToEndJanScenario(t *testing.T) {
	f := newFixture(t)
	f.withScheduler(t, 10*time.Millisecond)
	ctx := context.Background()

	jan := f.createClient(t, "Jan")

	assessment, err := f.svc.CreateAssessment(ctx, &CreateAssessmentInput{
		ClientID:     jan.ID,
		PerformedBy:  "Nurse Anna",
		Type:         model.AssessmentTypeInitial,
		RiskLevel:    model.RiskLevelHigh,
		NeedsSummary: "client lives alone, history of falls in bathroom",
	})
	require.NoError(t, err)

	require.NotNil(t, assessment.AIAnalysis)
	assert.Contains(t, assessment.AIAnalysis.SuggestedDevices, "Smart Hub")
	assert.Contains(t, assessment.AIAnalysis.SuggestedDevices, "Fall Sensor")
	assert.Contains(t, assessment.AIAnalysis.RiskFlags, "High Fall Risk")

	require.NoError(t, f.svc.ApproveAssessment(ctx, assessment.ID, "Lead Nurse Bo",
		[]string{"Smart Hub", "Fall Sensor"}, assessment.RecommendedServices))

	plan, err := f.svc.CreateCarePlanFromAssessment(ctx, assessment.ID, "Lead Nurse Bo", nil)
	require.NoError(t, err)
	assert.Equal(t, model.CarePlanStatusActive, plan.Status)
	assert.Equal(t, []string{"Smart Hub", "Fall Sensor"}, plan.AgreedDevices)

	c, err := f.svc.CreateCase(ctx, &CreateCaseInput{
		ClientID:    jan.ID,
		CareOrgID:   jan.CareOrgID,
		CarePlanID:  &plan.ID,
		RequestedBy: "Coordinator Kim",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusNew, c.Status)
	// Items derived from the plan's agreed lists.
	assert.NotEmpty(t, c.Items)

	// The ORDER event is logged synchronously.
	orders, err := f.svc.ListTimeline(ctx, &model.TimelineFilters{ClientID: jan.ID, Type: model.TimelineEventOrder})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	// The SYSTEM handover event arrives after the delay.
	assert.Eventually(t, func() bool {
		events, err := f.svc.ListTimeline(ctx, &model.TimelineFilters{ClientID: jan.ID, Type: model.TimelineEventSystem})
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	events, err := f.svc.ListTimeline(ctx, &model.TimelineFilters{ClientID: jan.ID, Type: model.TimelineEventSystem})
	require.NoError(t, err)
	assert.Equal(t, model.TimelineSourceAI, events[0].Source)
}

func TestAdvanceToClosedCancelsPendingHandover(t *testing.T) {
	f := newFixture(t)
	f.withScheduler(t, 50*time.Millisecond)
	ctx := context.Background()
	client := f.createClient(t, "Greta")

	c, err := f.svc.CreateCase(ctx, &CreateCaseInput{
		ClientID:    client.ID,
		CareOrgID:   client.CareOrgID,
		RequestedBy: "Coordinator Kim",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ApproveCase(ctx, c.ID, "Ops Sam"))
	require.NoError(t, f.svc.AdvanceCase(ctx, c.ID, model.CaseStatusClosed, "Ops Sam", ""))

	time.Sleep(120 * time.Millisecond)

	events, err := f.svc.ListTimeline(ctx, &model.TimelineFilters{ClientID: client.ID, Type: model.TimelineEventSystem})
	require.NoError(t, err)
	assert.Empty(t, events)
}
