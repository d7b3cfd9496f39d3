// Package handover runs the deferred hand-off of newly created cases to the
// fulfillment side. The delay models an asynchronous downstream subsystem, so
// the task is a real scheduled job with cancellation, not a blocking sleep.
package handover

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/pkg/logger"
	"github.com/careloop/careops-api/pkg/metrics"
)

// Task identifies one pending hand-off.
type Task struct {
	CaseID    uuid.UUID
	ClientID  uuid.UUID
	CreatedAt time.Time
}

// FireFunc is invoked when a task's delay elapses.
type FireFunc func(ctx context.Context, task Task)

type Scheduler interface {
	Schedule(task Task)
	// Cancel drops the pending task for the case, if any. Safe to call for
	// cases with no pending task.
	Cancel(caseID uuid.UUID)
	Shutdown()
}

// TimerScheduler fires tasks from per-case timers. Each case has at most one
// pending task; scheduling again replaces the previous timer.
type TimerScheduler struct {
	delay   time.Duration
	fire    FireFunc
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

func NewTimerScheduler(delay time.Duration, fire FireFunc, log *logger.Logger, m *metrics.Metrics) *TimerScheduler {
	return &TimerScheduler{
		delay:   delay,
		fire:    fire,
		logger:  log,
		metrics: m,
		timers:  make(map[uuid.UUID]*time.Timer),
	}
}

func (s *TimerScheduler) Schedule(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[task.CaseID]; ok {
		prev.Stop()
	}
	s.timers[task.CaseID] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, task.CaseID)
		s.mu.Unlock()

		s.fire(context.Background(), task)
		if s.metrics != nil {
			s.metrics.HandoversFired.Inc()
			s.metrics.HandoverLatency.Observe(time.Since(task.CreatedAt).Seconds())
		}
	})
	if s.metrics != nil {
		s.metrics.HandoversScheduled.Inc()
	}
	s.logger.Debug("handover scheduled", "case_id", task.CaseID.String())
}

func (s *TimerScheduler) Cancel(caseID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[caseID]
	if !ok {
		return
	}
	if timer.Stop() {
		if s.metrics != nil {
			s.metrics.HandoversCancelled.Inc()
		}
	}
	delete(s.timers, caseID)
}

// Shutdown stops every pending timer. Tasks that already fired keep running.
func (s *TimerScheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
