package handover

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/careloop/careops-api/pkg/logger"
)

func newTestScheduler(delay time.Duration, fire FireFunc) *TimerScheduler {
	return NewTimerScheduler(delay, fire, logger.NewLogger(nil), nil)
}

func TestTimerSchedulerFires(t *testing.T) {
	var mu sync.Mutex
	var fired []uuid.UUID

	s := newTestScheduler(5*time.Millisecond, func(_ context.Context, task Task) {
		mu.Lock()
		fired = append(fired, task.CaseID)
		mu.Unlock()
	})
	defer s.Shutdown()

	caseID := uuid.New()
	s.Schedule(Task{CaseID: caseID, ClientID: uuid.New(), CreatedAt: time.Now()})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1 && fired[0] == caseID
	}, time.Second, 5*time.Millisecond)
}

func TestTimerSchedulerCancel(t *testing.T) {
	var mu sync.Mutex
	count := 0

	s := newTestScheduler(20*time.Millisecond, func(context.Context, Task) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer s.Shutdown()

	caseID := uuid.New()
	s.Schedule(Task{CaseID: caseID, ClientID: uuid.New(), CreatedAt: time.Now()})
	s.Cancel(caseID)

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, count)
}

func TestTimerSchedulerRescheduleReplaces(t *testing.T) {
	var mu sync.Mutex
	count := 0

	s := newTestScheduler(10*time.Millisecond, func(context.Context, Task) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer s.Shutdown()

	caseID := uuid.New()
	task := Task{CaseID: caseID, ClientID: uuid.New(), CreatedAt: time.Now()}
	s.Schedule(task)
	s.Schedule(task)

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}
