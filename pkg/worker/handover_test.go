package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/careops-api/internal/handover"
	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository/memory"
	"github.com/careloop/careops-api/pkg/logger"
)

type recordingCompleter struct {
	mu    sync.Mutex
	tasks []handover.Task
	fail  int
}

func (c *recordingCompleter) CompleteHandover(_ context.Context, task handover.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail > 0 {
		c.fail--
		return errors.New("downstream unavailable")
	}
	c.tasks = append(c.tasks, task)
	return nil
}

func (c *recordingCompleter) completed() []handover.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]handover.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func newTestProcessor(t *testing.T, completer Completer) (*HandoverProcessor, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	p, err := NewHandoverProcessor(
		memory.NewHandoverRepository(store),
		completer,
		nil,
		HandoverProcessorConfig{RetryDelay: time.Millisecond},
		logger.NewLogger(nil),
		nil,
	)
	require.NoError(t, err)
	return p, store
}

func seedTask(t *testing.T, store *memory.Store, dueAt time.Time) *model.HandoverTask {
	t.Helper()
	task := &model.HandoverTask{
		ID:        uuid.New(),
		CaseID:    uuid.New(),
		ClientID:  uuid.New(),
		Status:    model.HandoverStatusPending,
		DueAt:     dueAt,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, memory.NewHandoverRepository(store).Create(context.Background(), task))
	return task
}

func TestHandoverProcessorCompletesDueTasks(t *testing.T) {
	completer := &recordingCompleter{}
	p, store := newTestProcessor(t, completer)
	ctx := context.Background()

	due := seedTask(t, store, time.Now().UTC().Add(-time.Second))
	notDue := seedTask(t, store, time.Now().UTC().Add(time.Hour))

	require.NoError(t, p.processDue(ctx))

	done := completer.completed()
	require.Len(t, done, 1)
	assert.Equal(t, due.CaseID, done[0].CaseID)

	remaining, err := p.tasks.GetPendingDue(ctx, time.Now().UTC().Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, notDue.ID, remaining[0].ID)
}

func TestHandoverProcessorRetriesTransientFailures(t *testing.T) {
	completer := &recordingCompleter{fail: 2}
	p, store := newTestProcessor(t, completer)
	ctx := context.Background()

	seedTask(t, store, time.Now().UTC().Add(-time.Second))

	require.NoError(t, p.processDue(ctx))
	assert.Len(t, completer.completed(), 1, "third attempt should succeed")
}

func TestHandoverProcessorMarksExhaustedTasksFailed(t *testing.T) {
	completer := &recordingCompleter{fail: 10}
	p, store := newTestProcessor(t, completer)
	ctx := context.Background()

	seedTask(t, store, time.Now().UTC().Add(-time.Second))

	require.NoError(t, p.processDue(ctx))
	assert.Empty(t, completer.completed())

	// Failed tasks are not re-claimed on the next pass.
	pending, err := p.tasks.GetPendingDue(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
