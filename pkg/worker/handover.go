package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/careloop/careops-api/internal/handover"
	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	"github.com/careloop/careops-api/pkg/logger"
	"github.com/careloop/careops-api/pkg/messaging"
	"github.com/careloop/careops-api/pkg/metrics"
)

// HandoverTopic carries processed hand-offs for downstream consumers.
const HandoverTopic = "careops.handovers"

// Completer finishes a due hand-off: it appends the SYSTEM timeline event and
// skips cases that were closed before the delay elapsed.
type Completer interface {
	CompleteHandover(ctx context.Context, task handover.Task) error
}

type HandoverProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

func (c *HandoverProcessorConfig) validate() error {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 100 * time.Millisecond
	}
	return nil
}

// HandoverProcessor drains due hand-off tasks from storage. It is the
// multi-process counterpart to the in-process timer scheduler: tasks survive a
// restart because they live in the handover table, and a worker picks them up
// once DueAt passes.
type HandoverProcessor struct {
	tasks     repository.HandoverRepository
	completer Completer
	broker    messaging.Broker
	config    HandoverProcessorConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewHandoverProcessor(
	tasks repository.HandoverRepository,
	completer Completer,
	broker messaging.Broker,
	config HandoverProcessorConfig,
	logger *logger.Logger,
	m *metrics.Metrics,
) (*HandoverProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid handover processor config: %w", err)
	}
	return &HandoverProcessor{
		tasks:     tasks,
		completer: completer,
		broker:    broker,
		config:    config,
		logger:    logger,
		metrics:   m,
	}, nil
}

// Start polls until the context is cancelled.
func (p *HandoverProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("handover processor started",
		"poll_interval", p.config.PollInterval.String(),
		"batch_size", p.config.BatchSize)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("handover processor stopped")
			return
		case <-ticker.C:
			if err := p.processDue(ctx); err != nil {
				p.logger.Error(err, "failed to process due handovers")
			}
		}
	}
}

func (p *HandoverProcessor) processDue(ctx context.Context) error {
	due, err := p.tasks.GetPendingDue(ctx, time.Now().UTC(), p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch due handover tasks: %w", err)
	}

	for _, task := range due {
		if err := p.processTask(ctx, task); err != nil {
			p.logger.Error(err, "failed to process handover task",
				"task_id", task.ID.String(),
				"case_id", task.CaseID.String())

			msg := err.Error()
			if uerr := p.tasks.UpdateStatus(ctx, task.ID, model.HandoverStatusFailed, &msg); uerr != nil {
				p.logger.Error(uerr, "failed to mark handover task failed", "task_id", task.ID.String())
			}
			continue
		}

		if err := p.tasks.UpdateStatus(ctx, task.ID, model.HandoverStatusSent, nil); err != nil {
			p.logger.Error(err, "failed to mark handover task sent", "task_id", task.ID.String())
		}
		if p.metrics != nil {
			p.metrics.HandoversFired.Inc()
			p.metrics.HandoverLatency.Observe(time.Since(task.DueAt).Seconds())
		}
	}
	return nil
}

func (p *HandoverProcessor) processTask(ctx context.Context, task *model.HandoverTask) error {
	err := retry(p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.completer.CompleteHandover(ctx, handover.Task{
			CaseID:    task.CaseID,
			ClientID:  task.ClientID,
			CreatedAt: task.CreatedAt,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to complete handover: %w", err)
	}

	if p.broker == nil {
		return nil
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal handover task: %w", err)
	}
	err = retry(p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.broker.Publish(ctx, HandoverTopic, payload)
	})
	if err != nil {
		return fmt.Errorf("failed to publish handover: %w", err)
	}
	return nil
}

func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
