package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careloop/careops-api/internal/config"
	"github.com/careloop/careops-api/internal/repository/postgres"
	"github.com/careloop/careops-api/internal/service/lifecycle"
	"github.com/careloop/careops-api/pkg/event"
	"github.com/careloop/careops-api/pkg/logger"
	"github.com/careloop/careops-api/pkg/messaging"
	memorybroker "github.com/careloop/careops-api/pkg/messaging/memory"
	redisbroker "github.com/careloop/careops-api/pkg/messaging/redis"
	"github.com/careloop/careops-api/pkg/metrics"
	"github.com/careloop/careops-api/pkg/worker"
)

// The worker drains due handover tasks from the shared database. It exists
// for multi-process deployments where the API's in-process timers are not
// durable enough: tasks written to storage survive an API restart.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.Driver != "postgres" {
		fmt.Fprintln(os.Stderr, "the handover worker requires the postgres storage driver")
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Storage.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redisbroker.NewRedisBroker(cfg.Redis.ToBrokerConfig(), log.Zerolog())
		if err != nil {
			log.Fatal(err, "failed to connect to Redis")
		}
	} else {
		broker = memorybroker.NewMemoryBroker()
	}
	defer broker.Close()

	m := metrics.NewMetrics("careops", "worker")

	// No scheduler here: the worker is the delivery path, so the service only
	// needs enough wiring to append the handover event.
	lifecycleSvc := lifecycle.NewService(lifecycle.Deps{
		Clients:       postgres.NewClientRepository(db),
		Assessments:   postgres.NewAssessmentRepository(db),
		CarePlans:     postgres.NewCarePlanRepository(db),
		Cases:         postgres.NewCaseRepository(db),
		Timeline:      postgres.NewTimelineRepository(db),
		Exceptions:    postgres.NewExceptionRepository(db),
		Handovers:     postgres.NewHandoverRepository(db),
		HandoverDelay: cfg.Handover.Delay,
		Notifier:      event.NewNotifier(),
		Logger:        log,
		Metrics:       m,
	})

	processor, err := worker.NewHandoverProcessor(
		postgres.NewHandoverRepository(db),
		lifecycleSvc,
		broker,
		cfg.Handover.ToProcessorConfig(),
		log,
		m,
	)
	if err != nil {
		log.Fatal(err, "failed to initialize handover processor")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go processor.Start(ctx)

	// Health and metrics endpoint for the worker process.
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})
	engine.GET("/health/metrics", func(c *gin.Context) {
		promhttp.Handler().ServeHTTP(c.Writer, c.Request)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port+1),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start worker health server")
		}
	}()

	log.Info("handover worker started", "poll_interval", cfg.Handover.PollInterval.String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down worker")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "worker health server forced to shutdown")
	}

	log.Info("worker exited properly")
}
