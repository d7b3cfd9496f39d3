package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/careloop/careops-api/internal/config"
	"github.com/careloop/careops-api/internal/handler"
	assessmentHandler "github.com/careloop/careops-api/internal/handler/assessment"
	careplanHandler "github.com/careloop/careops-api/internal/handler/careplan"
	clientHandler "github.com/careloop/careops-api/internal/handler/client"
	fleetHandler "github.com/careloop/careops-api/internal/handler/fleet"
	orderHandler "github.com/careloop/careops-api/internal/handler/order"
	timelineHandler "github.com/careloop/careops-api/internal/handler/timeline"
	"github.com/careloop/careops-api/internal/handover"
	"github.com/careloop/careops-api/internal/middleware"
	"github.com/careloop/careops-api/internal/repository"
	"github.com/careloop/careops-api/internal/repository/memory"
	"github.com/careloop/careops-api/internal/repository/postgres"
	"github.com/careloop/careops-api/internal/router"
	clientService "github.com/careloop/careops-api/internal/service/client"
	fleetService "github.com/careloop/careops-api/internal/service/fleet"
	"github.com/careloop/careops-api/internal/service/lifecycle"
	"github.com/careloop/careops-api/pkg/event"
	"github.com/careloop/careops-api/pkg/logger"
	"github.com/careloop/careops-api/pkg/messaging"
	memorybroker "github.com/careloop/careops-api/pkg/messaging/memory"
	redisbroker "github.com/careloop/careops-api/pkg/messaging/redis"
	"github.com/careloop/careops-api/pkg/metrics"
)

// repos groups the per-driver repository set.
type repos struct {
	orgs        repository.CareOrgRepository
	clients     repository.ClientRepository
	assessments repository.AssessmentRepository
	carePlans   repository.CarePlanRepository
	cases       repository.CaseRepository
	timeline    repository.TimelineRepository
	devices     repository.DeviceRepository
	jobs        repository.JobRepository
	exceptions  repository.ExceptionRepository
	handovers   repository.HandoverRepository
}

func buildRepos(cfg config.StorageConfig) (*repos, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		store := memory.NewStore()
		return &repos{
			orgs:        memory.NewCareOrgRepository(store),
			clients:     memory.NewClientRepository(store),
			assessments: memory.NewAssessmentRepository(store),
			carePlans:   memory.NewCarePlanRepository(store),
			cases:       memory.NewCaseRepository(store),
			timeline:    memory.NewTimelineRepository(store),
			devices:     memory.NewDeviceRepository(store),
			jobs:        memory.NewJobRepository(store),
			exceptions:  memory.NewExceptionRepository(store),
			handovers:   memory.NewHandoverRepository(store),
		}, func() {}, nil
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &repos{
			orgs:        postgres.NewCareOrgRepository(db),
			clients:     postgres.NewClientRepository(db),
			assessments: postgres.NewAssessmentRepository(db),
			carePlans:   postgres.NewCarePlanRepository(db),
			cases:       postgres.NewCaseRepository(db),
			timeline:    postgres.NewTimelineRepository(db),
			devices:     postgres.NewDeviceRepository(db),
			jobs:        postgres.NewJobRepository(db),
			exceptions:  postgres.NewExceptionRepository(db),
			handovers:   postgres.NewHandoverRepository(db),
		}, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	r, closeRepos, err := buildRepos(cfg.Storage)
	if err != nil {
		log.Fatal(err, "failed to initialize storage")
	}
	defer closeRepos()

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

	notifier := event.NewNotifier()
	event.NewBrokerBridge(broker, log).Attach(notifier)

	m := metrics.NewMetrics("careops", "api")

	clientSvc := clientService.NewService(r.orgs, r.clients, notifier)
	fleetSvc := fleetService.NewService(r.devices, r.jobs, r.exceptions, r.cases, notifier)

	lifecycleSvc := lifecycle.NewService(lifecycle.Deps{
		Clients:       r.clients,
		Assessments:   r.assessments,
		CarePlans:     r.carePlans,
		Cases:         r.cases,
		Timeline:      r.timeline,
		Exceptions:    r.exceptions,
		Handovers:     r.handovers,
		HandoverDelay: cfg.Handover.Delay,
		Notifier:      notifier,
		Logger:        log,
		Metrics:       m,
	})

	// The API process completes handovers in-process; the timer fires the
	// service's own callback after the configured delay.
	scheduler := handover.NewTimerScheduler(cfg.Handover.Delay, func(ctx context.Context, task handover.Task) {
		if err := lifecycleSvc.CompleteHandover(ctx, task); err != nil {
			log.Error(err, "handover failed", "case_id", task.CaseID.String())
		}
	}, log, m)
	lifecycleSvc.SetScheduler(scheduler)
	defer scheduler.Shutdown()

	h := handler.NewHandler()
	rt := router.NewRouter(
		clientHandler.NewHandler(clientSvc),
		assessmentHandler.NewHandler(lifecycleSvc),
		careplanHandler.NewHandler(lifecycleSvc),
		orderHandler.NewHandler(lifecycleSvc),
		timelineHandler.NewHandler(lifecycleSvc),
		fleetHandler.NewHandler(fleetSvc),
		h,
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       middleware.DefaultCORSConfig(),
			CacheConfig:      middleware.DefaultCacheConfig(),
			MetricsPrefix:    "careops_api",
		},
	)
	rt.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        rt.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
