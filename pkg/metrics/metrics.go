package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Lifecycle metrics
	LifecycleOperations *prometheus.CounterVec
	LifecycleErrors     *prometheus.CounterVec
	TimelineEvents      prometheus.Counter
	ActiveCarePlans     prometheus.Gauge

	// Handover metrics
	HandoversScheduled prometheus.Counter
	HandoversFired     prometheus.Counter
	HandoversCancelled prometheus.Counter
	HandoverLatency    prometheus.Histogram

	// Classifier metrics
	ClassifierRuns      prometheus.Counter
	ClassifierRiskFlags *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		LifecycleOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "lifecycle_operations_total",
			Help:      "Lifecycle operations by type and outcome",
		}, []string{"operation", "outcome"}),
		LifecycleErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "lifecycle_errors_total",
			Help:      "Lifecycle operation errors by code",
		}, []string{"operation", "code"}),
		TimelineEvents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "timeline_events_total",
			Help:      "Timeline events appended",
		}),
		ActiveCarePlans: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_care_plans",
			Help:      "Care plans currently in ACTIVE status",
		}),
		HandoversScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handovers_scheduled_total",
			Help:      "Deferred case handovers scheduled",
		}),
		HandoversFired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handovers_fired_total",
			Help:      "Deferred case handovers completed",
		}),
		HandoversCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handovers_cancelled_total",
			Help:      "Deferred case handovers cancelled before firing",
		}),
		HandoverLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handover_duration_seconds",
			Help:      "Time from case creation to handover completion",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		ClassifierRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "classifier_runs_total",
			Help:      "Intake classifier invocations",
		}),
		ClassifierRiskFlags: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "classifier_risk_flags_total",
			Help:      "Risk flags attached by the intake classifier",
		}, []string{"flag"}),
	}
}
