package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sqlflow"

// Registry holds all metric instances for sqlflow components.
type Registry struct {
	// Worker Pool Metrics
	WorkerPoolSize        *prometheus.GaugeVec
	WorkerPoolActive      *prometheus.GaugeVec
	TasksExecuted         *prometheus.CounterVec
	TasksFailed           *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec

	// Resource Scope Metrics
	ScopesStarted  *prometheus.CounterVec
	ScopesFailed   *prometheus.CounterVec
	ScopeDuration  *prometheus.HistogramVec
	BatchOperation *prometheus.CounterVec

	// Streaming Metrics
	RowsProduced     *prometheus.CounterVec
	RowsConsumed     *prometheus.CounterVec
	StreamQueueDepth *prometheus.GaugeVec
	ProducerFailures *prometheus.CounterVec

	// Scheduler Metrics
	JobsRun *prometheus.CounterVec

	// Sink Metrics
	SinkRowsWritten *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by sqlflow components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

var (
	registriesMu sync.Mutex
	registries   = map[prometheus.Registerer]*Registry{}
)

// FromConfig resolves the registry a component should report to. It returns
// nil when metrics are disabled. Components configured with the same
// registerer share one Registry.
func FromConfig(cfg Config) *Registry {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Registry == nil {
		return DefaultRegistry
	}

	registriesMu.Lock()
	defer registriesMu.Unlock()

	if r, ok := registries[cfg.Registry]; ok {
		return r
	}
	r := NewRegistry(cfg.Registry)
	registries[cfg.Registry] = r
	return r
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "size",
				Help:      "Configured worker count (0 for unbounded pools)",
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "active_workers",
				Help:      "Number of tasks currently executing",
			},
			[]string{"pool_name"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "tasks_executed_total",
				Help:      "Total number of tasks executed",
			},
			[]string{"pool_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "tasks_failed_total",
				Help:      "Total number of tasks that returned an error",
			},
			[]string{"pool_name"},
		),

		TaskExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		ScopesStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scope",
				Name:      "started_total",
				Help:      "Total number of resource scopes started",
			},
			[]string{"executor"},
		),

		ScopesFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scope",
				Name:      "failed_total",
				Help:      "Total number of resource scopes that failed, by failure kind",
			},
			[]string{"executor", "kind"},
		),

		ScopeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scope",
				Name:      "duration_seconds",
				Help:      "Time from connection acquisition to release",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"executor"},
		),

		BatchOperation: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scope",
				Name:      "batch_operations_total",
				Help:      "Operations executed through the batch protocol, by mode",
			},
			[]string{"executor", "mode"},
		),

		RowsProduced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "rows_produced_total",
				Help:      "Rows read from cursors and queued",
			},
			[]string{"stream_name"},
		),

		RowsConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "rows_consumed_total",
				Help:      "Rows handed to consumers",
			},
			[]string{"stream_name"},
		),

		StreamQueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "queue_depth",
				Help:      "Rows queued and not yet consumed",
			},
			[]string{"stream_name"},
		),

		ProducerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "producer_failures_total",
				Help:      "Producer failures surfaced to consumers",
			},
			[]string{"stream_name"},
		),

		JobsRun: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "jobs_run_total",
				Help:      "Scheduled jobs handed to the worker pool",
			},
			[]string{"scheduler_name"},
		),

		SinkRowsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sink",
				Name:      "rows_written_total",
				Help:      "Rows written to an external sink",
			},
			[]string{"sink_name"},
		),
	}
}
