// Package metrics provides Prometheus instrumentation for sqlflow components.
//
// # Overview
//
// The registry covers:
//   - Worker pools (size, active tasks, executed and failed tasks, durations)
//   - Resource scopes (started, failed by kind, duration, batch mode)
//   - Streams (rows produced and consumed, queue depth, producer failures)
//   - Scheduled jobs and sinks
//
// # Quick Start
//
//	exec, _ := scope.NewWithConfig(db, scope.Config{
//		Name:    "orders",
//		Metrics: metrics.DefaultConfig(),
//	})
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation, for example in tests:
//
//	reg := prometheus.NewRegistry()
//	cfg := metrics.Config{Enabled: true, Registry: reg}
//
// FromConfig returns the same Registry for every component configured with
// the same registerer. NewRegistry always registers a fresh set of
// collectors, so call it at most once per registerer.
//
// # Available Metrics
//
//   - sqlflow_workerpool_size, sqlflow_workerpool_active_workers
//   - sqlflow_workerpool_tasks_executed_total, sqlflow_workerpool_tasks_failed_total
//   - sqlflow_workerpool_task_duration_seconds
//   - sqlflow_scope_started_total, sqlflow_scope_failed_total{kind}
//   - sqlflow_scope_duration_seconds, sqlflow_scope_batch_operations_total{mode}
//   - sqlflow_stream_rows_produced_total, sqlflow_stream_rows_consumed_total
//   - sqlflow_stream_queue_depth, sqlflow_stream_producer_failures_total
//   - sqlflow_scheduler_jobs_run_total
//   - sqlflow_sink_rows_written_total
package metrics
