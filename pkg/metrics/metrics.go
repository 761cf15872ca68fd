// Package metrics provides Prometheus metrics for tabrun batch runs.
//
// Counters and histograms are registered once via promauto and shared by
// all runners in the process. Recording is safe for concurrent use.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksCompleted tracks finished tasks by status (success/failure).
	TasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabrun_tasks_completed_total",
			Help: "Total number of tasks that finished executing",
		},
		[]string{"status"},
	)

	// TaskDuration tracks the distribution of single-task execution times.
	// Buckets span sub-millisecond synthetic tasks up to long simulations.
	TaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "tabrun_task_duration_seconds",
			Help: "Task execution time in seconds",
			Buckets: []float64{
				0.0001, // 100μs - trivial tasks
				0.001,  // 1ms
				0.01,   // 10ms
				0.1,    // 100ms
				1,      // 1s
				10,     // 10s - long simulations
				60,     // 1m
				600,    // 10m - step-cap runs
			},
		},
	)

	// RowsAppended tracks rows added to column stores.
	RowsAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabrun_rows_appended_total",
			Help: "Total number of rows appended to result tables",
		},
	)

	// RunDuration tracks end-to-end batch run times by outcome.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabrun_run_duration_seconds",
			Help:    "End-to-end batch run time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 10, 7),
		},
		[]string{"status"},
	)

	// ActiveWorkers tracks currently running worker goroutines.
	ActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tabrun_active_workers",
			Help: "Number of worker goroutines currently executing tasks",
		},
	)
)

// ObserveTask records one finished task with its duration and outcome.
func ObserveTask(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	TasksCompleted.WithLabelValues(status).Inc()
	TaskDuration.Observe(d.Seconds())
}

// ObserveRun records one finished batch run with its duration and outcome.
func ObserveRun(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	RunDuration.WithLabelValues(status).Observe(d.Seconds())
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop stops the timer and returns the elapsed duration since creation.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
