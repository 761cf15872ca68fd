package runner

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Observer receives completion notifications from a progress tracker.
// Notify may be called concurrently and must be safe for that; counts can
// arrive out of order under contention, but each count is delivered once.
type Observer interface {
	Notify(completed, total int64)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(completed, total int64)

// Notify implements Observer.
func (f ObserverFunc) Notify(completed, total int64) {
	f(completed, total)
}

// ProgressTracker is a monotonically increasing completion counter bounded
// by the task total. The observer is invoked after the atomic increment,
// outside any lock, so a slow sink never serializes workers.
type ProgressTracker struct {
	completed int64
	total     int64
	observer  Observer
}

// NewProgressTracker creates a tracker for total tasks. observer may be
// nil to disable notifications.
func NewProgressTracker(total int64, observer Observer) *ProgressTracker {
	return &ProgressTracker{total: total, observer: observer}
}

// Done records one task completion and notifies the observer with the new
// count. Safe for concurrent use; no increment is ever lost.
func (p *ProgressTracker) Done() int64 {
	n := atomic.AddInt64(&p.completed, 1)
	if p.observer != nil {
		p.observer.Notify(n, p.total)
	}
	return n
}

// Completed returns the current completion count.
func (p *ProgressTracker) Completed() int64 {
	return atomic.LoadInt64(&p.completed)
}

// Total returns the fixed task total.
func (p *ProgressTracker) Total() int64 {
	return p.total
}

// LogObserver logs completion counts through zap. With a positive every,
// only multiples of it and the final count are logged, keeping large
// batches from flooding the log.
type LogObserver struct {
	logger *zap.Logger
	every  int64
}

// NewLogObserver creates a logging observer. every <= 1 logs each task.
func NewLogObserver(logger *zap.Logger, every int64) *LogObserver {
	if every < 1 {
		every = 1
	}
	return &LogObserver{logger: logger, every: every}
}

// Notify implements Observer.
func (o *LogObserver) Notify(completed, total int64) {
	if completed%o.every != 0 && completed != total {
		return
	}
	o.logger.Info("progress",
		zap.Int64("completed", completed),
		zap.Int64("total", total),
		zap.Float64("percentage", float64(completed)/float64(total)*100))
}
