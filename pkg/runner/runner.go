// Package runner executes a batch of independent tasks across a worker
// pool and assembles the per-task records into a columnar table.
//
// Scheduling is index-pull: workers repeatedly claim the next task index
// from a shared dispatcher, so slow tasks never leave peers idle behind a
// static partition. Each record is written positionally into a pre-sized
// slot array at the task's original index, which keeps output row order
// equal to input order no matter which worker finishes first.
package runner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tabrun/tabrun/pkg/columnar"
	"github.com/tabrun/tabrun/pkg/errors"
	"github.com/tabrun/tabrun/pkg/logger"
	"github.com/tabrun/tabrun/pkg/metrics"
	"github.com/tabrun/tabrun/pkg/record"
	"github.com/tabrun/tabrun/pkg/task"
)

// Config controls a batch run. Zero values select the defaults.
type Config struct {
	// Parallelism is the number of concurrent workers; 1 runs serially.
	Parallelism int
	// Progress enables completion notifications (default on via New).
	Progress bool
	// ProgressEvery thins progress logging to every Nth task.
	ProgressEvery int64
	// Process converts (task, result) into a row; nil uses DefaultProcessor.
	Process RowProcessor
	// Observer overrides the default zap progress sink.
	Observer Observer
	// Logger for run lifecycle events; nil uses the global logger.
	Logger *zap.Logger
}

// DefaultConfig returns the standard single-worker configuration with
// progress enabled.
func DefaultConfig() Config {
	return Config{
		Parallelism: 1,
		Progress:    true,
	}
}

// Runner drives batch execution.
type Runner struct {
	cfg Config
}

// New creates a runner, filling config defaults.
func New(cfg Config) *Runner {
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	if cfg.Process == nil {
		cfg.Process = DefaultProcessor
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}
	if cfg.Observer == nil && cfg.Progress {
		cfg.Observer = NewLogObserver(cfg.Logger, cfg.ProgressEvery)
	}
	return &Runner{cfg: cfg}
}

// Run executes every task and returns the assembled table, whose row i
// corresponds to tasks[i]. The first task or processor failure aborts the
// run: remaining workers stop claiming work, no table is returned, and
// the error identifies the failing task index. Workers also stop claiming
// once ctx is done.
func (r *Runner) Run(ctx context.Context, tasks []task.Task) (*columnar.Table, error) {
	start := time.Now()
	tbl, err := r.run(ctx, tasks)
	metrics.ObserveRun(time.Since(start), err)

	if err != nil {
		r.cfg.Logger.Error("batch run failed",
			zap.Int("tasks", len(tasks)),
			zap.Int("failed_task", errors.TaskIndex(err)),
			zap.Error(err))
		return nil, err
	}

	r.cfg.Logger.Info("batch run complete",
		zap.Int("tasks", len(tasks)),
		zap.Int("parallelism", r.cfg.Parallelism),
		zap.Duration("elapsed", time.Since(start)))
	return tbl, nil
}

func (r *Runner) run(ctx context.Context, tasks []task.Task) (*columnar.Table, error) {
	n := len(tasks)
	slots := make([]*record.Record, n)
	tracker := NewProgressTracker(int64(n), r.cfg.Observer)

	var err error
	if r.cfg.Parallelism == 1 {
		err = r.runSerial(ctx, tasks, slots, tracker)
	} else {
		err = r.runParallel(ctx, tasks, slots, tracker)
	}
	if err != nil {
		return nil, err
	}

	return NewTableBuilder().Build(slots)
}

func (r *Runner) runSerial(ctx context.Context, tasks []task.Task, slots []*record.Record, tracker *ProgressTracker) error {
	for i, t := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.executeOne(ctx, t, i)
		if err != nil {
			return err
		}
		slots[i] = rec
		tracker.Done()
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, tasks []task.Task, slots []*record.Record, tracker *ProgressTracker) error {
	dispatcher := NewDispatcher(len(tasks))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		aborted  = make(chan struct{})
	)

	abort := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			close(aborted)
		})
	}

	for w := 0; w < r.cfg.Parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.ActiveWorkers.Inc()
			defer metrics.ActiveWorkers.Dec()

			for {
				select {
				case <-aborted:
					return
				case <-ctx.Done():
					abort(ctx.Err())
					return
				default:
				}

				i, ok := dispatcher.Next()
				if !ok {
					return
				}

				rec, err := r.executeOne(ctx, tasks[i], i)
				if err != nil {
					abort(err)
					return
				}

				// Slot writes are at disjoint indices; the WaitGroup join
				// publishes them before the table build reads them.
				slots[i] = rec
				tracker.Done()
			}
		}()
	}

	wg.Wait()
	return firstErr
}

func (r *Runner) executeOne(ctx context.Context, t task.Task, index int) (*record.Record, error) {
	timer := metrics.NewTimer("task")
	res, err := t.Execute(ctx)
	metrics.ObserveTask(timer.Stop(), err)
	if err != nil {
		return nil, errors.WrapTask(err, index)
	}

	rec, err := r.cfg.Process(t, res)
	if err != nil {
		return nil, errors.WrapTask(err, index)
	}
	return rec, nil
}

// Run executes tasks with the given configuration in one call.
func Run(ctx context.Context, tasks []task.Task, cfg Config) (*columnar.Table, error) {
	return New(cfg).Run(ctx, tasks)
}
