// Package task defines the unit of work executed by a batch run.
package task

import (
	"context"

	"github.com/tabrun/tabrun/pkg/record"
)

// Result is the opaque value a task produces. The runner never inspects
// it; interpretation is left to the row processor.
type Result interface{}

// Scorer is the optional result capability the default row processor
// relies on: a single scalar summarizing the outcome.
type Scorer interface {
	Score() float64
}

// Task is one independent unit of work. Execute must be self-contained:
// it receives no external mutable input and owns its result until the
// processor consumes it. Metadata describes the task's configuration and
// seeds the row built for it.
type Task interface {
	Execute(ctx context.Context) (Result, error)
	Metadata() *record.Record
}

// Func adapts a plain function into a Task with empty metadata.
type Func func(ctx context.Context) (Result, error)

// Execute implements Task.
func (f Func) Execute(ctx context.Context) (Result, error) {
	return f(ctx)
}

// Metadata implements Task.
func (f Func) Metadata() *record.Record {
	return record.New()
}
