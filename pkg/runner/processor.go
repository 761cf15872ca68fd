package runner

import (
	"github.com/tabrun/tabrun/pkg/errors"
	"github.com/tabrun/tabrun/pkg/record"
	"github.com/tabrun/tabrun/pkg/task"
)

// RowProcessor turns a finished task and its result into the flat record
// that becomes one table row. The runner treats it as a black box; errors
// it returns are task failures.
type RowProcessor func(t task.Task, res task.Result) (*record.Record, error)

// ScoreField is the outcome column written by the default processor.
const ScoreField = "score"

// DefaultProcessor merges the task's metadata with a single scalar
// outcome field. Results exposing Score() float64 use that; bare numeric
// results are stored as-is; a nil result yields a null outcome.
func DefaultProcessor(t task.Task, res task.Result) (*record.Record, error) {
	rec := record.Get()
	for _, f := range t.Metadata().Fields() {
		rec.Set(f.Name, f.Value)
	}

	switch v := res.(type) {
	case nil:
		rec.Set(ScoreField, nil)
	case task.Scorer:
		rec.Set(ScoreField, v.Score())
	case float64:
		rec.Set(ScoreField, v)
	case float32:
		rec.Set(ScoreField, float64(v))
	case int:
		rec.Set(ScoreField, int64(v))
	case int64:
		rec.Set(ScoreField, v)
	default:
		rec.Release()
		return nil, errors.Newf(errors.ErrorTypeData,
			"result of type %T exposes no scalar outcome", res)
	}

	return rec, nil
}
