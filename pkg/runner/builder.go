package runner

import (
	"github.com/tabrun/tabrun/pkg/columnar"
	"github.com/tabrun/tabrun/pkg/errors"
	"github.com/tabrun/tabrun/pkg/metrics"
	"github.com/tabrun/tabrun/pkg/record"
)

// TableBuilder feeds an ordered slot array into a column store. Building
// happens strictly after the worker join, single-threaded, so row i of
// the output always corresponds to task i.
type TableBuilder struct {
	store *columnar.ColumnStore
}

// NewTableBuilder creates a builder with a fresh column store.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{store: columnar.NewColumnStore()}
}

// Build appends each slot in index order and returns the finished table.
// Records are released back to the shared pool as they are consumed.
func (b *TableBuilder) Build(slots []*record.Record) (*columnar.Table, error) {
	for i, rec := range slots {
		if rec == nil {
			return nil, errors.Newf(errors.ErrorTypeInternal, "slot %d was never filled", i)
		}
		if err := b.store.AppendRow(rec); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "building table")
		}
		metrics.RowsAppended.Inc()
		rec.Release()
		slots[i] = nil
	}
	return columnar.NewTable(b.store), nil
}
