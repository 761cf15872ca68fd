// Package tabrun executes batches of independent, variable-duration tasks
// across a worker pool and assembles the per-task results into a single
// schema-evolving columnar table.
//
// # Architecture
//
// The run pipeline is: task queue -> Dispatcher (claims indices) ->
// worker pool (executes and processes) -> ordered slot array ->
// TableBuilder -> ColumnStore -> Table.
//
// Three properties hold for every run:
//
// 1. Exactly-once scheduling: the Dispatcher hands each task index to
// exactly one worker, regardless of parallelism or interleaving.
//
// 2. Order preservation: records are written positionally into a
// pre-sized slot array, so output row order equals input task order even
// when workers finish out of order.
//
// 3. Schema evolution: records may contribute different fields and value
// types; the ColumnStore back-fills new columns with nulls, pads omitted
// fields, and widens a column's declared type when a conflicting value
// type appears.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/tabrun/tabrun/pkg/runner"
//	    "github.com/tabrun/tabrun/pkg/sim"
//	)
//
//	tasks := sim.Batch(sim.BatchConfig{
//	    Policies: []string{"cautious", "bold"},
//	    Episodes: 100,
//	    Horizon:  1000,
//	    Discount: 0.99,
//	    Seed:     1,
//	})
//
//	tbl, err := runner.Run(context.Background(), tasks, runner.Config{
//	    Parallelism: 8,
//	    Progress:    true,
//	})
//
// The returned Table exposes column names, per-column declared types and
// indexed access; pkg/export writes it to CSV, JSON lines or Arrow IPC.
package tabrun
