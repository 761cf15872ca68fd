package runner

import (
	"sync/atomic"
)

// Dispatcher hands out task indices from a shared cursor, each exactly
// once, to any number of concurrent workers. Exhaustion is the normal
// termination signal, not an error.
type Dispatcher struct {
	cursor int64
	total  int64
}

// NewDispatcher creates a dispatcher over indices [0, n).
func NewDispatcher(n int) *Dispatcher {
	return &Dispatcher{total: int64(n)}
}

// Next claims the next unclaimed index. The second return value is false
// once all indices have been handed out.
func (d *Dispatcher) Next() (int, bool) {
	i := atomic.AddInt64(&d.cursor, 1) - 1
	if i >= d.total {
		return 0, false
	}
	return int(i), true
}

// Claimed returns how many indices have been handed out so far, capped
// at the total.
func (d *Dispatcher) Claimed() int {
	c := atomic.LoadInt64(&d.cursor)
	if c > d.total {
		c = d.total
	}
	return int(c)
}
