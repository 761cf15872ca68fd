package runner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherSequential(t *testing.T) {
	d := NewDispatcher(3)

	for want := 0; want < 3; want++ {
		i, ok := d.Next()
		require.True(t, ok)
		assert.Equal(t, want, i)
	}

	_, ok := d.Next()
	assert.False(t, ok)
	assert.Equal(t, 3, d.Claimed())
}

func TestDispatcherEmpty(t *testing.T) {
	d := NewDispatcher(0)
	_, ok := d.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, d.Claimed())
}

func TestDispatcherConcurrentIndexUniqueness(t *testing.T) {
	const n = 10000
	const workers = 16

	d := NewDispatcher(n)
	claimed := make([][]int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for {
				i, ok := d.Next()
				if !ok {
					return
				}
				claimed[w] = append(claimed[w], i)
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[int]int, n)
	for _, indices := range claimed {
		for _, i := range indices {
			seen[i]++
		}
	}

	require.Len(t, seen, n, "every index claimed exactly once")
	for i := 0; i < n; i++ {
		assert.Equal(t, 1, seen[i], "index %d", i)
	}
}
