package routing

import "sync"

// CounterTable holds per-model round-robin counters. Counters are
// process-scoped and lossy by contract: they reset on restart and strict
// fairness under contention is not guaranteed. Approximate rotation is all
// the round-robin strategy needs.
type CounterTable struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewCounterTable creates an empty counter table.
func NewCounterTable() *CounterTable {
	return &CounterTable{counters: make(map[string]uint64)}
}

// Next returns the current counter for model modulo n and post-increments
// the counter. n must be positive.
func (t *CounterTable) Next(model string, n int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := t.counters[model]
	t.counters[model] = count + 1
	return int(count % uint64(n))
}

// Reset clears the counter for a model. Used by tests.
func (t *CounterTable) Reset(model string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.counters, model)
}
