package service

import (
	"sync"
	"sync/atomic"
)

// ActiveGeneration is the runtime pointer to the generation whose
// partitions serve lookups. Zero means no generation is active.
//
// Writers into the active partitions pin the generation for the duration of
// the write; Store waits for pinned writes, so nothing lands in a partition
// after its generation was replaced.
type ActiveGeneration struct {
	v  atomic.Int64
	mu sync.RWMutex
}

func (a *ActiveGeneration) Load() int64 {
	return a.v.Load()
}

// Pin returns the active generation and holds it until release is called.
func (a *ActiveGeneration) Pin() (generation int64, release func()) {
	a.mu.RLock()
	return a.v.Load(), a.mu.RUnlock
}

func (a *ActiveGeneration) Store(generation int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.v.Store(generation)
}
