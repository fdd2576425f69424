// Package counter is the harness's "hello world" plug-in: a single shared
// counter incremented either under a mutex or with an atomic add. It is
// ported from the original implementation's SampleTarget, which exists
// purely to exercise a Worker/Benchmarker pair in tests, and is what
// cmd/mtbench's -target=counter-mutex / -target=counter-atomic select.
package counter

import (
	"sync"
	"sync/atomic"

	"github.com/runningwild/mtbench/pkg/bench"
)

// Write is the counter target's only operation kind.
const (
	Write bench.OpKind = 0
	// TotalKinds is the sentinel kind count for Engine.
	TotalKinds bench.OpKind = 1
)

// MutexTarget increments a shared counter guarded by a sync.Mutex.
type MutexTarget struct {
	mu  sync.Mutex
	sum uint64
}

func NewMutexTarget() *MutexTarget { return &MutexTarget{} }

func (t *MutexTarget) SetupForWorker()    {}
func (t *MutexTarget) TeardownForWorker() {}
func (t *MutexTarget) PreProcess()        {}
func (t *MutexTarget) PostProcess()       {}

func (t *MutexTarget) Execute(kind bench.OpKind, op bench.Operation) uint64 {
	t.mu.Lock()
	t.sum++
	t.mu.Unlock()
	return 1
}

// Sum returns the current counter value. Not safe to call concurrently
// with Execute.
func (t *MutexTarget) Sum() uint64 { return t.sum }

// AtomicTarget increments a shared counter with atomic.Uint64.Add.
type AtomicTarget struct {
	sum atomic.Uint64
}

func NewAtomicTarget() *AtomicTarget { return &AtomicTarget{} }

func (t *AtomicTarget) SetupForWorker()    {}
func (t *AtomicTarget) TeardownForWorker() {}
func (t *AtomicTarget) PreProcess()        {}
func (t *AtomicTarget) PostProcess()       {}

func (t *AtomicTarget) Execute(kind bench.OpKind, op bench.Operation) uint64 {
	t.sum.Add(1)
	return 1
}

// Sum returns the current counter value.
func (t *AtomicTarget) Sum() uint64 { return t.sum.Load() }
