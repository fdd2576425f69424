package bench

import "sync/atomic"

// fixedStopwatch always reports the same elapsed duration, for
// deterministic latency-based assertions (spec scenario 1: "the stopwatch
// is mocked to always yield 100 ns").
type fixedStopwatch struct {
	ns uint64
}

func (f *fixedStopwatch) Start()          {}
func (f *fixedStopwatch) Stop()           {}
func (f *fixedStopwatch) ElapsedNs() uint64 { return f.ns }

// countingTarget executes by incrementing a shared atomic counter and
// returning 1. It is safe for concurrent use, as the Target contract
// requires.
type countingTarget struct {
	setupCalls    atomic.Int64
	teardownCalls atomic.Int64
	execCalls     atomic.Int64
}

func (t *countingTarget) SetupForWorker()    { t.setupCalls.Add(1) }
func (t *countingTarget) TeardownForWorker() { t.teardownCalls.Add(1) }
func (t *countingTarget) PreProcess()        {}
func (t *countingTarget) PostProcess()       {}
func (t *countingTarget) Execute(kind OpKind, op Operation) uint64 {
	t.execCalls.Add(1)
	return 1
}

// fixedLenIterator yields n operations of a single kind, then reports
// exhaustion.
type fixedLenIterator struct {
	kind OpKind
	n    int
	i    int
}

func (it *fixedLenIterator) HasMore() bool { return it.i < it.n }
func (it *fixedLenIterator) Current() (OpKind, Operation) {
	return it.kind, nil
}
func (it *fixedLenIterator) Advance() { it.i++ }

// fixedLenEngine hands every worker an independent fixedLenIterator of the
// same length, all of kind 0, whatever totalKinds the sketch is sized for.
type fixedLenEngine struct {
	opsPerWorker int
	totalKinds   OpKind
}

func (e *fixedLenEngine) TotalKinds() OpKind { return e.totalKinds }
func (e *fixedLenEngine) GetIter(threadID int, randSeed uint64) OperationIterator {
	return &fixedLenIterator{n: e.opsPerWorker}
}

// neverEndingIterator never exhausts; only cancellation ends a worker
// driven by it.
type neverEndingIterator struct{}

func (neverEndingIterator) HasMore() bool            { return true }
func (neverEndingIterator) Current() (OpKind, Operation) { return 0, nil }
func (neverEndingIterator) Advance()                 {}

type neverEndingEngine struct{}

func (neverEndingEngine) TotalKinds() OpKind { return 1 }
func (neverEndingEngine) GetIter(threadID int, randSeed uint64) OperationIterator {
	return neverEndingIterator{}
}

// panicOnceTarget panics on its first SetupForWorker call, simulating a
// construction-time fault in one worker while the others proceed normally.
type panicOnceTarget struct {
	panicked atomic.Bool
}

func (t *panicOnceTarget) SetupForWorker() {
	if !t.panicked.Swap(true) {
		panic("setup fault")
	}
}
func (t *panicOnceTarget) TeardownForWorker()                         {}
func (t *panicOnceTarget) PreProcess()                                {}
func (t *panicOnceTarget) PostProcess()                               {}
func (t *panicOnceTarget) Execute(kind OpKind, op Operation) uint64 { return 1 }

// panicOnExecuteTarget panics on its first Execute call, simulating a fault
// during measurement rather than setup.
type panicOnExecuteTarget struct {
	panicked atomic.Bool
}

func (t *panicOnExecuteTarget) SetupForWorker()    {}
func (t *panicOnExecuteTarget) TeardownForWorker() {}
func (t *panicOnExecuteTarget) PreProcess()        {}
func (t *panicOnExecuteTarget) PostProcess()       {}
func (t *panicOnExecuteTarget) Execute(kind OpKind, op Operation) uint64 {
	if !t.panicked.Swap(true) {
		panic("execute fault")
	}
	return 1
}
