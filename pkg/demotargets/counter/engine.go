package counter

import "github.com/runningwild/mtbench/pkg/bench"

// Engine generates a stream of no-payload Write operations. It is ported
// from the original implementation's SampleOperationEngine, which just
// repeats a constant operation n times; here n is either fixed (ExecNum >
// 0, useful for deterministic tests) or unbounded, relying on the Runner's
// timeout or cancellation flag to end the run (useful for throughput CLI
// runs).
type Engine struct {
	// ExecNum is the number of operations each worker's iterator yields
	// before exhausting. Zero means unbounded.
	ExecNum int
}

func (e *Engine) TotalKinds() bench.OpKind { return TotalKinds }

func (e *Engine) GetIter(threadID int, randSeed uint64) bench.OperationIterator {
	if e.ExecNum <= 0 {
		return &unboundedIter{}
	}
	return &boundedIter{remaining: e.ExecNum}
}

type unboundedIter struct{}

func (unboundedIter) HasMore() bool                          { return true }
func (unboundedIter) Current() (bench.OpKind, bench.Operation) { return Write, nil }
func (unboundedIter) Advance()                               {}

type boundedIter struct {
	remaining int
}

func (it *boundedIter) HasMore() bool { return it.remaining > 0 }
func (it *boundedIter) Current() (bench.OpKind, bench.Operation) {
	return Write, nil
}
func (it *boundedIter) Advance() { it.remaining-- }
