package diskio

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/runningwild/mtbench/pkg/bench"
)

// Engine generates a stream of aligned read/write offsets against a fixed
// file. ReadPct is the percentage (0-100) of operations that are reads; the
// rest are writes. Rand selects random-offset access over sequential
// round-robin access. ExecNum bounds each worker's iterator to a fixed
// number of operations; zero means unbounded, relying on the Runner's
// timeout or cancellation to end the run. SkewParameter biases random
// offsets toward the front of the file: 0 is uniform, larger values
// concentrate more operations on the low blocks, approximating the
// access skew of a Zipfian workload without the bookkeeping a true
// Zipfian generator needs.
type Engine struct {
	Path          string
	BlockSize     int
	ReadPct       int
	Rand          bool
	ExecNum       int
	SkewParameter float64

	maxBlocks int64
}

// Open stats Path and computes the number of BlockSize-aligned blocks it
// holds. It must be called once before the engine is handed to a Runner.
func (e *Engine) Open() error {
	if e.BlockSize <= 0 {
		return fmt.Errorf("diskio: invalid block size %d", e.BlockSize)
	}
	info, err := os.Stat(e.Path)
	if err != nil {
		return fmt.Errorf("diskio: %w", err)
	}
	e.maxBlocks = info.Size() / int64(e.BlockSize)
	if e.maxBlocks <= 0 {
		return fmt.Errorf("diskio: %s is too small for block size %d", e.Path, e.BlockSize)
	}
	return nil
}

func (e *Engine) TotalKinds() bench.OpKind { return TotalKinds }

func (e *Engine) GetIter(threadID int, randSeed uint64) bench.OperationIterator {
	it := &ioIterator{
		e:         e,
		r:         rand.New(rand.NewSource(int64(randSeed))),
		remaining: e.ExecNum,
		seq:       int64(threadID),
	}
	it.computeNext()
	return it
}

type ioIterator struct {
	e         *Engine
	r         *rand.Rand
	remaining int
	seq       int64

	kind bench.OpKind
	op   IOOp
}

func (it *ioIterator) HasMore() bool {
	if it.e.ExecNum > 0 {
		return it.remaining > 0
	}
	return true
}

// Current returns the (kind, operation) pair computed by the most recent
// computeNext call. It is stable across repeated calls; only Advance moves
// it forward, per the iterator contract.
func (it *ioIterator) Current() (bench.OpKind, bench.Operation) {
	return it.kind, it.op
}

func (it *ioIterator) Advance() {
	if it.e.ExecNum > 0 {
		it.remaining--
	}
	it.computeNext()
}

// computeNext rolls the next offset and read/write kind and caches them,
// so Current can be called any number of times without re-rolling.
func (it *ioIterator) computeNext() {
	var offset int64
	if it.e.Rand {
		offset = it.e.skewedBlock(it.r) * int64(it.e.BlockSize)
	} else {
		offset = (it.seq % it.e.maxBlocks) * int64(it.e.BlockSize)
		it.seq++
	}

	kind := Write
	if it.e.ReadPct > 0 && it.r.Intn(100) < it.e.ReadPct {
		kind = Read
	}
	it.kind = kind
	it.op = IOOp{Offset: offset}
}

// skewedBlock draws a block index in [0, maxBlocks) biased toward zero by
// SkewParameter: block = floor(maxBlocks * u^(1+skew)) for u uniform in
// [0,1). skew=0 reduces to a uniform draw.
func (e *Engine) skewedBlock(r *rand.Rand) int64 {
	if e.SkewParameter <= 0 {
		return r.Int63n(e.maxBlocks)
	}
	u := r.Float64()
	frac := math.Pow(u, 1+e.SkewParameter)
	block := int64(frac * float64(e.maxBlocks))
	if block >= e.maxBlocks {
		block = e.maxBlocks - 1
	}
	return block
}
