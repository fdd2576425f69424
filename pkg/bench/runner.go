package bench

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// RunnerState names the points in the Runner's state machine, exposed only
// for diagnostics (the verbose log trace); callers never drive it directly.
type RunnerState string

const (
	StateIdle      RunnerState = "idle"
	StateSpawning  RunnerState = "spawning"
	StatePreparing RunnerState = "preparing"
	StateRunning   RunnerState = "running"
	StateDraining  RunnerState = "draining"
	StateReporting RunnerState = "reporting"
)

// Runner builds workers, spawns their goroutines, synchronizes a common
// start instant, enforces the configured timeout, and aggregates their
// sketches into a RunResult (PrintResult formats it). Target and OperationEngine are
// borrowed for the entire run and must outlive it.
type Runner struct {
	target Target
	engine OperationEngine
	cfg    RunConfig
	log    *verboseLogger

	state atomic.Value // RunnerState
}

// NewRunner constructs a Runner over target and engine using cfg. cfg is
// validated lazily, on the first call to Run.
func NewRunner(target Target, engine OperationEngine, cfg RunConfig) *Runner {
	r := &Runner{target: target, engine: engine, cfg: cfg, log: newVerboseLogger(cfg.Verbose)}
	r.setState(StateIdle)
	return r
}

func (r *Runner) setState(s RunnerState) {
	r.state.Store(s)
	r.log.Debug("runner state transition", "state", string(s))
}

// State returns the Runner's current state-machine position.
func (r *Runner) State() RunnerState {
	if v, ok := r.state.Load().(RunnerState); ok {
		return v
	}
	return StateIdle
}

// RunResult is everything the Runner learned from one completed run: the
// merged sketch plus enough bookkeeping to print either output mode.
type RunResult struct {
	Sketch      *Sketch
	ThreadCount int
	// Span is the wall-clock time between the earliest worker start (each
	// worker stamps its start once it observes the release) and the latest
	// worker finish. It is
	// not used by the throughput formula in §6 (which divides by
	// ThreadCount instead, per spec), but is exposed for callers who want
	// the more accurate denominator discussed as an open question.
	Span time.Duration
	// TimedOut reports whether the run ended because the configured
	// timeout elapsed rather than because every worker exhausted its
	// iterator. A timeout is not a failure.
	TimedOut bool
}

type workerOutcome struct {
	sketch *Sketch
	err    error
}

// Run executes one complete measurement: Spawning workers, Preparing
// (barrier on readiness), Running (release and measure), Draining
// (collect futures, enforcing the timeout), and Reporting (merge and
// return). A worker fault aborts the run and is returned as an error; a
// timeout is not an error and is reported via RunResult.TimedOut with
// whatever partial sketch was collected.
func (r *Runner) Run() (*RunResult, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	threadCount := r.cfg.ThreadNum

	var isRunning atomic.Bool
	isRunning.Store(true)
	var released atomic.Bool

	seeds, err := r.perWorkerSeeds(threadCount)
	if err != nil {
		return nil, err
	}

	outcomes := make([]chan workerOutcome, threadCount)
	for i := range outcomes {
		outcomes[i] = make(chan workerOutcome, 1)
	}
	// setupResult carries exactly one value per worker: nil once its
	// NewWorker call succeeds, or a *WorkerFault if construction panicked.
	// A worker that never reports in would hang this barrier forever, so
	// runWorker guarantees the report from a defer that runs on every exit
	// path, panic included.
	setupResult := make(chan error, threadCount)

	var timesMu sync.Mutex
	starts := make([]time.Time, threadCount)
	ends := make([]time.Time, threadCount)

	r.setState(StateSpawning)
	for i := 0; i < threadCount; i++ {
		go r.runWorker(i, seeds[i], &isRunning, &released, setupResult, outcomes[i], &timesMu, starts, ends)
	}

	r.setState(StatePreparing)
	ready := 0
	var setupFault error
	for ready < threadCount {
		if res := <-setupResult; res != nil {
			setupFault = res
			break
		}
		ready++
	}
	if setupFault != nil {
		// At least one worker never made it past construction. Release the
		// rest so none of them spin forever waiting for a start signal that
		// is never coming, let the already-false-reading Measure loops exit
		// immediately, then drain every outcome before surfacing the fault.
		isRunning.Store(false)
		released.Store(true)
		r.setState(StateDraining)
		for i := 0; i < threadCount; i++ {
			<-outcomes[i]
		}
		return nil, setupFault
	}

	deadline := time.Now().Add(r.cfg.Timeout)
	r.setState(StateRunning)
	released.Store(true)

	r.setState(StateDraining)
	sketches := make([]*Sketch, threadCount)
	var fault error
	timedOut := false
	pastDeadline := false
	for i := 0; i < threadCount; i++ {
		var oc workerOutcome
		if !pastDeadline {
			select {
			case oc = <-outcomes[i]:
			case <-time.After(time.Until(deadline)):
				isRunning.Store(false)
				pastDeadline = true
				timedOut = true
				oc = <-outcomes[i]
			}
		} else {
			oc = <-outcomes[i]
		}
		if oc.err != nil && fault == nil {
			fault = oc.err
			isRunning.Store(false)
		}
		sketches[i] = oc.sketch
	}

	if fault != nil {
		return nil, fault
	}

	r.setState(StateReporting)
	agg := sketches[0]
	for _, s := range sketches[1:] {
		if s == nil {
			continue
		}
		if err := agg.Merge(s); err != nil {
			return nil, err
		}
	}

	span := computeSpan(starts, ends)
	r.setState(StateIdle)
	return &RunResult{Sketch: agg, ThreadCount: threadCount, Span: span, TimedOut: timedOut}, nil
}

func (r *Runner) runWorker(
	id int,
	seed uint64,
	isRunning *atomic.Bool,
	released *atomic.Bool,
	setupResult chan<- error,
	out chan<- workerOutcome,
	timesMu *sync.Mutex,
	starts, ends []time.Time,
) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	setupReported := false
	defer func() {
		if rec := recover(); rec != nil {
			fault := &WorkerFault{ThreadID: id, Cause: rec}
			// Stop every other worker now, so the controller's in-order drain
			// is not left waiting on a worker that would otherwise run until
			// the deadline.
			isRunning.Store(false)
			if !setupReported {
				setupResult <- fault
			}
			out <- workerOutcome{err: fault}
		}
	}()

	w := NewWorker(r.target, r.engine, isRunning, id, seed, r.log.With("worker", id))
	defer w.Close()
	setupReported = true
	setupResult <- nil

	for !released.Load() {
		runtime.Gosched()
	}

	timesMu.Lock()
	starts[id] = time.Now()
	timesMu.Unlock()

	w.Measure()

	timesMu.Lock()
	ends[id] = time.Now()
	timesMu.Unlock()

	out <- workerOutcome{sketch: w.MoveSketch()}
}

func computeSpan(starts, ends []time.Time) time.Duration {
	var minStart, maxEnd time.Time
	for i := range starts {
		if starts[i].IsZero() {
			continue
		}
		if minStart.IsZero() || starts[i].Before(minStart) {
			minStart = starts[i]
		}
		if ends[i].After(maxEnd) {
			maxEnd = ends[i]
		}
	}
	if minStart.IsZero() || maxEnd.IsZero() {
		return 0
	}
	return maxEnd.Sub(minStart)
}

// perWorkerSeeds draws thread_count sequential seeds from a single root
// generator seeded by cfg.RandomSeedStr (or OS entropy if empty), so a given
// random_seed yields reproducible per-thread seeds regardless of how the
// scheduler interleaves worker goroutines.
func (r *Runner) perWorkerSeeds(threadCount int) ([]uint64, error) {
	root, err := r.rootSeed()
	if err != nil {
		return nil, err
	}
	src := mrand.New(mrand.NewSource(int64(root)))
	seeds := make([]uint64, threadCount)
	for i := range seeds {
		seeds[i] = src.Uint64()
	}
	return seeds, nil
}

func (r *Runner) rootSeed() (uint64, error) {
	if r.cfg.RandomSeedStr == "" {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("seeding from OS entropy: %w", err)
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	}
	seed, err := parseSeed(r.cfg.RandomSeedStr)
	if err != nil {
		return 0, &ConfigurationError{Flag: "random-seed", Msg: err.Error()}
	}
	return seed, nil
}
