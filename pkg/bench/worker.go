package bench

import "sync/atomic"

// Worker owns one Sketch and drives the measurement loop against its own
// OperationIterator until the iterator is exhausted or the shared
// cancellation flag is observed false. It does not own the Target or the
// cancellation flag.
type Worker struct {
	target Target
	iter   OperationIterator
	log    *verboseLogger

	isRunning *atomic.Bool
	sketch    *Sketch
	stopwatch Stopwatch

	sketchMoved bool
}

// NewWorker constructs a worker for threadID: it asks engine for an
// independent iterator seeded with randSeed, allocates a sketch sized to
// engine's TotalKinds, and calls target.SetupForWorker exactly once. log is
// this worker's own child logger, already tagged with its id, for trace
// points around (never inside) the timed measurement loop.
func NewWorker(target Target, engine OperationEngine, isRunning *atomic.Bool, threadID int, randSeed uint64, log *verboseLogger) *Worker {
	w := &Worker{
		target:    target,
		iter:      engine.GetIter(threadID, randSeed),
		log:       log,
		isRunning: isRunning,
		sketch:    NewSketch(engine.TotalKinds()),
		stopwatch: newStopwatch(),
	}
	w.target.SetupForWorker()
	w.log.Debug("worker ready")
	return w
}

// Close tears down the worker's per-thread resources in the Target. It must
// be called exactly once, after Measure has returned.
func (w *Worker) Close() {
	w.target.TeardownForWorker()
}

// Measure runs the sole measurement operation: consume operations from the
// iterator, time each Target.Execute call, and record the result into the
// worker's sketch, in exact operation order, until the iterator is
// exhausted or the cancellation flag goes false. The flag is checked before
// starting the stopwatch, so a cancellation never discards a partially
// timed sample — it simply means the sample is never started.
func (w *Worker) Measure() {
	w.log.Debug("worker measuring")
	for w.iter.HasMore() && w.isRunning.Load() {
		kind, op := w.iter.Current()

		w.stopwatch.Start()
		cnt := w.target.Execute(kind, op)
		w.stopwatch.Stop()

		w.sketch.Add(kind, cnt, w.stopwatch.ElapsedNs())
		w.iter.Advance()
	}
	w.log.Debug("worker done", "samples", w.sketch.TotalExecCount())
}

// MoveSketch surrenders ownership of the worker's sketch to the caller.
// Calling it a second time is a programming error: the sketch has already
// been handed off and must not be read or mutated again through this
// Worker.
func (w *Worker) MoveSketch() *Sketch {
	if w.sketchMoved {
		panic(&ProgrammingError{Msg: "worker.MoveSketch: sketch already moved"})
	}
	w.sketchMoved = true
	s := w.sketch
	w.sketch = nil
	return s
}
