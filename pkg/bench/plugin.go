package bench

// Operation is an opaque, value-semantic payload whose shape is defined by
// the plugged-in OperationEngine. Workers hold it briefly and discard it.
type Operation any

// Target is the benchmark subject: a concurrent data structure, lock, or
// atomic primitive. The harness calls Execute on many goroutines
// concurrently against the same Target value; thread-safety of Execute is
// the Target's responsibility. SetupForWorker/TeardownForWorker run once
// per worker goroutine; PreProcess/PostProcess are reserved hooks a Target
// may leave as no-ops.
type Target interface {
	SetupForWorker()
	TeardownForWorker()
	PreProcess()
	PostProcess()
	// Execute performs one logical step of kind against op and returns the
	// number of logical operations actually performed (at least 1; a
	// retrying or batching Target may self-report more).
	Execute(kind OpKind, op Operation) uint64
}

// OperationIterator is a lazy, finite, non-restartable, single-threaded
// sequence of (kind, operation) pairs handed to exactly one worker.
// Exhaustion (HasMore returning false) is the normal way a worker's
// measurement loop ends.
type OperationIterator interface {
	HasMore() bool
	Current() (OpKind, Operation)
	Advance()
}

// OperationEngine supplies one independent OperationIterator per worker
// thread. GetIter must be safe to call concurrently from multiple workers;
// the iterators it returns need not be.
type OperationEngine interface {
	// TotalKinds is the sentinel count of distinct OpKind values this
	// engine produces; every OpKind yielded by an iterator must be strictly
	// less than it.
	TotalKinds() OpKind
	GetIter(threadID int, randSeed uint64) OperationIterator
}
