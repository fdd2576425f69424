// Package bench implements a multi-threaded micro-benchmark harness: a
// coordinated runner that drives N worker goroutines against a
// user-supplied Target and OperationEngine, times each invocation, and
// aggregates the results into a mergeable approximate-quantile sketch.
//
// Target and OperationEngine are plain Go interfaces, so the harness pays
// one interface call per operation rather than monomorphizing a Runner per
// target the way the original C++ implementation does with templates. That
// overhead is negligible for the latencies this harness is meant to
// measure (contended locks, atomics under contention, page structures —
// all well above a nanosecond) and buys a harness that can be built once
// and reused across many Target implementations without recompilation.
package bench
