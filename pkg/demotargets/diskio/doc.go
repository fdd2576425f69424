// Package diskio is a disk I/O demo plug-in: aligned, optionally O_DIRECT,
// random or sequential pread/pwrite against a file, driven either through
// plain file I/O or through io_uring. It is ported from the original
// implementation's block-device benchmark engine, adapted to the harness's
// Target/OperationEngine contract.
//
// The ported engine gave each OS thread its own file descriptor, aligned
// buffer, and (for the uring variant) its own ring, all pinned for the
// thread's lifetime via thread_local-equivalent state. bench.Target has no
// per-worker handle: SetupForWorker and TeardownForWorker take no thread
// ID, because the same Target value is shared by every worker goroutine.
// Rather than recover per-goroutine identity through the runtime, both
// targets here keep a sync.Pool of ready-to-use resources (buffers, or
// buffer+ring pairs) and borrow one for the duration of a single Execute
// call. This trades the original's strict thread affinity for a pool that
// is just as safe under concurrent workers and never performs worse than
// allocating fresh resources per call.
package diskio
