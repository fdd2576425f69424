package bench

import "fmt"

// ProgrammingError signals an invariant violation caused by misuse of the
// harness itself (double move of a sketch, an out-of-range operation kind).
// It is raised as a panic; there is no recovery, and the run aborts.
// Merging mismatched sketches is reported separately, as ShapeMismatch.
type ProgrammingError struct {
	Msg string
}

func (e *ProgrammingError) Error() string {
	return fmt.Sprintf("programming error: %s", e.Msg)
}

// ShapeMismatch is returned by Sketch.Merge when the two sketches were
// created with a different number of operation kinds.
type ShapeMismatch struct {
	Left, Right OpKind
}

func (e *ShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: merging sketch of %d kinds into one of %d kinds", e.Right, e.Left)
}

// ConfigurationError signals a bad CLI or config value, rejected before Run.
type ConfigurationError struct {
	Flag string
	Msg  string
}

func (e *ConfigurationError) Error() string {
	if e.Flag == "" {
		return fmt.Sprintf("configuration error: %s", e.Msg)
	}
	return fmt.Sprintf("configuration error: -%s: %s", e.Flag, e.Msg)
}

// WorkerFault reports that a worker goroutine terminated abnormally. The
// Runner stops every other worker and surfaces the fault instead of the
// partial results.
type WorkerFault struct {
	ThreadID int
	Cause    any
}

func (e *WorkerFault) Error() string {
	return fmt.Sprintf("worker %d faulted: %v", e.ThreadID, e.Cause)
}
