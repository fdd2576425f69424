package bench

import (
	"fmt"
	"io"
)

// Throughput computes ops/sec per §6: total executed operations divided by
// the average per-worker elapsed time (total elapsed nanoseconds divided by
// the thread count, converted to seconds). Dividing by thread count first
// turns the sum of per-worker wall-clock time back into something
// wall-clock-like. A zero denominator (no samples recorded at all) yields 0
// rather than +Inf or a panic.
func Throughput(res *RunResult) float64 {
	totalNano := res.Sketch.TotalExecTimeNano()
	if totalNano == 0 || res.ThreadCount == 0 {
		return 0
	}
	avgNanoPerWorker := float64(totalNano) / float64(res.ThreadCount)
	seconds := avgNanoPerWorker / 1e9
	if seconds == 0 {
		return 0
	}
	return float64(res.Sketch.TotalExecCount()) / seconds
}

// PrintResult writes res to w in the mode selected by cfg: throughput vs.
// percentile latency, text vs. CSV. It is the harness's only place that
// formats output, matching §6 exactly.
func PrintResult(w io.Writer, res *RunResult, cfg RunConfig) {
	if cfg.MeasureThroughput {
		printThroughput(w, res, cfg.OutputCSV)
		return
	}
	printLatency(w, res, cfg.OutputCSV, cfg.TargetPercentiles)
}

func printThroughput(w io.Writer, res *RunResult, csv bool) {
	tp := Throughput(res)
	if csv {
		fmt.Fprintf(w, "%v\n", tp)
		return
	}
	fmt.Fprintf(w, "Throughput [OPS/s]: %v\n", tp)
}

func printLatency(w io.Writer, res *RunResult, csv bool, percentiles []float64) {
	if len(percentiles) == 0 {
		percentiles = DefaultPercentiles
	}

	if !csv {
		fmt.Fprintln(w, "Percentile Latency [ns]:")
	}

	for kind := OpKind(0); kind < res.Sketch.TotalKinds(); kind++ {
		if !res.Sketch.HasSamples(kind) {
			continue
		}
		if !csv {
			fmt.Fprintf(w, " OPS ID %d:\n", kind)
		}
		for _, q := range percentiles {
			ns := res.Sketch.Quantile(kind, q)
			if csv {
				fmt.Fprintf(w, "%d,%v,%d\n", kind, q, ns)
			} else {
				fmt.Fprintf(w, "  %5.2f:  %12d\n", 100*q, ns)
			}
		}
	}
}
