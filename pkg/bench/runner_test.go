package bench

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunner_WorkerFaultDuringSetupSurfacesPromptly(t *testing.T) {
	target := &panicOnceTarget{}
	engine := neverEndingEngine{}

	cfg := RunConfig{ThreadNum: 4, MeasureThroughput: true, Timeout: time.Hour, RandomSeedStr: "1"}
	r := NewRunner(target, engine, cfg)

	type result struct {
		res *RunResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := r.Run()
		done <- result{res, err}
	}()

	select {
	case got := <-done:
		require.Nil(t, got.res)
		require.Error(t, got.err)
		var fault *WorkerFault
		require.ErrorAs(t, got.err, &fault)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return promptly after a setup panic")
	}
}

func TestRunner_WorkerFaultDuringMeasureSurfacesPromptly(t *testing.T) {
	target := &panicOnExecuteTarget{}
	engine := neverEndingEngine{}

	cfg := RunConfig{ThreadNum: 4, MeasureThroughput: true, Timeout: time.Hour, RandomSeedStr: "1"}
	r := NewRunner(target, engine, cfg)

	type result struct {
		res *RunResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := r.Run()
		done <- result{res, err}
	}()

	select {
	case got := <-done:
		require.Nil(t, got.res)
		require.Error(t, got.err)
		var fault *WorkerFault
		require.ErrorAs(t, got.err, &fault)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return promptly after an execute panic")
	}
}

func TestRunner_SingleThreadedThroughput(t *testing.T) {
	target := &countingTarget{}
	engine := &fixedLenEngine{opsPerWorker: 500, totalKinds: 1}

	cfg := RunConfig{ThreadNum: 1, MeasureThroughput: true, Timeout: time.Second, RandomSeedStr: "1"}
	r := NewRunner(target, engine, cfg)

	res, err := r.Run()
	require.NoError(t, err)
	require.False(t, res.TimedOut)
	require.EqualValues(t, 500, res.Sketch.TotalExecCount())
}

func TestRunner_MultiThreadedMerge(t *testing.T) {
	target := &countingTarget{}
	engine := &fixedLenEngine{opsPerWorker: 500, totalKinds: 1}

	cfg := RunConfig{ThreadNum: 2, MeasureThroughput: true, Timeout: time.Second, RandomSeedStr: "42"}
	r := NewRunner(target, engine, cfg)

	res, err := r.Run()
	require.NoError(t, err)
	require.EqualValues(t, 1000, res.Sketch.TotalExecCount())
}

func TestRunner_SameTotalOpsAcrossThreadCounts(t *testing.T) {
	// One thread running 1000 ops and two threads running 500 ops each must
	// record the same merged total operation count. Throughput itself
	// depends on real per-call timings here and is not compared.
	target1 := &countingTarget{}
	engine1 := &fixedLenEngine{opsPerWorker: 1000, totalKinds: 1}
	cfg1 := RunConfig{ThreadNum: 1, MeasureThroughput: true, Timeout: time.Second, RandomSeedStr: "1"}
	r1 := NewRunner(target1, engine1, cfg1)
	res1, err := r1.Run()
	require.NoError(t, err)

	target2 := &countingTarget{}
	engine2 := &fixedLenEngine{opsPerWorker: 500, totalKinds: 1}
	cfg2 := RunConfig{ThreadNum: 2, MeasureThroughput: true, Timeout: time.Second, RandomSeedStr: "1"}
	r2 := NewRunner(target2, engine2, cfg2)
	res2, err := r2.Run()
	require.NoError(t, err)

	require.EqualValues(t, res1.Sketch.TotalExecCount(), res2.Sketch.TotalExecCount())
}

func TestRunner_EmptyIteratorGuardsDivideByZero(t *testing.T) {
	target := &countingTarget{}
	engine := &fixedLenEngine{opsPerWorker: 0, totalKinds: 1}

	cfg := RunConfig{ThreadNum: 1, MeasureThroughput: true, Timeout: time.Second, RandomSeedStr: "1"}
	r := NewRunner(target, engine, cfg)

	res, err := r.Run()
	require.NoError(t, err)
	require.EqualValues(t, 0, Throughput(res))

	var buf bytes.Buffer
	PrintResult(&buf, res, cfg)
	require.Contains(t, buf.String(), "Throughput [OPS/s]: 0")
}

func TestRunner_TimeoutIsNotAnError(t *testing.T) {
	target := &countingTarget{}
	engine := neverEndingEngine{}

	cfg := RunConfig{ThreadNum: 2, MeasureThroughput: true, Timeout: 10 * time.Millisecond, RandomSeedStr: "7"}
	r := NewRunner(target, engine, cfg)

	start := time.Now()
	res, err := r.Run()
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.True(t, res.TimedOut)
	require.Greater(t, Throughput(res), 0.0)
	require.Less(t, elapsed, time.Second)
}

func TestRunner_CSVLatencyOutput(t *testing.T) {
	target := &countingTarget{}
	engine := &fixedLenEngine{opsPerWorker: 1000, totalKinds: 2}

	cfg := RunConfig{
		ThreadNum:         1,
		MeasureThroughput: false,
		OutputCSV:         true,
		Timeout:           time.Second,
		RandomSeedStr:     "1",
		TargetPercentiles: []float64{0.5, 0.99},
	}
	r := NewRunner(target, engine, cfg)
	res, err := r.Run()
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintResult(&buf, res, cfg)

	require.Contains(t, buf.String(), "0,0.5,")
	require.Contains(t, buf.String(), "0,0.99,")
}

func TestRunner_InvalidConfigRejected(t *testing.T) {
	target := &countingTarget{}
	engine := &fixedLenEngine{opsPerWorker: 1, totalKinds: 1}

	cfg := RunConfig{ThreadNum: 0}
	r := NewRunner(target, engine, cfg)

	_, err := r.Run()
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
