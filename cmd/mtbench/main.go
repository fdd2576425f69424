package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/runningwild/mtbench/pkg/bench"
	"github.com/runningwild/mtbench/pkg/demotargets/counter"
	"github.com/runningwild/mtbench/pkg/demotargets/diskio"
)

// Flags holds pointers to every supported CLI flag, the way jolt's
// cmd/jolt.Flags does.
type Flags struct {
	ConfigFile  *string
	WriteConfig *string
	Verbose     *bool

	ThreadNum     *int
	RandomSeed    *string
	Throughput    *bool
	CSV           *bool
	Timeout       *time.Duration
	TargetLatency *string
	SkewParameter *float64
	TargetName    *string

	DiskPath   *string
	BlockSize  *int
	Direct     *bool
	ReadPct    *int
	RandIO     *bool
	QueueDepth *int
	ExecNum    *int
}

func setupFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	f.ConfigFile = fs.String("config", "", "path to a YAML config file; replaces -thread-num, -random-seed, -throughput, -csv, -timeout, -target-latency, -skew-parameter and -verbose (-target and the diskio flags still apply)")
	f.WriteConfig = fs.String("write-config", "", "write the effective configuration to this YAML file and exit")
	f.Verbose = fs.Bool("verbose", false, "log runner state transitions to stderr")

	f.ThreadNum = fs.Int("thread-num", 1, "number of worker threads")
	f.RandomSeed = fs.String("random-seed", "", "base random seed (unsigned integer); empty seeds from OS entropy")
	f.Throughput = fs.Bool("throughput", false, "report throughput instead of percentile latency")
	f.CSV = fs.Bool("csv", false, "emit CSV instead of human-readable output")
	f.Timeout = fs.Duration("timeout", 5*time.Second, "duration to run before cancelling workers")
	f.TargetLatency = fs.String("target-latency", "", "comma-separated quantiles in [0,1] (default: a standard percentile ladder)")
	f.SkewParameter = fs.Float64("skew-parameter", 0, "offset skew forwarded to the selected operation engine")
	f.TargetName = fs.String("target", "counter-atomic", "registered target/engine pair: counter-mutex, counter-atomic, diskio, diskio-uring")

	f.DiskPath = fs.String("path", "", "backing file for the diskio targets")
	f.BlockSize = fs.Int("block-size", 4096, "diskio block size in bytes")
	f.Direct = fs.Bool("direct", false, "diskio: use O_DIRECT")
	f.ReadPct = fs.Int("read-pct", 50, "diskio: percentage of operations that are reads")
	f.RandIO = fs.Bool("rand", true, "diskio: random offsets instead of sequential")
	f.QueueDepth = fs.Int("queue-depth", 4, "diskio-uring: ring queue depth")
	f.ExecNum = fs.Int("exec-num", 0, "operations per worker before exhausting (0: unbounded)")
	return f
}

func (f *Flags) toRunConfig() (*bench.RunConfig, error) {
	if *f.ConfigFile != "" {
		return bench.LoadConfig(*f.ConfigFile)
	}

	cfg := &bench.RunConfig{
		ThreadNum:         *f.ThreadNum,
		MeasureThroughput: *f.Throughput,
		OutputCSV:         *f.CSV,
		Timeout:           *f.Timeout,
		RandomSeedStr:     *f.RandomSeed,
		SkewParameter:     *f.SkewParameter,
		Verbose:           *f.Verbose,
	}
	if *f.TargetLatency != "" {
		qs, err := parsePercentiles(*f.TargetLatency)
		if err != nil {
			return nil, &bench.ConfigurationError{Flag: "target-latency", Msg: err.Error()}
		}
		cfg.TargetPercentiles = qs
	} else {
		cfg.TargetPercentiles = append([]float64{}, bench.DefaultPercentiles...)
	}
	return cfg, nil
}

func parsePercentiles(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	qs := make([]float64, 0, len(parts))
	for _, p := range parts {
		q, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", p)
		}
		qs = append(qs, q)
	}
	return qs, nil
}

// buildTargetAndEngine resolves -target into a concrete Target/Engine pair,
// the way jolt's engine.New resolves -engine into a concrete Engine.
func buildTargetAndEngine(f *Flags, cfg *bench.RunConfig) (bench.Target, bench.OperationEngine, func(), error) {
	switch *f.TargetName {
	case "counter-mutex":
		return counter.NewMutexTarget(), &counter.Engine{ExecNum: *f.ExecNum}, func() {}, nil
	case "counter-atomic":
		return counter.NewAtomicTarget(), &counter.Engine{ExecNum: *f.ExecNum}, func() {}, nil
	case "diskio":
		return buildDiskioTarget(f, cfg, false)
	case "diskio-uring":
		return buildDiskioTarget(f, cfg, true)
	default:
		return nil, nil, nil, &bench.ConfigurationError{Flag: "target", Msg: fmt.Sprintf("unknown target %q", *f.TargetName)}
	}
}

func buildDiskioTarget(f *Flags, cfg *bench.RunConfig, useUring bool) (bench.Target, bench.OperationEngine, func(), error) {
	if *f.DiskPath == "" {
		return nil, nil, nil, &bench.ConfigurationError{Flag: "path", Msg: "required for diskio targets"}
	}
	engine := &diskio.Engine{
		Path:          *f.DiskPath,
		BlockSize:     *f.BlockSize,
		ReadPct:       *f.ReadPct,
		Rand:          *f.RandIO,
		ExecNum:       *f.ExecNum,
		SkewParameter: cfg.SkewParameter,
	}
	if err := engine.Open(); err != nil {
		return nil, nil, nil, err
	}

	if useUring {
		target, err := diskio.NewUringTarget(*f.DiskPath, *f.BlockSize, *f.Direct, *f.QueueDepth)
		if err != nil {
			return nil, nil, nil, err
		}
		return target, engine, func() { target.Close() }, nil
	}
	target, err := diskio.NewSyncTarget(*f.DiskPath, *f.BlockSize, *f.Direct)
	if err != nil {
		return nil, nil, nil, err
	}
	return target, engine, func() { target.Close() }, nil
}

func main() {
	f := setupFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := f.toRunConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *f.WriteConfig != "" {
		if err := bench.WriteConfig(*f.WriteConfig, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", *f.WriteConfig)
		return
	}

	target, engine, cleanup, err := buildTargetAndEngine(f, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	r := bench.NewRunner(target, engine, *cfg)
	res, err := r.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	bench.PrintResult(os.Stdout, res, *cfg)
}
