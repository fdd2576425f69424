package bench

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxThreadNum bounds the worker thread count the harness will accept, the
// way the original implementation bounds it against its platform's max
// thread count.
const MaxThreadNum = 1024

// DefaultPercentiles is the percentile list printed when a caller does not
// specify target_latency.
var DefaultPercentiles = []float64{0.0, 0.25, 0.50, 0.75, 0.90, 0.95, 0.99, 0.999, 0.9999, 1.0}

// RunConfig is the Runner's configuration surface. It mirrors the flags
// named in the CLI contract and is YAML-tagged so it can round-trip through
// a config file the same way the teacher's config.Config does.
type RunConfig struct {
	ThreadNum         int           `yaml:"thread_num"`
	MeasureThroughput bool          `yaml:"throughput"`
	OutputCSV         bool          `yaml:"csv"`
	Timeout           time.Duration `yaml:"timeout"`
	RandomSeedStr     string        `yaml:"random_seed"`
	TargetPercentiles []float64     `yaml:"target_latency"`
	SkewParameter     float64       `yaml:"skew_parameter"`
	Verbose           bool          `yaml:"verbose,omitempty"`
}

// LoadConfig reads a RunConfig from a YAML file, then fills fields the file
// leaves zero with defaults (ThreadNum 1, DefaultPercentiles).
func LoadConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &RunConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// WriteConfig marshals cfg as YAML to path, for the CLI's -write-config.
func WriteConfig(path string, cfg *RunConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (cfg *RunConfig) applyDefaults() {
	if cfg.ThreadNum == 0 {
		cfg.ThreadNum = 1
	}
	if len(cfg.TargetPercentiles) == 0 {
		cfg.TargetPercentiles = append([]float64{}, DefaultPercentiles...)
	}
}

// Validate checks cfg against the harness's configuration-validation rules,
// ported from the original implementation's gflags validators
// (ValidateThreadNum, ValidateSkewParameter, ValidateProbability,
// ValidateStr2UInt). It returns the first violation found, as a
// *ConfigurationError.
func (cfg *RunConfig) Validate() error {
	if cfg.ThreadNum <= 0 || cfg.ThreadNum > MaxThreadNum {
		return &ConfigurationError{Flag: "thread-num", Msg: "must be in [1, " + strconv.Itoa(MaxThreadNum) + "]"}
	}
	if cfg.SkewParameter < 0 {
		return &ConfigurationError{Flag: "skew-parameter", Msg: "must be >= 0"}
	}
	if err := validateSeedString(cfg.RandomSeedStr); err != nil {
		return err
	}
	for _, q := range cfg.TargetPercentiles {
		if err := validateProbability("target-latency", q); err != nil {
			return err
		}
	}
	if cfg.Timeout < 0 {
		return &ConfigurationError{Flag: "timeout", Msg: "must be >= 0"}
	}
	return nil
}

func validateSeedString(s string) error {
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return &ConfigurationError{Flag: "random-seed", Msg: "must be an unsigned integer"}
	}
	return nil
}

func validateProbability(flag string, q float64) error {
	if q < 0 || q > 1.0 {
		return &ConfigurationError{Flag: flag, Msg: "a probability must be in [0, 1.0]"}
	}
	return nil
}

func parseSeed(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
