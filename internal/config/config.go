// Package config loads the pipeline tuning a running receiver needs:
// which decoders are enabled, detector thresholds, and sink selection.
// Full CLI semantics and config-file format versioning are an external
// concern; this package is deliberately thin -- the ambient presence of a
// config loader, in the teacher's idiom (YAML + pflag), carried regardless
// of that scope boundary.
package config

import (
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Detector carries the Pulse Detector's tunable thresholds -- see
// pulse.Config, which this is loaded into at startup.
type Detector struct {
	SampleRate   int     `yaml:"sample_rate"`
	ResetLimitUs int     `yaml:"reset_limit_us"`
	NoiseAttack  float64 `yaml:"noise_attack"`
	NoiseDecay   float64 `yaml:"noise_decay"`
	SignalAttack float64 `yaml:"signal_attack"`
	SignalDecay  float64 `yaml:"signal_decay"`
}

// Sink names one configured output destination: Kind selects the sink
// implementation ("json", "kv", "syslog", "file"), Target is its
// destination (a "host:port" for syslog, or a strftime pattern for
// "file"). The "json" and "kv" sinks always write to stdout; their Target
// is not read ("-" by convention).
type Sink struct {
	Kind   string `yaml:"kind"`
	Target string `yaml:"target"`
}

// Config is the top-level tuning document loaded from YAML.
type Config struct {
	Detector Detector `yaml:"detector"`
	Disabled []string `yaml:"disabled_decoders"`
	Sinks    []Sink   `yaml:"sinks"`
}

// Default returns sensible defaults for a 250 ksps I/Q stream, used when
// no config file is given.
func Default() Config {
	return Config{
		Detector: Detector{
			SampleRate:   250000,
			ResetLimitUs: 10000,
			NoiseAttack:  0.001,
			NoiseDecay:   0.0001,
			SignalAttack: 0.1,
			SignalDecay:  0.01,
		},
		Sinks: []Sink{{Kind: "json", Target: "-"}},
	}
}

// Load reads and parses a YAML tuning file at path.
func Load(path string) (Config, error) {
	var cfg = Default()
	var raw, readErr = os.ReadFile(path)
	if readErr != nil {
		return cfg, readErr
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Flags is the small set of command-line flags the example binary exposes:
// the sample source path, a config file path, and the log level.
type Flags struct {
	Source   string
	Config   string
	LogLevel string
}

// ParseFlags registers and parses Flags against args (normally
// os.Args[1:]), mirroring the teacher's own pflag.StringP/BoolP usage.
func ParseFlags(args []string) Flags {
	var fs = pflag.NewFlagSet("rf433recv", pflag.ExitOnError)

	var source = fs.StringP("source", "s", "", "path to a recorded I/Q capture file")
	var cfgPath = fs.StringP("config", "c", "", "path to a YAML tuning file (defaults applied if empty)")
	var logLevel = fs.StringP("log-level", "l", "info", "log level: debug, info, warn, error")

	fs.Parse(args)

	return Flags{Source: *source, Config: *cfgPath, LogLevel: *logLevel}
}

// IsDisabled reports whether name appears in cfg's disabled-decoder list.
func (c Config) IsDisabled(name string) bool {
	for _, n := range c.Disabled {
		if n == name {
			return true
		}
	}
	return false
}
