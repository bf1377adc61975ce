package main

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/ygrebnov/errorc"
)

const envPrefix = "BATCHRUN"

var errInvalidSettings = errors.New("batchrun: invalid settings")

// Settings drive one synthetic run. Each field is read from a flag of the
// same name or from BATCHRUN_<NAME> (dashes become underscores). Flags win.
type Settings struct {
	Items       int
	Concurrency int
	OutOfOrder  bool
	MinLatency  time.Duration
	MaxLatency  time.Duration
	// FailAt is the input position of the item made to fail; negative disables it.
	FailAt    int
	Timeout   time.Duration
	LogLevel  string
	LogFormat string
	Metrics   string
	EnvFile   string
}

func newFlagSet(out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("batchrun", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Int("items", 100, "number of items to process")
	fs.Int("concurrency", 0, "maximum operations in flight (0 = GOMAXPROCS)")
	fs.Bool("out-of-order", false, "collect results in completion order")
	fs.Duration("min-latency", 5*time.Millisecond, "minimum per-item latency")
	fs.Duration("max-latency", 50*time.Millisecond, "maximum per-item latency")
	fs.Int("fail-at", -1, "input position of the item that fails (-1 = none)")
	fs.Duration("timeout", 0, "cancel the run after this long (0 = never)")
	fs.String("log-level", "info", "log level: trace, debug, info, warn, error")
	fs.String("log-format", "console", "log format: console or json")
	fs.String("metrics", "basic", "metrics backend: basic or otel")
	fs.String("env-file", "", "dotenv file to load (default: ./.env when present)")
	return fs
}

// loadSettings parses args, loads the dotenv file and merges environment
// variables under the flags.
func loadSettings(args []string, out io.Writer) (Settings, error) {
	fs := newFlagSet(out)
	if err := fs.Parse(args); err != nil {
		return Settings{}, err
	}

	envFile, _ := fs.GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return Settings{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Settings{}, err
	}

	s := Settings{
		Items:       v.GetInt("items"),
		Concurrency: v.GetInt("concurrency"),
		OutOfOrder:  v.GetBool("out-of-order"),
		MinLatency:  v.GetDuration("min-latency"),
		MaxLatency:  v.GetDuration("max-latency"),
		FailAt:      v.GetInt("fail-at"),
		Timeout:     v.GetDuration("timeout"),
		LogLevel:    strings.ToLower(v.GetString("log-level")),
		LogFormat:   strings.ToLower(v.GetString("log-format")),
		Metrics:     strings.ToLower(v.GetString("metrics")),
		EnvFile:     envFile,
	}
	return s, s.Validate()
}

// loadEnvFile loads path, or ./.env when path is empty and the file exists.
// Variables already set in the environment are kept.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return errorc.With(errInvalidSettings, errorc.String("env-file", path), errorc.String("cause", err.Error()))
	}
	return nil
}

func (s Settings) Validate() error {
	switch {
	case s.Items < 0:
		return invalid("items", "must not be negative")
	case s.Concurrency < 0:
		return invalid("concurrency", "must not be negative")
	case s.MinLatency < 0:
		return invalid("min-latency", "must not be negative")
	case s.MaxLatency < s.MinLatency:
		return invalid("max-latency", "must not be below min-latency")
	case s.Timeout < 0:
		return invalid("timeout", "must not be negative")
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return invalid("log-format", "must be console or json")
	}
	switch s.Metrics {
	case "basic", "otel":
	default:
		return invalid("metrics", "must be basic or otel")
	}
	return nil
}

func invalid(key, reason string) error {
	return errorc.With(errInvalidSettings, errorc.String(key, reason))
}
