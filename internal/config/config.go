// Package config loads tempwatch settings from the environment, an
// optional .env file, and command-line flags.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/luki/tempwatch/internal/schedule"
	"github.com/luki/tempwatch/internal/temperature"
)

const (
	defaultURL               = "http://localhost:5000"
	defaultLogFile           = "tempwatch.log"
	defaultRequestTimeout    = 10 * time.Second
	defaultRefreshIntervalMS = 62000
	defaultThreshold         = 23.5
	defaultHistorySince      = 24 * time.Hour
)

// Config holds runtime configuration. The Initial*/IsAlert/IsNormal fields
// are the starting values a host would otherwise have rendered into the
// page.
type Config struct {
	AppEnv   string
	LogLevel slog.Level
	LogFile  string

	URL            string
	RequestTimeout time.Duration

	RefreshIntervalMS int64
	Threshold         float64
	Unit              temperature.Unit

	InitialTemperature    float64
	HasInitialTemperature bool
	IsAlert               bool
	IsNormal              bool

	HistorySince time.Duration
}

// RefreshInterval is the poll interval in whole minutes.
func (c Config) RefreshInterval() time.Duration {
	return schedule.IntervalFromMillis(c.RefreshIntervalMS)
}

// InitialState is the alert state before the first fetch.
func (c Config) InitialState() temperature.AlertState {
	return temperature.StateFromFlags(c.IsAlert, c.IsNormal)
}

// Load reads .env (if present), then the environment, then flags from
// args. Any malformed value is an error naming the variable.
func Load(args []string) (Config, error) {
	_ = godotenv.Load(".env")
	return load(os.Getenv, args)
}

func load(getenv func(string) string, args []string) (Config, error) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{}

	cfg.AppEnv = env("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	logLevelStr := env("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	cfg.LogFile = env("LOG_FILE")
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}

	cfg.URL = env("TEMPWATCH_URL")
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}

	cfg.RequestTimeout = defaultRequestTimeout
	if v := env("TEMPWATCH_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TEMPWATCH_REQUEST_TIMEOUT %q: %w", v, err)
		}
		cfg.RequestTimeout = d
	}

	cfg.RefreshIntervalMS = defaultRefreshIntervalMS
	if v := env("TEMPWATCH_REFRESH_INTERVAL_MS"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TEMPWATCH_REFRESH_INTERVAL_MS %q: %w", v, err)
		}
		cfg.RefreshIntervalMS = ms
	}

	cfg.Threshold = defaultThreshold
	if v := env("TEMPWATCH_THRESHOLD"); v != "" {
		f, err := parseFinite(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TEMPWATCH_THRESHOLD %q: %w", v, err)
		}
		cfg.Threshold = f
	}

	if v := env("TEMPWATCH_INITIAL_TEMPERATURE"); v != "" {
		f, err := parseFinite(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TEMPWATCH_INITIAL_TEMPERATURE %q: %w", v, err)
		}
		cfg.InitialTemperature = f
		cfg.HasInitialTemperature = true
	}

	if cfg.IsAlert, err = parseBool(env("TEMPWATCH_IS_ALERT")); err != nil {
		return Config{}, fmt.Errorf("invalid TEMPWATCH_IS_ALERT: %w", err)
	}
	if cfg.IsNormal, err = parseBool(env("TEMPWATCH_IS_NORMAL")); err != nil {
		return Config{}, fmt.Errorf("invalid TEMPWATCH_IS_NORMAL: %w", err)
	}

	cfg.Unit = temperature.Celsius
	if v := env("TEMPWATCH_UNIT"); v != "" {
		u, err := temperature.ParseUnit(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TEMPWATCH_UNIT: %w", err)
		}
		cfg.Unit = u
	}

	cfg.HistorySince = defaultHistorySince

	if err := cfg.parseFlags(args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("tempwatch", flag.ContinueOnError)
	fs.StringVar(&c.URL, "url", c.URL, "temperature service base URL")
	fs.StringVar(&c.LogFile, "log", c.LogFile, "log file path")
	fs.Int64Var(&c.RefreshIntervalMS, "interval-ms", c.RefreshIntervalMS, "refresh interval in milliseconds")
	fs.Float64Var(&c.Threshold, "threshold", c.Threshold, "alert threshold in °C")
	fs.DurationVar(&c.HistorySince, "since", c.HistorySince, "history window for the history viewer")
	unit := fs.String("unit", "", "initial display unit (C or F)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *unit != "" {
		u, err := temperature.ParseUnit(*unit)
		if err != nil {
			return fmt.Errorf("invalid -unit: %w", err)
		}
		c.Unit = u
	}
	return nil
}

func (c Config) validate() error {
	if c.RefreshIntervalMS < 60000 {
		return fmt.Errorf("refresh interval %dms is below one minute", c.RefreshIntervalMS)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout %v must be positive", c.RequestTimeout)
	}
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return fmt.Errorf("threshold %v is not a finite number", c.Threshold)
	}
	if c.HistorySince <= 0 {
		return fmt.Errorf("history window %v must be positive", c.HistorySince)
	}
	return nil
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return f, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
