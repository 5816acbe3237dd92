// Package logging builds the process logger. The dashboard owns the
// terminal, so logs go to a file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/luki/tempwatch/internal/config"
)

// Open creates the log file and a logger writing to it. The returned
// closer must be called on shutdown.
func Open(cfg config.Config, version, appName string) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	color := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return New(f, cfg, version, appName, color), f, nil
}

// New returns a tint logger in dev and a JSON logger otherwise.
func New(w io.Writer, cfg config.Config, version, appName string, color bool) *slog.Logger {
	if cfg.AppEnv == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
			NoColor:    !color,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
