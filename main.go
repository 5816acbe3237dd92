package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/tempwatch/internal/client"
	"github.com/luki/tempwatch/internal/config"
	"github.com/luki/tempwatch/internal/dashboard"
	"github.com/luki/tempwatch/internal/logging"
	"github.com/luki/tempwatch/internal/schedule"
	"github.com/luki/tempwatch/internal/store"
	"github.com/luki/tempwatch/internal/viewer"
)

const appName = "tempwatch"

var version = "dev"

func main() {
	cmd, args := splitCommand(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "watch":
		err = runWatch(ctx, args)
	case "history":
		err = runHistory(ctx, args)
	case "check":
		err = runCheck(ctx, args, os.Stdout)
	case "help", "-h", "--help":
		printHelp(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

// splitCommand picks the subcommand off args. Bare flags run the
// dashboard.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || (len(args[0]) > 0 && args[0][0] == '-' && args[0] != "-h" && args[0] != "--help") {
		return "watch", args
	}
	return args[0], args[1:]
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [command] [flags]\n", appName)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  watch     live dashboard (default)")
	fmt.Fprintln(w, "  history   browse stored readings (-since 24h)")
	fmt.Fprintln(w, "  check     probe the service health endpoint")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -url URL          service base URL (TEMPWATCH_URL)")
	fmt.Fprintln(w, "  -interval-ms N    refresh interval (TEMPWATCH_REFRESH_INTERVAL_MS)")
	fmt.Fprintln(w, "  -threshold T      alert threshold in °C (TEMPWATCH_THRESHOLD)")
	fmt.Fprintln(w, "  -unit C|F         initial display unit (TEMPWATCH_UNIT)")
	fmt.Fprintln(w, "  -log PATH         log file (LOG_FILE)")
}

// setup loads config, opens the log file, and builds the service client.
func setup(args []string) (config.Config, *slog.Logger, io.Closer, *client.Client, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return config.Config{}, nil, nil, nil, err
	}

	logger, closer, err := logging.Open(cfg, version, appName)
	if err != nil {
		return config.Config{}, nil, nil, nil, err
	}
	slog.SetDefault(logger)

	c, err := client.New(cfg.URL, cfg.RequestTimeout)
	if err != nil {
		closer.Close()
		return config.Config{}, nil, nil, nil, err
	}
	return cfg, logger, closer, c, nil
}

func runWatch(ctx context.Context, args []string) error {
	cfg, logger, closer, c, err := setup(args)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, err := store.New(cfg.Threshold, cfg.Unit, cfg.InitialState())
	if err != nil {
		return err
	}
	if cfg.HasInitialTemperature {
		if err := st.SetInitial(cfg.InitialTemperature); err != nil {
			return err
		}
	}

	sched := schedule.New(schedule.SystemClock{}, cfg.RefreshInterval())
	defer sched.Stop()

	logger.Info("starting dashboard",
		"url", c.BaseURL(),
		"interval", cfg.RefreshInterval(),
		"threshold", cfg.Threshold,
		"unit", cfg.Unit)

	m := dashboard.New(ctx, c, st, sched, dashboard.Options{
		Logger: logger,
		Source: c.BaseURL(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	logger.Info("dashboard stopped")
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	cfg, logger, closer, c, err := setup(args)
	if err != nil {
		return err
	}
	defer closer.Close()

	end := time.Now()
	start := end.Add(-cfg.HistorySince)
	logger.Info("opening history", "url", c.BaseURL(), "since", cfg.HistorySince)

	m := viewer.New(ctx, c, start, end, cfg.Threshold, cfg.Unit, logger, nil)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// healthChecker is the part of the client runCheck needs.
type healthChecker interface {
	Health(ctx context.Context) (client.Health, error)
}

func runCheck(ctx context.Context, args []string, w io.Writer) error {
	cfg, logger, closer, c, err := setup(args)
	if err != nil {
		return err
	}
	defer closer.Close()

	return check(ctx, c, c.BaseURL(), cfg.RequestTimeout, logger, w)
}

func check(ctx context.Context, hc healthChecker, url string, timeout time.Duration, logger *slog.Logger, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	h, err := hc.Health(ctx)
	if err != nil {
		logger.Error("health check failed", "url", url, "err", err)
		return fmt.Errorf("health check %s: %w", url, err)
	}
	logger.Info("health check", "url", url, "status", h.Status)

	fmt.Fprintf(w, "%s  status=%s", url, h.Status)
	if h.Timestamp != "" {
		fmt.Fprintf(w, "  timestamp=%s", h.Timestamp)
	}
	fmt.Fprintln(w)

	if h.Status != "healthy" && h.Status != "ok" {
		return fmt.Errorf("service reports status %q", h.Status)
	}
	return nil
}
