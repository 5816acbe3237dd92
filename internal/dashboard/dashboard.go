// Package dashboard implements the live temperature TUI using BubbleTea:
// a readout colored by alert state, a block chart of the last hour with
// the threshold line, and a self-rescheduling poll of the service.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/tempwatch/internal/client"
	"github.com/luki/tempwatch/internal/presenter"
	"github.com/luki/tempwatch/internal/schedule"
	"github.com/luki/tempwatch/internal/store"
	"github.com/luki/tempwatch/internal/temperature"
)

// Source is the data source the dashboard polls.
type Source interface {
	FetchLatest(ctx context.Context) (client.Latest, error)
	FetchHourly(ctx context.Context) (temperature.Series, error)
}

// ── Messages ─────────────────────────────────────────────────────────

type startMsg struct{}

type fireMsg struct{ fire schedule.Fire }

type latestMsg struct {
	latest client.Latest
	err    error
}

type hourlyMsg struct {
	series temperature.Series
	err    error
}

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the live dashboard. The store and the
// scheduler are only touched from Update.
type Model struct {
	ctx    context.Context
	src    Source
	store  *store.Store
	sched  *schedule.Scheduler
	log    *slog.Logger
	loc    *time.Location
	source string

	pending   int // fetches outstanding in the current cycle
	cycles    int
	paused    bool
	lastPoll  time.Time
	latestErr error
	hourlyErr error

	width  int
	height int
	scroll int
}

// Options configures a Model.
type Options struct {
	Logger   *slog.Logger
	Location *time.Location
	Source   string // shown in the title bar
}

// New creates the dashboard model.
func New(ctx context.Context, src Source, st *store.Store, sched *schedule.Scheduler, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return Model{
		ctx:    ctx,
		src:    src,
		store:  st,
		sched:  sched,
		log:    opts.Logger,
		loc:    opts.Location,
		source: opts.Source,
	}
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) fetchLatest() tea.Msg {
	latest, err := m.src.FetchLatest(m.ctx)
	return latestMsg{latest: latest, err: err}
}

func (m Model) fetchHourly() tea.Msg {
	series, err := m.src.FetchHourly(m.ctx)
	return hourlyMsg{series: series, err: err}
}

func fireCmd(f schedule.Fire) tea.Cmd {
	return tea.Tick(f.Delay, func(time.Time) tea.Msg {
		return fireMsg{fire: f}
	})
}

// beginCycle issues both fetches. They run concurrently and report back
// independently.
func (m *Model) beginCycle() tea.Cmd {
	if m.pending > 0 {
		m.log.Warn("refresh skipped, previous cycle still in flight", "pending", m.pending)
		return nil
	}
	m.pending = 2
	m.cycles++
	m.log.Debug("refresh", "cycle", m.cycles)
	return tea.Batch(m.fetchLatest, m.fetchHourly)
}

// finishFetch re-arms the scheduler once both fetches of the cycle have
// resolved, using the series as just updated.
func (m *Model) finishFetch() tea.Cmd {
	if m.pending > 0 {
		m.pending--
	}
	if m.pending > 0 {
		return nil
	}
	m.lastPoll = time.Now()
	return m.arm()
}

func (m *Model) arm() tea.Cmd {
	if m.paused {
		return nil
	}
	f := m.sched.Arm(m.store.Series())
	m.log.Info("next update scheduled", "at", f.At.In(m.loc).Format(time.TimeOnly), "delay", f.Delay.Round(time.Second), "interval", m.sched.Interval())
	return fireCmd(f)
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.sched.Stop()
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		case "u":
			u := m.store.Toggle()
			m.log.Debug("unit toggled", "unit", u)
		case " ", "p":
			m.paused = !m.paused
			if m.paused {
				m.sched.Stop()
				m.log.Info("polling paused")
				return m, nil
			}
			m.log.Info("polling resumed")
			if m.pending == 0 {
				return m, m.arm()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case startMsg:
		return m, m.beginCycle()

	case fireMsg:
		if !m.sched.Accept(msg.fire) {
			return m, nil
		}
		return m, m.beginCycle()

	case latestMsg:
		if msg.err != nil {
			m.latestErr = msg.err
			m.log.Warn("latest fetch failed", "err", msg.err)
		} else if err := m.store.SetLatest(msg.latest.Reading, msg.latest.State); err != nil {
			m.latestErr = err
			m.log.Warn("latest reading rejected", "err", err)
		} else {
			m.latestErr = nil
			m.log.Info("latest reading",
				"temperature", msg.latest.Reading.Celsius,
				"collected_at", msg.latest.Reading.CollectedAt,
				"state", msg.latest.State)
		}
		return m, m.finishFetch()

	case hourlyMsg:
		if msg.err != nil {
			m.hourlyErr = msg.err
			m.log.Warn("hourly fetch failed", "err", msg.err)
		} else if err := m.store.SetSeries(msg.series); err != nil {
			m.hourlyErr = err
			m.log.Warn("hourly series rejected", "err", err)
		} else {
			m.hourlyErr = nil
			m.log.Debug("hourly series", "readings", len(msg.series))
		}
		return m, m.finishFetch()
	}

	return m, nil
}

// present runs the presenter against the store as it stands now.
func (m Model) present() presenter.View {
	return presenter.Present(m.store.Snapshot(), presenter.Options{
		NextFire: m.sched.Next(),
		Location: m.loc,
	})
}
