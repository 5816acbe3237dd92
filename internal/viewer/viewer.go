// Package viewer implements the historical temperature browser TUI with
// time scrubbing over a window fetched from the service.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/tempwatch/internal/chart"
	"github.com/luki/tempwatch/internal/history"
	"github.com/luki/tempwatch/internal/presenter"
	"github.com/luki/tempwatch/internal/temperature"
)

const (
	chartHeight = 10
	skipStep    = 10
)

// Source is the history endpoint.
type Source interface {
	FetchHistory(ctx context.Context, start, end time.Time) (temperature.Series, error)
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorCursor   = lipgloss.Color("214")
	colorCrit     = lipgloss.Color("196")
)

// ── Model ────────────────────────────────────────────────────────────

type loadedMsg struct {
	series temperature.Series
	err    error
}

// Model browses one window of history.
type Model struct {
	ctx       context.Context
	src       Source
	log       *slog.Logger
	loc       *time.Location
	start     time.Time
	end       time.Time
	threshold float64
	unit      temperature.Unit

	series  temperature.Series
	loading bool
	cursor  int // index into the oldest-first points
	width   int
	height  int
	err     error
}

// New creates a viewer for [start, end].
func New(ctx context.Context, src Source, start, end time.Time, threshold float64, unit temperature.Unit, logger *slog.Logger, loc *time.Location) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return Model{
		ctx:       ctx,
		src:       src,
		log:       logger,
		loc:       loc,
		start:     start,
		end:       end,
		threshold: threshold,
		unit:      unit,
		loading:   true,
	}
}

func (m Model) load() tea.Msg {
	series, err := m.src.FetchHistory(m.ctx, m.start, m.end)
	return loadedMsg{series: series, err: err}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return m.load
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.log.Warn("history fetch failed", "err", msg.err)
			return m, nil
		}
		if err := msg.series.Validate(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.series = msg.series
		m.cursor = len(msg.series) - 1
		m.log.Info("history loaded", "readings", len(msg.series), "start", m.start, "end", m.end)

	case tea.KeyMsg:
		last := len(m.series) - 1
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.cursor = max(0, m.cursor-1)
		case "right", "l":
			m.cursor = min(last, m.cursor+1)
		case "shift+left", "H":
			m.cursor = max(0, m.cursor-skipStep)
		case "shift+right", "L":
			m.cursor = min(last, m.cursor+skipStep)
		case "[":
			m.cursor = m.jump(-time.Hour)
		case "]":
			m.cursor = m.jump(time.Hour)
		case "home":
			m.cursor = 0
		case "end":
			m.cursor = last
		case "u":
			m.unit = m.unit.Other()
		case "r":
			m.loading = true
			return m, m.load
		}
		if m.cursor < 0 {
			m.cursor = 0
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// jump returns the index of the reading nearest to the cursor time
// shifted by d.
func (m Model) jump(d time.Duration) int {
	if len(m.series) == 0 {
		return 0
	}
	pts := history.Chronological(m.series, m.unit)
	return history.Nearest(pts, pts[m.cursor].Time.Add(d))
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Loading..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	sections := []string{m.renderTitle(contentWidth)}

	if m.err != nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("ERROR: %v", m.err)))
	}

	cd := presenter.BuildChart(m.series, m.threshold, m.unit, m.loc)
	switch {
	case m.loading:
		sections = append(sections, m.renderEmpty(contentWidth, "Loading history..."))
	case cd == nil:
		sections = append(sections, m.renderEmpty(contentWidth, "No data in this window."))
	default:
		sections = append(sections, m.renderCursorInfo(contentWidth, cd))
		sections = append(sections, m.renderPanel(contentWidth, cd))
	}

	sections = append(sections, m.renderFooter(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitle(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("TEMPWATCH HISTORY")

	span := lipgloss.NewStyle().
		Foreground(colorCursor).
		Bold(true).
		Render(m.start.In(m.loc).Format("2006-01-02 15:04") + " → " + m.end.In(m.loc).Format("2006-01-02 15:04"))

	info := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("  (%d readings)", len(m.series)))

	right := span + info
	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m Model) renderEmpty(width int, text string) string {
	return lipgloss.NewStyle().
		Foreground(colorDim).
		Padding(2, 0).
		Align(lipgloss.Center).
		Width(width).
		Render(text)
}

func (m Model) renderCursorInfo(width int, cd *presenter.ChartData) string {
	p := cd.Points[m.cursor]
	ts := lipgloss.NewStyle().
		Foreground(colorCursor).
		Bold(true).
		Render(p.Time.In(m.loc).Format("2006-01-02 15:04:05"))

	val := chart.RenderTempValue(p.Temp, fmt.Sprintf("%.1f", p.Temp), m.unit.Suffix(), cd.ThresholdValue)

	pos := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("  %d/%d", m.cursor+1, len(cd.Points)))

	barWidth := width - 45
	if barWidth < 10 {
		barWidth = 10
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render("  " + ts + "  " + val + pos + "  " + m.renderScrubber(cd.Points, barWidth))
}

func (m Model) renderScrubber(pts []history.Point, width int) string {
	if len(pts) == 0 || width <= 0 {
		return ""
	}

	pos := 0
	if len(pts) > 1 {
		pos = m.cursor * (width - 1) / (len(pts) - 1)
	}

	dimS := lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	curS := lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	tickS := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i == pos {
			sb.WriteString(curS.Render("◆"))
			continue
		}
		slot := 0
		if len(pts) > 1 {
			slot = i * (len(pts) - 1) / (width - 1)
		}
		if slot > 0 && pts[slot].Time.In(m.loc).Hour() != pts[slot-1].Time.In(m.loc).Hour() {
			sb.WriteString(tickS.Render("│"))
			continue
		}
		sb.WriteString(dimS.Render("─"))
	}
	return sb.String()
}

// renderPanel draws the chart window ending at the cursor.
func (m Model) renderPanel(width int, cd *presenter.ChartData) string {
	chartWidth := width - 4
	if chartWidth > 180 {
		chartWidth = 180
	}

	end := m.cursor + 1
	start := max(0, end-chartWidth)
	pts := cd.Points[start:end]
	labels := cd.Labels[start:end]

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	header := lipgloss.NewStyle().Foreground(colorLabel).Bold(true).Render(cd.SeriesLabel) +
		"  " + lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(cd.ThresholdLabel)
	if st, ok := history.Summarize(cd.Points); ok {
		header += dimS.Render("   avg") + valS.Render(fmt.Sprintf("%5.1f", st.Avg)) +
			dimS.Render(" lo") + valS.Render(fmt.Sprintf("%5.1f", st.Min)) +
			dimS.Render(" pk") + valS.Render(fmt.Sprintf("%5.1f", st.Peak))
	}

	lo, hi := chart.Range(cd.Points, cd.ThresholdValue)
	overview := chart.RenderSparkline(downsample(cd.Points, chartWidth), chartWidth, lo, hi, cd.ThresholdValue)

	rows := []string{
		header,
		overview,
		chart.RenderChart(pts, chartWidth, chartHeight, cd.ThresholdValue),
		chart.RenderTimeline(labels, chartWidth),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// downsample picks at most width points spread evenly over pts.
func downsample(pts []history.Point, width int) []history.Point {
	if len(pts) <= width || width <= 0 {
		return pts
	}
	if width == 1 {
		return pts[len(pts)-1:]
	}
	out := make([]history.Point, width)
	for i := range out {
		out[i] = pts[i*(len(pts)-1)/(width-1)]
	}
	return out
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)

	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  h/l") + keyS.Render(":scrub") +
		dimS.Render("  H/L") + keyS.Render(fmt.Sprintf(":skip %d", skipStep)) +
		dimS.Render("  [/]") + keyS.Render(":±1h") +
		dimS.Render("  home/end") + keyS.Render(":jump") +
		dimS.Render("  u") + keyS.Render(":"+m.unit.Other().Suffix()) +
		dimS.Render("  r") + keyS.Render(":reload")

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(keys)
}
