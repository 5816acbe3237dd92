package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/tempwatch/internal/chart"
	"github.com/luki/tempwatch/internal/history"
	"github.com/luki/tempwatch/internal/presenter"
	"github.com/luki/tempwatch/internal/temperature"
)

const chartHeight = 8

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorPaused   = lipgloss.Color("196")
	colorErr      = lipgloss.Color("203")
)

// stateColors maps the alert state to its panel color.
var stateColors = map[temperature.AlertState]lipgloss.Color{
	temperature.Alert:      lipgloss.Color("196"),
	temperature.Normal:     lipgloss.Color("78"),
	temperature.Transition: lipgloss.Color("214"),
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	v := m.present()

	sections := []string{
		m.renderTitleBar(contentWidth, v),
		m.renderReadout(contentWidth, v),
	}
	if errs := m.renderErrors(contentWidth); errs != "" {
		sections = append(sections, errs)
	}
	sections = append(sections, m.renderChart(contentWidth, v))
	sections = append(sections, m.renderFooter(contentWidth, v))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	visibleLines := m.height
	if visibleLines < 5 {
		visibleLines = 5
	}
	maxScroll := len(lines) - visibleLines
	if maxScroll < 0 {
		maxScroll = 0
	}
	start := min(m.scroll, maxScroll)
	end := min(start+visibleLines, len(lines))

	return strings.Join(lines[start:end], "\n")
}

func (m Model) renderTitleBar(width int, v presenter.View) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("TEMPWATCH")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	var statusParts []string
	if m.source != "" {
		statusParts = append(statusParts, dimS.Render(m.source))
	}
	if !m.lastPoll.IsZero() {
		statusParts = append(statusParts, dimS.Render("polled "+m.lastPoll.In(m.loc).Format("15:04:05")))
	}
	if m.paused {
		statusParts = append(statusParts, lipgloss.NewStyle().Foreground(colorPaused).Bold(true).Render("PAUSED"))
	} else if v.NextUpdate != "" {
		statusParts = append(statusParts, dimS.Render(v.NextUpdate))
	}

	sep := dimS.Render(" │ ")
	right := strings.Join(statusParts, sep)

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

func (m Model) renderReadout(width int, v presenter.View) string {
	color := stateColors[v.State]

	value := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Render(v.Readout)
	unit := lipgloss.NewStyle().
		Foreground(colorLabel).
		Render(v.UnitSuffix)
	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("16")).
		Background(color).
		Padding(0, 1).
		Render(strings.ToUpper(v.StateClass()))

	rows := []string{value + " " + unit + "   " + badge}

	snap := m.store.Snapshot()
	if c, ok := snap.Current(); ok {
		unitV := temperature.Convert(c, snap.Unit)
		th := temperature.Convert(snap.Threshold, snap.Unit)
		lo, hi := chart.Range([]history.Point{{Temp: unitV}}, th)
		if v.Chart != nil {
			lo, hi = chart.Range(v.Chart.Points, th)
		}
		scale := chart.RenderThresholdScale(unitV, lo, hi, th, min(width-8, 60))
		rows = append(rows, scale)
	}

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	if v.LastUpdated != "" {
		rows = append(rows, dimS.Render(v.LastUpdated))
	} else {
		rows = append(rows, dimS.Render("Waiting for temperature data..."))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderErrors(width int) string {
	var lines []string
	if m.latestErr != nil {
		lines = append(lines, fmt.Sprintf("latest: %v", m.latestErr))
	}
	if m.hourlyErr != nil {
		lines = append(lines, fmt.Sprintf("hourly: %v", m.hourlyErr))
	}
	if len(lines) == 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(colorErr).
		Width(width).
		Padding(0, 1).
		Render(strings.Join(lines, "\n") + "\n(showing last known data)")
}

func (m Model) renderChart(width int, v presenter.View) string {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width)

	if v.Chart == nil {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width - 4).
			Align(lipgloss.Center).
			Padding(1, 0).
			Render("No chart data available")
		return panel.Render(empty)
	}

	c := v.Chart
	chartWidth := width - 4
	if chartWidth > 180 {
		chartWidth = 180
	}
	pts := history.LastN(c.Points, chartWidth)
	labels := c.Labels[len(c.Labels)-len(pts):]

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	legend := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render("█ "+c.SeriesLabel) +
		"   " + lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("╌ "+c.ThresholdLabel)

	if st, ok := history.Summarize(c.Points); ok {
		legend += dimS.Render("   avg") + valS.Render(fmt.Sprintf("%5.1f", st.Avg)) +
			dimS.Render(" lo") + valS.Render(fmt.Sprintf("%5.1f", st.Min)) +
			dimS.Render(" pk") + valS.Render(fmt.Sprintf("%5.1f", st.Peak))
	}

	rows := []string{
		legend,
		chart.RenderChart(pts, chartWidth, chartHeight, c.ThresholdValue),
		chart.RenderTimeline(labels, chartWidth),
	}
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderFooter(width int, v presenter.View) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)

	pause := ":pause"
	if m.paused {
		pause = ":resume"
	}

	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  u") + keyS.Render(":"+v.ToggleLabel) +
		dimS.Render("  p") + keyS.Render(pause)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(keys)
}
