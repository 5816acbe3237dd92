// Package chart draws the temperature series as a block chart with a
// dashed threshold line, time labels underneath, and a one-line scale bar
// showing the current reading against the threshold.
package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/tempwatch/internal/history"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// WarmMargin is how far below the threshold (in display units) a value is
// drawn as warm rather than ok.
const WarmMargin = 1.0

var (
	colorOk        = lipgloss.Color("78")  // soft green
	colorWarm      = lipgloss.Color("220") // yellow
	colorOver      = lipgloss.Color("196") // red
	colorThreshold = lipgloss.Color("203")
	colorEmpty     = lipgloss.Color("236")
	colorTick      = lipgloss.Color("239")
)

// TempColor returns the color for a value relative to the threshold.
func TempColor(v, threshold float64) lipgloss.Color {
	switch {
	case v >= threshold:
		return colorOver
	case v >= threshold-WarmMargin:
		return colorWarm
	default:
		return colorOk
	}
}

// Range returns the vertical range for a chart: the span of the values and
// the threshold, padded by one unit on each side.
func Range(points []history.Point, threshold float64) (float64, float64) {
	lo, hi := threshold, threshold
	for _, p := range points {
		lo = math.Min(lo, p.Temp)
		hi = math.Max(hi, p.Temp)
	}
	return lo - 1, hi + 1
}

// RenderSparkline renders a single-row sparkline with color-coded blocks.
func RenderSparkline(points []history.Point, width int, rangeMin, rangeMax, threshold float64) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(colorEmpty)
	if len(points) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	sb.WriteString(dim.Render(strings.Repeat("╌", width-len(points))))
	for _, p := range points {
		norm := math.Max(0, math.Min(1, (p.Temp-rangeMin)/span))
		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}
		style := lipgloss.NewStyle().Foreground(TempColor(p.Temp, threshold))
		if p.Temp >= threshold {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}
	return sb.String()
}

// RenderChart renders a multi-row block chart, newest column on the right.
// Empty cells on the threshold's row are drawn as a dashed line. Returns
// "" when there are no points, so callers can skip the chart entirely.
func RenderChart(points []history.Point, width, height int, threshold float64) string {
	if width <= 0 || height <= 0 || len(points) == 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}
	padLen := width - len(points)

	rangeMin, rangeMax := Range(points, threshold)
	span := rangeMax - rangeMin

	// Height of each column in eighths of a row.
	levels := make([]int, len(points))
	for i, p := range points {
		norm := (p.Temp - rangeMin) / span
		levels[i] = int(math.Round(norm * float64(height*8)))
	}
	thRow := int((threshold - rangeMin) / span * float64(height))
	if thRow >= height {
		thRow = height - 1
	}

	dashStyle := lipgloss.NewStyle().Foreground(colorThreshold)
	rows := make([]string, 0, height)
	for row := height - 1; row >= 0; row-- {
		var sb strings.Builder
		onThreshold := row == thRow
		blank := " "
		if onThreshold {
			blank = dashStyle.Render("╌")
		}
		sb.WriteString(strings.Repeat(blank, padLen))

		for i, p := range points {
			fill := levels[i] - row*8
			switch {
			case fill <= 0:
				sb.WriteString(blank)
			default:
				if fill > 8 {
					fill = 8
				}
				style := lipgloss.NewStyle().Foreground(TempColor(p.Temp, threshold))
				sb.WriteString(style.Render(string(sparkBlocks[fill-1])))
			}
		}
		rows = append(rows, sb.String())
	}
	return strings.Join(rows, "\n")
}

// RenderTimeline places labels under their columns, skipping any label that
// would collide with the previous one. labels must be aligned with the
// points passed to RenderChart.
func RenderTimeline(labels []string, width int) string {
	if len(labels) == 0 || width <= 0 {
		return ""
	}
	if len(labels) > width {
		labels = labels[len(labels)-width:]
	}
	padLen := width - len(labels)

	line := []rune(strings.Repeat(" ", width))
	lastEnd := -2
	prev := ""
	for i, label := range labels {
		if label == prev {
			continue
		}
		prev = label
		start := padLen + i
		end := start + len([]rune(label))
		if end > width || start <= lastEnd+1 {
			continue
		}
		for j, ch := range []rune(label) {
			line[start+j] = ch
		}
		lastEnd = end
	}
	return lipgloss.NewStyle().Foreground(colorTick).Render(string(line))
}

// RenderThresholdScale renders a scale bar with the threshold marked and a
// diamond at the current value.
func RenderThresholdScale(current, rangeMin, rangeMax, threshold float64, width int) string {
	if width <= 0 {
		return ""
	}
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	clamp := func(v float64) int {
		pos := int(float64(width-1) * (v - rangeMin) / span)
		return max(0, min(width-1, pos))
	}
	thPos := clamp(threshold)
	curPos := clamp(current)

	dim := lipgloss.NewStyle().Foreground(colorEmpty)
	var sb strings.Builder
	for i := 0; i < width; i++ {
		switch i {
		case curPos:
			style := lipgloss.NewStyle().Foreground(TempColor(current, threshold)).Bold(true)
			sb.WriteString(style.Render("◆"))
		case thPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorThreshold).Render("▪"))
		default:
			sb.WriteString(dim.Render("·"))
		}
	}
	return sb.String()
}

// RenderTempValue renders a formatted value with its unit, colored against
// the threshold.
func RenderTempValue(value float64, text, suffix string, threshold float64) string {
	style := lipgloss.NewStyle().Foreground(TempColor(value, threshold))
	if value >= threshold {
		style = style.Bold(true)
	}
	return style.Render(text + suffix)
}
