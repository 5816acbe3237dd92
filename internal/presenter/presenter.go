// Package presenter shapes the store's state into the strings and series
// the dashboard draws. It does no I/O and holds no state.
package presenter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/luki/tempwatch/internal/history"
	"github.com/luki/tempwatch/internal/store"
	"github.com/luki/tempwatch/internal/temperature"
)

const (
	placeholder     = "--.-"
	timestampLayout = "2006-01-02 15:04:05"
	clockLayout     = "15:04"
)

// View is everything one render pass needs.
type View struct {
	Readout     string
	UnitSuffix  string
	ToggleLabel string
	LastUpdated string
	NextUpdate  string
	State       temperature.AlertState
	Chart       *ChartData // nil when there is no series to draw
}

// StateClass is the visual class for the alert state.
func (v View) StateClass() string { return v.State.String() }

// ChartData is the labeled series plus the flat threshold line, oldest
// first and already converted to the display unit.
type ChartData struct {
	Labels         []string
	Points         []history.Point
	Values         []float64
	Threshold      []float64
	SeriesLabel    string
	ThresholdLabel string
	ThresholdValue float64
}

// Options carries render inputs that are not part of the stored samples.
type Options struct {
	NextFire time.Time      // zero when the scheduler is idle
	Location *time.Location // nil means time.Local
}

// Present renders a snapshot.
func Present(snap store.Snapshot, opts Options) View {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	v := View{
		Readout:     placeholder,
		UnitSuffix:  snap.Unit.Suffix(),
		ToggleLabel: "Switch to " + snap.Unit.Other().Suffix(),
		State:       snap.State,
	}

	if c, ok := snap.Current(); ok {
		v.Readout = temperature.Format(c, snap.Unit)
	}
	if snap.HasLatest {
		v.LastUpdated = "Last updated: " + snap.Latest.CollectedAt.In(loc).Format(timestampLayout)
	}
	if !opts.NextFire.IsZero() {
		v.NextUpdate = "Next update at " + opts.NextFire.In(loc).Format(clockLayout)
	}

	v.Chart = BuildChart(snap.Series, snap.Threshold, snap.Unit, loc)
	return v
}

// BuildChart returns nil for an empty series.
func BuildChart(series temperature.Series, threshold float64, unit temperature.Unit, loc *time.Location) *ChartData {
	if len(series) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	pts := history.Chronological(series, unit)
	th := temperature.Convert(threshold, unit)

	cd := &ChartData{
		Labels:         make([]string, len(pts)),
		Points:         pts,
		Values:         make([]float64, len(pts)),
		Threshold:      make([]float64, len(pts)),
		SeriesLabel:    fmt.Sprintf("Temperature (%s)", unit.Suffix()),
		ThresholdLabel: ThresholdLabel(threshold, unit),
		ThresholdValue: th,
	}
	for i, p := range pts {
		cd.Labels[i] = p.Time.In(loc).Format(clockLayout)
		cd.Values[i] = p.Temp
		cd.Threshold[i] = th
	}
	return cd
}

// ThresholdLabel prints the configured Celsius value as given, and the
// Fahrenheit value to one decimal place.
func ThresholdLabel(threshold float64, unit temperature.Unit) string {
	if unit == temperature.Fahrenheit {
		return fmt.Sprintf("Threshold (%s°F)", temperature.Format(threshold, unit))
	}
	return fmt.Sprintf("Threshold (%s°C)", strconv.FormatFloat(threshold, 'f', -1, 64))
}
