// Package history turns a newest-first temperature series into the
// oldest-first points the chart draws, with min/peak/avg statistics.
package history

import (
	"math"
	"time"

	"github.com/luki/tempwatch/internal/temperature"
)

// Point is a single data point on the chart, already in display units.
type Point struct {
	Temp float64
	Time time.Time
}

// Chronological reverses a newest-first series into oldest-first points,
// converting each value into the given unit.
func Chronological(s temperature.Series, unit temperature.Unit) []Point {
	if len(s) == 0 {
		return nil
	}
	pts := make([]Point, len(s))
	for i, r := range s {
		pts[len(s)-1-i] = Point{
			Temp: temperature.Convert(r.Celsius, unit),
			Time: r.CollectedAt,
		}
	}
	return pts
}

// LastN returns the last n points (the newest ones).
func LastN(pts []Point, n int) []Point {
	if n <= 0 || len(pts) == 0 {
		return nil
	}
	start := len(pts) - n
	if start < 0 {
		start = 0
	}
	out := make([]Point, len(pts[start:]))
	copy(out, pts[start:])
	return out
}

// Stats summarizes a set of points.
type Stats struct {
	Min  float64
	Peak float64
	Avg  float64
}

// Summarize returns min/peak/avg, or false for an empty slice.
func Summarize(pts []Point) (Stats, bool) {
	if len(pts) == 0 {
		return Stats{}, false
	}
	st := Stats{Min: math.MaxFloat64, Peak: -math.MaxFloat64}
	sum := 0.0
	for _, p := range pts {
		if p.Temp < st.Min {
			st.Min = p.Temp
		}
		if p.Temp > st.Peak {
			st.Peak = p.Temp
		}
		sum += p.Temp
	}
	st.Avg = sum / float64(len(pts))
	return st, true
}

// Nearest returns the index of the point closest in time to t.
// pts must be oldest-first and non-empty.
func Nearest(pts []Point, t time.Time) int {
	best := 0
	bestDiff := absDuration(pts[0].Time.Sub(t))
	for i, p := range pts {
		diff := absDuration(p.Time.Sub(t))
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
		if p.Time.After(t) && diff > bestDiff {
			break
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
