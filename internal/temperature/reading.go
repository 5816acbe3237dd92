// Package temperature holds the domain types shared by the dashboard:
// a single timestamped reading, a newest-first series of readings, the
// display unit and the server-supplied alert state.
package temperature

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Reading is one timestamped temperature observation. Values are always
// stored in Celsius; conversion happens at render time.
type Reading struct {
	Celsius     float64
	CollectedAt time.Time
}

// Validate reports whether the reading carries a finite temperature and a
// real timestamp.
func (r Reading) Validate() error {
	if math.IsNaN(r.Celsius) || math.IsInf(r.Celsius, 0) {
		return fmt.Errorf("temperature %v is not a finite number", r.Celsius)
	}
	if r.CollectedAt.IsZero() {
		return errors.New("reading has no collection time")
	}
	return nil
}

// Series is an ordered batch of readings, newest first as delivered by the
// hourly endpoint.
type Series []Reading

// Newest returns the first element of the series.
func (s Series) Newest() (Reading, bool) {
	if len(s) == 0 {
		return Reading{}, false
	}
	return s[0], true
}

// Validate checks every reading in the series.
func (s Series) Validate() error {
	for i, r := range s {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("series[%d]: %w", i, err)
		}
	}
	return nil
}

// AlertState is the server's classification of the latest reading.
type AlertState int

const (
	Transition AlertState = iota
	Alert
	Normal
)

// StateFromFlags maps the is_alert/is_normal pair onto an AlertState.
// is_alert wins if both are set; both false means Transition.
func StateFromFlags(isAlert, isNormal bool) AlertState {
	switch {
	case isAlert:
		return Alert
	case isNormal:
		return Normal
	default:
		return Transition
	}
}

func (a AlertState) String() string {
	switch a {
	case Alert:
		return "alert"
	case Normal:
		return "normal"
	default:
		return "transition"
	}
}
