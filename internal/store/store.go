// Package store holds the dashboard's sample state: the latest reading,
// the latest hourly series, the display unit and the alert threshold.
// Values are kept in Celsius and replaced wholesale on every refresh.
package store

import (
	"fmt"
	"math"

	"github.com/luki/tempwatch/internal/temperature"
)

// Store is owned by a single event loop and needs no locking.
type Store struct {
	latest    temperature.Reading
	hasLatest bool
	state     temperature.AlertState
	series    temperature.Series
	unit      temperature.Unit
	threshold float64

	// initial is the host-provided temperature shown until the first
	// latest fetch lands. It carries no timestamp.
	initial    float64
	hasInitial bool
}

// Snapshot is a value copy of the store for rendering and scheduling.
type Snapshot struct {
	Latest     temperature.Reading
	HasLatest  bool
	State      temperature.AlertState
	Series     temperature.Series
	Unit       temperature.Unit
	Threshold  float64
	Initial    float64
	HasInitial bool
}

// New creates a store with a fixed threshold and an initial alert state.
func New(threshold float64, unit temperature.Unit, state temperature.AlertState) (*Store, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("threshold %v is not a finite number", threshold)
	}
	return &Store{threshold: threshold, unit: unit, state: state}, nil
}

// SetInitial records the host-provided starting temperature.
func (s *Store) SetInitial(c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return fmt.Errorf("initial temperature %v is not a finite number", c)
	}
	s.initial = c
	s.hasInitial = true
	return nil
}

// SetLatest replaces the latest reading and its alert state. Invalid
// readings are rejected and the stored one is kept.
func (s *Store) SetLatest(r temperature.Reading, state temperature.AlertState) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("latest reading: %w", err)
	}
	s.latest = r
	s.hasLatest = true
	s.state = state
	return nil
}

// SetSeries replaces the hourly series. An empty series is valid.
func (s *Store) SetSeries(series temperature.Series) error {
	if err := series.Validate(); err != nil {
		return fmt.Errorf("hourly series: %w", err)
	}
	cp := make(temperature.Series, len(series))
	copy(cp, series)
	s.series = cp
	return nil
}

// Unit returns the current display unit.
func (s *Store) Unit() temperature.Unit { return s.unit }

// SetUnit sets the display unit.
func (s *Store) SetUnit(u temperature.Unit) { s.unit = u }

// Toggle flips the display unit and returns the new one.
func (s *Store) Toggle() temperature.Unit {
	s.unit = s.unit.Other()
	return s.unit
}

// Series returns the held series (newest first).
func (s *Store) Series() temperature.Series { return s.series }


// Snapshot copies the current state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Latest:     s.latest,
		HasLatest:  s.hasLatest,
		State:      s.state,
		Series:     s.series,
		Unit:       s.unit,
		Threshold:  s.threshold,
		Initial:    s.initial,
		HasInitial: s.hasInitial,
	}
}

// Current returns the temperature to show in the readout: the latest
// fetched reading, else the initial value.
func (sn Snapshot) Current() (float64, bool) {
	if sn.HasLatest {
		return sn.Latest.Celsius, true
	}
	if sn.HasInitial {
		return sn.Initial, true
	}
	return 0, false
}
