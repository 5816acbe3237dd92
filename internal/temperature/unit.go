package temperature

import (
	"fmt"
	"strings"
)

// Unit is the display unit. It never affects stored values.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
)

// ParseUnit accepts "C", "F", "celsius" or "fahrenheit" in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "celsius":
		return Celsius, nil
	case "f", "fahrenheit":
		return Fahrenheit, nil
	default:
		return Celsius, fmt.Errorf("unknown unit %q (allowed: C, F)", s)
	}
}

// Other returns the unit a toggle switches to.
func (u Unit) Other() Unit {
	if u == Celsius {
		return Fahrenheit
	}
	return Celsius
}

// Suffix is the unit symbol shown next to a value.
func (u Unit) Suffix() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

func (u Unit) String() string {
	if u == Fahrenheit {
		return "fahrenheit"
	}
	return "celsius"
}

// ToFahrenheit converts Celsius to Fahrenheit.
func ToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// ToCelsius converts Fahrenheit to Celsius.
func ToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// Convert renders a stored Celsius value in the given unit. Every display
// path (readout, chart points, threshold line) goes through here so the
// numbers always agree.
func Convert(c float64, u Unit) float64 {
	if u == Fahrenheit {
		return ToFahrenheit(c)
	}
	return c
}

// Format renders a Celsius value in the given unit with one decimal place.
func Format(c float64, u Unit) string {
	return fmt.Sprintf("%.1f", Convert(c, u))
}
