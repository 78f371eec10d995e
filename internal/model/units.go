package model

import (
	"math"
	"strconv"
	"strings"
)

// MeasurementSystem selects how a length was entered at the register.
type MeasurementSystem string

const (
	Imperial MeasurementSystem = "imperial" // feet + inches
	Metric   MeasurementSystem = "metric"   // meters
)

// FeetPerMeter converts meters to feet.
const FeetPerMeter = 3.28084

// ParseMeasurementSystem converts user input into a MeasurementSystem.
// Anything other than "metric" is treated as imperial.
func ParseMeasurementSystem(s string) MeasurementSystem {
	if strings.EqualFold(strings.TrimSpace(s), string(Metric)) {
		return Metric
	}
	return Imperial
}

// ToFeet converts a mixed imperial or metric length into feet.
// Negative values pass through; callers reject non-positive lengths.
func ToFeet(system MeasurementSystem, feet, inches, meters float64) float64 {
	if system == Metric {
		return meters * FeetPerMeter
	}
	return feet + inches/12
}

// ToFeetFromInput is ToFeet over raw form strings. Missing or unparsable
// fields count as zero.
func ToFeetFromInput(system MeasurementSystem, feet, inches, meters string) float64 {
	return ToFeet(system, ParseNumber(feet), ParseNumber(inches), ParseNumber(meters))
}

// ParseNumber parses a finite decimal number, returning 0 for empty,
// invalid, NaN or infinite input.
func ParseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseCount parses a whole number of pieces, returning 0 for empty or
// invalid input.
func ParseCount(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
