package model

import (
	"math"
	"testing"
)

func TestToFeetImperial(t *testing.T) {
	got := ToFeet(Imperial, 8, 6, 0)
	if got != 8.5 {
		t.Errorf("expected 8.5ft, got %f", got)
	}
}

func TestToFeetImperialIgnoresMeters(t *testing.T) {
	got := ToFeet(Imperial, 2, 0, 10)
	if got != 2 {
		t.Errorf("expected meters to be ignored for imperial input, got %f", got)
	}
}

func TestToFeetMetric(t *testing.T) {
	got := ToFeet(Metric, 5, 5, 2)
	if math.Abs(got-6.56168) > 1e-9 {
		t.Errorf("expected 6.56168ft, got %f", got)
	}
}

func TestToFeetInchesAboveTwelve(t *testing.T) {
	got := ToFeet(Imperial, 1, 18, 0)
	if got != 2.5 {
		t.Errorf("expected 2.5ft, got %f", got)
	}
}

func TestToFeetFromInputDefaultsToZero(t *testing.T) {
	if got := ToFeetFromInput(Imperial, "", "abc", ""); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
	if got := ToFeetFromInput(Imperial, " 3 ", "", ""); got != 3 {
		t.Errorf("expected 3 for padded input, got %f", got)
	}
	if got := ToFeetFromInput(Metric, "", "", "1"); got != FeetPerMeter {
		t.Errorf("expected %f, got %f", FeetPerMeter, got)
	}
}

func TestToFeetNegativePassesThrough(t *testing.T) {
	if got := ToFeet(Imperial, -2, 0, 0); got != -2 {
		t.Errorf("expected -2, got %f", got)
	}
}

func TestParseMeasurementSystem(t *testing.T) {
	if ParseMeasurementSystem("METRIC") != Metric {
		t.Error("expected metric")
	}
	if ParseMeasurementSystem("") != Imperial {
		t.Error("expected empty input to default to imperial")
	}
}

func TestParseCount(t *testing.T) {
	if ParseCount("4") != 4 {
		t.Error("expected 4")
	}
	if ParseCount("4.5") != 0 {
		t.Error("expected fractional count to be rejected")
	}
}

func TestParseNumberRejectsNonFinite(t *testing.T) {
	for _, s := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "infinity", "-Infinity"} {
		if got := ParseNumber(s); got != 0 {
			t.Errorf("ParseNumber(%q) = %f, expected 0", s, got)
		}
	}
	if got := ToFeetFromInput(Imperial, "Inf", "", ""); got != 0 {
		t.Errorf("expected 0 feet for infinite input, got %f", got)
	}
	if got := ParseNumber("2.5"); got != 2.5 {
		t.Errorf("expected 2.5, got %f", got)
	}
}
