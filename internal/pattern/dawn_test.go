package pattern

import (
	"math"
	"testing"
	"time"

	"github.com/blackwell-systems/glucowatch/internal/export"
)

// morningFixture builds readings every 30 minutes between 04:00 and
// 08:00 for the given day. slopePerHour controls the rise; 0 is flat.
func morningFixture(day time.Time, slopePerHour float64) []export.GlucoseReading {
	var readings []export.GlucoseReading
	start := time.Date(day.Year(), day.Month(), day.Day(), 4, 0, 0, 0, time.Local)
	for m := 0; m < 240; m += 30 {
		ts := start.Add(time.Duration(m) * time.Minute)
		readings = append(readings, export.GlucoseReading{
			Timestamp: ts,
			Value:     100 + slopePerHour*float64(m)/60,
		})
	}
	return readings
}

func TestDetectDawn_EightOfTenDaysRising(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	for day := 0; day < 10; day++ {
		slope := 8.0 // clearly above the 5 mg/dL per hour threshold
		if day >= 8 {
			slope = 0 // two flat days
		}
		rs.Readings = append(rs.Readings, morningFixture(base.AddDate(0, 0, day), slope)...)
	}

	result := DetectDawn(rs)
	if !result.Detected {
		t.Fatalf("expected dawn pattern detected, got reason %q", result.Reason)
	}
	if math.Abs(result.Confidence-0.8) > 1e-9 {
		t.Errorf("confidence = %.4f, want 0.8 (8 of 10 days)", result.Confidence)
	}
	if result.SampleSize != 10 {
		t.Errorf("sample size = %d, want 10", result.SampleSize)
	}
	if result.Statistic <= 5.0 {
		t.Errorf("mean slope statistic = %.2f, should exceed threshold", result.Statistic)
	}
}

func TestDetectDawn_SparseDaysExcludedFromBothSides(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	// Four full rising mornings plus one morning with too few readings
	// to evaluate. Confidence must be 4/4, not 4/5.
	for day := 0; day < 4; day++ {
		rs.Readings = append(rs.Readings, morningFixture(base.AddDate(0, 0, day), 8.0)...)
	}
	sparse := morningFixture(base.AddDate(0, 0, 4), 0)[:2]
	rs.Readings = append(rs.Readings, sparse...)

	result := DetectDawn(rs)
	if !result.Detected {
		t.Fatalf("expected detection, got reason %q", result.Reason)
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence = %.4f, want 1.0 (sparse day must not dilute)", result.Confidence)
	}
	if result.SampleSize != 4 {
		t.Errorf("sample size = %d, want 4", result.SampleSize)
	}
}

func TestDetectDawn_TooFewEvaluableDays(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	for day := 0; day < 2; day++ {
		rs.Readings = append(rs.Readings, morningFixture(base.AddDate(0, 0, day), 10.0)...)
	}

	result := DetectDawn(rs)
	if result.Detected {
		t.Error("2 evaluable days must report not-detected, not a confidence value")
	}
	if result.Reason == "" {
		t.Error("not-detected result should carry a reason")
	}
}

func TestDetectDawn_FlatMorningsNotDetected(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	for day := 0; day < 10; day++ {
		rs.Readings = append(rs.Readings, morningFixture(base.AddDate(0, 0, day), 0)...)
	}

	result := DetectDawn(rs)
	if result.Detected {
		t.Error("flat mornings must not be detected as a dawn pattern")
	}
}

func TestDetectDawn_NoReadings(t *testing.T) {
	result := DetectDawn(&export.RecordSet{})
	if result.Detected {
		t.Error("empty record set must not detect anything")
	}
	if result.Type != DawnPhenomenon {
		t.Errorf("result must carry its pattern type, got %q", result.Type)
	}
}
