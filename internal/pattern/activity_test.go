package pattern

import (
	"math"
	"testing"
	"time"

	"github.com/blackwell-systems/glucowatch/internal/export"
)

// activityFixture adds a 30-minute activity event with a reading shortly
// before the start and another shortly after the end.
func activityFixture(rs *export.RecordSet, at time.Time, before, after float64) {
	rs.Activity = append(rs.Activity, export.ActivityEvent{
		Timestamp:       at,
		DurationMinutes: 30,
	})
	rs.Readings = append(rs.Readings,
		export.GlucoseReading{Timestamp: at.Add(-20 * time.Minute), Value: before},
		export.GlucoseReading{Timestamp: at.Add(50 * time.Minute), Value: after},
	)
}

func TestDetectActivityResponse_NoActivityRecords(t *testing.T) {
	// Most exports omit activity records entirely. That is a valid
	// not-detected outcome, never an error and never a zero-confidence
	// false positive.
	result := DetectActivityResponse(&export.RecordSet{
		Readings: []export.GlucoseReading{
			{Timestamp: time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local), Value: 120},
		},
	})
	if result.Detected {
		t.Fatal("no activity records must report not-detected")
	}
	if result.Confidence != 0 {
		t.Errorf("not-detected confidence must be 0, got %.2f", result.Confidence)
	}
	if result.Reason == "" {
		t.Error("not-detected result should carry a reason")
	}
}

func TestDetectActivityResponse_ConsistentDrop(t *testing.T) {
	base := time.Date(2024, 3, 1, 17, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	for day := 0; day < 3; day++ {
		activityFixture(rs, base.AddDate(0, 0, day), 150, 110)
	}

	result := DetectActivityResponse(rs)
	if !result.Detected {
		t.Fatalf("expected detection, got reason %q", result.Reason)
	}
	if math.Abs(result.Statistic-(-40)) > 1e-9 {
		t.Errorf("mean shift = %.2f, want -40", result.Statistic)
	}
	if result.SampleSize != 3 {
		t.Errorf("sample size = %d, want 3", result.SampleSize)
	}
	if result.Confidence != 1.0 {
		t.Errorf("consistency = %.2f, want 1.0", result.Confidence)
	}
}

func TestDetectActivityResponse_NegligibleShift(t *testing.T) {
	base := time.Date(2024, 3, 1, 17, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	for day := 0; day < 3; day++ {
		activityFixture(rs, base.AddDate(0, 0, day), 120, 118)
	}

	result := DetectActivityResponse(rs)
	if result.Detected {
		t.Error("a 2 mg/dL shift must not count as an activity response")
	}
}

func TestDetectActivityResponse_InconsistentDirection(t *testing.T) {
	base := time.Date(2024, 3, 1, 17, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	// Two drops of 60 and one rise of 60: the mean shift of -20 mg/dL
	// clears the magnitude floor, but only 2 of 3 events agree on
	// direction.
	activityFixture(rs, base, 160, 100)
	activityFixture(rs, base.AddDate(0, 0, 1), 160, 100)
	activityFixture(rs, base.AddDate(0, 0, 2), 100, 160)

	result := DetectActivityResponse(rs)
	if result.Detected {
		t.Error("shifts that disagree on direction must not be reported as a pattern")
	}
}

func TestDetectActivityResponse_EventsWithoutReadingsExcluded(t *testing.T) {
	base := time.Date(2024, 3, 1, 17, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	activityFixture(rs, base, 150, 110)
	// One event with no surrounding readings at all.
	rs.Activity = append(rs.Activity, export.ActivityEvent{
		Timestamp:       base.AddDate(0, 0, 10),
		DurationMinutes: 45,
	})

	result := DetectActivityResponse(rs)
	if result.Detected {
		t.Error("one evaluable event is below the minimum; expected not-detected")
	}
}
