package pattern

import (
	"math"
	"testing"
	"time"

	"github.com/blackwell-systems/glucowatch/internal/export"
)

// bolusFixture adds a 5-unit bolus with a baseline reading at the bolus
// time and the post-bolus low one hour later.
func bolusFixture(rs *export.RecordSet, at time.Time, baseline, low float64) {
	rs.Insulin = append(rs.Insulin, export.InsulinEvent{
		Timestamp: at,
		Units:     5,
		Kind:      export.InsulinBolus,
	})
	rs.Readings = append(rs.Readings,
		export.GlucoseReading{Timestamp: at, Value: baseline},
		export.GlucoseReading{Timestamp: at.Add(time.Hour), Value: low},
	)
}

func TestDetectInsulinDrift_WeakenedResponse(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	// Early half: 50 mg/dL drop per 5 units (10 per unit). Late half:
	// 25 mg/dL drop (5 per unit). Relative change is -50%.
	for day := 0; day < 4; day++ {
		bolusFixture(rs, base.AddDate(0, 0, day), 200, 150)
	}
	for day := 4; day < 8; day++ {
		bolusFixture(rs, base.AddDate(0, 0, day), 200, 175)
	}

	result := DetectInsulinDrift(rs)
	if !result.Detected {
		t.Fatalf("expected drift detected, got reason %q", result.Reason)
	}
	if math.Abs(result.Statistic-(-0.5)) > 1e-9 {
		t.Errorf("drift = %.4f, want -0.5", result.Statistic)
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence = %.2f, want 1.0 for a 50%% change", result.Confidence)
	}
	if result.SampleSize != 8 {
		t.Errorf("sample size = %d, want 8", result.SampleSize)
	}
}

func TestDetectInsulinDrift_StableResponse(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	for day := 0; day < 8; day++ {
		bolusFixture(rs, base.AddDate(0, 0, day), 200, 150)
	}

	result := DetectInsulinDrift(rs)
	if result.Detected {
		t.Error("identical early and late responses must not be reported as drift")
	}
	if result.SampleSize != 8 {
		t.Errorf("sample size = %d, want 8 even when not detected", result.SampleSize)
	}
}

func TestDetectInsulinDrift_TooFewMeasurableBoluses(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	for day := 0; day < 5; day++ {
		bolusFixture(rs, base.AddDate(0, 0, day), 200, 150)
	}

	result := DetectInsulinDrift(rs)
	if result.Detected {
		t.Error("5 measurable boluses is below the 3-per-half minimum")
	}
	if result.Reason == "" {
		t.Error("not-detected result should carry a reason")
	}
}

func TestDetectInsulinDrift_BasalOnlyRecords(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	for day := 0; day < 10; day++ {
		rs.Insulin = append(rs.Insulin, export.InsulinEvent{
			Timestamp: base.AddDate(0, 0, day),
			Units:     20,
			Kind:      export.InsulinBasal,
		})
	}

	result := DetectInsulinDrift(rs)
	if result.Detected {
		t.Error("basal records alone must not produce a drift detection")
	}
}

func TestDetectInsulinDrift_BolusesWithoutReadingsSkipped(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	rs := &export.RecordSet{}
	for day := 0; day < 8; day++ {
		bolusFixture(rs, base.AddDate(0, 0, day), 200, 150)
	}
	// A bolus with no glucose data near it contributes nothing.
	rs.Insulin = append(rs.Insulin, export.InsulinEvent{
		Timestamp: base.AddDate(0, 0, 30),
		Units:     5,
		Kind:      export.InsulinBolus,
	})

	result := DetectInsulinDrift(rs)
	if result.SampleSize != 8 {
		t.Errorf("sample size = %d, want 8 (uncovered bolus skipped)", result.SampleSize)
	}
}
