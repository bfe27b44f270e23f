package pattern

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/blackwell-systems/glucowatch/internal/export"
)

// Insulin-sensitivity drift constants.
const (
	// insulinResponseWindow is how long after a bolus the glucose
	// response is measured.
	insulinResponseWindow = 2 * time.Hour

	// insulinBaselineMaxAge bounds baseline staleness, matching the
	// meal detector.
	insulinBaselineMaxAge = 30 * time.Minute

	// insulinComparableSpread keeps only boluses within this relative
	// distance of the median bolus size, so early and late groups
	// compare like with like.
	insulinComparableSpread = 0.5

	// insulinMinPerHalf is the minimum number of measurable boluses in
	// each half of the window.
	insulinMinPerHalf = 3

	// insulinDriftThreshold is the relative change in per-unit response
	// between the early and late halves that counts as drift.
	insulinDriftThreshold = 0.25
)

// bolusResponse is the measured glucose drop per unit for one bolus.
type bolusResponse struct {
	at      time.Time
	perUnit float64
}

// DetectInsulinDrift compares the glucose response per unit of insulin
// between the early and late halves of the analysis window, over
// boluses of comparable size. A sustained relative change suggests the
// configured sensitivity factor no longer matches reality.
func DetectInsulinDrift(rs *export.RecordSet) Result {
	boluses := comparableBoluses(rs.SortedInsulin())
	if len(boluses) == 0 {
		return notDetected(InsulinSensitivityDrift, "no bolus records in export")
	}

	readings := rs.SortedReadings()
	var responses []bolusResponse

	for _, b := range boluses {
		baseline, ok := baselineNear(readings, b.Timestamp)
		if !ok {
			continue
		}
		low, ok := minAfter(readings, b.Timestamp)
		if !ok {
			continue
		}
		drop := baseline - low
		if drop <= 0 {
			// Glucose never fell; the meal likely outran the bolus.
			// Still a data point for the response average.
			drop = 0
		}
		responses = append(responses, bolusResponse{at: b.Timestamp, perUnit: drop / b.Units})
	}

	if len(responses) < 2*insulinMinPerHalf {
		return notDetected(InsulinSensitivityDrift,
			fmt.Sprintf("only %d boluses had measurable responses (need %d)", len(responses), 2*insulinMinPerHalf))
	}

	sort.Slice(responses, func(i, j int) bool { return responses[i].at.Before(responses[j].at) })
	mid := len(responses) / 2
	early := perUnitValues(responses[:mid])
	late := perUnitValues(responses[mid:])

	earlyMean := stat.Mean(early, nil)
	lateMean := stat.Mean(late, nil)
	if earlyMean <= 0 {
		return notDetected(InsulinSensitivityDrift, "early-window insulin response too weak to compare")
	}

	drift := (lateMean - earlyMean) / earlyMean
	if math.Abs(drift) < insulinDriftThreshold {
		r := notDetected(InsulinSensitivityDrift,
			fmt.Sprintf("per-unit response changed %.0f%%, within normal variation", drift*100))
		r.SampleSize = len(responses)
		return r
	}

	direction := "weakened"
	if drift > 0 {
		direction = "strengthened"
	}

	return Result{
		Type:       InsulinSensitivityDrift,
		Detected:   true,
		Confidence: math.Min(1, math.Abs(drift)/(2*insulinDriftThreshold)),
		SampleSize: len(responses),
		Statistic:  drift,
		Description: fmt.Sprintf(
			"Glucose response per unit of insulin %s by %.0f%% between the start and end of the window (%.1f vs %.1f mg/dL per unit, %d boluses).",
			direction, math.Abs(drift)*100, earlyMean, lateMean, len(responses)),
		Recommendation: "discuss insulin sensitivity factor settings with a clinician",
	}
}

// comparableBoluses filters bolus events down to those within
// insulinComparableSpread of the median bolus size.
func comparableBoluses(events []export.InsulinEvent) []export.InsulinEvent {
	var boluses []export.InsulinEvent
	for _, e := range events {
		if e.Kind == export.InsulinBolus && e.Units > 0 {
			boluses = append(boluses, e)
		}
	}
	if len(boluses) == 0 {
		return nil
	}

	sizes := make([]float64, len(boluses))
	for i, b := range boluses {
		sizes[i] = b.Units
	}
	sort.Float64s(sizes)
	median := stat.Quantile(0.5, stat.Empirical, sizes, nil)

	var comparable []export.InsulinEvent
	for _, b := range boluses {
		if math.Abs(b.Units-median) <= median*insulinComparableSpread {
			comparable = append(comparable, b)
		}
	}
	return comparable
}

func perUnitValues(responses []bolusResponse) []float64 {
	vs := make([]float64, len(responses))
	for i, r := range responses {
		vs[i] = r.perUnit
	}
	return vs
}

// baselineNear returns the closest reading at or before t, no older
// than insulinBaselineMaxAge.
func baselineNear(readings []export.GlucoseReading, t time.Time) (float64, bool) {
	for i := len(readings) - 1; i >= 0; i-- {
		ts := readings[i].Timestamp
		if ts.After(t) {
			continue
		}
		if t.Sub(ts) > insulinBaselineMaxAge {
			return 0, false
		}
		return readings[i].Value, true
	}
	return 0, false
}

// minAfter returns the lowest reading within the response window after t.
func minAfter(readings []export.GlucoseReading, t time.Time) (float64, bool) {
	end := t.Add(insulinResponseWindow)
	low := 0.0
	found := false
	for _, r := range readings {
		if !r.Timestamp.After(t) {
			continue
		}
		if r.Timestamp.After(end) {
			break
		}
		if !found || r.Value < low {
			low = r.Value
			found = true
		}
	}
	return low, found
}
