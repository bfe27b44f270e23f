package pattern

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/glucowatch/internal/export"
)

// Post-meal spike detection constants. The post-event window bounds
// were validated against labeled fixtures; see meal_test.go.
const (
	// mealBaselineMaxAge bounds how stale the pre-meal baseline reading
	// may be. A CGM reporting every 5-15 minutes always has one inside
	// this window when the sensor was worn.
	mealBaselineMaxAge = 30 * time.Minute

	// Post-event window: the excursion peak is searched between 30 and
	// 180 minutes after the carb event.
	mealPostWindowStart = 30 * time.Minute
	mealPostWindowEnd   = 180 * time.Minute

	// A meal is a spike when the rise over baseline exceeds
	// mealSpikeDelta mg/dL or the peak reaches mealSpikeCeiling mg/dL.
	mealSpikeDelta   = 50.0
	mealSpikeCeiling = 250.0

	// mealMinEvaluable is the minimum number of meals with both a
	// baseline and post-window data before the detector reports.
	mealMinEvaluable = 3

	// mealDetectRate is the spike rate at which the pattern counts as
	// detected.
	mealDetectRate = 0.5
)

// DetectMealSpikes measures how often carbohydrate intake is followed
// by a large glucose excursion. Meals lacking a baseline reading or any
// post-window readings are excluded from both numerator and
// denominator.
func DetectMealSpikes(rs *export.RecordSet) Result {
	if len(rs.Carbs) == 0 {
		return notDetected(PostMealSpike, "no carbohydrate records in export")
	}

	readings := rs.SortedReadings()
	evaluable := 0
	spikes := 0
	var riseSum float64

	for _, meal := range rs.Carbs {
		baseline, ok := baselineBefore(readings, meal.Timestamp)
		if !ok {
			continue
		}
		peak, ok := peakAfter(readings, meal.Timestamp)
		if !ok {
			continue
		}

		evaluable++
		rise := peak - baseline
		riseSum += rise
		if rise > mealSpikeDelta || peak >= mealSpikeCeiling {
			spikes++
		}
	}

	if evaluable < mealMinEvaluable {
		return notDetected(PostMealSpike,
			fmt.Sprintf("only %d meals had surrounding glucose data (need %d)", evaluable, mealMinEvaluable))
	}

	spikeRate := float64(spikes) / float64(evaluable)
	meanRise := riseSum / float64(evaluable)

	if spikeRate < mealDetectRate {
		r := notDetected(PostMealSpike,
			fmt.Sprintf("spikes after %d of %d meals is below the reporting threshold", spikes, evaluable))
		r.SampleSize = evaluable
		r.Statistic = spikeRate
		return r
	}

	return Result{
		Type:       PostMealSpike,
		Detected:   true,
		Confidence: spikeRate,
		SampleSize: evaluable,
		Statistic:  spikeRate,
		Description: fmt.Sprintf(
			"%d of %d meals were followed by a large glucose excursion (mean rise %.0f mg/dL within 3 hours).",
			spikes, evaluable, meanRise),
		Recommendation: "review pre-meal bolus timing and meal composition",
	}
}

// baselineBefore returns the closest reading at or before t, no older
// than mealBaselineMaxAge.
func baselineBefore(readings []export.GlucoseReading, t time.Time) (float64, bool) {
	for i := len(readings) - 1; i >= 0; i-- {
		ts := readings[i].Timestamp
		if ts.After(t) {
			continue
		}
		if t.Sub(ts) > mealBaselineMaxAge {
			return 0, false
		}
		return readings[i].Value, true
	}
	return 0, false
}

// peakAfter returns the maximum reading inside the post-meal window.
func peakAfter(readings []export.GlucoseReading, t time.Time) (float64, bool) {
	windowStart := t.Add(mealPostWindowStart)
	windowEnd := t.Add(mealPostWindowEnd)

	peak := 0.0
	found := false
	for _, r := range readings {
		if r.Timestamp.Before(windowStart) {
			continue
		}
		if r.Timestamp.After(windowEnd) {
			break
		}
		if !found || r.Value > peak {
			peak = r.Value
			found = true
		}
	}
	return peak, found
}
