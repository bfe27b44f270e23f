package pattern

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/blackwell-systems/glucowatch/internal/export"
)

// Activity-response constants.
const (
	activityPreWindow  = 60 * time.Minute
	activityPostWindow = 60 * time.Minute

	// activityMinEvents is the minimum number of evaluable activity
	// events before the correlator reports.
	activityMinEvents = 2

	// activityMinShift is the minimum absolute mean glucose shift, in
	// mg/dL, worth reporting.
	activityMinShift = 10.0

	// activityMinConsistency is the fraction of events that must shift
	// in the same direction for the response to count as a pattern.
	activityMinConsistency = 0.7
)

// DetectActivityResponse compares mean glucose before each activity
// event against mean glucose after it and aggregates the shift across
// events. Activity records are optional in most exports: their absence
// yields a not-detected result, never an error.
func DetectActivityResponse(rs *export.RecordSet) Result {
	if len(rs.Activity) == 0 {
		return notDetected(ActivityResponse, "no activity records in export")
	}

	readings := rs.SortedReadings()
	var shifts []float64

	for _, act := range rs.Activity {
		end := act.Timestamp.Add(time.Duration(act.DurationMinutes) * time.Minute)

		pre := meanInWindow(readings, act.Timestamp.Add(-activityPreWindow), act.Timestamp)
		post := meanInWindow(readings, end, end.Add(activityPostWindow))
		if math.IsNaN(pre) || math.IsNaN(post) {
			continue
		}
		shifts = append(shifts, post-pre)
	}

	if len(shifts) < activityMinEvents {
		return notDetected(ActivityResponse,
			fmt.Sprintf("only %d activity events had surrounding glucose data (need %d)", len(shifts), activityMinEvents))
	}

	meanShift := stat.Mean(shifts, nil)
	if math.Abs(meanShift) < activityMinShift {
		r := notDetected(ActivityResponse,
			fmt.Sprintf("mean glucose shift of %.1f mg/dL around activity is negligible", meanShift))
		r.SampleSize = len(shifts)
		return r
	}

	// Consistency: fraction of events shifting in the majority
	// direction.
	matching := 0
	for _, s := range shifts {
		if (s < 0) == (meanShift < 0) {
			matching++
		}
	}
	consistency := float64(matching) / float64(len(shifts))

	if consistency < activityMinConsistency {
		r := notDetected(ActivityResponse,
			fmt.Sprintf("glucose response to activity is inconsistent (%d of %d events agree)", matching, len(shifts)))
		r.SampleSize = len(shifts)
		return r
	}

	direction := "dropped"
	if meanShift > 0 {
		direction = "rose"
	}

	return Result{
		Type:       ActivityResponse,
		Detected:   true,
		Confidence: consistency,
		SampleSize: len(shifts),
		Statistic:  meanShift,
		Description: fmt.Sprintf(
			"Glucose %s by %.0f mg/dL on average around %d recorded activity sessions.",
			direction, math.Abs(meanShift), len(shifts)),
		Recommendation: "consider pre-activity carb or insulin adjustments matched to this response",
	}
}

// meanInWindow returns the mean of readings in [start, end], or NaN
// when the window holds no readings.
func meanInWindow(readings []export.GlucoseReading, start, end time.Time) float64 {
	var sum float64
	n := 0
	for _, r := range readings {
		if r.Timestamp.Before(start) {
			continue
		}
		if r.Timestamp.After(end) {
			break
		}
		sum += r.Value
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
