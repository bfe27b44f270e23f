package pattern

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/blackwell-systems/glucowatch/internal/export"
)

// Dawn-phenomenon detection constants. The morning window and the
// per-day evaluability threshold were validated against labeled
// fixtures; see dawn_test.go.
const (
	dawnWindowStartHour = 4
	dawnWindowEndHour   = 8

	// dawnSlopeThreshold classifies a morning as rising when the fitted
	// glucose slope exceeds this many mg/dL per hour.
	dawnSlopeThreshold = 5.0

	// dawnMinReadingsPerDay is the minimum number of readings inside
	// the morning window for a day to be evaluable at all. Days below
	// this are excluded from both numerator and denominator.
	dawnMinReadingsPerDay = 4

	// dawnMinEvaluableDays is the minimum number of evaluable days
	// before the detector reports anything.
	dawnMinEvaluableDays = 3

	// dawnDetectConfidence is the fraction of evaluable days that must
	// be rising before the pattern counts as detected.
	dawnDetectConfidence = 0.3
)

// DetectDawn looks for a recurring early-morning glucose rise. For each
// calendar day it fits a least-squares slope to the readings whose
// local time falls between 04:00 and 08:00 and classifies the day as
// rising when the slope exceeds dawnSlopeThreshold mg/dL per hour.
// Confidence is rising days over evaluable days.
func DetectDawn(rs *export.RecordSet) Result {
	byDay := make(map[string][]export.GlucoseReading)
	for _, r := range rs.SortedReadings() {
		h := r.Timestamp.Hour()
		if h < dawnWindowStartHour || h >= dawnWindowEndHour {
			continue
		}
		day := r.Timestamp.Format("2006-01-02")
		byDay[day] = append(byDay[day], r)
	}

	evaluable := 0
	rising := 0
	var slopeSum float64

	for _, readings := range byDay {
		if len(readings) < dawnMinReadingsPerDay {
			continue
		}
		evaluable++

		slope := morningSlope(readings)
		slopeSum += slope
		if slope > dawnSlopeThreshold {
			rising++
		}
	}

	if evaluable < dawnMinEvaluableDays {
		return notDetected(DawnPhenomenon,
			fmt.Sprintf("only %d mornings had enough readings (need %d)", evaluable, dawnMinEvaluableDays))
	}

	confidence := float64(rising) / float64(evaluable)
	meanSlope := slopeSum / float64(evaluable)

	if confidence < dawnDetectConfidence {
		r := notDetected(DawnPhenomenon,
			fmt.Sprintf("morning rise on %d of %d days is below the reporting threshold", rising, evaluable))
		r.SampleSize = evaluable
		return r
	}

	return Result{
		Type:       DawnPhenomenon,
		Detected:   true,
		Confidence: confidence,
		SampleSize: evaluable,
		Statistic:  meanSlope,
		Description: fmt.Sprintf(
			"Glucose rose during the early morning (04:00-08:00) on %d of %d days, averaging %.1f mg/dL per hour.",
			rising, evaluable, meanSlope),
		Recommendation: "review overnight basal coverage and morning routine with a clinician",
	}
}

// morningSlope fits glucose over elapsed minutes and returns the slope
// in mg/dL per hour.
func morningSlope(readings []export.GlucoseReading) float64 {
	xs := make([]float64, len(readings))
	ys := make([]float64, len(readings))
	start := readings[0].Timestamp
	for i, r := range readings {
		xs[i] = r.Timestamp.Sub(start).Minutes()
		ys[i] = r.Value
	}
	_, perMinute := stat.LinearRegression(xs, ys, nil, false)
	return perMinute * 60
}
