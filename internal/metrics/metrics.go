// Package metrics computes aggregate glucose statistics from parsed
// CGM readings.
package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/blackwell-systems/glucowatch/internal/export"
)

// Clinical cut-points in mg/dL. A value exactly on a boundary belongs
// to the higher band (inclusive-upper convention), so 70 is in range
// and 180 is above range.
const (
	VeryLowThreshold  = 54.0
	LowThreshold      = 70.0
	HighThreshold     = 180.0
	VeryHighThreshold = 250.0
)

// MinReadingCount is the minimum number of readings below which a
// MetricSet is flagged low-sample. The numbers are still computed but
// must not be presented as equally trustworthy.
const MinReadingCount = 24

// MetricSet holds the computed glucose statistics for one analysis run.
// The four disjoint bands (below 54, 54-70, in range, above 180) sum to
// 100%; above-250 is a sub-band of above-180.
type MetricSet struct {
	ReadingCount int `json:"reading_count"`

	TimeInRangePct  float64 `json:"time_in_range_pct"`
	TimeBelow54Pct  float64 `json:"time_below_54_pct"`
	TimeBelow70Pct  float64 `json:"time_below_70_pct"`
	TimeAbove180Pct float64 `json:"time_above_180_pct"`
	TimeAbove250Pct float64 `json:"time_above_250_pct"`

	Mean                   float64 `json:"mean"`
	StdDev                 float64 `json:"std_dev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`

	// EstimatedA1C is a GMI-style estimate derived from mean glucose
	// with a fixed linear formula. It is an estimate, not a lab value,
	// and every downstream surface labels it as such.
	EstimatedA1C float64 `json:"estimated_a1c"`

	// LowSample marks a result computed from fewer than MinReadingCount
	// readings.
	LowSample bool `json:"low_sample"`
}

// Compute derives a MetricSet from the given readings. It is a pure
// function: same readings in, same metrics out.
func Compute(readings []export.GlucoseReading) MetricSet {
	ms := MetricSet{ReadingCount: len(readings)}
	if len(readings) == 0 {
		ms.LowSample = true
		return ms
	}
	ms.LowSample = len(readings) < MinReadingCount

	values := make([]float64, len(readings))
	var veryLow, low, inRange, high, veryHigh int
	for i, r := range readings {
		values[i] = r.Value
		switch {
		case r.Value < VeryLowThreshold:
			veryLow++
		case r.Value < LowThreshold:
			low++
		case r.Value < HighThreshold:
			inRange++
		default:
			high++
			if r.Value >= VeryHighThreshold {
				veryHigh++
			}
		}
	}

	total := float64(len(readings))
	ms.TimeBelow54Pct = float64(veryLow) / total * 100
	ms.TimeBelow70Pct = float64(veryLow+low) / total * 100
	ms.TimeInRangePct = float64(inRange) / total * 100
	ms.TimeAbove180Pct = float64(high) / total * 100
	ms.TimeAbove250Pct = float64(veryHigh) / total * 100

	ms.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		ms.StdDev = stat.StdDev(values, nil)
	}
	if ms.Mean > 0 {
		ms.CoefficientOfVariation = ms.StdDev / ms.Mean * 100
	}
	ms.EstimatedA1C = estimateA1C(ms.Mean)

	return ms
}

// estimateA1C converts mean glucose (mg/dL) to an estimated A1c percent
// using the standard eAG linear relationship.
func estimateA1C(mean float64) float64 {
	return (mean + 46.7) / 28.7
}
