// Package pattern detects recurring behavioral signatures in parsed
// glucose, insulin, carbohydrate, and activity records. Each detector
// is a pure function over the full immutable record set and yields
// exactly one Result per analysis run.
package pattern

import "github.com/blackwell-systems/glucowatch/internal/export"

// Type identifies a detectable pattern.
type Type string

const (
	DawnPhenomenon          Type = "dawn_phenomenon"
	PostMealSpike           Type = "post_meal_spike"
	ActivityResponse        Type = "activity_response"
	InsulinSensitivityDrift Type = "insulin_sensitivity_drift"
)

// Result is the outcome of one detector. A pattern that is not found is
// a valid, confidently-reportable outcome, not an error: Detected is
// false and Reason explains why.
type Result struct {
	Type       Type    `json:"type"`
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
	SampleSize int     `json:"sample_size"`

	// Statistic is the narrow per-pattern statistic: mean morning slope
	// for dawn, spike rate for meals, mean glucose shift for activity,
	// relative response drift for insulin sensitivity.
	Statistic float64 `json:"statistic"`

	Description    string `json:"description,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// Detector is a pure function from a record set to one Result.
type Detector func(rs *export.RecordSet) Result

// Detectors lists every built-in detector. They are mutually
// independent and read-only over the record set, so callers may run
// them concurrently.
var Detectors = []Detector{
	DetectDawn,
	DetectMealSpikes,
	DetectActivityResponse,
	DetectInsulinDrift,
}

// DetectAll runs every detector sequentially and returns the results in
// registration order.
func DetectAll(rs *export.RecordSet) []Result {
	results := make([]Result, len(Detectors))
	for i, d := range Detectors {
		results[i] = d(rs)
	}
	return results
}

func notDetected(t Type, reason string) Result {
	return Result{Type: t, Reason: reason}
}
