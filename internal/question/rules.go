package question

import (
	"fmt"

	"github.com/blackwell-systems/glucowatch/internal/pattern"
)

// LowRangeSafety asks about hypoglycemia exposure whenever time below
// 70 mg/dL exceeds the alert threshold. Always HIGH: low-range time is
// safety-relevant regardless of any detector confidence.
func LowRangeSafety(in *Inputs) []Question {
	if in.Metrics.ReadingCount == 0 || in.Metrics.TimeBelow70Pct <= LowRangeAlertPct {
		return nil
	}

	text := fmt.Sprintf(
		"Glucose was below 70 mg/dL for %.1f%% of the time. What typically precedes these lows, and how can they be reduced?",
		in.Metrics.TimeBelow70Pct)
	if in.Metrics.TimeBelow54Pct > 1.0 {
		text = fmt.Sprintf(
			"Glucose was below 54 mg/dL for %.1f%% of the time. What urgent steps reduce severe lows like these?",
			in.Metrics.TimeBelow54Pct)
	}

	return []Question{{
		Text:         text,
		Priority:     PriorityHigh,
		TargetDomain: DomainBehavioral,
	}}
}

// DawnQuestion follows up on a detected early-morning rise.
func DawnQuestion(in *Inputs) []Question {
	p, ok := findPattern(in, pattern.DawnPhenomenon)
	if !ok || !p.Detected {
		return nil
	}
	return []Question{{
		Text: fmt.Sprintf(
			"Early-morning glucose rose on %.0f%% of days (avg %.1f mg/dL per hour). What overnight basal or routine changes address a dawn rise like this?",
			p.Confidence*100, p.Statistic),
		PatternType:  p.Type,
		Priority:     priorityFor(p.Confidence),
		TargetDomain: DomainBehavioral,
	}}
}

// MealSpikeQuestion follows up on frequent post-meal excursions.
func MealSpikeQuestion(in *Inputs) []Question {
	p, ok := findPattern(in, pattern.PostMealSpike)
	if !ok || !p.Detected {
		return nil
	}
	return []Question{{
		Text: fmt.Sprintf(
			"%.0f%% of meals were followed by a large glucose spike. How do bolus timing and meal composition change post-meal peaks?",
			p.Confidence*100),
		PatternType:  p.Type,
		Priority:     priorityFor(p.Confidence),
		TargetDomain: DomainBehavioral,
	}}
}

// ActivityQuestion follows up on a consistent glucose response to
// recorded activity.
func ActivityQuestion(in *Inputs) []Question {
	p, ok := findPattern(in, pattern.ActivityResponse)
	if !ok || !p.Detected {
		return nil
	}
	direction := "drop"
	if p.Statistic > 0 {
		direction = "rise"
	}
	return []Question{{
		Text: fmt.Sprintf(
			"Glucose consistently %ss around activity (avg %.0f mg/dL across %d sessions). What adjustments keep glucose stable through exercise?",
			direction, abs(p.Statistic), p.SampleSize),
		PatternType:  p.Type,
		Priority:     priorityFor(p.Confidence),
		TargetDomain: DomainBehavioral,
	}}
}

// InsulinDriftQuestion follows up on a drifting per-unit insulin
// response. Routed to the algorithm domain: this is about dosing
// parameters, not behavior.
func InsulinDriftQuestion(in *Inputs) []Question {
	p, ok := findPattern(in, pattern.InsulinSensitivityDrift)
	if !ok || !p.Detected {
		return nil
	}
	return []Question{{
		Text: fmt.Sprintf(
			"Glucose response per unit of insulin shifted %.0f%% over the analysis window. When should sensitivity factor settings be re-evaluated?",
			abs(p.Statistic)*100),
		PatternType:  p.Type,
		Priority:     priorityFor(p.Confidence),
		TargetDomain: DomainAlgorithm,
	}}
}

// HighVariabilityQuestion flags a coefficient of variation above the
// common 36% stability target.
func HighVariabilityQuestion(in *Inputs) []Question {
	if in.Metrics.ReadingCount == 0 || in.Metrics.CoefficientOfVariation <= 36.0 {
		return nil
	}
	return []Question{{
		Text: fmt.Sprintf(
			"Glucose variability is high (CV %.0f%%, target ≤36%%). What are the most common drivers of high variability?",
			in.Metrics.CoefficientOfVariation),
		Priority:     PriorityMedium,
		TargetDomain: DomainBehavioral,
	}}
}

// SparseDataQuestion flags unusually sparse sensor coverage, which
// points at hardware (sensor wear, signal loss) rather than behavior.
func SparseDataQuestion(in *Inputs) []Question {
	if !in.Metrics.LowSample || in.Metrics.ReadingCount == 0 {
		return nil
	}
	return []Question{{
		Text: fmt.Sprintf(
			"Only %d glucose readings were found in this export. What causes sensor data gaps, and how can capture be improved?",
			in.Metrics.ReadingCount),
		Priority:     PriorityLow,
		TargetDomain: DomainHardware,
	}}
}

// TimeInRangeFallback produces a generic improvement prompt so the
// question list is never empty when any data exists.
func TimeInRangeFallback(in *Inputs) []Question {
	if in.Metrics.ReadingCount == 0 {
		return nil
	}
	return []Question{{
		Text: fmt.Sprintf(
			"Time in range was %.0f%% over this period. What small changes tend to raise time in range the most?",
			in.Metrics.TimeInRangePct),
		Priority:     PriorityLow,
		TargetDomain: DomainBehavioral,
	}}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
