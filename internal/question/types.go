// Package question generates ranked follow-up questions from computed
// metrics and detected patterns.
package question

import (
	"github.com/blackwell-systems/glucowatch/internal/metrics"
	"github.com/blackwell-systems/glucowatch/internal/pattern"
)

// Priority tiers. Lower value sorts first.
type Priority int

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// Domain is the target knowledge domain a question should be routed to.
// Downstream consumers treat it as an opaque routing key into their own
// knowledge-source catalog; this package defines the taxonomy but does
// not perform the routing.
type Domain string

const (
	DomainBehavioral Domain = "behavioral/theory"
	DomainAlgorithm  Domain = "device/algorithm"
	DomainHardware   Domain = "device/hardware"
)

// Question is one generated follow-up question.
type Question struct {
	Text         string       `json:"text"`
	PatternType  pattern.Type `json:"pattern_type,omitempty"`
	Priority     Priority     `json:"priority"`
	TargetDomain Domain       `json:"target_domain"`
}

// Inputs is everything the generation rules examine: the metric set and
// the full detector output for one analysis run.
type Inputs struct {
	Metrics  metrics.MetricSet
	Patterns []pattern.Result
}

// Rule examines the inputs and produces zero or more questions.
type Rule func(in *Inputs) []Question

// LowRangeAlertPct is the time-below-70 percentage above which low-range
// exposure is treated as safety-relevant, forcing HIGH priority.
const LowRangeAlertPct = 4.0

// Confidence bands for priority assignment.
const (
	highConfidence   = 0.70
	mediumConfidence = 0.40
)

// priorityFor maps a detector confidence to a priority tier.
// Safety-relevant questions bypass this and are always HIGH.
func priorityFor(confidence float64) Priority {
	switch {
	case confidence >= highConfidence:
		return PriorityHigh
	case confidence >= mediumConfidence:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// findPattern returns the detector result for the given type, if present.
func findPattern(in *Inputs, t pattern.Type) (pattern.Result, bool) {
	for _, p := range in.Patterns {
		if p.Type == t {
			return p, true
		}
	}
	return pattern.Result{}, false
}
