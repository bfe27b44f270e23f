// Package analysis orchestrates the full pipeline: fingerprint, parse,
// metrics and pattern detection in parallel, question generation, and
// the result cache.
package analysis

import (
	"time"

	"github.com/blackwell-systems/glucowatch/internal/export"
	"github.com/blackwell-systems/glucowatch/internal/metrics"
	"github.com/blackwell-systems/glucowatch/internal/pattern"
	"github.com/blackwell-systems/glucowatch/internal/question"
)

// Window is the analysis window derived from the union of all event
// timestamps in the archive.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days counts calendar days covered, inclusive of both endpoints.
func (w Window) Days() int {
	if w.Start.IsZero() || w.End.Before(w.Start) {
		return 0
	}
	start := truncateToDay(w.Start)
	end := truncateToDay(w.End)
	return int(end.Sub(start).Hours()/24) + 1
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Result is the root aggregate for one analysis run. It is immutable
// once built and is cached by archive fingerprint; every field is a
// pure function of the archive bytes, so cached and fresh results are
// byte-identical when serialized.
type Result struct {
	Fingerprint string              `json:"fingerprint"`
	Window      Window              `json:"window"`
	Metrics     metrics.MetricSet   `json:"metrics"`
	Patterns    []pattern.Result    `json:"patterns"`
	Questions   []question.Question `json:"questions"`

	ReadingCount  int      `json:"reading_count"`
	InsulinCount  int      `json:"insulin_count"`
	CarbCount     int      `json:"carb_count"`
	ActivityCount int      `json:"activity_count"`
	Warnings      []string `json:"warnings,omitempty"`
}

// windowOf computes the analysis window spanning every record type.
func windowOf(rs *export.RecordSet) Window {
	var w Window
	extend := func(ts time.Time) {
		if w.Start.IsZero() || ts.Before(w.Start) {
			w.Start = ts
		}
		if ts.After(w.End) {
			w.End = ts
		}
	}
	for _, r := range rs.Readings {
		extend(r.Timestamp)
	}
	for _, e := range rs.Insulin {
		extend(e.Timestamp)
	}
	for _, e := range rs.Carbs {
		extend(e.Timestamp)
	}
	for _, e := range rs.Activity {
		extend(e.Timestamp)
	}
	return w
}
