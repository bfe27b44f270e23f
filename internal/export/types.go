// Package export parses CGM, insulin pump, and meal-log export archives
// into typed, unit-normalized in-memory records.
package export

import (
	"sort"
	"time"
)

// MmolPerLToMgDL is the fixed conversion factor between mmol/L and mg/dL.
// All glucose values are converted to mg/dL once, at parse time, and never
// re-converted downstream.
const MmolPerLToMgDL = 18.0182

// Unit identifies the glucose unit used by an export column.
type Unit int

const (
	UnitMgDL Unit = iota
	UnitMmolL
)

// ToMgDL converts a raw glucose value in the given unit to mg/dL.
func ToMgDL(value float64, unit Unit) float64 {
	if unit == UnitMmolL {
		return value * MmolPerLToMgDL
	}
	return value
}

// GlucoseReading is a single sensor or meter glucose value in mg/dL.
// Readings are immutable after parsing.
type GlucoseReading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Device    string    `json:"device,omitempty"`
}

// InsulinKind distinguishes background basal delivery from bolus doses.
type InsulinKind string

const (
	InsulinBasal InsulinKind = "basal"
	InsulinBolus InsulinKind = "bolus"
)

// InsulinEvent is a single insulin delivery record.
type InsulinEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Units     float64     `json:"units"`
	Kind      InsulinKind `json:"kind"`
	Note      string      `json:"note,omitempty"`
}

// CarbEvent is a single carbohydrate intake record.
type CarbEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Grams     float64   `json:"grams"`
	MealLabel string    `json:"meal_label,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// ActivityEvent is a single exercise record. Many exports omit this
// record type entirely; its absence never fails a parse.
type ActivityEvent struct {
	Timestamp       time.Time `json:"timestamp"`
	DurationMinutes float64   `json:"duration_minutes"`
	Intensity       string    `json:"intensity,omitempty"`
	Note            string    `json:"note,omitempty"`
}

// RecordSet holds all records parsed from one export archive, plus any
// non-fatal warnings collected along the way.
type RecordSet struct {
	Readings []GlucoseReading `json:"readings"`
	Insulin  []InsulinEvent   `json:"insulin"`
	Carbs    []CarbEvent      `json:"carbs"`
	Activity []ActivityEvent  `json:"activity"`
	Warnings []string         `json:"warnings,omitempty"`
}

// SortedReadings returns a copy of the glucose readings sorted by
// timestamp. Analyzers that assume ordered input sort defensively via
// this method rather than trusting parse order.
func (rs *RecordSet) SortedReadings() []GlucoseReading {
	sorted := make([]GlucoseReading, len(rs.Readings))
	copy(sorted, rs.Readings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// SortedInsulin returns a copy of the insulin events sorted by timestamp.
func (rs *RecordSet) SortedInsulin() []InsulinEvent {
	sorted := make([]InsulinEvent, len(rs.Insulin))
	copy(sorted, rs.Insulin)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// Empty reports whether the set contains no records of any type.
func (rs *RecordSet) Empty() bool {
	return len(rs.Readings) == 0 && len(rs.Insulin) == 0 &&
		len(rs.Carbs) == 0 && len(rs.Activity) == 0
}
