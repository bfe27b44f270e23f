package export

import "strings"

// recordKind classifies an export file by the record type its columns
// describe. Detection runs in priority order: a file that looks like
// both a glucose log and a treatment log is treated as glucose.
type recordKind int

const (
	kindUnknown recordKind = iota
	kindGlucose
	kindInsulin
	kindCarbs
	kindActivity
)

func (k recordKind) String() string {
	switch k {
	case kindGlucose:
		return "glucose"
	case kindInsulin:
		return "insulin"
	case kindCarbs:
		return "carbs"
	case kindActivity:
		return "activity"
	default:
		return "unknown"
	}
}

// Column alias-sets, ordered by priority. Vendors have renamed these
// columns repeatedly across export format revisions, so each role keeps
// every historical spelling we have seen. Matching is case-insensitive
// with whitespace collapsed.
var (
	timestampAliases = []string{
		"device timestamp",
		"timestamp",
		"datetime",
		"date time",
		"event time",
		"time",
		"date",
	}

	glucoseValueAliases = []string{
		"glucose value (mg/dl)",
		"glucose value (mmol/l)",
		"historic glucose mg/dl",
		"historic glucose mmol/l",
		"scan glucose mg/dl",
		"scan glucose mmol/l",
		"glucose reading (mg/dl)",
		"glucose value",
		"sensor glucose",
		"glucose",
		"sgv",
		"bg reading",
		"blood glucose",
		"bg",
	}

	insulinValueAliases = []string{
		"insulin value (u)",
		"insulin delivered (u)",
		"bolus volume delivered (u)",
		"insulin units",
		"insulin (u)",
		"insulin",
		"units",
	}

	insulinKindAliases = []string{
		"insulin type",
		"delivery type",
		"event subtype",
		"type",
	}

	carbValueAliases = []string{
		"carb value (grams)",
		"carbohydrates (grams)",
		"carb input (g)",
		"carb input",
		"carbs (g)",
		"carbohydrates",
		"carbs",
	}

	mealLabelAliases = []string{
		"meal label",
		"food type",
		"meal",
	}

	activityDurationAliases = []string{
		"exercise duration (minutes)",
		"activity duration (minutes)",
		"duration (minutes)",
		"exercise minutes",
		"duration",
	}

	activityIntensityAliases = []string{
		"exercise intensity",
		"intensity",
	}

	deviceAliases = []string{
		"source device",
		"device",
		"serial number",
	}

	noteAliases = []string{
		"notes",
		"note",
		"comment",
	}
)

// normalizeHeader lowercases a header cell and collapses interior
// whitespace so alias matching tolerates formatting drift.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(h))), " ")
}

// matchColumn returns the index of the first header matching any alias,
// checking aliases in priority order. Returns -1 when nothing matches.
func matchColumn(headers []string, aliases []string) int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}
	for _, alias := range aliases {
		for i, h := range normalized {
			if h == alias {
				return i
			}
		}
	}
	return -1
}

// detectKind classifies a file's record type from its header row.
// Glucose wins over treatment columns because CGM exports often carry
// vestigial insulin/carb columns that are always empty.
func detectKind(headers []string) recordKind {
	if matchColumn(headers, timestampAliases) < 0 {
		return kindUnknown
	}
	switch {
	case matchColumn(headers, glucoseValueAliases) >= 0:
		return kindGlucose
	case matchColumn(headers, insulinValueAliases) >= 0:
		return kindInsulin
	case matchColumn(headers, carbValueAliases) >= 0:
		return kindCarbs
	case matchColumn(headers, activityDurationAliases) >= 0:
		return kindActivity
	default:
		return kindUnknown
	}
}

// detectUnit infers the glucose unit from the matched value column's
// header text. Anything mentioning mmol is mmol/L; mg/dL otherwise.
func detectUnit(header string) Unit {
	if strings.Contains(normalizeHeader(header), "mmol") {
		return UnitMmolL
	}
	return UnitMgDL
}
