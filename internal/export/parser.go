package export

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrNoUsableData is returned when an archive opens fine but contains no
// parseable records of any type. Analysis cannot proceed without data,
// so this is fatal for the run.
var ErrNoUsableData = errors.New("export: no usable records in archive")

// timestampLayouts lists every timestamp format seen across export
// variants, tried in order. Records whose timestamps match none of
// these are skipped with a warning; a timestamp is never fabricated.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 03:04:05 PM",
	"02-01-2006 15:04",
}

// ParseArchive reads an export archive at path and returns the typed
// record set. The path may be a .zip bundle, a directory of tabular
// files, or a single tabular file. A file that fails to parse or whose
// columns match no known schema produces a warning, not a failure;
// failure to open the archive itself, or an archive yielding zero
// records, is fatal.
func ParseArchive(path string) (*RecordSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	rs := &RecordSet{}
	now := time.Now()

	switch {
	case info.IsDir():
		err = parseDir(path, rs, now)
	case strings.EqualFold(filepath.Ext(path), ".zip"):
		err = parseZip(path, rs, now)
	default:
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("opening archive: %w", openErr)
		}
		defer f.Close()
		parseFile(filepath.Base(path), f, rs, now)
	}
	if err != nil {
		return nil, err
	}

	if rs.Empty() {
		return nil, ErrNoUsableData
	}
	return rs, nil
}

func parseDir(dir string, rs *RecordSet, now time.Time) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isTabular(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		parseFile(entry.Name(), f, rs, now)
		_ = f.Close()
	}
	return nil
}

func parseZip(path string, rs *RecordSet, now time.Time) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !isTabular(zf.Name) {
			continue
		}
		f, err := zf.Open()
		if err != nil {
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("%s: %v", zf.Name, err))
			continue
		}
		parseFile(zf.Name, f, rs, now)
		_ = f.Close()
	}
	return nil
}

func isTabular(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return true
	default:
		return false
	}
}

// parseFile parses one tabular file into the record set. All errors at
// this level are recoverable: they become warnings and the rest of the
// archive is still processed.
func parseFile(name string, r io.Reader, rs *RecordSet, now time.Time) {
	rows, err := readRows(r)
	if err != nil {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("%s: %v", name, err))
		return
	}
	if len(rows) < 2 {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("%s: no data rows", name))
		return
	}

	headers := rows[0]
	kind := detectKind(headers)
	if kind == kindUnknown {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("%s: columns match no known record type", name))
		return
	}

	tsCol := matchColumn(headers, timestampAliases)
	skippedBadTime := 0
	skippedFuture := 0

	for _, row := range rows[1:] {
		ts, ok := parseTimestamp(cell(row, tsCol))
		if !ok {
			skippedBadTime++
			continue
		}
		if ts.After(now) {
			skippedFuture++
			continue
		}

		switch kind {
		case kindGlucose:
			parseGlucoseRow(headers, row, ts, rs)
		case kindInsulin:
			parseInsulinRow(headers, row, ts, rs)
		case kindCarbs:
			parseCarbRow(headers, row, ts, rs)
		case kindActivity:
			parseActivityRow(headers, row, ts, rs)
		}
	}

	if skippedBadTime > 0 {
		rs.Warnings = append(rs.Warnings,
			fmt.Sprintf("%s: skipped %d rows with unparseable timestamps", name, skippedBadTime))
	}
	if skippedFuture > 0 {
		rs.Warnings = append(rs.Warnings,
			fmt.Sprintf("%s: skipped %d future-dated rows", name, skippedFuture))
	}
}

// readRows reads a delimited file, sniffing the delimiter from the
// header line. Comma, tab, and semicolon separated exports all occur
// in the wild.
func readRows(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	headerLine := string(data)
	if idx := strings.IndexByte(headerLine, '\n'); idx >= 0 {
		headerLine = headerLine[:idx]
	}

	delim := ','
	if strings.Count(headerLine, "\t") > strings.Count(headerLine, ",") {
		delim = '\t'
	} else if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		delim = ';'
	}

	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func parseGlucoseRow(headers, row []string, ts time.Time, rs *RecordSet) {
	col := matchColumn(headers, glucoseValueAliases)
	value, err := strconv.ParseFloat(strings.TrimSpace(cell(row, col)), 64)
	if err != nil || value <= 0 {
		return
	}
	rs.Readings = append(rs.Readings, GlucoseReading{
		Timestamp: ts,
		Value:     ToMgDL(value, detectUnit(headers[col])),
		Device:    cellAt(headers, row, deviceAliases),
	})
}

func parseInsulinRow(headers, row []string, ts time.Time, rs *RecordSet) {
	col := matchColumn(headers, insulinValueAliases)
	units, err := strconv.ParseFloat(strings.TrimSpace(cell(row, col)), 64)
	if err != nil || units <= 0 {
		return
	}

	kind := InsulinBolus
	if strings.Contains(strings.ToLower(cellAt(headers, row, insulinKindAliases)), "basal") {
		kind = InsulinBasal
	}

	rs.Insulin = append(rs.Insulin, InsulinEvent{
		Timestamp: ts,
		Units:     units,
		Kind:      kind,
		Note:      cellAt(headers, row, noteAliases),
	})
}

func parseCarbRow(headers, row []string, ts time.Time, rs *RecordSet) {
	col := matchColumn(headers, carbValueAliases)
	grams, err := strconv.ParseFloat(strings.TrimSpace(cell(row, col)), 64)
	if err != nil || grams <= 0 {
		return
	}
	rs.Carbs = append(rs.Carbs, CarbEvent{
		Timestamp: ts,
		Grams:     grams,
		MealLabel: cellAt(headers, row, mealLabelAliases),
		Note:      cellAt(headers, row, noteAliases),
	})
}

func parseActivityRow(headers, row []string, ts time.Time, rs *RecordSet) {
	col := matchColumn(headers, activityDurationAliases)
	minutes, err := strconv.ParseFloat(strings.TrimSpace(cell(row, col)), 64)
	if err != nil || minutes <= 0 {
		return
	}
	rs.Activity = append(rs.Activity, ActivityEvent{
		Timestamp:       ts,
		DurationMinutes: minutes,
		Intensity:       cellAt(headers, row, activityIntensityAliases),
		Note:            cellAt(headers, row, noteAliases),
	})
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// cell returns row[i] or "" when the row is ragged or i is -1.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// cellAt returns the cell under the first header matching aliases.
func cellAt(headers, row []string, aliases []string) string {
	return strings.TrimSpace(cell(row, matchColumn(headers, aliases)))
}
