package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/glucowatch/internal/cache"
	"github.com/blackwell-systems/glucowatch/internal/export"
)

// writeExport builds a small but complete CSV export: three days of
// glucose readings with a morning rise, plus insulin and carb logs.
func writeExport(t *testing.T, dir string) string {
	t.Helper()

	var glucose strings.Builder
	glucose.WriteString("Device Timestamp,Glucose Value (mg/dL),Source Device\n")
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	for day := 0; day < 3; day++ {
		for hour := 0; hour < 24; hour++ {
			ts := base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
			value := 120
			if hour >= 4 && hour < 8 {
				value = 100 + (hour-4)*10 // rising mornings
			}
			fmt.Fprintf(&glucose, "%s,%d,CGM-1\n", ts.Format("2006-01-02 15:04:05"), value)
		}
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "glucose.csv"), []byte(glucose.String()), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "insulin.csv"), []byte(
		"Device Timestamp,Insulin Value (u),Insulin Type\n"+
			"2024-03-01 12:00:00,5,Rapid-Acting Bolus\n"+
			"2024-03-02 12:00:00,5,Rapid-Acting Bolus\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carbs.csv"), []byte(
		"Device Timestamp,Carb Value (grams),Meal\n"+
			"2024-03-01 12:00:00,50,lunch\n"), 0o644))
	return dir
}

func newTestPipeline(t *testing.T) (*Pipeline, *cache.Store) {
	t.Helper()
	store, err := cache.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(cache.New(store), nil, 10), store
}

func TestPipeline_EndToEnd(t *testing.T) {
	archive := writeExport(t, t.TempDir())
	p, _ := newTestPipeline(t)

	result, hit, err := p.Run(context.Background(), archive)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, 72, result.ReadingCount)
	assert.Equal(t, 2, result.InsulinCount)
	assert.Equal(t, 1, result.CarbCount)
	assert.Equal(t, 3, result.Window.Days())
	assert.NotEmpty(t, result.Fingerprint)
	assert.False(t, result.Metrics.LowSample)
	assert.Len(t, result.Patterns, 4, "every detector reports, detected or not")
	assert.NotEmpty(t, result.Questions, "any run with readings yields questions")
}

func TestPipeline_SecondRunHitsCache(t *testing.T) {
	archive := writeExport(t, t.TempDir())
	p, _ := newTestPipeline(t)

	first, hit, err := p.Run(context.Background(), archive)
	require.NoError(t, err)
	require.False(t, hit)

	second, hit, err := p.Run(context.Background(), archive)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second, "cached and fresh results must be identical")
}

func TestPipeline_DeterministicAcrossPipelines(t *testing.T) {
	archive := writeExport(t, t.TempDir())

	a, _ := newTestPipeline(t)
	b, _ := newTestPipeline(t)

	resultA, _, err := a.Run(context.Background(), archive)
	require.NoError(t, err)
	resultB, _, err := b.Run(context.Background(), archive)
	require.NoError(t, err)

	assert.Equal(t, resultA, resultB, "identical archives must analyze identically")
}

func TestPipeline_NoGlucoseIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carbs.csv"), []byte(
		"Device Timestamp,Carb Value (grams)\n2024-03-01 12:00:00,50\n"), 0o644))

	p, store := newTestPipeline(t)
	_, _, err := p.Run(context.Background(), dir)
	assert.ErrorIs(t, err, export.ErrNoUsableData)

	// A failed run must not poison the cache.
	entries, listErr := store.List()
	require.NoError(t, listErr)
	assert.Empty(t, entries)
}

func TestPipeline_GlucoseOnlyArchive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glucose.csv"), []byte(
		"Device Timestamp,Glucose Value (mg/dL)\n"+
			"2024-03-01 08:00:00,100\n"+
			"2024-03-01 08:05:00,110\n"), 0o644))

	p, _ := newTestPipeline(t)
	result, _, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ReadingCount)
	assert.True(t, result.Metrics.LowSample)
	for _, pr := range result.Patterns {
		assert.False(t, pr.Detected, "pattern %s should not be detected without event data", pr.Type)
	}
	assert.NotEmpty(t, result.Questions)
}

func TestPipeline_MissingArchive(t *testing.T) {
	p, _ := newTestPipeline(t)
	_, _, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nope.zip"))
	assert.Error(t, err)
}

func TestPipeline_CancelledContext(t *testing.T) {
	archive := writeExport(t, t.TempDir())
	p, store := newTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Run(ctx, archive)
	assert.ErrorIs(t, err, context.Canceled)

	entries, listErr := store.List()
	require.NoError(t, listErr)
	assert.Empty(t, entries, "a cancelled run must leave no cache entry")
}

func TestWindowDays(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"zero window", time.Time{}, time.Time{}, 0},
		{"same day", day(2024, 3, 1, 8), day(2024, 3, 1, 22), 1},
		{"three days", day(2024, 3, 1, 23), day(2024, 3, 3, 1), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := Window{Start: tc.start, End: tc.end}
			assert.Equal(t, tc.want, w.Days())
		})
	}
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.Local)
}
