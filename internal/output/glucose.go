package output

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/glucowatch/internal/metrics"
	"github.com/blackwell-systems/glucowatch/internal/question"
)

// BandBar renders the glucose band distribution as a single horizontal
// bar: low time on the left, in-range in the middle, high on the right.
// Example: "▁▁██████████████▆▆▆▆ 68% in range"
func BandBar(ms metrics.MetricSet, width int) string {
	if width <= 0 {
		width = 40
	}

	low := int(ms.TimeBelow70Pct / 100 * float64(width))
	high := int(ms.TimeAbove180Pct / 100 * float64(width))
	if low+high > width {
		high = width - low
	}
	inRange := width - low - high

	var sb strings.Builder
	sb.WriteString(StyleLow.Render(strings.Repeat("▁", low)))
	sb.WriteString(StyleInRange.Render(strings.Repeat("█", inRange)))
	sb.WriteString(StyleHigh.Render(strings.Repeat("▆", high)))
	sb.WriteString(" ")
	sb.WriteString(StyleMuted.Render(fmt.Sprintf("%.0f%% in range", ms.TimeInRangePct)))
	return sb.String()
}

// PriorityBadge renders a question priority with tier coloring.
func PriorityBadge(p question.Priority) string {
	label := fmt.Sprintf("[%s]", p)
	switch p {
	case question.PriorityHigh:
		return StyleLow.Render(label)
	case question.PriorityMedium:
		return StyleHigh.Render(label)
	default:
		return StyleMuted.Render(label)
	}
}

// GlucoseValue renders a mg/dL value colored by its band.
func GlucoseValue(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	switch {
	case v < metrics.LowThreshold:
		return StyleLow.Render(s)
	case v < metrics.HighThreshold:
		return StyleInRange.Render(s)
	default:
		return StyleHigh.Render(s)
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
