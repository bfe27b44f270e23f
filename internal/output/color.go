// Package output provides styled terminal rendering helpers for
// glucowatch.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorInRange is used for in-range values and positive indicators.
	ColorInRange = lipgloss.Color("#66bb6a")

	// ColorLow is used for low-glucose values and safety alerts.
	ColorLow = lipgloss.Color("#ef5350")

	// ColorHigh is used for high-glucose values and cautions.
	ColorHigh = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	// StyleHeader is used for section headers.
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// StyleInRange is used for in-range or improving values.
	StyleInRange = lipgloss.NewStyle().
			Foreground(ColorInRange)

	// StyleLow is used for low-range values and HIGH-priority items.
	StyleLow = lipgloss.NewStyle().
			Foreground(ColorLow)

	// StyleHigh is used for high-range values and cautions.
	StyleHigh = lipgloss.NewStyle().
			Foreground(ColorHigh)

	// StyleMuted is used for de-emphasized text.
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleBold is used for emphasized text.
	StyleBold = lipgloss.NewStyle().
			Bold(true)

	// StyleLabel is used for metric labels.
	StyleLabel = lipgloss.NewStyle().Width(26)
)

// noColor tracks whether color output is disabled.
var noColor bool

func init() {
	// Piped output gets no color unless something re-enables it.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		SetNoColor(true)
	}
}

// SetNoColor disables or enables color output globally. When disabled,
// all package-level styles are reassigned to unstyled renderers.
func SetNoColor(disabled bool) {
	noColor = disabled
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleInRange = plain
		StyleLow = plain
		StyleHigh = plain
		StyleMuted = plain
		StyleBold = plain
		StyleLabel = plain.Width(26)
	}
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}
