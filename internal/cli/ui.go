package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/relief/pkg/stats"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleBar     = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Run Stats
// =============================================================================

// formatRunStats renders run statistics on a single line.
func formatRunStats(steps, hits, misses int, elapsed time.Duration) string {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d steps", steps)),
		StyleDim.Render(elapsed.Round(time.Millisecond).String()),
	}
	switch {
	case steps > 0 && hits == steps:
		parts = append(parts, styleCached.Render(iconCached))
	case hits > 0:
		parts = append(parts, styleCached.Render(fmt.Sprintf("%d %s", hits, iconCached)),
			styleComputed.Render(fmt.Sprintf("%d %s", misses, iconFresh)))
	default:
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// =============================================================================
// Grid Summary
// =============================================================================

// formatSummary renders a grid summary as a key-value table followed by a
// histogram with bars scaled to barWidth.
func formatSummary(s stats.Summary, barWidth int) string {
	num := func(v float64) string { return fmt.Sprintf("%.6g", v) }
	rows := [][]string{
		{"shape", fmt.Sprintf("%d × %d", s.Height, s.Width)},
		{"cells", fmt.Sprintf("%d", s.Cells)},
	}
	if s.NonFinite > 0 {
		rows = append(rows, []string{"non-finite", fmt.Sprintf("%d", s.NonFinite)})
	}
	if s.Finite() > 0 {
		rows = append(rows,
			[]string{"min", num(s.Min)},
			[]string{"max", num(s.Max)},
			[]string{"mean", num(s.Mean)},
			[]string{"stddev", num(s.StdDev)},
			[]string{"p10", num(s.P10)},
			[]string{"median", num(s.Median)},
			[]string{"p90", num(s.P90)},
		)
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorGray).PaddingRight(2)
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return StyleValue
		})

	var b strings.Builder
	b.WriteString(t.Render())
	if len(s.Histogram) == 0 {
		return b.String()
	}

	peak := 0
	for _, n := range s.Histogram {
		peak = max(peak, n)
	}
	b.WriteString("\n")
	for i, n := range s.Histogram {
		width := 0
		if peak > 0 {
			width = n * barWidth / peak
		}
		label := fmt.Sprintf("%10.4g ", s.Dividers[i])
		b.WriteString("\n" + StyleDim.Render(label) + styleBar.Render(strings.Repeat("█", width)) + " " + StyleNumber.Render(fmt.Sprint(n)))
	}
	return b.String()
}
