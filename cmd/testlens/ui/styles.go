// Package ui provides terminal styling for testlens command output.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Primary = lipgloss.Color("#2196F3")
	Success = lipgloss.Color("#8BC34A")
	Warning = lipgloss.Color("#FFC107")
	Danger  = lipgloss.Color("#e53935")
	Muted   = lipgloss.Color("#808A9D")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	DangerStyle  = lipgloss.NewStyle().Foreground(Danger)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)
)

// NoColor disables styling when the terminal does not support it or the
// user asked for plain output.
func NoColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	if v, err := strconv.ParseBool(os.Getenv("TESTLENS_NO_COLOR")); err == nil {
		return v
	}
	return false
}

// Score renders a testability score with severity coloring.
func Score(score int) string {
	text := strconv.Itoa(score)
	switch {
	case score >= 80:
		return SuccessStyle.Render(text)
	case score >= 60:
		return WarningStyle.Render(text)
	default:
		return DangerStyle.Render(text)
	}
}

// Percent renders a percentage with severity coloring.
func Percent(pct float64) string {
	text := strconv.FormatFloat(pct, 'f', 0, 64) + "%"
	switch {
	case pct >= 80:
		return SuccessStyle.Render(text)
	case pct >= 50:
		return WarningStyle.Render(text)
	default:
		return DangerStyle.Render(text)
	}
}

// Check renders a yes/no marker.
func Check(ok bool) string {
	if ok {
		return SuccessStyle.Render("yes")
	}
	return DangerStyle.Render("no")
}

// Table renders rows with padded columns. The first row is treated as the
// header and underlined.
func Table(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for r, row := range rows {
		for i, cell := range row {
			pad := widths[i] - lipgloss.Width(cell)
			if r == 0 {
				cell = SectionStyle.Render(cell)
			}
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", pad+2))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
