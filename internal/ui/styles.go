package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	QuestionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	PhotoPathStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	CandidateKeyStyle = lipgloss.NewStyle().
				Foreground(ColorYellow).
				Bold(true)

	CorrectStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	WrongStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	BarFilledStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	BarLowStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	BarEmptyStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

// AccuracyBar renders a horizontal bar for a 0..1 accuracy fraction. Bars
// below 60% are drawn in yellow.
func AccuracyBar(frac float64, width int) string {
	if width <= 0 {
		width = 10
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(frac*float64(width) + 0.5)
	style := BarFilledStyle
	if frac < 0.6 {
		style = BarLowStyle
	}

	var b strings.Builder
	b.WriteString(style.Render(strings.Repeat("█", filled)))
	b.WriteString(BarEmptyStyle.Render(strings.Repeat("░", width-filled)))
	return b.String()
}
