// Package cli renders quotes and command feedback for the terminal.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Amber for headings, the rest follow the usual traffic-light
// reading of quote health.
const (
	amber  = lipgloss.Color("#F4A259")
	teal   = lipgloss.Color("#4ECDC4")
	yellow = lipgloss.Color("#FFE66D")
	red    = lipgloss.Color("#FF6B6B")
	mint   = lipgloss.Color("#95E1D3")
	gray   = lipgloss.Color("#666666")
	rule   = lipgloss.Color("#333333")
)

var (
	// TitleStyle heads a quote or table section.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(amber).MarginBottom(1)

	// Status styles, also used to grade confidence severity.
	SuccessStyle = lipgloss.NewStyle().Foreground(teal)
	WarningStyle = lipgloss.NewStyle().Foreground(yellow)
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
	InfoStyle    = lipgloss.NewStyle().Foreground(mint)

	SubtleStyle = lipgloss.NewStyle().Foreground(gray)
	BoldStyle   = lipgloss.NewStyle().Bold(true)

	// TableHeaderStyle underlines the header row of a price table.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(rule)
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(rule).
			Padding(1, 2)
)

const (
	quoteIcon = "🛁"
	chartIcon = "📊"
)

// FormatSuccess marks a completed action, such as a saved quote.
func FormatSuccess(message string) string { return status(SuccessStyle, "✓", message) }

// FormatError marks a failed description or command.
func FormatError(message string) string { return status(ErrorStyle, "✗", message) }

// FormatWarning marks a partial result.
func FormatWarning(message string) string { return status(WarningStyle, "⚠️", message) }

// FormatInfo marks progress and summary lines.
func FormatInfo(message string) string { return status(InfoStyle, "ℹ️", message) }

// FormatTitle renders a section heading.
func FormatTitle(title string) string {
	return TitleStyle.Render(quoteIcon + " " + title)
}

// RenderBox frames a titled block such as one pricing table.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}

func status(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}
