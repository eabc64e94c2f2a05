// Package cli provides the terminal side of monarch-rideshare: bootstrap,
// styled output and fetch progress.
package cli

import "github.com/charmbracelet/lipgloss"

var (
	accentColor  = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")
	subtleColor  = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	// HeaderStyle marks table header lines.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// WarnStyle highlights rows that need a second look.
	WarnStyle = lipgloss.NewStyle().Foreground(warningColor)

	// ErrorStyle formats failures.
	ErrorStyle = lipgloss.NewStyle().Foreground(errorColor)

	// SubtleStyle formats unmatched rows and hints.
	SubtleStyle = lipgloss.NewStyle().Foreground(subtleColor)

	// SummaryStyle boxes the end-of-run counts.
	SummaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtleColor).
			Padding(0, 1)
)
