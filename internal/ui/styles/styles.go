// Package styles provides shared lipgloss styles for terminal output.
//
// Colors are centralized here so verbose diagnostics and the entry table
// render consistently.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette
var (
	// Primary is the main accent color (cyan/teal)
	Primary color.Color = lipgloss.Color("62")

	// Success marks fresh entries and zero exit codes (green)
	Success color.Color = lipgloss.Color("82")

	// Warning marks cached failures (yellow)
	Warning color.Color = lipgloss.Color("214")

	// Error marks corrupt entries (red)
	Error color.Color = lipgloss.Color("196")

	// Muted is used for stale entries and timings (gray)
	Muted color.Color = lipgloss.Color("240")
)

var (
	// Bold applies bold formatting
	Bold = lipgloss.NewStyle().Bold(true)

	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
)
