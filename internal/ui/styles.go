// Package ui holds the shared terminal palette and glyphs.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
)

const (
	IconPipe    = "│"
	IconError   = "✗"
	IconSuccess = "✓"
	IconArrow   = "›"
)

// TitleStyle renders section headings.
var TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

// MutedStyle renders secondary text.
var MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
