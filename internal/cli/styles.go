package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/sprintplan/internal/model"
)

// Color palette
var (
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Over      = lipgloss.Color("#FF6B6B")
	Ok        = lipgloss.Color("#95E1A3")
	Pending   = lipgloss.Color("#FFE66D")
	TextMuted = lipgloss.Color("#888888")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	OverStyle = lipgloss.NewStyle().
			Foreground(Over).
			Bold(true)

	OkStyle = lipgloss.NewStyle().
		Foreground(Ok)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Pending)

	ActiveStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

var projectPalette = map[model.ProjectColor]lipgloss.Color{
	model.ColorBlue:   lipgloss.Color("#4ECDC4"),
	model.ColorGreen:  lipgloss.Color("#95E1A3"),
	model.ColorOrange: lipgloss.Color("#FFB347"),
	model.ColorPurple: lipgloss.Color("#B39DDB"),
	model.ColorRed:    lipgloss.Color("#FF6B6B"),
}

// ProjectStyle returns the style for a project's palette color
func ProjectStyle(c model.ProjectColor) lipgloss.Style {
	color, ok := projectPalette[c]
	if !ok {
		color = Secondary
	}
	return lipgloss.NewStyle().Foreground(color)
}

// LoadStyle picks the style for remaining capacity
func LoadStyle(remaining int) lipgloss.Style {
	switch {
	case remaining < 0:
		return OverStyle
	case remaining == 0:
		return WarnStyle
	default:
		return OkStyle
	}
}
