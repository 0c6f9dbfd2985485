package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// styles holds the [lipgloss.Style] set shared by the browser views.
// Mid-intensity hues so the list reads on both dark and light terminals.
var styles = styleSet{
	heading: bold("#5A56E0").MarginBottom(1),
	danger:  bold("#E5534B"),
	caution: fg("#D29922"),
	muted:   fg("#8B949E").Italic(true),
}

type styleSet struct {
	heading lipgloss.Style
	danger  lipgloss.Style
	caution lipgloss.Style
	muted   lipgloss.Style
}

func fg(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

func bold(hex string) lipgloss.Style {
	return fg(hex).Bold(true)
}
