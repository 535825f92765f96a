package main

import "github.com/charmbracelet/lipgloss"

// Color palette, the single source of truth for TUI colors.
var (
	threadOrange = lipgloss.Color("#FF4500") // active item and brand accent
	mintGreen    = lipgloss.Color("#A8E6CF") // status line
	mutedGray    = lipgloss.Color("#6B7280") // secondary text
	brightWhite  = lipgloss.Color("#F9FAFB") // primary text
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(threadOrange).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	statusStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(threadOrange).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	activeItemStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Background(lipgloss.Color("#3B2A1F")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(threadOrange)
)
