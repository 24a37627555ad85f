package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Future-Glass Palette
	colorNeonGreen  = lipgloss.Color("#00FF99") // Main Action / Success
	colorNeonPurple = lipgloss.Color("#874BFD") // Header / Border
	colorTextMain   = lipgloss.Color("#E2E8F0") // Main Text
	colorTextSub    = lipgloss.Color("#64748B") // Subtext
	colorDanger     = lipgloss.Color("#FF0055") // Critical / Escalated
	colorWarning    = lipgloss.Color("#F59E0B") // Warning / Advisory

	// Shared Styles
	subtle    = lipgloss.NewStyle().Foreground(colorTextSub)
	dimStyle  = lipgloss.NewStyle().Foreground(colorTextSub) // Alias for subtle text
	highlight = lipgloss.NewStyle().Foreground(colorNeonPurple).Bold(true)
	special   = lipgloss.NewStyle().Foreground(colorNeonGreen).Bold(true)
	danger    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	warning   = lipgloss.NewStyle().Foreground(colorWarning)

	// HUD Styles
	hudStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorNeonPurple).
			Padding(0, 1).
			Foreground(colorTextMain)

	hudLabelStyle = lipgloss.NewStyle().
			Foreground(colorTextSub).
			Bold(true).
			MarginRight(1)

	hudValueStyle = lipgloss.NewStyle().
			Foreground(colorNeonGreen).
			Bold(true)

	// Tab Bar
	tabActiveStyle = lipgloss.NewStyle().
			Foreground(colorNeonGreen).
			Bold(true).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorTextSub).
				Padding(0, 1)

	// List Styles
	listSelectedStyle = lipgloss.NewStyle().
				Foreground(colorTextMain).
				Background(lipgloss.Color("#331832")). // Very subtle purple bg
				Bold(true)

	listNormalStyle = lipgloss.NewStyle().
			Foreground(colorTextSub)

	// Icon Styles (Text Based - No Emojis)
	iconPass     = lipgloss.NewStyle().Foreground(colorNeonGreen).SetString("[PASS]")
	iconFail     = lipgloss.NewStyle().Foreground(colorDanger).SetString("[FAIL]")
	iconReady    = lipgloss.NewStyle().Foreground(colorNeonGreen).SetString("[READY]")
	iconAdvisory = lipgloss.NewStyle().Foreground(colorWarning).SetString("[ADV]")
	iconEscalate = lipgloss.NewStyle().Foreground(colorDanger).SetString("[ESC]")

	// Details Pane
	detailsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorNeonGreen).
			Padding(1, 2).
			MarginTop(1)

	detailsHeaderStyle = lipgloss.NewStyle().
				Foreground(colorNeonPurple).
				Bold(true).
				Underline(true).
				MarginBottom(1)
)
