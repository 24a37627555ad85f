package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/assafkip/spanforge/pkg/version"
)

func (m Model) viewHUD() string {
	// 1. Gate Health (across all runs)
	passed := 0
	for _, r := range m.runs {
		if r.AllPassed {
			passed++
		}
	}
	gateColor := hudValueStyle
	gateTxt := fmt.Sprintf("%d/%d CERTIFIED", passed, len(m.runs))
	if passed < len(m.runs) {
		gateColor = danger
	}
	if len(m.runs) == 0 {
		gateTxt = "NO RUNS"
		gateColor = subtle
	}

	// 2. Escalation Pressure (latest governance pass)
	escalated := 0
	for _, c := range m.candidates {
		if c.EscalationReason != "" {
			escalated++
		}
	}
	escColor := subtle
	escTxt := "CLEAN"
	if escalated > 0 {
		escColor = warning
		escTxt = fmt.Sprintf("%d ESCALATED", escalated)
	}

	// Assemble Segments
	// [ SPANFORGE dev ] ........ [ GATES: 3/3 CERTIFIED | ESCALATIONS: CLEAN ]
	segTitle := highlight.Render(fmt.Sprintf("%s %s", strings.ToUpper(version.AppName), version.Current))
	segGates := hudLabelStyle.Render("GATES:") + gateColor.Render(gateTxt)
	segEsc := hudLabelStyle.Render("ESCALATIONS:") + escColor.Render(escTxt)

	left := segTitle
	right := lipgloss.JoinHorizontal(lipgloss.Center, segGates, "  |  ", segEsc)

	width := m.width - 4
	if width < 0 {
		width = 0
	}
	spacer := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacer < 2 {
		spacer = 2
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		left,
		lipgloss.NewStyle().Width(spacer).Render(""),
		right,
	)

	if m.width > 2 {
		return hudStyle.Width(m.width - 2).Render(content)
	}
	return hudStyle.Render(content)
}
