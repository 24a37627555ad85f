package ui

import (
	"fmt"
	"strings"
)

func (m Model) viewList() string {
	switch m.tab {
	case TabCandidates:
		return m.viewCandidateList()
	case TabProposals:
		return m.viewProposalList()
	default:
		return m.viewRunList()
	}
}

func (m Model) viewRunList() string {
	if len(m.runs) == 0 {
		return "\n   " + subtle.Render("No runs recorded. Compile a document first.")
	}

	s := strings.Builder{}
	headerTxt := fmt.Sprintf("   %-24s | %-7s | %-10s | %s", "RUN", "GATES", "INDICATORS", "TARGETS")
	s.WriteString(dimStyle.Render(headerTxt) + "\n")
	s.WriteString(dimStyle.Render("   "+strings.Repeat("─", 60)) + "\n")

	start, end := m.calculateWindow(len(m.runs))
	for i := start; i < end; i++ {
		run := m.runs[i]

		icon := iconPass.Render()
		if !run.AllPassed {
			icon = iconFail.Render()
		}

		dispID := run.RunID
		if len(dispID) > 24 {
			dispID = dispID[:21] + "..."
		}

		line := fmt.Sprintf("%s %-24s | %d/%d     | %-10d | %s",
			icon, dispID, run.PassedGates, run.TotalGates, run.Indicators,
			strings.Join(run.Targets, ","))

		s.WriteString(m.renderRow(i, line))
	}
	s.WriteString(m.renderOverflow(end, len(m.runs)))
	return s.String()
}

func (m Model) viewCandidateList() string {
	if len(m.candidates) == 0 {
		return "\n   " + subtle.Render("No expansion candidates in the latest governance pass.")
	}

	s := strings.Builder{}
	headerTxt := fmt.Sprintf("   %-28s | %-16s | %-10s | %s", "PATTERN", "KIND", "OPERATOR", "STATUS")
	s.WriteString(dimStyle.Render(headerTxt) + "\n")
	s.WriteString(dimStyle.Render("   "+strings.Repeat("─", 70)) + "\n")

	start, end := m.calculateWindow(len(m.candidates))
	for i := start; i < end; i++ {
		c := m.candidates[i]

		icon := iconAdvisory.Render()
		switch {
		case c.EscalationReason != "":
			icon = iconEscalate.Render()
		case c.Status == "ready":
			icon = iconReady.Render()
		}

		dispPattern := c.Pattern
		if len(dispPattern) > 28 {
			dispPattern = dispPattern[:25] + "..."
		}

		line := fmt.Sprintf("%s %-28s | %-16s | %-10s | %s",
			icon, dispPattern, c.Kind, c.Operator, c.Status)

		s.WriteString(m.renderRow(i, line))
	}
	s.WriteString(m.renderOverflow(end, len(m.candidates)))
	return s.String()
}

func (m Model) viewProposalList() string {
	if len(m.proposals) == 0 {
		return "\n   " + subtle.Render("No deployment proposals in the latest governance pass.")
	}

	s := strings.Builder{}
	headerTxt := fmt.Sprintf("   %-28s | %-10s | %-10s | %s", "PATTERN", "TARGET", "TIER", "CONFIDENCE")
	s.WriteString(dimStyle.Render(headerTxt) + "\n")
	s.WriteString(dimStyle.Render("   "+strings.Repeat("─", 70)) + "\n")

	start, end := m.calculateWindow(len(m.proposals))
	for i := start; i < end; i++ {
		p := m.proposals[i]

		icon := iconReady.Render()
		if p.GovernanceStatus != "approved" {
			icon = iconAdvisory.Render()
		}

		dispPattern := p.Pattern
		if len(dispPattern) > 28 {
			dispPattern = dispPattern[:25] + "..."
		}

		conf := "n/a"
		if p.Confidence != nil {
			conf = fmt.Sprintf("%.3f", *p.Confidence)
		}

		line := fmt.Sprintf("%s %-28s | %-10s | %-10s | %s",
			icon, dispPattern, p.TargetSystem, p.RiskTier, conf)

		s.WriteString(m.renderRow(i, line))
	}
	s.WriteString(m.renderOverflow(end, len(m.proposals)))
	return s.String()
}

func (m Model) renderRow(i int, line string) string {
	if i == m.cursor {
		return listSelectedStyle.Render("> "+line) + "\n"
	}
	return listNormalStyle.Render("  "+line) + "\n"
}

func (m Model) renderOverflow(end, total int) string {
	if total > end {
		return dimStyle.Render(fmt.Sprintf("   ... %d more", total-end))
	}
	return ""
}

func (m Model) calculateWindow(total int) (int, int) {
	windowSize := m.height - 10 // approx HUD + tabs + footer
	if windowSize < 5 {
		windowSize = 5
	}

	start := m.cursor - (windowSize / 2)
	if start < 0 {
		start = 0
	}

	end := start + windowSize
	if end > total {
		end = total
		start = end - windowSize
		if start < 0 {
			start = 0
		}
	}
	return start, end
}
