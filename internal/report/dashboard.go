package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/assafkip/spanforge/pkg/version"
)

var (
	colorNeonGreen  = lipgloss.Color("#00FF99")
	colorNeonPurple = lipgloss.Color("#874BFD")
	colorTextSub    = lipgloss.Color("#64748B")
	colorDanger     = lipgloss.Color("#FF0055")

	subtle    = lipgloss.NewStyle().Foreground(colorTextSub)
	special   = lipgloss.NewStyle().Foreground(colorNeonGreen).Bold(true)
	danger    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	highlight = lipgloss.NewStyle().Foreground(colorNeonPurple).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorNeonPurple).
			Padding(1, 2)

	iconPass = lipgloss.NewStyle().Foreground(colorNeonGreen).SetString("[PASS]")
	iconFail = lipgloss.NewStyle().Foreground(colorDanger).SetString("[FAIL]")
)

// RenderRun renders the dashboard card for a single run. The compile and
// validate commands print this after the pipeline finishes.
func RenderRun(sum RunSummary) string {
	s := strings.Builder{}

	s.WriteString(highlight.Render(fmt.Sprintf("SPANFORGE %s", version.Current)))
	s.WriteString(subtle.Render("  RUN " + sum.RunID))
	s.WriteString("\n")
	s.WriteString(subtle.Render(fmt.Sprintf("schema %s | %d indicators | %s",
		sum.SchemaVersion, sum.Indicators, strings.Join(sum.Targets, ","))))
	s.WriteString("\n\n")

	for _, gate := range sum.Gates {
		if gate.Passed {
			s.WriteString(fmt.Sprintf("%s %s\n", iconPass.Render(), gate.ID))
			continue
		}
		detail := ""
		if len(gate.Issues) > 0 {
			detail = subtle.Render("  " + gate.Issues[0])
		}
		s.WriteString(fmt.Sprintf("%s %s%s\n", iconFail.Render(), gate.ID, detail))
	}

	s.WriteString("\n")
	verdict := special.Render("ALL GATES PASSED")
	if !sum.AllPassed {
		verdict = danger.Render("REVIEW REQUIRED")
	}
	s.WriteString(fmt.Sprintf("GATES %d/%d  %s", sum.PassedGates, sum.TotalGates, verdict))

	return cardStyle.Render(s.String())
}

// RenderRuns renders the headless overview: one status line per run.
func RenderRuns(runs []RunSummary) string {
	if len(runs) == 0 {
		return subtle.Render("No completed runs found.")
	}

	s := strings.Builder{}
	s.WriteString(highlight.Render(fmt.Sprintf("SPANFORGE %s  %d RUNS", version.Current, len(runs))))
	s.WriteString("\n")
	s.WriteString(subtle.Render(fmt.Sprintf("   %-24s | %-7s | %-10s | %s",
		"RUN ID", "GATES", "INDICATORS", "STATUS")))
	s.WriteString("\n")

	for _, run := range runs {
		icon := iconPass
		status := "passed"
		if !run.AllPassed {
			icon = iconFail
			status = strings.Join(run.FailedGates(), ",")
		}
		s.WriteString(fmt.Sprintf("%s %-24s | %d/%d     | %-10d | %s\n",
			icon.Render(), run.RunID, run.PassedGates, run.TotalGates, run.Indicators, status))
	}
	return s.String()
}
