package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/assafkip/spanforge/pkg/governance"
)

func (m Model) viewDetails() string {
	if m.cursor < 0 || m.cursor >= m.tabLen() {
		return "No Item Selected"
	}
	return detailsBoxStyle.Render(m.details.View())
}

// detailContent builds the full (unscrolled) detail text for the item under
// the cursor. The viewport handles clipping.
func (m Model) detailContent() string {
	if m.cursor < 0 || m.cursor >= m.tabLen() {
		return "No Item Selected"
	}
	switch m.tab {
	case TabCandidates:
		return m.candidateDetail(m.candidates[m.cursor], "CANDIDATE")
	case TabProposals:
		return m.proposalDetail(m.proposals[m.cursor])
	default:
		return m.runDetail()
	}
}

func (m Model) runDetail() string {
	run := m.runs[m.cursor]

	header := detailsHeaderStyle.Render(fmt.Sprintf("RUN : %s", run.RunID))

	verdict := special.Render(fmt.Sprintf("CERTIFIED: %d/%d GATES", run.PassedGates, run.TotalGates))
	if !run.AllPassed {
		verdict = danger.Render(fmt.Sprintf("REJECTED: %d/%d GATES", run.PassedGates, run.TotalGates))
	}

	var gateLines []string
	for _, g := range run.Gates {
		icon := iconPass.Render()
		if !g.Passed {
			icon = iconFail.Render()
		}
		gateLines = append(gateLines, fmt.Sprintf("%s %s", icon, g.ID))
		for _, issue := range g.Issues {
			gateLines = append(gateLines, dimStyle.Render("        "+issue))
		}
	}

	var props []string
	props = append(props, fmt.Sprintf("%-20s : %s", "Schema Version", run.SchemaVersion))
	props = append(props, fmt.Sprintf("%-20s : %d", "Indicators", run.Indicators))
	props = append(props, fmt.Sprintf("%-20s : %s", "Targets", strings.Join(run.Targets, ", ")))

	var keys []string
	for _, k := range run.Keys {
		keys = append(keys, "  "+k)
	}
	artifacts := "Artifacts: none persisted"
	if len(keys) > 0 {
		artifacts = "Artifacts:\n" + strings.Join(keys, "\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		verdict,
		"",
		strings.Join(gateLines, "\n"),
		"",
		dimStyle.Render(strings.Join(props, "\n")),
		"",
		subtle.Render(artifacts),
	)
}

func (m Model) candidateDetail(c governance.Candidate, kind string) string {
	header := detailsHeaderStyle.Render(fmt.Sprintf("%s : %s", kind, c.Pattern))

	var props []string
	props = append(props, fmt.Sprintf("%-20s : %s", "Kind", c.Kind))
	props = append(props, fmt.Sprintf("%-20s : %s", "Operator", c.Operator))
	props = append(props, fmt.Sprintf("%-20s : %s", "Status", c.Status))
	props = append(props, fmt.Sprintf("%-20s : %s", "Parent Spans", strings.Join(c.ParentSpans, ", ")))
	props = append(props, fmt.Sprintf("%-20s : %s", "Evidence Sentence", c.EvidenceSentID))
	if c.Decision != "" {
		props = append(props, fmt.Sprintf("%-20s : %s", "Decision", c.Decision))
	}
	if c.SeverityLabel != "" {
		props = append(props, fmt.Sprintf("%-20s : %s", "Severity", c.SeverityLabel))
	}
	if c.RuleOwner != "" {
		props = append(props, fmt.Sprintf("%-20s : %s", "Owner", c.RuleOwner))
	}
	if c.DetectionType != "" {
		props = append(props, fmt.Sprintf("%-20s : %s", "Detection Type", c.DetectionType))
	}
	if c.SLA > 0 {
		props = append(props, fmt.Sprintf("%-20s : %dh", "SLA", c.SLA))
	}

	// Intel block: confidence, tier, backtest metrics
	var intel []string
	if c.Confidence != nil {
		intel = append(intel, special.Render(fmt.Sprintf("CONFIDENCE: %.3f", *c.Confidence)))
	}
	if c.RiskTier != "" {
		intel = append(intel, warning.Render(fmt.Sprintf("RISK TIER:  %s", c.RiskTier)))
	}
	if c.Metrics != nil {
		intel = append(intel, dimStyle.Render(fmt.Sprintf("TPR %.3f | FPR %.3f | %d samples",
			c.Metrics.TruePositiveRate, c.Metrics.FalsePositiveRate, c.Metrics.SamplesTested)))
	}
	if c.EscalationReason != "" {
		intel = append(intel, danger.Render("ESCALATED: "+c.EscalationReason))
	}

	evidence := subtle.Render("Evidence: " + c.EvidenceQuote)

	sections := []string{header, ""}
	if len(intel) > 0 {
		sections = append(sections, strings.Join(intel, "\n"), "")
	}
	sections = append(sections, dimStyle.Render(strings.Join(props, "\n")), "", evidence)
	if c.Justification != "" {
		sections = append(sections, "", subtle.Render("Justification: "+c.Justification))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) proposalDetail(p governance.Proposal) string {
	base := m.candidateDetail(p.Candidate, "PROPOSAL")

	var gov []string
	gov = append(gov, fmt.Sprintf("%-20s : %s", "Target System", p.TargetSystem))
	gov = append(gov, fmt.Sprintf("%-20s : %s", "Governance Status", p.GovernanceStatus))
	gov = append(gov, fmt.Sprintf("%-20s : %s", "Approved At", p.GovernanceTimestamp))

	return lipgloss.JoinVertical(lipgloss.Left,
		base,
		"",
		dimStyle.Render(strings.Repeat("─", 50)),
		highlight.Render("DEPLOYMENT:"),
		dimStyle.Render(strings.Join(gov, "\n")),
	)
}
