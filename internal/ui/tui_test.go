package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/assafkip/spanforge/internal/report"
	"github.com/assafkip/spanforge/pkg/governance"
)

// usage: go test ./internal/ui/...

func certifiedRun() report.RunSummary {
	return report.RunSummary{
		RunID:         "ir_1735000000_8c4a91d2",
		SchemaVersion: "v0.4",
		Indicators:    3,
		Targets:       []string{"regex", "sql", "json", "python"},
		PassedGates:   5,
		TotalGates:    5,
		AllPassed:     true,
		Gates: []report.GateLine{
			{ID: "V-001", Passed: true},
			{ID: "V-002", Passed: true},
			{ID: "V-003", Passed: true},
			{ID: "V-004", Passed: true},
			{ID: "V-005", Passed: true},
		},
		Keys: []string{"runs/ir_1735000000_8c4a91d2/artifacts/rules.regex"},
	}
}

func rejectedRun() report.RunSummary {
	r := certifiedRun()
	r.RunID = "ir_1735000001_0f3b7e6c"
	r.Keys = []string{"runs/ir_1735000001_0f3b7e6c/artifacts/rules.regex"}
	r.PassedGates = 4
	r.AllPassed = false
	r.Gates[1] = report.GateLine{
		ID:     "V-002",
		Passed: false,
		Issues: []string{"span s9 not found in source document"},
	}
	return r
}

func readyCandidate() governance.Candidate {
	conf := 0.84
	c := governance.Candidate{
		Confidence: &conf,
		RiskTier:   "hunting",
	}
	c.Pattern = "urgent(?:\\s+\\w+){0,2}\\s+payment"
	c.Kind = "regex"
	c.Operator = "ALT_ENUM"
	c.ParentSpans = []string{"s1", "s4"}
	c.EvidenceSentID = "sent_012"
	c.EvidenceQuote = "urgent wire payment required today"
	c.Status = "ready"
	return c
}

func escalatedCandidate() governance.Candidate {
	c := readyCandidate()
	c.Pattern = "gift\\s?cards?"
	c.Confidence = nil
	c.Decision = governance.DecisionEscalateMissingConfidence
	c.EscalationReason = "no backtest metrics for pattern"
	return c
}

func approvedProposal() governance.Proposal {
	return governance.Proposal{
		Candidate:           readyCandidate(),
		TargetSystem:        "regex",
		GovernanceStatus:    "approved",
		GovernanceTimestamp: "2025-01-02T03:04:05Z",
	}
}

func keyRunes(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func drive(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestReview_Rendering(t *testing.T) {
	// Table-Driven Test: review scenarios -> Verify screen output.
	tests := []struct {
		name     string
		model    Model
		keys     []tea.Msg
		want     []string // Strings that MUST appear in the View
		dontWant []string // Strings that MUST NOT appear
	}{
		{
			name:  "Certified run on the runs tab",
			model: NewModel([]report.RunSummary{certifiedRun()}, nil, nil),
			want:  []string{"[PASS]", "ir_1735000000_8c4a91d2", "5/5", "regex,sql,json,python"},
		},
		{
			name:     "Rejected run is marked FAIL",
			model:    NewModel([]report.RunSummary{rejectedRun()}, nil, nil),
			want:     []string{"[FAIL]", "4/5"},
			dontWant: []string{"[PASS]"},
		},
		{
			name:  "Run details list each gate and its issues",
			model: NewModel([]report.RunSummary{rejectedRun()}, nil, nil),
			keys:  []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}},
			want:  []string{"REJECTED", "V-002", "span s9 not found", "V-005"},
		},
		{
			name:  "Ready candidate on the candidates tab",
			model: NewModel(nil, []governance.Candidate{readyCandidate()}, nil),
			keys:  []tea.Msg{tea.KeyMsg{Type: tea.KeyTab}},
			want:  []string{"[READY]", "ALT_ENUM", "ready"},
		},
		{
			name:  "Escalated candidate is flagged",
			model: NewModel(nil, []governance.Candidate{escalatedCandidate()}, nil),
			keys:  []tea.Msg{tea.KeyMsg{Type: tea.KeyTab}},
			want:  []string{"[ESC]", "1 ESCALATED"},
		},
		{
			name:  "Candidate details show evidence and escalation reason",
			model: NewModel(nil, []governance.Candidate{escalatedCandidate()}, nil),
			keys: []tea.Msg{
				tea.KeyMsg{Type: tea.KeyTab},
				tea.KeyMsg{Type: tea.KeyEnter},
			},
			want: []string{"no backtest metrics", "urgent wire payment required today", "sent_012"},
		},
		{
			name:  "Approved proposal shows target and confidence",
			model: NewModel(nil, nil, []governance.Proposal{approvedProposal()}),
			keys: []tea.Msg{
				tea.KeyMsg{Type: tea.KeyTab},
				tea.KeyMsg{Type: tea.KeyTab},
			},
			want: []string{"[READY]", "0.840", "hunting"},
		},
		{
			name:  "Proposal details include governance stamp",
			model: NewModel(nil, nil, []governance.Proposal{approvedProposal()}),
			keys: []tea.Msg{
				tea.KeyMsg{Type: tea.KeyTab},
				tea.KeyMsg{Type: tea.KeyTab},
				tea.KeyMsg{Type: tea.KeyEnter},
			},
			want: []string{"DEPLOYMENT:", "approved", "2025-01-02T03:04:05Z"},
		},
		{
			name:  "Empty workspace renders calm empty states",
			model: NewModel(nil, nil, nil),
			want:  []string{"NO RUNS", "No runs recorded"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := drive(t, tc.model, tc.keys...)
			view := m.View()

			for _, w := range tc.want {
				if !strings.Contains(view, w) {
					t.Errorf("expected view to contain %q.\nGot:\n%s", w, view)
				}
			}
			for _, dw := range tc.dontWant {
				if strings.Contains(view, dw) {
					t.Errorf("expected view NOT to contain %q.\nGot:\n%s", dw, view)
				}
			}
		})
	}
}

func TestReview_Navigation(t *testing.T) {
	runs := []report.RunSummary{certifiedRun(), rejectedRun()}
	m := NewModel(runs, []governance.Candidate{readyCandidate()}, nil)

	// Cursor clamps at both ends.
	m = drive(t, m, keyRunes("k"))
	if m.cursor != 0 {
		t.Fatalf("cursor moved above the first row: %d", m.cursor)
	}
	m = drive(t, m, keyRunes("j"), keyRunes("j"), keyRunes("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor ran past the last row: %d", m.cursor)
	}

	// Switching tabs resets the cursor and leaves details.
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != ViewStateDetail {
		t.Fatal("enter did not open details")
	}
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != TabCandidates || m.cursor != 0 || m.state != ViewStateList {
		t.Fatalf("tab switch state: tab=%d cursor=%d state=%d", m.tab, m.cursor, m.state)
	}

	// Cycling wraps back to runs.
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != TabRuns {
		t.Fatalf("tab cycle did not wrap: %d", m.tab)
	}

	// q quits.
	m = drive(t, m, keyRunes("q"))
	if !m.quitting {
		t.Fatal("q did not quit")
	}
	if m.View() != "" {
		t.Fatal("quitting view should be empty")
	}
}
