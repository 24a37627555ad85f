package classify

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestConditionOperators(t *testing.T) {
	context := map[string]any{
		"doc_type":   "intel_report",
		"page_count": 12,
		"amount":     1998.88,
		"body":       "Stamped VOID 2000 on the check",
	}

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"eq string", Condition{Field: "doc_type", Operator: OpEq, Value: "intel_report"}, true},
		{"eq string miss", Condition{Field: "doc_type", Operator: OpEq, Value: "invoice"}, false},
		{"eq cross numeric", Condition{Field: "page_count", Operator: OpEq, Value: 12.0}, true},
		{"ne", Condition{Field: "doc_type", Operator: OpNe, Value: "invoice"}, true},
		{"gt", Condition{Field: "page_count", Operator: OpGt, Value: 10}, true},
		{"gt equal is not greater", Condition{Field: "page_count", Operator: OpGt, Value: 12}, false},
		{"lt", Condition{Field: "amount", Operator: OpLt, Value: 2000}, true},
		{"ge boundary", Condition{Field: "page_count", Operator: OpGe, Value: 12}, true},
		{"le boundary", Condition{Field: "page_count", Operator: OpLe, Value: 12}, true},
		{"string ordering", Condition{Field: "doc_type", Operator: OpGt, Value: "alpha"}, true},
		{"in", Condition{Field: "doc_type", Operator: OpIn, Value: []any{"invoice", "intel_report"}}, true},
		{"not_in", Condition{Field: "doc_type", Operator: OpNotIn, Value: []any{"invoice"}}, true},
		{"contains is case-insensitive", Condition{Field: "body", Operator: OpContains, Value: "void 2000"}, true},
		{"contains miss", Condition{Field: "body", Operator: OpContains, Value: "wire transfer"}, false},
		{"regex", Condition{Field: "body", Operator: OpRegex, Value: `VOID \d{3,4}`}, true},
		{"regex miss", Condition{Field: "body", Operator: OpRegex, Value: `^VOID`}, false},
		{"number vs string never compares", Condition{Field: "page_count", Operator: OpGt, Value: "ten"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cond.Evaluate(context); got != tc.want {
				t.Errorf("Evaluate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConditionAbsentFieldNeverMatches(t *testing.T) {
	context := map[string]any{}
	for _, op := range []string{OpEq, OpNe, OpGt, OpNotIn, OpContains, OpRegex} {
		c := Condition{Field: "missing", Operator: op, Value: "x"}
		if c.Evaluate(context) {
			t.Errorf("operator %s matched an absent field", op)
		}
	}
}

func TestConditionPrepareRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cond Condition
	}{
		{"unknown operator", Condition{Field: "f", Operator: "matches", Value: "x"}},
		{"bad regex", Condition{Field: "f", Operator: OpRegex, Value: "[unclosed"}},
		{"regex needs string", Condition{Field: "f", Operator: OpRegex, Value: 7}},
		{"in needs list", Condition{Field: "f", Operator: OpIn, Value: "not-a-list"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.cond
			if err := c.prepare(); err == nil {
				t.Error("expected a load-time error")
			}
		})
	}
}

func TestNodeEvaluate(t *testing.T) {
	context := map[string]any{"a": 1, "b": 2}

	bare := &Node{ID: "bare"}
	if res := bare.Evaluate(context); !res.Matched {
		t.Error("a node with no conditions must always match")
	}

	and := &Node{ID: "and", Combinator: CombinatorAND, Conditions: []Condition{
		{Field: "a", Operator: OpEq, Value: 1},
		{Field: "b", Operator: OpEq, Value: 99},
	}}
	if res := and.Evaluate(context); res.Matched {
		t.Error("AND must require every condition")
	}

	or := &Node{ID: "or", Combinator: CombinatorOR, Conditions: []Condition{
		{Field: "a", Operator: OpEq, Value: 99},
		{Field: "b", Operator: OpEq, Value: 2},
	}}
	if res := or.Evaluate(context); !res.Matched {
		t.Error("OR must accept any condition")
	}
}

func TestNodeChildrenOnlyUnderMatchedParent(t *testing.T) {
	child := &Node{ID: "child", Workflow: "child_workflow"}
	parent := &Node{
		ID:         "parent",
		Conditions: []Condition{{Field: "a", Operator: OpEq, Value: "nope"}},
		Children:   []*Node{child},
	}

	res := parent.Evaluate(map[string]any{"a": "other"})
	if res.Matched {
		t.Fatal("parent should not match")
	}
	if len(res.Children) != 0 {
		t.Error("children of an unmatched parent must not be evaluated")
	}
}

func routingRuleSet(t *testing.T) *RuleSet {
	t.Helper()
	path := filepath.Join(t.TempDir(), "document_routing.yaml")
	content := `name: document_routing
version: "1.0"
description: Routes extracted documents to analysis workflows.
default_workflow: general_analysis_workflow
rules:
  - id: fraud_detection
    name: Fraud Detection
    workflow: fraud_analysis_workflow
    confidence_boost: 0.3
    conditions:
      - field: fraud_keyword_count
        operator: ge
        value: 2
    children:
      - id: high_value_fraud
        name: High Value Fraud
        workflow: fraud_escalation_workflow
        confidence_boost: 0.2
        conditions:
          - field: amount_total
            operator: gt
            value: 10000
  - id: link_heavy
    name: Link Heavy Document
    combinator: OR
    workflow: fraud_analysis_workflow
    confidence_boost: 0.1
    conditions:
      - field: link_count
        operator: ge
        value: 3
      - field: has_messaging_links
        operator: eq
        value: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := LoadRuleSet(path)
	if err != nil {
		t.Fatalf("LoadRuleSet failed: %v", err)
	}
	return rs
}

func TestRuleSetEvaluate(t *testing.T) {
	rs := routingRuleSet(t)

	result := rs.Evaluate(map[string]any{
		"fraud_keyword_count": 4,
		"amount_total":        15000.0,
		"link_count":          1,
		"has_messaging_links": true,
	})

	wantNodes := []string{"fraud_detection", "high_value_fraud", "link_heavy"}
	if len(result.MatchedNodes) != len(wantNodes) {
		t.Fatalf("matched nodes: %v", result.MatchedNodes)
	}
	for i, id := range wantNodes {
		if result.MatchedNodes[i] != id {
			t.Errorf("matched node %d: want %s, got %s", i, id, result.MatchedNodes[i])
		}
	}
	if result.RecommendedWorkflow != "fraud_analysis_workflow" {
		t.Errorf("recommended: %s", result.RecommendedWorkflow)
	}
	if math.Abs(result.TotalConfidenceBoost-0.6) > 1e-9 {
		t.Errorf("boost: %v", result.TotalConfidenceBoost)
	}
}

func TestRuleSetNoMatchFallsBackToDefault(t *testing.T) {
	rs := routingRuleSet(t)

	result := rs.Evaluate(map[string]any{"fraud_keyword_count": 0, "link_count": 0})
	if result.RecommendedWorkflow != "general_analysis_workflow" {
		t.Errorf("recommended: %s", result.RecommendedWorkflow)
	}
	if len(result.MatchedNodes) != 0 {
		t.Errorf("matched nodes: %v", result.MatchedNodes)
	}
	if result.TotalConfidenceBoost != 0 {
		t.Errorf("boost: %v", result.TotalConfidenceBoost)
	}
}

func TestRuleSetTieGoesToFirstMatched(t *testing.T) {
	rs := &RuleSet{
		Name:            "tie",
		DefaultWorkflow: DefaultWorkflow,
		Roots: []*Node{
			{ID: "a", Workflow: "alpha_workflow"},
			{ID: "b", Workflow: "beta_workflow"},
		},
	}
	result := rs.Evaluate(map[string]any{})
	if result.RecommendedWorkflow != "alpha_workflow" {
		t.Errorf("recommended: %s", result.RecommendedWorkflow)
	}
}

func TestLoadRuleSetRejectsUnknownOperator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := `name: bad
version: "1.0"
rules:
  - id: broken
    name: Broken
    conditions:
      - field: x
        operator: matches
        value: y
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRuleSet(path); err == nil {
		t.Error("expected an error for an unknown operator")
	}
}

func TestEngineCachesRuleSets(t *testing.T) {
	dir := t.TempDir()
	content := `name: routing
version: "1.0"
rules:
  - id: always
    name: Always
    workflow: general_analysis_workflow
`
	if err := os.WriteFile(filepath.Join(dir, "routing.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(dir)
	first, err := e.Load("routing")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := e.Load("routing")
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if first != second {
		t.Error("expected the cached ruleset on the second load")
	}

	if _, err := e.Load("missing"); err == nil {
		t.Error("expected an error for a missing ruleset")
	}

	result, err := e.Evaluate("routing", map[string]any{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if result.RecommendedWorkflow != "general_analysis_workflow" {
		t.Errorf("recommended: %s", result.RecommendedWorkflow)
	}
}
