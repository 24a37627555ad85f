package governance

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// Escalation rule actions.
const (
	ActionEscalate = "escalate"
	ActionReview   = "review"
)

// RuleEngine compiles policy escalation rules once and evaluates candidates
// against them. Rules are CEL expressions over a fixed set of candidate
// variables, e.g. "samples < 50 && risk_tier != 'blocking'".
type RuleEngine struct {
	env      *cel.Env
	rules    []EscalationRule
	programs map[string]cel.Program
}

// NewRuleEngine compiles the given rules. Returns (nil, nil) when there are
// none, so callers can treat an absent engine as "no rules configured".
func NewRuleEngine(rules []EscalationRule) (*RuleEngine, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("pattern", decls.String),
			decls.NewVar("status", decls.String),
			decls.NewVar("operator", decls.String),
			decls.NewVar("fpr", decls.Double),
			decls.NewVar("confidence", decls.Double),
			decls.NewVar("risk_tier", decls.String),
			decls.NewVar("samples", decls.Int),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("governance: create rule env: %w", err)
	}

	e := &RuleEngine{
		env:      env,
		rules:    rules,
		programs: make(map[string]cel.Program, len(rules)),
	}
	for _, r := range rules {
		if r.Action != ActionEscalate && r.Action != ActionReview {
			return nil, fmt.Errorf("governance: rule %s: unknown action %q", r.ID, r.Action)
		}
		ast, issues := env.Compile(r.Condition)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("governance: rule %s compilation error: %w", r.ID, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("governance: rule %s program creation error: %w", r.ID, err)
		}
		e.programs[r.ID] = prg
	}
	return e, nil
}

// FirstMatch evaluates rules in declared order and returns the first that
// matches. A rule that fails to evaluate is logged and skipped rather than
// blocking the pipeline.
func (e *RuleEngine) FirstMatch(c Candidate) (ruleID, action string, matched bool) {
	vars := c.ruleVars()
	for _, r := range e.rules {
		out, _, err := e.programs[r.ID].Eval(vars)
		if err != nil {
			slog.Warn("escalation rule evaluation failed", "rule_id", r.ID, "error", err)
			continue
		}
		if match, ok := out.Value().(bool); ok && match {
			return r.ID, r.Action, true
		}
	}
	return "", "", false
}

// ruleVars flattens a candidate into the declared CEL variables. A missing
// confidence score surfaces as -1 so rules can test for it.
func (c Candidate) ruleVars() map[string]any {
	confidence := -1.0
	if c.Confidence != nil {
		confidence = *c.Confidence
	}
	samples := 0
	if c.Metrics != nil {
		samples = c.Metrics.SamplesTested
	}
	return map[string]any{
		"pattern":    c.Pattern,
		"status":     c.Status,
		"operator":   c.Operator,
		"fpr":        c.FPR,
		"confidence": confidence,
		"risk_tier":  c.RiskTier,
		"samples":    samples,
	}
}
