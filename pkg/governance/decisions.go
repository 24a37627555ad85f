package governance

import (
	"strings"
	"time"

	"github.com/assafkip/spanforge/pkg/backtest"
	"github.com/assafkip/spanforge/pkg/expand"
)

// Decision values. Escalations record why in EscalationReason.
const (
	DecisionReadyDeploy               = "ready-deploy"
	DecisionReadyReview               = "ready-review"
	DecisionEscalateMissingConfidence = "escalate-missing-confidence"
	DecisionEscalateMissingTier       = "escalate-missing-tier"
	DecisionEscalateMissingMetadata   = "escalate-missing-metadata"
	DecisionEscalatedByRule           = "escalated-by-rule"
)

// statusReadyDeploy marks candidates an operator pre-approved upstream.
// The expander itself never emits it.
const statusReadyDeploy = "ready-deploy"

// requiredMetadata lists the operator-supplied fields every deployment
// proposal must carry, in the order missing ones are reported.
var requiredMetadata = []string{"severity_label", "rule_owner", "detection_type", "sla"}

// Candidate is an expansion candidate moving through governance. The
// embedded expansion fields arrive on the wire; the rest are annotated by
// Enrich and Decide.
type Candidate struct {
	expand.Candidate

	Metrics       *backtest.Metric `json:"metrics,omitempty"`
	Confidence    *float64         `json:"confidence_score,omitempty"`
	RiskTier      string           `json:"risk_tier,omitempty"`
	FPR           float64          `json:"fpr"`
	Justification string           `json:"justification,omitempty"`

	SeverityLabel string `json:"severity_label,omitempty"`
	RuleOwner     string `json:"rule_owner,omitempty"`
	DetectionType string `json:"detection_type,omitempty"`
	SLA           int    `json:"sla,omitempty"`

	Decision            string `json:"decision,omitempty"`
	DeploymentCandidate bool   `json:"deployment_candidate"`
	EscalationReason    string `json:"escalation_reason,omitempty"`
}

// Proposal is an approved candidate bound to one target system.
type Proposal struct {
	Candidate
	TargetSystem        string `json:"target_system"`
	GovernanceStatus    string `json:"governance_status"`
	GovernanceTimestamp string `json:"governance_timestamp"`
}

func (c Candidate) strongJustification() bool {
	return strings.TrimSpace(c.Justification) != "" &&
		strings.TrimSpace(c.EvidenceQuote) != "" &&
		strings.TrimSpace(c.Operator) != ""
}

// missingMetadata returns the names of absent required metadata fields.
// Zero SLA counts as absent: an SLA of zero hours is not a commitment.
func (c Candidate) missingMetadata() []string {
	var missing []string
	for _, field := range requiredMetadata {
		switch field {
		case "severity_label":
			if c.SeverityLabel == "" {
				missing = append(missing, field)
			}
		case "rule_owner":
			if c.RuleOwner == "" {
				missing = append(missing, field)
			}
		case "detection_type":
			if c.DetectionType == "" {
				missing = append(missing, field)
			}
		case "sla":
			if c.SLA == 0 {
				missing = append(missing, field)
			}
		}
	}
	return missing
}

func (c Candidate) escalated() bool {
	return strings.HasPrefix(c.Decision, "escalate")
}

// Enrich annotates every candidate with its backtest metrics, confidence
// score, and risk tier. Patterns absent from the report get the worst-case
// metric (FPR 1.0, zero samples) so they can never sneak past the FPR gate.
func Enrich(cands []Candidate, report *backtest.Report, p Policy) []Candidate {
	out := make([]Candidate, len(cands))
	for i, c := range cands {
		m := backtest.Metric{FalsePositiveRate: 1.0}
		if report != nil {
			if got, ok := report.Rules[c.Pattern]; ok {
				m = got
			}
		}
		metric := m
		c.Metrics = &metric
		c.FPR = m.FalsePositiveRate
		conf := Score(m)
		c.Confidence = &conf
		c.RiskTier = TierFor(conf, m.FalsePositiveRate, p)
		out[i] = c
	}
	return out
}

// Decide runs the governance pipeline over enriched candidates:
//
//  1. keep only status ready / ready-deploy;
//  2. ready-deploy when FPR clears the policy ceiling and (if required)
//     the justification trail is complete, else ready-review;
//  3. ready-deploy additionally requires a confidence score, a risk tier,
//     and full metadata, escalating with a recorded reason otherwise;
//  4. policy escalation rules run last over non-escalated candidates,
//     first match wins, with the rule ID as the machine-readable reason.
//
// The error is non-nil only when a policy rule fails to compile.
func Decide(cands []Candidate, p Policy) ([]Candidate, error) {
	engine, err := NewRuleEngine(p.Rules)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Status != expand.StatusReady && c.Status != statusReadyDeploy {
			continue
		}

		strong := true
		if p.RequireJustification {
			strong = c.strongJustification()
		}
		if c.FPR <= p.MaxFPR && strong {
			c.Decision = DecisionReadyDeploy
			c.DeploymentCandidate = true
		} else {
			c.Decision = DecisionReadyReview
			c.DeploymentCandidate = false
		}

		if c.Decision == DecisionReadyDeploy {
			switch {
			case c.Confidence == nil:
				c.Decision = DecisionEscalateMissingConfidence
				c.EscalationReason = "Advisory item lacks required confidence score"
			case c.RiskTier == "":
				c.Decision = DecisionEscalateMissingTier
				c.EscalationReason = "Advisory item lacks required risk tier assignment"
			default:
				if missing := c.missingMetadata(); len(missing) > 0 {
					c.Decision = DecisionEscalateMissingMetadata
					c.EscalationReason = "Missing required metadata: " + strings.Join(missing, ", ")
				}
			}
		}

		if engine != nil && !c.escalated() {
			if ruleID, action, ok := engine.FirstMatch(c); ok {
				switch action {
				case ActionEscalate:
					c.Decision = DecisionEscalatedByRule
					c.EscalationReason = ruleID
				case ActionReview:
					c.Decision = DecisionReadyReview
					c.EscalationReason = ruleID
				}
			}
		}

		out = append(out, c)
	}
	return out, nil
}

// AssignTargets expands every surviving ready-deploy candidate into one
// proposal per allowed target system, each stamped with the governance
// attestation. With RequireAdapter false and no targets configured, a
// single direct proposal is emitted instead.
func AssignTargets(cands []Candidate, p Policy) []Proposal {
	now := time.Now().UTC().Format(time.RFC3339)
	var proposals []Proposal
	for _, c := range cands {
		if c.Decision != DecisionReadyDeploy || !c.DeploymentCandidate {
			continue
		}
		targets := p.AllowedTargets
		if len(targets) == 0 {
			if p.RequireAdapter {
				continue
			}
			targets = []string{""}
		}
		for _, tgt := range targets {
			proposals = append(proposals, Proposal{
				Candidate:           c,
				TargetSystem:        tgt,
				GovernanceStatus:    "approved",
				GovernanceTimestamp: now,
			})
		}
	}
	return proposals
}
