// Package governance turns backtested expansion candidates into deployment
// proposals, or refuses to. Every decision is a pure function of the policy:
// same candidates, same policy, same outcome. The lane is advisory only and
// never mutates authoritative rule artifacts.
package governance

// EscalationRule is a policy-defined CEL condition evaluated against each
// candidate after the built-in gates. Action is "escalate" or "review".
type EscalationRule struct {
	ID        string `json:"id" yaml:"id"`
	Condition string `json:"condition" yaml:"condition"`
	Action    string `json:"action" yaml:"action"`
}

// Policy holds every threshold the decision pipeline consults.
type Policy struct {
	MaxFPR               float64          `yaml:"max_fpr"`
	RequireJustification bool             `yaml:"require_justification"`
	RequireAdapter       bool             `yaml:"require_adapter"`
	AllowedTargets       []string         `yaml:"allowed_targets"`
	Tiers                []Tier           `yaml:"tiers"`
	Rules                []EscalationRule `yaml:"rules"`
}

// DefaultPolicy returns a safe baseline: half-percent FPR ceiling, full
// justification required, and deployment only through known adapters.
func DefaultPolicy() Policy {
	return Policy{
		MaxFPR:               0.005,
		RequireJustification: true,
		RequireAdapter:       true,
		AllowedTargets:       []string{"splunk", "elastic", "sql"},
		Tiers:                DefaultTiers(),
	}
}
