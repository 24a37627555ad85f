// Package config defines typed configuration and defaults for the pipeline,
// expansion, and artifact storage.
package config

// EngineConfig defines the knobs for a compile run.
type EngineConfig struct {
	// ModelName identifies the extraction model that produced the IR.
	// There is no default: the validation gates refuse a run that never
	// pinned it, because an unpinned model is not reproducible.
	ModelName string
	// Targets is the list of artifact families to compile.
	Targets []string
	// StrictMode turns a validation gate failure into a run failure.
	StrictMode bool
}

// ExpandConfig defines the promotion thresholds for evidence expansion.
type ExpandConfig struct {
	// RepeatMin is the cross-sentence recurrence count required to promote
	// a candidate on frequency alone.
	RepeatMin int
	// Denylist lists generic tokens that never become candidates.
	Denylist []string
}

// Defaults.
const (
	DefaultRegion   = "us-east-1"
	DefaultAuditLog = "audit/audit_log.jsonl"
	DefaultOutDir   = "artifacts"
)

// DefaultEngineConfig returns default engine values.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Targets:    []string{"regex", "sql", "json"},
		StrictMode: false,
	}
}

// DefaultExpandConfig returns default expansion values.
func DefaultExpandConfig() ExpandConfig {
	return ExpandConfig{
		RepeatMin: 2,
		Denylist:  []string{"apps", "payments", "transfers"},
	}
}
