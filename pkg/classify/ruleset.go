package classify

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultWorkflow is the recommendation when nothing matched.
const DefaultWorkflow = "general_analysis_workflow"

// RuleSet is a named decision tree collection loaded from YAML.
type RuleSet struct {
	Name            string         `yaml:"name"`
	Version         string         `yaml:"version"`
	Description     string         `yaml:"description"`
	DefaultWorkflow string         `yaml:"default_workflow"`
	Metadata        map[string]any `yaml:"metadata"`
	Roots           []*Node        `yaml:"rules"`
}

// Result is a full ruleset evaluation: which nodes matched, the workflows
// they recommend, and the accumulated confidence boost.
type Result struct {
	RulesetName          string       `json:"ruleset_name"`
	RulesetVersion       string       `json:"ruleset_version"`
	Roots                []NodeResult `json:"root_results"`
	MatchedNodes         []string     `json:"matched_nodes"`
	MatchedWorkflows     []string     `json:"matched_workflows"`
	TotalConfidenceBoost float64      `json:"total_confidence_boost"`
	RecommendedWorkflow  string       `json:"recommended_workflow"`
}

// LoadRuleSet parses and validates a YAML ruleset. Unknown operators,
// bad combinators, and uncompilable regex patterns fail here, not at
// evaluation time.
func LoadRuleSet(path string) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classify: read ruleset: %w", err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("classify: parse ruleset %s: %w", path, err)
	}
	if rs.DefaultWorkflow == "" {
		rs.DefaultWorkflow = DefaultWorkflow
	}
	for _, root := range rs.Roots {
		if err := root.prepare(); err != nil {
			return nil, err
		}
	}
	return &rs, nil
}

// Evaluate runs every root tree against the context and aggregates the
// matches. The recommended workflow is the one matched most often; ties
// go to the workflow matched first.
func (r *RuleSet) Evaluate(context map[string]any) *Result {
	result := &Result{
		RulesetName:         r.Name,
		RulesetVersion:      r.Version,
		MatchedNodes:        []string{},
		MatchedWorkflows:    []string{},
		RecommendedWorkflow: r.DefaultWorkflow,
	}

	for _, root := range r.Roots {
		nodeResult := root.Evaluate(context)
		result.Roots = append(result.Roots, nodeResult)
		collect(nodeResult, result)
	}

	if len(result.MatchedWorkflows) > 0 {
		counts := make(map[string]int)
		var order []string
		for _, w := range result.MatchedWorkflows {
			if _, seen := counts[w]; !seen {
				order = append(order, w)
			}
			counts[w]++
		}
		best, bestCount := "", 0
		for _, w := range order {
			if counts[w] > bestCount {
				best, bestCount = w, counts[w]
			}
		}
		result.RecommendedWorkflow = best
	}
	return result
}

func collect(nr NodeResult, result *Result) {
	if nr.Matched {
		result.MatchedNodes = append(result.MatchedNodes, nr.NodeID)
		if nr.Workflow != "" {
			result.MatchedWorkflows = append(result.MatchedWorkflows, nr.Workflow)
		}
		result.TotalConfidenceBoost += nr.ConfidenceBoost
	}
	for _, child := range nr.Children {
		collect(child, result)
	}
}

// Engine caches loaded rulesets by name, resolving them as
// <dir>/<name>.yaml. Safe for concurrent evaluation.
type Engine struct {
	dir    string
	logger *slog.Logger

	mu       sync.Mutex
	rulesets map[string]*RuleSet
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an engine reading rulesets from dir.
func NewEngine(dir string, opts ...EngineOption) *Engine {
	e := &Engine{
		dir:      dir,
		logger:   slog.Default(),
		rulesets: make(map[string]*RuleSet),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load returns the named ruleset, reading it from disk on first use.
// A missing ruleset is an error; there is no silent fallback.
func (e *Engine) Load(name string) (*RuleSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rs, ok := e.rulesets[name]; ok {
		return rs, nil
	}
	rs, err := LoadRuleSet(filepath.Join(e.dir, name+".yaml"))
	if err != nil {
		return nil, err
	}
	e.rulesets[name] = rs
	e.logger.Info("loaded ruleset", "name", rs.Name, "version", rs.Version)
	return rs, nil
}

// Evaluate loads the named ruleset if needed and runs it.
func (e *Engine) Evaluate(name string, context map[string]any) (*Result, error) {
	rs, err := e.Load(name)
	if err != nil {
		return nil, err
	}
	return rs.Evaluate(context), nil
}
