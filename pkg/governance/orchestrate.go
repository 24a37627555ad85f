package governance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/assafkip/spanforge/pkg/audit"
	"github.com/assafkip/spanforge/pkg/backtest"
)

// Orchestrator drives the advisory lane end to end: load artifacts, enrich,
// decide, assign targets, write proposals. Everything it writes lands under
// its own run directory; authoritative IR and compiled rules are never
// touched.
type Orchestrator struct {
	policy   Policy
	logger   *slog.Logger
	auditLog *audit.Logger
	runID    string
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithPolicy replaces the default policy.
func WithPolicy(p Policy) OrchestratorOption {
	return func(o *Orchestrator) { o.policy = p }
}

// WithAuditLog attaches the tamper-evident audit log. An empty runID
// defaults to the run directory name at Run time.
func WithAuditLog(log *audit.Logger, runID string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.auditLog = log
		o.runID = runID
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator returns an orchestrator with the default policy.
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		policy: DefaultPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunResult summarizes one orchestrator pass.
type RunResult struct {
	RunDir        string
	Candidates    []Candidate
	Proposals     []Proposal
	Report        *Report
	PlanPath      string
	ProposalsPath string
	ReportPath    string
}

// Run executes one advisory pass. Missing input artifacts are treated as
// empty, not as failures: an empty expansions file is a valid state of the
// pipeline, and the audit trail still records the pass.
func (o *Orchestrator) Run(ctx context.Context, expansionsPath, backtestPath, outDir string) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runDir := filepath.Join(outDir, fmt.Sprintf("run_%d", time.Now().Unix()))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("governance: create run dir: %w", err)
	}
	runID := o.runID
	if runID == "" {
		runID = filepath.Base(runDir)
	}
	o.event(runID, "orchestrator.start", map[string]any{"run_dir": runDir})

	expansions, err := LoadExpansions(expansionsPath)
	if err != nil {
		return nil, err
	}
	o.event(runID, "load.expansions", map[string]any{"count": len(expansions)})

	report, err := loadBacktestReport(backtestPath)
	if err != nil {
		return nil, err
	}
	o.event(runID, "load.backtest", map[string]any{"rule_count": len(report.Rules)})

	enriched := Enrich(expansions, report, o.policy)
	candidates, err := Decide(enriched, o.policy)
	if err != nil {
		return nil, err
	}
	deployCount := 0
	for _, c := range candidates {
		if c.Decision == DecisionReadyDeploy {
			deployCount++
		}
	}
	o.event(runID, "decide.ready_deploy", map[string]any{"count": deployCount})

	proposals := AssignTargets(candidates, o.policy)
	o.event(runID, "decide.adapter_targets", map[string]any{"count": len(proposals)})

	if candidates == nil {
		candidates = []Candidate{}
	}
	if proposals == nil {
		proposals = []Proposal{}
	}

	propDir := filepath.Join(runDir, "proposals")
	if err := os.MkdirAll(propDir, 0o755); err != nil {
		return nil, fmt.Errorf("governance: create proposals dir: %w", err)
	}
	proposalsPath := filepath.Join(propDir, "deployment_proposals.json")
	if err := writeJSON(proposalsPath, map[string]any{"proposals": proposals}); err != nil {
		return nil, err
	}
	o.event(runID, "write.proposals", map[string]any{"path": proposalsPath})

	planPath := filepath.Join(runDir, "plan.json")
	if err := writeJSON(planPath, map[string]any{"candidates": candidates}); err != nil {
		return nil, err
	}

	govReport := Summarize(candidates)
	reportPath := filepath.Join(runDir, "governance_report.json")
	if err := writeJSON(reportPath, govReport); err != nil {
		return nil, err
	}
	o.event(runID, "write.governance_report", map[string]any{"path": reportPath})

	o.event(runID, "orchestrator.end", map[string]any{"status": "ok"})
	o.logger.Info("governance pass complete",
		"run_dir", runDir,
		"candidates", len(candidates),
		"proposals", len(proposals),
		"pass_rate", govReport.Summary.GovernancePassRate)

	return &RunResult{
		RunDir:        runDir,
		Candidates:    candidates,
		Proposals:     proposals,
		Report:        govReport,
		PlanPath:      planPath,
		ProposalsPath: proposalsPath,
		ReportPath:    reportPath,
	}, nil
}

func (o *Orchestrator) event(runID, name string, data map[string]any) {
	if o.auditLog == nil {
		return
	}
	o.auditLog.Append(name, runID, data)
}

// LoadExpansions reads an expansions artifact of shape
// {"expansions": [...]}. A missing file yields an empty slice.
func LoadExpansions(path string) ([]Candidate, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("governance: read expansions: %w", err)
	}
	var wire struct {
		Expansions []Candidate `json:"expansions"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("governance: parse expansions %s: %w", path, err)
	}
	return wire.Expansions, nil
}

func loadBacktestReport(path string) (*backtest.Report, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &backtest.Report{Rules: map[string]backtest.Metric{}}, nil
	}
	return backtest.LoadReport(path)
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("governance: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("governance: write %s: %w", path, err)
	}
	return nil
}
