package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/assafkip/spanforge/pkg/audit"
	"github.com/assafkip/spanforge/pkg/compiler"
	"github.com/assafkip/spanforge/pkg/gates"
	"github.com/assafkip/spanforge/pkg/ir"
)

// RunInput names one IR document for the pipeline. Raw wins when both are
// set.
type RunInput struct {
	Path string
	Raw  []byte
}

// RunResult is everything one pipeline run produced.
type RunResult struct {
	RunID     string
	Doc       *ir.Document
	Artifacts compiler.ArtifactSet
	Report    *gates.Report
	Keys      []string
}

// Run executes the pipeline for a single document: parse, map loose
// extractions, normalize amounts, validate, compile, gate, persist.
// Normalization runs before validation so a derivable numeric field never
// fails the schema check. In strict mode a gate failure returns
// ErrValidationFailed with the result still populated.
func (e *Engine) Run(ctx context.Context, in RunInput) (res *RunResult, err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Run")
	defer span.End()

	// Crash safety.
	defer e.recoverPanic(span, &err)

	raw := in.Raw
	source := "inline"
	if len(raw) == 0 {
		source = in.Path
		raw, err = os.ReadFile(in.Path)
		if err != nil {
			return nil, fmt.Errorf("engine: read input: %w", err)
		}
	}

	doc, err := ir.Parse(raw)
	if err != nil {
		return nil, err
	}
	runID := doc.RunID
	span.SetAttributes(attribute.String("run.id", runID))
	e.Logger.Info("starting pipeline run",
		"run_id", runID,
		"source", source,
		"targets", strings.Join(e.config.Pipeline.Targets, ","))

	buildOp := e.begin(runID, "build_ir", map[string]any{
		"source":      source,
		"input_bytes": len(raw),
	})
	ir.MapExtractions(doc)
	ir.NormalizeAmounts(doc)
	if err := ir.ValidateSchema(doc); err != nil {
		e.opFail(buildOp, err)
		return nil, err
	}
	e.opSuccess(buildOp, map[string]any{"indicators": len(doc.Indicators)})

	compileOp := e.begin(runID, "compile_rules", map[string]any{
		"targets": strings.Join(e.config.Pipeline.Targets, ","),
	})
	artifacts, err := compiler.Compile(doc, e.targets())
	if err != nil {
		e.opFail(compileOp, err)
		return nil, err
	}
	e.opSuccess(compileOp, map[string]any{"artifact_count": len(artifacts)})
	if e.compiled != nil {
		e.compiled.Add(ctx, int64(len(doc.Indicators)))
	}

	report := e.Gates.Run(ctx, &gates.Input{
		Doc:       doc,
		Artifacts: artifacts,
		Config:    e.gateConfig(),
	})
	e.event("validation_complete", runID, map[string]any{
		"all_passed":   report.AllPassed,
		"passed_gates": report.PassedGates,
		"total_gates":  report.TotalGates,
	})

	keys, err := e.persist(ctx, runID, doc, artifacts, report)
	if err != nil {
		return nil, err
	}

	res = &RunResult{RunID: runID, Doc: doc, Artifacts: artifacts, Report: report, Keys: keys}

	if !report.AllPassed {
		span.SetAttributes(attribute.Bool("gates.failed", true))
		if e.config.Pipeline.StrictMode {
			e.Logger.Error("Strict Mode: failing run on gate failure", "run_id", runID)
			return res, ErrValidationFailed
		}
		e.Logger.Warn("gates failed (StrictMode=false)", "run_id", runID,
			"passed", report.PassedGates, "total", report.TotalGates)
	}

	e.Logger.Info("pipeline run complete",
		"run_id", runID,
		"artifacts", len(artifacts),
		"all_passed", report.AllPassed)
	return res, nil
}

// RunAll fans independent documents out across the worker pool. Compilation
// and gating share no state between documents, so order of execution does
// not matter; results come back in input order.
func (e *Engine) RunAll(ctx context.Context, paths []string) ([]*RunResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	e.Swarm.Start(ctx)
	defer e.Swarm.Stop()

	results := make([]*RunResult, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		e.Swarm.Submit(func(ctx context.Context) error {
			defer wg.Done()
			res, err := e.Run(ctx, RunInput{Path: path})
			results[i], errs[i] = res, err
			return err
		})
	}
	wg.Wait()

	return results, errors.Join(errs...)
}

// persist writes the run's outputs through the store under runs/<run_id>/.
func (e *Engine) persist(ctx context.Context, runID string, doc *ir.Document, artifacts compiler.ArtifactSet, report *gates.Report) ([]string, error) {
	base := "runs/" + runID

	var keys []string
	put := func(key string, data []byte) error {
		if err := e.Store.Put(ctx, key, data); err != nil {
			return fmt.Errorf("engine: persist %s: %w", key, err)
		}
		keys = append(keys, key)
		return nil
	}

	for _, target := range artifacts.Targets() {
		if err := put(base+"/artifacts/rules."+string(target), artifacts[target]); err != nil {
			return nil, err
		}
	}

	docJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("engine: encode normalized ir: %w", err)
	}
	if err := put(base+"/ir.json", append(docJSON, '\n')); err != nil {
		return nil, err
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("engine: encode gate report: %w", err)
	}
	if err := put(base+"/gate_report.json", append(reportJSON, '\n')); err != nil {
		return nil, err
	}
	return keys, nil
}

func (e *Engine) targets() []compiler.Target {
	out := make([]compiler.Target, 0, len(e.config.Pipeline.Targets))
	for _, t := range e.config.Pipeline.Targets {
		out = append(out, compiler.Target(t))
	}
	return out
}

// gateConfig builds the run configuration the config-completeness gate
// inspects. An unset model name stays absent so the gate can refuse the run.
func (e *Engine) gateConfig() map[string]any {
	cfg := make(map[string]any)
	if e.config.Pipeline.ModelName != "" {
		cfg["model_name"] = e.config.Pipeline.ModelName
	}
	if len(e.config.Pipeline.Targets) > 0 {
		cfg["targets"] = e.config.Pipeline.Targets
	}
	return cfg
}

// Audit helpers tolerate a nil audit logger so the engine can run without
// an audit trail when embedding callers disable it.

func (e *Engine) begin(runID, name string, data map[string]any) *audit.Operation {
	if e.Audit == nil {
		return nil
	}
	return e.Audit.Begin(runID, name, data)
}

func (e *Engine) opSuccess(op *audit.Operation, data map[string]any) {
	if op != nil {
		op.Success(data)
	}
}

func (e *Engine) opFail(op *audit.Operation, err error) {
	if op != nil {
		op.Fail(err)
	}
}

func (e *Engine) event(name, runID string, data map[string]any) {
	if e.Audit != nil {
		e.Audit.Append(name, runID, data)
	}
}
