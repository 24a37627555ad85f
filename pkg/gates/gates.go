// Package gates runs the release validation gates over an IR document and
// its compiled artifacts. Gates only detect and report; nothing here repairs,
// drops or rewrites data. A gate failure is a human's problem to fix at the
// source, never the checker's to paper over.
package gates

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/assafkip/spanforge/pkg/compiler"
	"github.com/assafkip/spanforge/pkg/ir"
)

// Gate is one validation check. Implementations must be stateless: Check can
// be called concurrently for different inputs.
type Gate interface {
	ID() string
	Describe() string
	Check(ctx context.Context, in *Input) Result
}

// Input bundles everything a gate may inspect. Gates treat all of it as
// read-only.
type Input struct {
	Doc       *ir.Document
	Artifacts compiler.ArtifactSet
	Config    map[string]any
}

// Result is one gate's verdict.
type Result struct {
	GateID string   `json:"gate_id"`
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}

// Report aggregates all gate results for a run.
type Report struct {
	Gates       map[string]Result `json:"gates"`
	AllPassed   bool              `json:"all_passed"`
	TotalGates  int               `json:"total_gates"`
	PassedGates int               `json:"passed_gates"`
	GateStatus  map[string]bool   `json:"gate_status"`
}

// Checker owns the registered gates and runs them in ID order.
type Checker struct {
	gates  []Gate
	logger *slog.Logger
	tracer trace.Tracer
	checks metric.Int64Counter
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the structured logger used for per-gate debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// NewChecker returns a checker preloaded with the five release gates.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		logger: slog.Default(),
		tracer: otel.Tracer("spanforge/gates"),
	}
	meter := otel.Meter("spanforge/gates")
	c.checks, _ = meter.Int64Counter("spanforge.gates.checks",
		metric.WithDescription("Validation gate executions"))

	for _, opt := range opts {
		opt(c)
	}

	c.Register(ZeroInference{})
	c.Register(CategoryProvenance{})
	c.Register(ExtractionProvenance{})
	c.Register(ArtifactValidity{})
	c.Register(NoInferredFields{})
	return c
}

// Register adds a gate. Gates run sorted by ID, so registration order does
// not matter.
func (c *Checker) Register(g Gate) {
	c.gates = append(c.gates, g)
}

// Run executes every registered gate and aggregates their verdicts. All
// gates always run; an early failure never short-circuits later checks.
func (c *Checker) Run(ctx context.Context, in *Input) *Report {
	ordered := make([]Gate, len(c.gates))
	copy(ordered, c.gates)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID() < ordered[j].ID() })

	report := &Report{
		Gates:      make(map[string]Result, len(ordered)),
		GateStatus: make(map[string]bool, len(ordered)),
		TotalGates: len(ordered),
	}
	for _, g := range ordered {
		res := c.runGate(ctx, g, in)
		report.Gates[g.ID()] = res
		report.GateStatus[g.ID()] = res.Passed
		if res.Passed {
			report.PassedGates++
		}
	}
	report.AllPassed = report.PassedGates == report.TotalGates
	return report
}

func (c *Checker) runGate(ctx context.Context, g Gate, in *Input) Result {
	ctx, span := c.tracer.Start(ctx, "gate."+g.ID(),
		trace.WithAttributes(
			attribute.String("gate.id", g.ID()),
			attribute.String("gate.description", g.Describe()),
		))
	defer span.End()

	c.logger.Debug("running gate", "gate", g.ID())
	res := g.Check(ctx, in)
	res.GateID = g.ID()

	span.SetAttributes(attribute.Int("gate.issues", len(res.Issues)))
	if c.checks != nil {
		c.checks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("gate.id", g.ID()),
			attribute.Bool("gate.passed", res.Passed),
		))
	}
	if !res.Passed {
		span.SetStatus(codes.Error, "gate failed")
		c.logger.Debug("gate failed", "gate", g.ID(), "issues", len(res.Issues))
		return res
	}
	c.logger.Debug("gate passed", "gate", g.ID())
	return res
}

func fail(issues []string) Result {
	return Result{Passed: len(issues) == 0, Issues: issues}
}
