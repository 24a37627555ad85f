// Package compiler translates IR documents into deployable rule artifacts.
// Compilation is deterministic and zero-inference: identical input produces
// byte-identical output, and every emitted value is copied verbatim from the
// IR. The compiler never repairs, reorders or invents.
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/assafkip/spanforge/pkg/ir"
)

// Target names one artifact family the compiler can emit.
type Target string

const (
	TargetRegex  Target = "regex"
	TargetSQL    Target = "sql"
	TargetJSON   Target = "json"
	TargetPython Target = "python"
)

// targetOrder fixes the emission order regardless of how targets were
// requested, keeping runs reproducible.
var targetOrder = []Target{TargetRegex, TargetSQL, TargetJSON, TargetPython}

// DefaultTargets is used when a compile request names no targets.
var DefaultTargets = []Target{TargetRegex, TargetSQL, TargetJSON}

const (
	stageCompile = "compile"
	version      = ir.SchemaVersion
)

// ArtifactSet maps each compiled target to its artifact bytes.
type ArtifactSet map[Target][]byte

// Targets returns the set's targets in canonical order.
func (a ArtifactSet) Targets() []Target {
	var out []Target
	for _, t := range targetOrder {
		if _, ok := a[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// CompileError reports a request the compiler refuses to serve. Category
// grounding fails closed: an indicator referencing an undeclared category is
// never silently attached to an invented one.
type CompileError struct {
	Target       Target   // set when an unknown target was requested
	Undeclared   []string // categories referenced by indicators, never declared
	Unreferenced []string // categories declared, never referenced
}

func (e *CompileError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("compiler: unknown target %q", e.Target)
	}
	var parts []string
	if len(e.Undeclared) > 0 {
		parts = append(parts, fmt.Sprintf("referenced but not declared: %s", strings.Join(e.Undeclared, ", ")))
	}
	if len(e.Unreferenced) > 0 {
		parts = append(parts, fmt.Sprintf("declared but never referenced: %s", strings.Join(e.Unreferenced, ", ")))
	}
	return "compiler: category mismatch: " + strings.Join(parts, "; ")
}

// Compile translates an IR document into one artifact per requested target.
// The caller's document is never mutated. Schema validation and category
// grounding run before any artifact is generated, so a failed compile
// produces nothing at all.
func Compile(doc *ir.Document, targets []Target) (ArtifactSet, error) {
	resolved, err := resolveTargets(targets)
	if err != nil {
		return nil, err
	}

	work := doc.Clone()
	ir.MapExtractions(work)

	if err := ir.ValidateSchema(work); err != nil {
		return nil, err
	}
	if err := checkCategoryGrounding(work); err != nil {
		return nil, err
	}

	artifacts := make(ArtifactSet, len(resolved))
	for _, t := range resolved {
		switch t {
		case TargetRegex:
			artifacts[t] = generateRegex(work)
		case TargetSQL:
			artifacts[t] = generateSQL(work)
		case TargetJSON:
			raw, err := generateJSON(work)
			if err != nil {
				return nil, fmt.Errorf("compiler: render json artifact: %w", err)
			}
			artifacts[t] = raw
		case TargetPython:
			artifacts[t] = generatePython(work)
		}
	}
	return artifacts, nil
}

// resolveTargets validates, dedupes and canonically orders the request.
func resolveTargets(targets []Target) ([]Target, error) {
	if len(targets) == 0 {
		targets = DefaultTargets
	}
	known := make(map[Target]bool, len(targetOrder))
	for _, t := range targetOrder {
		known[t] = true
	}
	requested := make(map[Target]bool, len(targets))
	for _, t := range targets {
		if !known[t] {
			return nil, &CompileError{Target: t}
		}
		requested[t] = true
	}
	var out []Target
	for _, t := range targetOrder {
		if requested[t] {
			out = append(out, t)
		}
	}
	return out, nil
}

// checkCategoryGrounding compares the categories referenced by indicators
// against those declared on the document. The Unspecified sentinel is not a
// reference; it passes through so the final validation gate can name it.
func checkCategoryGrounding(doc *ir.Document) error {
	referenced := make(map[string]bool)
	for _, ind := range doc.Indicators {
		if ind.CategoryID != "" && ind.CategoryID != ir.Unspecified {
			referenced[ind.CategoryID] = true
		}
	}
	declared := make(map[string]bool, len(doc.Categories))
	for id := range doc.Categories {
		declared[id] = true
	}

	var undeclared, unreferenced []string
	for id := range referenced {
		if !declared[id] {
			undeclared = append(undeclared, id)
		}
	}
	for id := range declared {
		if !referenced[id] {
			unreferenced = append(unreferenced, id)
		}
	}
	if len(undeclared) == 0 && len(unreferenced) == 0 {
		return nil
	}
	sort.Strings(undeclared)
	sort.Strings(unreferenced)
	return &CompileError{Undeclared: undeclared, Unreferenced: unreferenced}
}

// ruleID numbers rules by indicator position, one-based.
func ruleID(i int) string {
	return fmt.Sprintf("rule_%03d", i+1)
}
