package gates

import (
	"context"
	"strings"
	"testing"

	"github.com/assafkip/spanforge/pkg/compiler"
	"github.com/assafkip/spanforge/pkg/ir"
)

func intp(v int) *int { return &v }

// passingInput builds a document that satisfies every gate, compiled to all
// four targets.
func passingInput(t *testing.T) *Input {
	t.Helper()
	num := 1998.88
	doc := &ir.Document{
		SchemaVersion: "v0.4",
		Indicators: []ir.Indicator{
			{Kind: "amount", Verbatim: "$1,998.88", Numeric: &num, CategoryID: "financial", SpanID: "s1"},
			{Kind: "link", Literal: "wa.me/123456789", CategoryID: "contact", SpanID: "s2"},
		},
		Categories: map[string]map[string]any{"financial": {}, "contact": {}},
		Extractions: []ir.Extraction{
			{
				Type: "category", Value: "financial pressure", CategoryID: "financial", SpanID: "s3",
				Provenance: &ir.Provenance{Page: intp(1), Start: intp(120), End: intp(138)},
				SourceSpan: &ir.SourceSpan{CategoryID: "financial", SpanID: "s3"},
			},
		},
	}
	artifacts, err := compiler.Compile(doc, []compiler.Target{
		compiler.TargetRegex, compiler.TargetSQL, compiler.TargetJSON, compiler.TargetPython,
	})
	if err != nil {
		t.Fatalf("fixture compile failed: %v", err)
	}
	return &Input{
		Doc:       doc,
		Artifacts: artifacts,
		Config:    map[string]any{"model_name": "extractor-v2", "targets": []string{"regex", "json"}},
	}
}

func TestCheckerAllGatesPass(t *testing.T) {
	report := NewChecker().Run(context.Background(), passingInput(t))

	if !report.AllPassed {
		t.Fatalf("expected all gates to pass: %+v", report.Gates)
	}
	if report.TotalGates != 5 || report.PassedGates != 5 {
		t.Errorf("expected 5/5 gates, got %d/%d", report.PassedGates, report.TotalGates)
	}
	for _, id := range []string{"V-001", "V-002", "V-003", "V-004", "V-005"} {
		if !report.GateStatus[id] {
			t.Errorf("gate %s missing or failed", id)
		}
	}
}

func TestCheckerRunsEveryGateDespiteFailures(t *testing.T) {
	in := passingInput(t)
	in.Doc.Indicators[0].Verbatim = "" // V-001 trips

	report := NewChecker().Run(context.Background(), in)
	if report.AllPassed {
		t.Fatal("expected a failure")
	}
	if len(report.Gates) != 5 {
		t.Errorf("all gates must run even after a failure, got %d results", len(report.Gates))
	}
}

func TestZeroInferenceEmptyValue(t *testing.T) {
	in := passingInput(t)
	in.Doc.Indicators[0].Verbatim = "   "

	res := ZeroInference{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("whitespace-only value must fail")
	}
	if !strings.Contains(res.Issues[0], "empty value") {
		t.Errorf("issue should name the empty value: %v", res.Issues)
	}
}

func TestZeroInferenceNormalizationMarkers(t *testing.T) {
	tests := []struct {
		value string
		want  bool // pass
	}{
		{"$1,998.88", true},
		{"normalized: $1,998.88", false},
		{"  cleaned: text", false},
		{"processed: output", false},
		{"Normalization result: x", false},
		{"plain memo text", true},
	}
	for _, tt := range tests {
		in := passingInput(t)
		in.Doc.Extractions[0].Value = tt.value
		res := ZeroInference{}.Check(context.Background(), in)
		if res.Passed != tt.want {
			t.Errorf("value %q: passed=%v, want %v (%v)", tt.value, res.Passed, tt.want, res.Issues)
		}
	}
}

func TestZeroInferenceCriticalFragment(t *testing.T) {
	in := passingInput(t)
	// The amount survives only inside a longer value, not verbatim.
	in.Doc.Indicators[0].Verbatim = "fee of $1,998.88 due"

	res := ZeroInference{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("fragmented critical indicator must fail")
	}
	if !strings.Contains(res.Issues[0], "$1,998.88") {
		t.Errorf("issue should name the indicator: %v", res.Issues)
	}
}

func TestCategoryProvenanceMissingFields(t *testing.T) {
	in := passingInput(t)
	in.Doc.Extractions[0].Provenance.End = nil

	res := CategoryProvenance{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("incomplete provenance on a category extraction must fail")
	}
}

func TestCategoryProvenanceIgnoresOtherTypes(t *testing.T) {
	in := passingInput(t)
	in.Doc.Extractions = append(in.Doc.Extractions, ir.Extraction{
		Type: "amount", Value: "$5", // no provenance at all
	})
	res := CategoryProvenance{}.Check(context.Background(), in)
	if !res.Passed {
		t.Errorf("non-category extractions are out of scope here: %v", res.Issues)
	}
}

func TestCategoryMirrorDetectsDrift(t *testing.T) {
	in := passingInput(t)
	doctored := strings.Replace(string(in.Artifacts[compiler.TargetJSON]),
		`"financial": {}`, `"invented": {}`, 1)
	in.Artifacts[compiler.TargetJSON] = []byte(doctored)

	res := CategoryProvenance{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("category drift between IR and artifact must fail")
	}
	if len(res.Issues) != 2 {
		t.Errorf("expected one missing and one extra category, got %v", res.Issues)
	}
}

func TestExtractionProvenance(t *testing.T) {
	in := passingInput(t)
	in.Doc.Extractions = append(in.Doc.Extractions, ir.Extraction{Type: "memo", Value: "note"})

	res := ExtractionProvenance{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("extraction without provenance must fail")
	}
	if len(res.Issues) != 2 {
		t.Errorf("expected provenance and span issues, got %v", res.Issues)
	}
}

func TestArtifactValidityRegex(t *testing.T) {
	in := passingInput(t)
	in.Artifacts[compiler.TargetRegex] = []byte("# header\n[unclosed\n")

	res := ArtifactValidity{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("uncompilable pattern must fail")
	}
}

func TestArtifactValidityJSON(t *testing.T) {
	in := passingInput(t)
	in.Artifacts[compiler.TargetJSON] = []byte(`{"schema_version": "v0.4"}`)

	res := ArtifactValidity{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("json artifact without rules must fail")
	}
}

func TestArtifactValidityPython(t *testing.T) {
	in := passingInput(t)
	in.Artifacts[compiler.TargetPython] = []byte("def other():\n    pass\n")

	res := ArtifactValidity{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("python artifact without check_indicators must fail")
	}
}

func TestArtifactValiditySQL(t *testing.T) {
	in := passingInput(t)
	in.Artifacts[compiler.TargetSQL] = []byte("INSERT INTO indicators VALUES ('broken);\n")

	res := ArtifactValidity{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("unbalanced sql quotes must fail")
	}
}

func TestNoInferredFieldsSentinel(t *testing.T) {
	in := passingInput(t)
	in.Doc.Extractions[0].CategoryID = ir.Unspecified

	res := NoInferredFields{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("sentinel in the document must fail the final gate")
	}
}

func TestNoInferredFieldsConfig(t *testing.T) {
	in := passingInput(t)
	delete(in.Config, "model_name")

	res := NoInferredFields{}.Check(context.Background(), in)
	if res.Passed {
		t.Fatal("missing model_name must fail")
	}
	if !strings.Contains(strings.Join(res.Issues, " "), "model_name") {
		t.Errorf("issue should name the field: %v", res.Issues)
	}
}
