package compiler

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/assafkip/spanforge/pkg/ir"
)

func fixtureDoc() *ir.Document {
	num := 1998.88
	return &ir.Document{
		SchemaVersion: "v0.4",
		SourceDocID:   "doc-001",
		Indicators: []ir.Indicator{
			{Kind: "amount", Verbatim: "$1,998.88", Numeric: &num,
				Norm:       &ir.Norm{Currency: "USD", Amount: 1998.88},
				CategoryID: "financial", SpanID: "s-amt-1"},
			{Kind: "text", Verbatim: "VOID 2000", CategoryID: "procedural", SpanID: "s-txt-2"},
			{Kind: "link", Literal: "wa.me/123456789", CategoryID: "contact", SpanID: "s-lnk-3"},
		},
		Categories: map[string]map[string]any{
			"financial":  {},
			"procedural": {},
			"contact":    {},
		},
		Links: []ir.Link{{From: "s-amt-1", To: "s-lnk-3", Type: "co_occurrence"}},
	}
}

func TestCompileGoldenArtifacts(t *testing.T) {
	artifacts, err := Compile(fixtureDoc(), []Target{TargetRegex, TargetSQL, TargetJSON, TargetPython})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "compile_regex", artifacts[TargetRegex])
	g.Assert(t, "compile_sql", artifacts[TargetSQL])
	g.Assert(t, "compile_json", artifacts[TargetJSON])
	g.Assert(t, "compile_python", artifacts[TargetPython])
}

func TestCompileIsDeterministic(t *testing.T) {
	first, err := Compile(fixtureDoc(), nil)
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	second, err := Compile(fixtureDoc(), nil)
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	for _, target := range first.Targets() {
		if !bytes.Equal(first[target], second[target]) {
			t.Errorf("%s artifact differs between identical compiles", target)
		}
	}
}

func TestCompileDefaultTargets(t *testing.T) {
	artifacts, err := Compile(fixtureDoc(), nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got := artifacts.Targets()
	want := []Target{TargetRegex, TargetSQL, TargetJSON}
	if len(got) != len(want) {
		t.Fatalf("default targets: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("default targets: want %v, got %v", want, got)
		}
	}
}

func TestCompileDoesNotMutateCaller(t *testing.T) {
	doc := &ir.Document{
		Extractions: []ir.Extraction{
			{Type: "link", Value: "wa.me/123456789", SpanID: "s1"},
		},
	}
	if _, err := Compile(doc, []Target{TargetRegex}); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(doc.Indicators) != 0 {
		t.Error("caller document gained indicators during compile")
	}
}

func TestCompileLooseShapeCarriesSentinel(t *testing.T) {
	doc := &ir.Document{
		Extractions: []ir.Extraction{
			{Type: "memo", Value: "rent deposit", SpanID: "s1"},
		},
	}
	artifacts, err := Compile(doc, []Target{TargetRegex})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(string(artifacts[TargetRegex]), "category="+ir.Unspecified) {
		t.Error("unspecified category must pass through to the artifact, not be invented away")
	}
}

func TestCompileUnknownTarget(t *testing.T) {
	_, err := Compile(fixtureDoc(), []Target{"yaml"})
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %v", err)
	}
	if ce.Target != "yaml" {
		t.Errorf("error should name the bad target, got %q", ce.Target)
	}
}

func TestCompileCategoryMismatch(t *testing.T) {
	doc := fixtureDoc()
	doc.Indicators[0].CategoryID = "missing_cat"
	doc.Categories["extra_cat"] = map[string]any{}

	_, err := Compile(doc, nil)
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %v", err)
	}
	if len(ce.Undeclared) != 1 || ce.Undeclared[0] != "missing_cat" {
		t.Errorf("undeclared: %v", ce.Undeclared)
	}
	// financial is now unreferenced, and extra_cat was never referenced
	if len(ce.Unreferenced) != 2 {
		t.Errorf("unreferenced: %v", ce.Unreferenced)
	}
}

func TestCompileSchemaFailureProducesNothing(t *testing.T) {
	doc := fixtureDoc()
	doc.Indicators[0].Numeric = nil // amount without numeric

	artifacts, err := Compile(doc, nil)
	var se *ir.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ir.SchemaError, got %v", err)
	}
	if artifacts != nil {
		t.Error("failed compile must not return partial artifacts")
	}
}

func TestEmittedPatternsCompileAndMatch(t *testing.T) {
	artifacts, err := Compile(fixtureDoc(), []Target{TargetRegex})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	var patterns []string
	for _, line := range strings.Split(string(artifacts[TargetRegex]), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) != 3 {
		t.Fatalf("expected 3 patterns, got %d", len(patterns))
	}

	tests := []struct {
		pattern string
		match   string
		noMatch string
	}{
		{patterns[0], "late fee of $1,998.88 charged", "fee $1,998.889 charged"},
		{patterns[1], "stamped VOID 2000 in red", "stamped AVOID 2000 here"},
		{patterns[2], "contact wa.me/123456789 now", "contact wa.me/1234567890 now"},
	}
	for _, tt := range tests {
		re, err := regexp.Compile(tt.pattern)
		if err != nil {
			t.Errorf("pattern %q does not compile: %v", tt.pattern, err)
			continue
		}
		if !re.MatchString(tt.match) {
			t.Errorf("pattern %q should match %q", tt.pattern, tt.match)
		}
		if re.MatchString(tt.noMatch) {
			t.Errorf("pattern %q should not match %q", tt.pattern, tt.noMatch)
		}
	}
}

func TestPatternBoundaries(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"$1,998.88", `(?:\A|\s)\$1,998\.88\b`},
		{"VOID 2000", `\bVOID 2000\b`},
		{"wa.me/123456789", `\bwa\.me/123456789\b`},
		{"(fee)", `(?:\A|\s)\(fee\)(?:\s|\z)`},
	}
	for _, tt := range tests {
		if got := Pattern(tt.value); got != tt.want {
			t.Errorf("Pattern(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestSQLQuoteDoubling(t *testing.T) {
	doc := &ir.Document{
		Indicators: []ir.Indicator{
			{Kind: "text", Verbatim: "O'Brien's account", CategoryID: "c", SpanID: "s"},
		},
		Categories: map[string]map[string]any{"c": {}},
	}
	artifacts, err := Compile(doc, []Target{TargetSQL})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(string(artifacts[TargetSQL]), "'O''Brien''s account'") {
		t.Errorf("quotes not doubled:\n%s", artifacts[TargetSQL])
	}
}

func TestPythonLiteralsAreJSONStrings(t *testing.T) {
	doc := &ir.Document{
		Indicators: []ir.Indicator{
			{Kind: "text", Verbatim: `say "void"`, CategoryID: "c", SpanID: "s"},
		},
		Categories: map[string]map[string]any{"c": {}},
	}
	artifacts, err := Compile(doc, []Target{TargetPython})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(string(artifacts[TargetPython]), `if "say \"void\"" in text:`) {
		t.Errorf("literal not JSON-escaped:\n%s", artifacts[TargetPython])
	}
}
