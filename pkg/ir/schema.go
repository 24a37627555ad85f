package ir

import (
	"fmt"
	"strings"
)

// requiredFields maps an indicator kind to the fields that must be present
// before compilation. Kinds not listed fall back to the minimal set.
var requiredFields = map[string][]string{
	"amount":   {"kind", "verbatim", "numeric", "category_id", "span_id"},
	"link":     {"kind", "literal", "category_id", "span_id"},
	"text":     {"kind", "verbatim", "category_id", "span_id"},
	"memo":     {"kind", "verbatim", "category_id", "span_id"},
	"domain":   {"kind", "verbatim", "category_id", "span_id"},
	"phone":    {"kind", "verbatim", "category_id", "span_id"},
	"email":    {"kind", "verbatim", "category_id", "span_id"},
	"account":  {"kind", "verbatim", "category_id", "span_id"},
	"behavior": {"kind", "verbatim", "category_id", "span_id"},
}

var minimalFields = []string{"kind", "category_id", "span_id"}

// RequiredFields returns the field set an indicator of the given kind must
// carry to compile.
func RequiredFields(kind string) []string {
	if f, ok := requiredFields[kind]; ok {
		return f
	}
	return minimalFields
}

// SchemaViolation names one indicator that fails schema validation.
type SchemaViolation struct {
	Index   int      `json:"index"`
	Kind    string   `json:"kind"`
	Missing []string `json:"missing"`
}

// SchemaError aggregates every schema violation in a document so callers see
// the full set in one pass.
type SchemaError struct {
	Violations []SchemaViolation
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("indicator %d (%s): missing %s",
			v.Index, v.Kind, strings.Join(v.Missing, ", ")))
	}
	return "ir: schema validation failed: " + strings.Join(parts, "; ")
}

// ValidateSchema checks every indicator against its kind's required fields.
// A required string field is missing when empty; numeric is missing when nil.
// All violations are collected before returning.
func ValidateSchema(doc *Document) error {
	var violations []SchemaViolation
	for i, ind := range doc.Indicators {
		var missing []string
		for _, f := range RequiredFields(ind.Kind) {
			if !hasField(ind, f) {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			violations = append(violations, SchemaViolation{Index: i, Kind: ind.Kind, Missing: missing})
		}
	}
	if len(violations) > 0 {
		return &SchemaError{Violations: violations}
	}
	return nil
}

func hasField(ind Indicator, field string) bool {
	switch field {
	case "kind":
		return ind.Kind != ""
	case "verbatim":
		return ind.Verbatim != ""
	case "literal":
		return ind.Literal != ""
	case "numeric":
		return ind.Numeric != nil
	case "category_id":
		return ind.CategoryID != ""
	case "span_id":
		return ind.SpanID != ""
	default:
		return false
	}
}
