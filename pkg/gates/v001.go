package gates

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// normalizationMarkers flag values that carry processing residue instead of
// source text. A value matching any of these was rewritten upstream.
var normalizationMarkers = []*regexp.Regexp{
	regexp.MustCompile(`^\s*normalized:\s*`),
	regexp.MustCompile(`^\s*cleaned:\s*`),
	regexp.MustCompile(`^\s*processed:\s*`),
	regexp.MustCompile(`[Nn][Oo][Rr][Mm].*:`),
}

// criticalIndicators must survive the pipeline byte-for-byte. If a value
// contains one of these as a fragment, the exact string must also exist as a
// value in its own right, otherwise something rewrote it.
var criticalIndicators = []string{
	"$1,998.88",
	"VOID 2000",
	"wa.me/123456789",
}

// ZeroInference is gate V-001: every value is verbatim source text.
type ZeroInference struct{}

func (ZeroInference) ID() string { return "V-001" }

func (ZeroInference) Describe() string {
	return "values are verbatim source text with no normalization residue"
}

func (ZeroInference) Check(_ context.Context, in *Input) Result {
	var issues []string
	var values []string

	for i, ind := range in.Doc.Indicators {
		v := ind.Value()
		values = append(values, v)
		issues = append(issues, checkValue(fmt.Sprintf("indicator %d", i), v)...)
	}
	for i, x := range in.Doc.Extractions {
		values = append(values, x.Value)
		issues = append(issues, checkValue(fmt.Sprintf("extraction %d", i), x.Value)...)
	}

	for _, critical := range criticalIndicators {
		if containsFragment(values, critical) && !containsExact(values, critical) {
			issues = append(issues,
				fmt.Sprintf("critical indicator %q appears only as a fragment, not verbatim", critical))
		}
	}
	return fail(issues)
}

func checkValue(where, v string) []string {
	var issues []string
	if strings.TrimSpace(v) == "" {
		issues = append(issues, where+": empty value")
		return issues
	}
	for _, marker := range normalizationMarkers {
		if marker.MatchString(v) {
			issues = append(issues,
				fmt.Sprintf("%s: value %q carries a normalization marker (%s)", where, v, marker))
			break
		}
	}
	return issues
}

func containsFragment(values []string, s string) bool {
	for _, v := range values {
		if strings.Contains(v, s) {
			return true
		}
	}
	return false
}

func containsExact(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
