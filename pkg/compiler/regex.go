package compiler

import (
	"regexp"
	"strings"

	"github.com/assafkip/spanforge/pkg/ir"
)

// generateRegex renders the regex artifact: a comment header, then per
// indicator two provenance comment lines and the boundary-anchored pattern.
func generateRegex(doc *ir.Document) []byte {
	var b strings.Builder
	b.WriteString("# Detection rules (regex)\n")
	b.WriteString("# schema_version: " + version + "\n")
	for i, ind := range doc.Indicators {
		b.WriteString("\n# ")
		b.WriteString(ruleID(i))
		b.WriteString(" kind=" + ind.Kind)
		b.WriteString(" category=" + ind.CategoryID)
		b.WriteString(" span=" + ind.SpanID)
		b.WriteString("\n# provenance: stage=" + stageCompile + " version=" + version + "\n")
		b.WriteString(Pattern(ind.Value()))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// Pattern builds the anchored pattern for one literal value. The literal is
// escaped wholesale; boundaries depend on its terminal runes. A terminal word
// rune takes \b. A terminal non-word rune cannot use \b from outside (there
// is no word run to bound), and RE2 has no lookaround, so those ends anchor
// on whitespace-or-edge instead.
func Pattern(value string) string {
	escaped := regexp.QuoteMeta(value)
	if value == "" {
		return escaped
	}
	runes := []rune(value)

	prefix := `(?:\A|\s)`
	if isWordRune(runes[0]) {
		prefix = `\b`
	}
	suffix := `(?:\s|\z)`
	if isWordRune(runes[len(runes)-1]) {
		suffix = `\b`
	}
	return prefix + escaped + suffix
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}
