package compiler

import (
	"encoding/json"
	"strings"

	"github.com/assafkip/spanforge/pkg/ir"
)

// generatePython renders the python artifact: a check_indicators function
// doing plain substring membership per indicator. Literals are embedded
// JSON-escaped, which doubles as Python string syntax for these values and
// lets the artifact gate re-parse them without executing anything.
func generatePython(doc *ir.Document) []byte {
	var b strings.Builder
	b.WriteString("# Detection rules (python)\n")
	b.WriteString("# schema_version: " + version + "\n")
	b.WriteString("\ndef check_indicators(text):\n")
	b.WriteString("    matches = []\n")
	for i, ind := range doc.Indicators {
		b.WriteString("    if " + pyString(ind.Value()) + " in text:\n")
		b.WriteString("        matches.append({")
		b.WriteString(`"rule_id": ` + pyString(ruleID(i)))
		b.WriteString(`, "type": ` + pyString(ind.Kind))
		b.WriteString(`, "span_id": ` + pyString(ind.SpanID))
		b.WriteString("})\n")
	}
	b.WriteString("    return matches\n")
	return []byte(b.String())
}

// pyString renders a JSON string literal. json.Marshal of a string cannot
// fail, so the error is ignored.
func pyString(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}
