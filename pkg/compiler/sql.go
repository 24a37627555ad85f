package compiler

import (
	"strconv"
	"strings"

	"github.com/assafkip/spanforge/pkg/ir"
)

// generateSQL renders the sql artifact: one INSERT per indicator. String
// values are single-quoted with embedded quotes doubled; a missing numeric
// becomes NULL rather than a guessed zero.
func generateSQL(doc *ir.Document) []byte {
	var b strings.Builder
	b.WriteString("-- Detection rules (sql)\n")
	b.WriteString("-- schema_version: " + version + "\n")
	for _, ind := range doc.Indicators {
		numeric := "NULL"
		if ind.Numeric != nil {
			numeric = strconv.FormatFloat(*ind.Numeric, 'g', -1, 64)
		}
		b.WriteString("INSERT INTO indicators (kind, value, numeric, category_id, span_id, stage, version) VALUES (")
		b.WriteString(sqlQuote(ind.Kind))
		b.WriteString(", ")
		b.WriteString(sqlQuote(ind.Value()))
		b.WriteString(", ")
		b.WriteString(numeric)
		b.WriteString(", ")
		b.WriteString(sqlQuote(ind.CategoryID))
		b.WriteString(", ")
		b.WriteString(sqlQuote(ind.SpanID))
		b.WriteString(", ")
		b.WriteString(sqlQuote(stageCompile))
		b.WriteString(", ")
		b.WriteString(sqlQuote(version))
		b.WriteString(");\n")
	}
	return []byte(b.String())
}

func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
