package compiler

import (
	"encoding/json"

	"github.com/assafkip/spanforge/pkg/ir"
)

// generateJSON renders the json artifact: the document's categories,
// indicators and links mirrored verbatim, plus a rules array carrying the
// raw (unescaped) pattern per indicator. This artifact is authoritative for
// the category-grounding gate, so the mirror must be exact.
func generateJSON(doc *ir.Document) ([]byte, error) {
	rules := make([]map[string]any, 0, len(doc.Indicators))
	for i, ind := range doc.Indicators {
		rules = append(rules, map[string]any{
			"id":          ruleID(i),
			"type":        ind.Kind,
			"pattern":     ind.Value(),
			"source_refs": []int{i},
			"metadata": map[string]any{
				"category_id": ind.CategoryID,
				"span_id":     ind.SpanID,
				"provenance": map[string]any{
					"stage":   stageCompile,
					"version": version,
				},
			},
		})
	}

	artifact := map[string]any{
		"schema_version": version,
		"categories":     doc.Categories,
		"indicators":     doc.Indicators,
		"rules":          rules,
	}
	if doc.Categories == nil {
		artifact["categories"] = map[string]map[string]any{}
	}
	if len(doc.Links) > 0 {
		artifact["links"] = doc.Links
	}

	// Round-trip through plain maps so every level serializes with sorted
	// keys, independent of struct field order.
	normalized, err := normalizeJSON(artifact)
	if err != nil {
		return nil, err
	}
	raw, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(raw, '\n'), nil
}

func normalizeJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
