package gates

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/assafkip/spanforge/pkg/compiler"
)

// CategoryProvenance is gate V-002: category-bearing extractions are fully
// located in their source, and the compiled json artifact declares exactly
// the categories the IR declares.
type CategoryProvenance struct{}

func (CategoryProvenance) ID() string { return "V-002" }

func (CategoryProvenance) Describe() string {
	return "category extractions carry complete provenance; compiled categories mirror the IR"
}

func (CategoryProvenance) Check(_ context.Context, in *Input) Result {
	var issues []string

	for i, x := range in.Doc.Extractions {
		if x.Type != "category" {
			continue
		}
		if !x.Provenance.Complete() {
			issues = append(issues,
				fmt.Sprintf("category extraction %d: provenance missing page/start/end", i))
		}
		if x.SourceSpan == nil || x.SourceSpan.SpanID == "" {
			issues = append(issues,
				fmt.Sprintf("category extraction %d: no source span id", i))
		}
	}

	issues = append(issues, checkCategoryMirror(in)...)
	return fail(issues)
}

// checkCategoryMirror compares the json artifact's category keys against the
// document's. Without a json artifact there is nothing to compare.
func checkCategoryMirror(in *Input) []string {
	raw, ok := in.Artifacts[compiler.TargetJSON]
	if !ok {
		return nil
	}
	var artifact struct {
		Categories map[string]any `json:"categories"`
	}
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return []string{fmt.Sprintf("json artifact unreadable: %v", err)}
	}

	var issues []string
	var missing, extra []string
	for id := range in.Doc.Categories {
		if _, ok := artifact.Categories[id]; !ok {
			missing = append(missing, id)
		}
	}
	for id := range artifact.Categories {
		if _, ok := in.Doc.Categories[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	for _, id := range missing {
		issues = append(issues, fmt.Sprintf("category %q declared in IR but absent from json artifact", id))
	}
	for _, id := range extra {
		issues = append(issues, fmt.Sprintf("category %q present in json artifact but not declared in IR", id))
	}
	return issues
}
