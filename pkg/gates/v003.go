package gates

import (
	"context"
	"fmt"
)

// ExtractionProvenance is gate V-003: every extraction, whatever its type,
// is traceable to a page, an offset range and a span.
type ExtractionProvenance struct{}

func (ExtractionProvenance) ID() string { return "V-003" }

func (ExtractionProvenance) Describe() string {
	return "every extraction has complete provenance and a source span"
}

func (ExtractionProvenance) Check(_ context.Context, in *Input) Result {
	var issues []string
	for i, x := range in.Doc.Extractions {
		if !x.Provenance.Complete() {
			issues = append(issues,
				fmt.Sprintf("extraction %d (%s): provenance missing page/start/end", i, x.Type))
		}
		if x.SourceSpan == nil || x.SourceSpan.SpanID == "" {
			issues = append(issues,
				fmt.Sprintf("extraction %d (%s): no source span id", i, x.Type))
		}
	}
	return fail(issues)
}
