// Package ir defines the intermediate representation between span extraction
// and rule compilation. Every value in an IR document is byte-identical to
// source text; the only derived field is the amount norm.
package ir

// SchemaVersion identifies the IR schema emitted and accepted by this build.
const SchemaVersion = "v0.4"

// Unspecified marks provenance the loose input path could not supply.
// It may exist in memory but is rejected by the final validation gate.
const Unspecified = "UNSPECIFIED"

// Indicator is a single source-grounded detection value.
type Indicator struct {
	Kind       string   `json:"kind"`
	Verbatim   string   `json:"verbatim,omitempty"`
	Literal    string   `json:"literal,omitempty"`
	Numeric    *float64 `json:"numeric,omitempty"`
	Norm       *Norm    `json:"norm,omitempty"`
	CategoryID string   `json:"category_id"`
	SpanID     string   `json:"span_id"`
}

// Value returns the literal payload of the indicator regardless of kind.
func (ind Indicator) Value() string {
	if ind.Kind == "link" {
		return ind.Literal
	}
	return ind.Verbatim
}

// Norm is the derived currency+value pair for amount indicators.
type Norm struct {
	Currency string  `json:"currency,omitempty"`
	Amount   float64 `json:"amount"`
}

// Link records a co-occurrence edge between two spans.
type Link struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Provenance locates source text. Fields are pointers so presence can be
// checked independently of zero values.
type Provenance struct {
	Page  *int `json:"page,omitempty"`
	Start *int `json:"start,omitempty"`
	End   *int `json:"end,omitempty"`
}

// Complete reports whether all three location fields are present.
func (p *Provenance) Complete() bool {
	return p != nil && p.Page != nil && p.Start != nil && p.End != nil
}

// SourceSpan ties an extraction back to its span and category.
type SourceSpan struct {
	CategoryID string `json:"category_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
}

// Extraction is the loose input shape produced by upstream detectors.
type Extraction struct {
	ID         string      `json:"id,omitempty"`
	Type       string      `json:"type"`
	Value      string      `json:"value"`
	CategoryID string      `json:"category_id,omitempty"`
	SpanID     string      `json:"span_id,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Provenance *Provenance `json:"provenance,omitempty"`
	SourceSpan *SourceSpan `json:"source_span,omitempty"`
	Norm       *Norm       `json:"norm,omitempty"`
}

// Document is one processing run's worth of IR. The compiler never mutates a
// Document; it works on a clone.
type Document struct {
	SchemaVersion string                    `json:"schema_version,omitempty"`
	SourceDocID   string                    `json:"source_doc_id,omitempty"`
	Indicators    []Indicator               `json:"indicators,omitempty"`
	Categories    map[string]map[string]any `json:"categories,omitempty"`
	Links         []Link                    `json:"links,omitempty"`
	Extractions   []Extraction              `json:"extractions,omitempty"`

	// RunID is assigned at load time and not part of the wire shape.
	RunID string `json:"-"`
}

// Clone deep-copies the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		SchemaVersion: d.SchemaVersion,
		SourceDocID:   d.SourceDocID,
		RunID:         d.RunID,
	}
	if d.Indicators != nil {
		out.Indicators = make([]Indicator, len(d.Indicators))
		for i, ind := range d.Indicators {
			c := ind
			if ind.Numeric != nil {
				n := *ind.Numeric
				c.Numeric = &n
			}
			if ind.Norm != nil {
				n := *ind.Norm
				c.Norm = &n
			}
			out.Indicators[i] = c
		}
	}
	if d.Categories != nil {
		out.Categories = make(map[string]map[string]any, len(d.Categories))
		for k, v := range d.Categories {
			out.Categories[k] = cloneAnyMap(v)
		}
	}
	if d.Links != nil {
		out.Links = append([]Link(nil), d.Links...)
	}
	if d.Extractions != nil {
		out.Extractions = make([]Extraction, len(d.Extractions))
		for i, x := range d.Extractions {
			c := x
			if x.Provenance != nil {
				p := Provenance{}
				if x.Provenance.Page != nil {
					v := *x.Provenance.Page
					p.Page = &v
				}
				if x.Provenance.Start != nil {
					v := *x.Provenance.Start
					p.Start = &v
				}
				if x.Provenance.End != nil {
					v := *x.Provenance.End
					p.End = &v
				}
				c.Provenance = &p
			}
			if x.SourceSpan != nil {
				s := *x.SourceSpan
				c.SourceSpan = &s
			}
			if x.Norm != nil {
				n := *x.Norm
				c.Norm = &n
			}
			out.Extractions[i] = c
		}
	}
	return out
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			out[k] = cloneAnyMap(t)
		case []any:
			cp := make([]any, len(t))
			for i, e := range t {
				if em, ok := e.(map[string]any); ok {
					cp[i] = cloneAnyMap(em)
				} else {
					cp[i] = e
				}
			}
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
