package ir

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// NewRunID derives a run identifier from the raw input bytes. The id embeds a
// unix timestamp and a short content digest so runs are both ordered and
// traceable to their input.
func NewRunID(raw []byte) string {
	sum := md5.Sum(raw)
	return fmt.Sprintf("ir_%d_%x", time.Now().Unix(), sum[:4])
}

// Parse decodes an IR document from raw JSON and assigns its run id. Both the
// strict shape (indicators) and the loose shape (extractions) are accepted;
// loose documents are promoted via MapExtractions.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("ir: parse document: %w", err)
	}
	doc.RunID = NewRunID(raw)
	if doc.SchemaVersion == "" {
		doc.SchemaVersion = SchemaVersion
	}
	return &doc, nil
}

// LoadFile reads and parses an IR document from disk.
func LoadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ir: read %s: %w", path, err)
	}
	return Parse(raw)
}

// MapExtractions promotes loose extractions into indicators when the document
// carries none of its own. Only amount, link, memo and text extractions map;
// other types are outside compiler scope and are skipped. Values are copied
// byte-for-byte; missing provenance is marked Unspecified, never invented.
func MapExtractions(doc *Document) {
	if len(doc.Indicators) > 0 || len(doc.Extractions) == 0 {
		return
	}
	for _, x := range doc.Extractions {
		catID := x.CategoryID
		if catID == "" {
			catID = Unspecified
		}
		spanID := x.SpanID
		if spanID == "" {
			spanID = Unspecified
		}
		switch x.Type {
		case "amount":
			ind := Indicator{
				Kind:       "amount",
				Verbatim:   x.Value,
				CategoryID: catID,
				SpanID:     spanID,
			}
			if x.Norm != nil {
				n := x.Norm.Amount
				ind.Numeric = &n
				norm := *x.Norm
				ind.Norm = &norm
			}
			doc.Indicators = append(doc.Indicators, ind)
		case "link":
			doc.Indicators = append(doc.Indicators, Indicator{
				Kind:       "link",
				Literal:    x.Value,
				CategoryID: catID,
				SpanID:     spanID,
			})
		case "memo", "text":
			doc.Indicators = append(doc.Indicators, Indicator{
				Kind:       "text",
				Verbatim:   x.Value,
				CategoryID: catID,
				SpanID:     spanID,
			})
		}
	}
}
