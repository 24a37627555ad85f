package backtest

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/assafkip/spanforge/internal/sys/intern"
)

// Row is one corpus sample. Label is empty for clean-corpus rows and
// "pos"/"neg" for labeled ones.
type Row struct {
	Text  string
	Label string
}

// Corpus is an ordered sample set loaded from CSV.
type Corpus []Row

// LoadCorpus reads a corpus from a CSV file with a text,label header.
// Extra columns are ignored; a missing label column yields empty labels.
func LoadCorpus(path string) (Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("backtest: open corpus: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("backtest: read corpus %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("backtest: corpus %s is empty", path)
	}

	textCol, labelCol := -1, -1
	for i, name := range records[0] {
		switch name {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 {
		return nil, fmt.Errorf("backtest: corpus %s has no text column", path)
	}

	corpus := make(Corpus, 0, len(records)-1)
	for _, rec := range records[1:] {
		if textCol >= len(rec) {
			continue
		}
		row := Row{Text: rec[textCol]}
		if labelCol >= 0 && labelCol < len(rec) {
			// Labels repeat across the whole corpus; keep one copy each.
			row.Label = intern.String(rec[labelCol])
		}
		corpus = append(corpus, row)
	}
	return corpus, nil
}
