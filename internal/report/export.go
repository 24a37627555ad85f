package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ExportItem matches the JSON/CSV structure.
type ExportItem struct {
	RunID         string `json:"run_id"`
	SchemaVersion string `json:"schema_version"`
	Indicators    int    `json:"indicators"`
	Targets       string `json:"targets"`
	PassedGates   int    `json:"passed_gates"`
	TotalGates    int    `json:"total_gates"`
	AllPassed     bool   `json:"all_passed"`
	FailedGates   string `json:"failed_gates,omitempty"`
}

// BuildItems flattens run summaries into export rows. Order is preserved
// from the input, which LoadRuns already sorts newest first.
func BuildItems(runs []RunSummary) []ExportItem {
	items := make([]ExportItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, ExportItem{
			RunID:         run.RunID,
			SchemaVersion: run.SchemaVersion,
			Indicators:    run.Indicators,
			Targets:       strings.Join(run.Targets, ","),
			PassedGates:   run.PassedGates,
			TotalGates:    run.TotalGates,
			AllPassed:     run.AllPassed,
			FailedGates:   strings.Join(run.FailedGates(), ";"),
		})
	}
	return items
}

// GenerateCSV writes run summaries to a CSV file.
func GenerateCSV(items []ExportItem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"RunID",
		"SchemaVersion",
		"Indicators",
		"Targets",
		"GatesPassed",
		"AllPassed",
		"FailedGates",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, item := range items {
		record := []string{
			item.RunID,
			item.SchemaVersion,
			fmt.Sprintf("%d", item.Indicators),
			item.Targets,
			fmt.Sprintf("%d/%d", item.PassedGates, item.TotalGates),
			fmt.Sprintf("%t", item.AllPassed),
			item.FailedGates,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

// GenerateJSON writes run summaries to a JSON file.
func GenerateJSON(items []ExportItem, path string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
