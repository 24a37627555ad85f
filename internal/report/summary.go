// Package report renders the terminal dashboard for pipeline runs and
// exports run summaries as CSV or JSON. Everything here reads back what the
// engine persisted to the artifact store; nothing is recomputed.
package report

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/assafkip/spanforge/internal/sys/intern"
	"github.com/assafkip/spanforge/pkg/gates"
	"github.com/assafkip/spanforge/pkg/ir"
	"github.com/assafkip/spanforge/pkg/storage"
)

// GateLine is one gate verdict flattened for display.
type GateLine struct {
	ID     string
	Passed bool
	Issues []string
}

// RunSummary is everything the dashboard and exports show for one run.
type RunSummary struct {
	RunID         string
	SchemaVersion string
	Indicators    int
	Targets       []string
	PassedGates   int
	TotalGates    int
	AllPassed     bool
	Gates         []GateLine
	Keys          []string
}

// FailedGates returns the IDs of gates that did not pass, in ID order.
func (s RunSummary) FailedGates() []string {
	var failed []string
	for _, g := range s.Gates {
		if !g.Passed {
			failed = append(failed, g.ID)
		}
	}
	return failed
}

// Summarize builds a summary straight from an in-memory run, so commands can
// render the dashboard without a round trip through the store.
func Summarize(runID string, doc *ir.Document, rep *gates.Report, keys []string) RunSummary {
	sum := RunSummary{
		RunID:       runID,
		PassedGates: rep.PassedGates,
		TotalGates:  rep.TotalGates,
		AllPassed:   rep.AllPassed,
		Gates:       flattenGates(rep),
		Keys:        keys,
	}
	if doc != nil {
		sum.SchemaVersion = doc.SchemaVersion
		sum.Indicators = len(doc.Indicators)
	}
	for _, key := range keys {
		if i := strings.LastIndex(key, "/artifacts/rules."); i >= 0 {
			sum.Targets = append(sum.Targets, key[i+len("/artifacts/rules."):])
		}
	}
	sort.Strings(sum.Targets)
	return sum
}

func flattenGates(rep *gates.Report) []GateLine {
	var gateIDs []string
	for id := range rep.Gates {
		gateIDs = append(gateIDs, id)
	}
	sort.Strings(gateIDs)

	lines := make([]GateLine, 0, len(gateIDs))
	for _, id := range gateIDs {
		res := rep.Gates[id]
		lines = append(lines, GateLine{ID: id, Passed: res.Passed, Issues: res.Issues})
	}
	return lines
}

// LoadRuns reads every complete run under runs/ in the store, newest first.
// Runs without a parseable gate report are skipped: a crashed run leaves
// partial keys behind and there is nothing to review in it.
func LoadRuns(ctx context.Context, store storage.BlobStore) ([]RunSummary, error) {
	keys, err := store.List(ctx, "runs/")
	if err != nil {
		return nil, err
	}

	byRun := make(map[string][]string)
	for _, key := range keys {
		parts := strings.SplitN(key, "/", 3)
		if len(parts) < 3 {
			continue
		}
		byRun[parts[1]] = append(byRun[parts[1]], key)
	}

	var runs []RunSummary
	for runID, runKeys := range byRun {
		sum, ok := loadRun(ctx, store, runID, runKeys)
		if !ok {
			continue
		}
		runs = append(runs, sum)
	}

	// Run ids embed a unix timestamp, so lexical descending is newest first.
	sort.Slice(runs, func(i, j int) bool { return runs[i].RunID > runs[j].RunID })
	return runs, nil
}

func loadRun(ctx context.Context, store storage.BlobStore, runID string, keys []string) (RunSummary, bool) {
	sum := RunSummary{RunID: runID}

	raw, err := store.Get(ctx, "runs/"+runID+"/gate_report.json")
	if err != nil {
		return sum, false
	}
	var rep gates.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return sum, false
	}
	sum.PassedGates = rep.PassedGates
	sum.TotalGates = rep.TotalGates
	sum.AllPassed = rep.AllPassed
	sum.Gates = flattenGates(&rep)

	if raw, err := store.Get(ctx, "runs/"+runID+"/ir.json"); err == nil {
		var doc ir.Document
		if err := json.Unmarshal(raw, &doc); err == nil {
			sum.SchemaVersion = doc.SchemaVersion
			sum.Indicators = len(doc.Indicators)
		}
	}

	sort.Strings(keys)
	sum.Keys = keys
	for _, key := range keys {
		if rest, ok := strings.CutPrefix(key, "runs/"+runID+"/artifacts/rules."); ok {
			sum.Targets = append(sum.Targets, rest)
		}
	}
	// The same few target names recur across every run in the store.
	sum.Targets = intern.Strings(sum.Targets)
	return sum, true
}
