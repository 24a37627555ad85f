package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Issue describes one verification failure, pinned to its line number.
type Issue struct {
	Line   int    `json:"line"`
	Detail string `json:"detail"`
}

// Integrity is the result of walking a log's hash chain.
type Integrity struct {
	Intact          bool    `json:"intact"`
	TotalEntries    int     `json:"total_entries"`
	VerifiedEntries int     `json:"verified_entries"`
	Issues          []Issue `json:"issues,omitempty"`
}

// VerifyChainIntegrity re-walks this logger's file. Pending writes are
// flushed first so the walk sees every entry.
func (l *Logger) VerifyChainIntegrity() (*Integrity, error) {
	if err := l.Flush(); err != nil {
		return nil, err
	}
	return VerifyFile(l.path)
}

// VerifyFile walks the chain in an audit log and reports every break.
//
// Each entry must both link to its predecessor and hash to its own
// entry_hash. A tampered line yields exactly one issue: the successor's
// previous_hash is accepted if it matches either the stored or the
// recomputed predecessor hash, so a single bad line cannot cascade into
// failures for every line after it.
func VerifyFile(path string) (*Integrity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open log for verification: %w", err)
	}
	defer f.Close()

	result := &Integrity{}
	storedPrev := ""
	recomputedPrev := ""
	first := true

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			result.Issues = append(result.Issues, Issue{Line: lineNo, Detail: "unparseable entry"})
			continue
		}
		result.TotalEntries++

		ok := true
		prev, _ := entry["previous_hash"].(string)
		if first {
			if prev != HashGenesis {
				result.Issues = append(result.Issues, Issue{Line: lineNo,
					Detail: fmt.Sprintf("first entry previous_hash is %q, want %q", prev, HashGenesis)})
				ok = false
			}
		} else if prev != storedPrev && prev != recomputedPrev {
			result.Issues = append(result.Issues, Issue{Line: lineNo, Detail: "chain break: previous_hash does not match predecessor"})
			ok = false
		}

		stored, _ := entry["entry_hash"].(string)
		recomputed, err := EntryHash(entry)
		if err != nil {
			result.Issues = append(result.Issues, Issue{Line: lineNo, Detail: "entry not hashable"})
			ok = false
			recomputed = stored
		} else if recomputed != stored {
			result.Issues = append(result.Issues, Issue{Line: lineNo, Detail: "entry_hash mismatch: content altered after write"})
			ok = false
		}

		if ok {
			result.VerifiedEntries++
		}
		storedPrev = stored
		recomputedPrev = recomputed
		first = false
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: read log for verification: %w", err)
	}

	result.Intact = len(result.Issues) == 0
	return result, nil
}

// EntriesByRunID returns every entry whose payload belongs to the run.
func (l *Logger) EntriesByRunID(runID string) ([]map[string]any, error) {
	entries, err := l.readAll()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for _, entry := range entries {
		data, _ := entry["data"].(map[string]any)
		if data == nil {
			continue
		}
		if id, _ := data["run_id"].(string); id == runID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// RecentEntries returns the last n parseable entries, oldest first.
func (l *Logger) RecentEntries(n int) ([]map[string]any, error) {
	entries, err := l.readAll()
	if err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(entries) {
		return entries, nil
	}
	return entries[len(entries)-n:], nil
}

func (l *Logger) readAll() ([]map[string]any, error) {
	if err := l.Flush(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("audit: open log: %w", err)
	}
	defer f.Close()

	var out []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: read log: %w", err)
	}
	return out, nil
}
