// Package audit writes the append-only, hash-chained JSONL log that makes
// every pipeline run reviewable after the fact. Each entry carries the hash
// of its predecessor, so silent edits and deletions surface during chain
// verification.
//
// Logging never blocks the pipeline: failed writes are reported through the
// fallback logger and swallowed, mirroring how the rest of the system treats
// telemetry as best-effort.
package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const schemaVersion = "v0.4"

// HashGenesis is the previous_hash value of the first entry in every log.
const HashGenesis = "genesis"

// hashCorrupted seeds the chain when the existing tail cannot be parsed, so
// the break is visible in the next entry rather than hidden.
const hashCorrupted = "corrupted_log"

// Logger appends hash-chained entries to a single JSONL file.
type Logger struct {
	mu       sync.Mutex
	path     string
	f        *os.File
	lastHash string
	fallback *slog.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithFallback sets the logger used to report append failures.
func WithFallback(l *slog.Logger) Option {
	return func(lg *Logger) { lg.fallback = l }
}

// Open creates or resumes the audit log at path. A fresh file receives a
// genesis entry; an existing file seeds the chain from its last line.
func Open(path string, opts ...Option) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("audit: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open log: %w", err)
	}

	lg := &Logger{path: path, f: f, fallback: slog.Default()}
	for _, opt := range opts {
		opt(lg)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audit: stat log: %w", err)
	}
	if info.Size() == 0 {
		if err := lg.writeGenesis(); err != nil {
			f.Close()
			return nil, err
		}
		return lg, nil
	}
	lg.lastHash = tailHash(path)
	return lg, nil
}

// Path returns the log file location.
func (l *Logger) Path() string { return l.path }

// Append writes one chained entry and returns its hash. The payload is
// sanitized before hashing so secrets never reach disk. Failures are reported
// through the fallback logger and return an empty hash.
func (l *Logger) Append(event, runID string, payload map[string]any) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := map[string]any{"event": event, "run_id": runID}
	for k, v := range payload {
		data[k] = v
	}
	normalized, err := normalize(data)
	if err != nil {
		l.fallback.Warn("audit append skipped", "event", event, "error", err)
		return ""
	}

	now := time.Now()
	entry := map[string]any{
		"event":         event,
		"timestamp":     float64(now.UnixNano()) / 1e9,
		"iso_timestamp": now.UTC().Format("2006-01-02T15:04:05Z"),
		"run_id":        runID,
		"previous_hash": l.lastHash,
		"data":          Sanitize(normalized),
	}
	hash, err := EntryHash(entry)
	if err != nil {
		l.fallback.Warn("audit entry hash failed", "event", event, "error", err)
		return ""
	}
	entry["entry_hash"] = hash

	if err := l.writeLine(entry); err != nil {
		l.fallback.Warn("audit append failed", "event", event, "error", err)
		return ""
	}
	l.lastHash = hash
	return hash
}

// Flush forces buffered entries to disk.
func (l *Logger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("audit: sync log: %w", err)
	}
	return nil
}

// Close releases the log file. The Logger must not be used afterwards.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.f.Close(); err != nil {
		return fmt.Errorf("audit: close log: %w", err)
	}
	return nil
}

func (l *Logger) writeGenesis() error {
	now := time.Now()
	entry := map[string]any{
		"event":          "audit_log_initialized",
		"timestamp":      float64(now.UnixNano()) / 1e9,
		"iso_timestamp":  now.UTC().Format("2006-01-02T15:04:05Z"),
		"schema_version": schemaVersion,
		"previous_hash":  HashGenesis,
	}
	hash, err := EntryHash(entry)
	if err != nil {
		return fmt.Errorf("audit: hash genesis entry: %w", err)
	}
	entry["entry_hash"] = hash
	if err := l.writeLine(entry); err != nil {
		return fmt.Errorf("audit: write genesis entry: %w", err)
	}
	l.lastHash = hash
	return nil
}

func (l *Logger) writeLine(entry map[string]any) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	if _, err := l.f.Write(raw); err != nil {
		return err
	}
	return nil
}

// EntryHash computes the chain hash of an entry, excluding any entry_hash
// field. Marshaling sorts map keys, which fixes the canonical byte form.
func EntryHash(entry map[string]any) (string, error) {
	clean := make(map[string]any, len(entry))
	for k, v := range entry {
		if k == "entry_hash" {
			continue
		}
		clean[k] = v
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// normalize round-trips a value through JSON so hashing always sees plain
// maps and floats regardless of the caller's concrete types.
func normalize(v map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// tailHash seeds the chain from the last line of an existing log.
func tailHash(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return hashCorrupted
	}
	lines := bytes.Split(bytes.TrimRight(raw, "\n"), []byte("\n"))
	if len(lines) == 0 {
		return HashGenesis
	}
	last := lines[len(lines)-1]
	if len(bytes.TrimSpace(last)) == 0 {
		return HashGenesis
	}
	var entry map[string]any
	if err := json.Unmarshal(last, &entry); err != nil {
		return hashCorrupted
	}
	hash, ok := entry["entry_hash"].(string)
	if !ok || hash == "" {
		return hashCorrupted
	}
	return hash
}
