//go:build e2e

package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// sampleDoc is the reference document: three indicators across three
// categories, one fully-located category extraction, one co-occurrence link.
const sampleDoc = `{
  "schema_version": "v0.4",
  "source_doc_id": "scam_report_0042",
  "categories": {
    "financial": {"label": "financial pressure"},
    "memo": {"label": "payment memo"},
    "comm": {"label": "off-platform contact"}
  },
  "indicators": [
    {"kind": "amount", "verbatim": "$1,998.88", "category_id": "financial", "span_id": "s1"},
    {"kind": "text", "verbatim": "VOID 2000", "category_id": "memo", "span_id": "s2"},
    {"kind": "link", "literal": "wa.me/123456789", "category_id": "comm", "span_id": "s3"}
  ],
  "extractions": [
    {
      "type": "category",
      "value": "financial pressure",
      "provenance": {"page": 1, "start": 120, "end": 138},
      "source_span": {"category_id": "financial", "span_id": "s1"}
    }
  ],
  "links": [
    {"from": "s1", "to": "s3", "type": "co_occurrence"}
  ]
}`

// writeSampleDoc drops the reference document into dir and returns its path.
func writeSampleDoc(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("write sample doc: %v", err)
	}
	return path
}

// runForge runs the built binary with the given args and returns its combined
// output. The caller decides whether a non-nil error is a failure.
func runForge(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(forgeBin, args...)
	cmd.Env = os.Environ()
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// findRunDir returns the single runs/ir_* directory under the store root.
func findRunDir(t *testing.T, outDir string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(outDir, "runs", "ir_*"))
	if err != nil {
		t.Fatalf("glob run dirs: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one run dir under %s, found %d: %v", outDir, len(matches), matches)
	}
	return matches[0]
}
