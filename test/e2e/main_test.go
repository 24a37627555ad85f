//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// forgeBin is the binary under test, built once for the whole suite.
var forgeBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "spanforge-e2e")
	if err != nil {
		fmt.Fprintf(os.Stderr, "e2e: tempdir: %v\n", err)
		os.Exit(1)
	}

	forgeBin = filepath.Join(tmp, "spanforge")
	build := exec.Command("go", "build", "-o", forgeBin, "./cmd/spanforge")
	build.Dir = "../.."
	if out, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "e2e: build failed: %s\n", out)
		os.RemoveAll(tmp)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}
