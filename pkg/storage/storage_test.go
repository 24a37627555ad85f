package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestLocalStorePutGet(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	artifact := []byte("(?i)(wire\\s+transfer)")
	if err := store.Put(ctx, "runs/run_1/artifacts/rules.regex", artifact); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "runs/run_1/artifacts/rules.regex")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(artifact) {
		t.Errorf("Get returned %q, want %q", got, artifact)
	}
}

func TestLocalStoreGetMissing(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	_, err := store.Get(context.Background(), "runs/run_9/artifacts/rules.sql")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocalStoreOverwrite(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	if err := store.Put(ctx, "runs/run_1/plan.json", []byte("old")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "runs/run_1/plan.json", []byte("new")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "runs/run_1/plan.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Get returned %q after overwrite", got)
	}
}

func TestLocalStoreList(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	seed := []string{
		"runs/run_1/artifacts/rules.regex",
		"runs/run_1/gate_report.json",
		"runs/run_12/gate_report.json",
		"runs/run_2/gate_report.json",
	}
	for _, key := range seed {
		if err := store.Put(ctx, key, []byte("x")); err != nil {
			t.Fatalf("Put %s failed: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "runs/run_1/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{
		"runs/run_1/artifacts/rules.regex",
		"runs/run_1/gate_report.json",
	}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("List returned %v, want %v", keys, want)
	}

	// Prefixes match key strings, so run_1 without the slash also
	// matches run_12.
	keys, err = store.List(ctx, "runs/run_1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("List returned %d keys, want 3", len(keys))
	}
}

func TestLocalStoreListEmptyRoot(t *testing.T) {
	store := NewLocalStore(t.TempDir() + "/never-written")

	keys, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List returned %v from an empty root", keys)
	}
}
