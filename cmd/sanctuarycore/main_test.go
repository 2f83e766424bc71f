package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func configureEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SANCTUARYCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("SANCTUARYCORE_SQLITE_PATH", filepath.Join(dir, "registry.db"))
	t.Setenv("SANCTUARYCORE_BLOB_DRIVER", "fs")
	t.Setenv("SANCTUARYCORE_BLOB_FS_ROOT", filepath.Join(dir, "archive"))
	t.Setenv("SANCTUARYCORE_SETTINGS_FILE", "")
}

func TestRunWithoutArgsPrintsUsage(t *testing.T) {
	configureEnv(t)
	if err := run(nil); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	configureEnv(t)
	err := run([]string{"feed"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRegistryCommandsRoundTrip(t *testing.T) {
	configureEnv(t)

	steps := [][]string{
		{"add-animal", "-name", "Thimble", "-species", "rabbit", "-role", "prey"},
		{"add-keeper", "-role", "head", "-first", "Ada", "-surname", "Moreno", "-address", "12 Reserve Lane", "-contact", "555-0101"},
		{"add-cage", "-capacity", "2"},
		{"allocate", "-animal", "1", "-cage", "1"},
		{"assign", "-keeper", "1", "-cage", "1"},
		{"list"},
		{"export"},
		{"snapshots"},
		{"unassign", "-keeper", "1", "-cage", "1"},
		{"deallocate", "-animal", "1"},
	}
	for _, step := range steps {
		if err := run(step); err != nil {
			t.Fatalf("run %v: %v", step, err)
		}
	}

	// Constraint failures surface as errors, not panics.
	if err := run([]string{"add-animal", "-name", "", "-species", "rabbit", "-role", "prey"}); err == nil {
		t.Fatal("expected validation error for empty name")
	}
	if err := run([]string{"allocate", "-animal", "42", "-cage", "1"}); err == nil {
		t.Fatal("expected not-found error")
	}
	if err := run([]string{"restore"}); err == nil {
		t.Fatal("expected missing key error")
	}
}
