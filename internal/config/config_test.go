package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SANCTUARYCORE_KEEPER_MIN_CAGES",
		"SANCTUARYCORE_KEEPER_MAX_CAGES",
		"SANCTUARYCORE_PREDATOR_SHAREABLE",
		"SANCTUARYCORE_PREY_SHAREABLE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.KeeperMinCages != 0 || s.KeeperMaxCages != 4 {
		t.Fatalf("keeper defaults = %d..%d", s.KeeperMinCages, s.KeeperMaxCages)
	}
	if s.PredatorShareable || !s.PreyShareable {
		t.Fatalf("animal defaults = %+v", s)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SANCTUARYCORE_KEEPER_MAX_CAGES", "7")
	t.Setenv("SANCTUARYCORE_PREDATOR_SHAREABLE", "true")

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.KeeperMaxCages != 7 || !s.PredatorShareable {
		t.Fatalf("settings = %+v", s)
	}
}

func TestLoadRejectsInvalidConstraints(t *testing.T) {
	clearEnv(t)
	t.Setenv("SANCTUARYCORE_KEEPER_MIN_CAGES", "5")
	t.Setenv("SANCTUARYCORE_KEEPER_MAX_CAGES", "3")
	if _, err := Load(); err == nil {
		t.Fatal("expected rejection when min exceeds max")
	}

	t.Setenv("SANCTUARYCORE_KEEPER_MIN_CAGES", "0")
	t.Setenv("SANCTUARYCORE_KEEPER_MAX_CAGES", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected rejection of non-positive max")
	}
}

func TestLoadFileLayersOverEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"keeper_max_cages": 2}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if s.KeeperMaxCages != 2 {
		t.Fatalf("max cages = %d, want 2", s.KeeperMaxCages)
	}
	// Fields absent from the file keep their environment defaults.
	if !s.PreyShareable {
		t.Fatal("prey shareable default lost")
	}
}

func TestLoadFileMissingFileIsNotAnError(t *testing.T) {
	clearEnv(t)
	s, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if s.KeeperMaxCages != 4 {
		t.Fatalf("settings = %+v", s)
	}
}

func TestProviderUpdateAndSave(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	provider := NewProvider(s, path)

	if provider.KeeperConstraints().MaxCages != 4 {
		t.Fatalf("constraints = %+v", provider.KeeperConstraints())
	}

	next := s
	next.KeeperMaxCages = 6
	next.PredatorShareable = true
	if err := provider.Update(next); err != nil {
		t.Fatalf("update: %v", err)
	}
	if provider.KeeperConstraints().MaxCages != 6 || !provider.AnimalRules().PredatorShareable {
		t.Fatal("update not visible through provider")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved settings: %v", err)
	}
	var saved Settings
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("decode saved settings: %v", err)
	}
	if saved.KeeperMaxCages != 6 {
		t.Fatalf("saved = %+v", saved)
	}

	// Invalid updates are rejected and leave the provider unchanged.
	bad := next
	bad.KeeperMinCages = 10
	if err := provider.Update(bad); err == nil {
		t.Fatal("expected rejection of invalid update")
	}
	if provider.Current().KeeperMinCages == 10 {
		t.Fatal("invalid update applied")
	}
}
