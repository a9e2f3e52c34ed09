package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv makes sure ambient statsdash variables from the test
// environment cannot leak into a case. t.Setenv restores them after.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "RECENT_HISTORY_SIZE", "CONSOLIDATION_LIMIT",
		"UPDATE_FREQUENCY_SECONDS", "CPU_SAMPLE_DURATION_MS",
		"PERSIST_HISTORY", "HISTORY_FILES_DIRECTORY",
		"HISTORY_FILES_MAX_SIZE_BYTES",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("STATSDASH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
}

func writeConfig(t *testing.T, contents string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statsdash.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("STATSDASH_CONFIG", path)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("port = %q, want 8000", cfg.Port)
	}
	if cfg.RecentHistorySize != 180 {
		t.Errorf("recent history size = %d, want 180", cfg.RecentHistorySize)
	}
	if cfg.ConsolidationLimit != 20 {
		t.Errorf("consolidation limit = %d, want 20", cfg.ConsolidationLimit)
	}
	if cfg.UpdateFrequency() != 3*time.Second {
		t.Errorf("update frequency = %v, want 3s", cfg.UpdateFrequency())
	}
	if cfg.CPUSampleDuration() != 500*time.Millisecond {
		t.Errorf("cpu sample duration = %v, want 500ms", cfg.CPUSampleDuration())
	}
	if !cfg.PersistenceEnabled() {
		t.Error("persistence disabled by default, want enabled")
	}
	if cfg.HistoryFilesDirectory != "./stats_history" {
		t.Errorf("history directory = %q, want ./stats_history", cfg.HistoryFilesDirectory)
	}
	if cfg.HistoryFilesMaxSizeBytes != 2_000_000 {
		t.Errorf("history max size = %d, want 2000000", cfg.HistoryFilesMaxSizeBytes)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, `
port: "9090"
recent_history_size: 10
consolidation_limit: 5
update_frequency_seconds: 2
cpu_sample_duration_ms: 100
persist_history: false
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if cfg.RecentHistorySize != 10 || cfg.ConsolidationLimit != 5 {
		t.Errorf("sizes = %d/%d, want 10/5", cfg.RecentHistorySize, cfg.ConsolidationLimit)
	}
	if cfg.PersistenceEnabled() {
		t.Error("persistence enabled, want the file's explicit false respected")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, "port: \"9090\"\nrecent_history_size: 10\n")
	t.Setenv("PORT", "7777")
	t.Setenv("RECENT_HISTORY_SIZE", "42")
	t.Setenv("PERSIST_HISTORY", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7777" {
		t.Errorf("port = %q, want the env override 7777", cfg.Port)
	}
	if cfg.RecentHistorySize != 42 {
		t.Errorf("recent history size = %d, want the env override 42", cfg.RecentHistorySize)
	}
	if cfg.PersistenceEnabled() {
		t.Error("persistence enabled, want PERSIST_HISTORY=false respected")
	}
}

func TestLoadRejectsSampleLongerThanFrequency(t *testing.T) {
	clearEnv(t)
	writeConfig(t, "update_frequency_seconds: 1\ncpu_sample_duration_ms: 1500\n")

	_, err := Load()
	if err == nil {
		t.Fatal("Load succeeded, want a validation error")
	}
	if !strings.Contains(err.Error(), "cpu_sample_duration_ms") {
		t.Errorf("error = %v, want it to name cpu_sample_duration_ms", err)
	}
}

func TestLoadRejectsNegativeSizes(t *testing.T) {
	clearEnv(t)
	writeConfig(t, "recent_history_size: -3\n")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded, want a validation error")
	}
}

func TestLoadFailsOnMalformedYAML(t *testing.T) {
	clearEnv(t)
	writeConfig(t, "port: [unclosed\n")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded, want a parse error")
	}
}
