package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.Theme)
	}
	if cfg.Scroll.SettleDuration() != 500*time.Millisecond {
		t.Errorf("SettleDuration = %v, want 500ms", cfg.Scroll.SettleDuration())
	}
	if cfg.Scroll.CleanupDuration() != 1500*time.Millisecond {
		t.Errorf("CleanupDuration = %v, want 1.5s", cfg.Scroll.CleanupDuration())
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("Server.Port = %d, want 8787", cfg.Server.Port)
	}
}

func TestScrollConfig_InvalidDurationFallsBack(t *testing.T) {
	c := ScrollConfig{SettleTimeout: "soon", TargetCleanupDelay: "-1s"}
	if got := c.SettleDuration(); got != 500*time.Millisecond {
		t.Errorf("SettleDuration = %v, want 500ms", got)
	}
	if got := c.CleanupDuration(); got != 1500*time.Millisecond {
		t.Errorf("CleanupDuration = %v, want 1.5s", got)
	}
}

func TestLoad_CreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.Theme)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Errorf("default config was not written: %v", err)
	}
}

func TestLoad_MergesWithDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	partial := map[string]any{
		"theme":  "light",
		"scroll": map[string]any{"follow_threshold": 7},
	}
	data, _ := json.Marshal(partial)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.Theme)
	}
	if cfg.Scroll.FollowThreshold != 7 {
		t.Errorf("FollowThreshold = %d, want 7", cfg.Scroll.FollowThreshold)
	}
	if cfg.Scroll.SettleTimeout != "500ms" {
		t.Errorf("SettleTimeout = %q, want default 500ms", cfg.Scroll.SettleTimeout)
	}
	if cfg.Responder.CharsPerSecond != 120 {
		t.Errorf("CharsPerSecond = %d, want 120", cfg.Responder.CharsPerSecond)
	}
}

func TestLoad_NormalizesBadValues(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	raw := `{"theme":"neon","scroll":{"noise_threshold":-4},"server":{"port":-1}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.Theme)
	}
	if cfg.Scroll.NoiseThreshold != 0 {
		t.Errorf("NoiseThreshold = %d, want 0", cfg.Scroll.NoiseThreshold)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("Port = %d, want 8787", cfg.Server.Port)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestJournalPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	p, err := Default().JournalPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "journal.duckdb") {
		t.Errorf("JournalPath = %q", p)
	}

	cfg := Default()
	cfg.Journal.Path = "/tmp/custom.duckdb"
	p, _ = cfg.JournalPath()
	if p != "/tmp/custom.duckdb" {
		t.Errorf("JournalPath = %q, want override", p)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	if err := Save(Default()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, func(c Config) { changes <- c })
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	cfg := Default()
	cfg.Theme = "light"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changes:
		if got.Theme != "light" {
			t.Errorf("reloaded Theme = %q, want light", got.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
