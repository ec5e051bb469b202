package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// Create temp directory
	tmpDir, err := os.MkdirTemp("", "rcbt-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	// Write test config
	configPath := filepath.Join(tmpDir, "config.toml")
	configContent := `
[server]
url = "http://reports.internal:8080"
timeout = "30s"

[workflow]
detour_policy = "end"

[history]
closure_threshold = 15.5
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.URL != "http://reports.internal:8080" {
		t.Errorf("expected server url, got '%s'", cfg.Server.URL)
	}
	if cfg.Workflow.DetourPolicy != DetourEnd {
		t.Errorf("expected detour_policy 'end', got '%s'", cfg.Workflow.DetourPolicy)
	}
	if cfg.History.ClosureThreshold != 15.5 {
		t.Errorf("expected closure_threshold 15.5, got %v", cfg.History.ClosureThreshold)
	}
	// Untouched sections keep their defaults
	if cfg.History.SatisfactionThreshold != 92 {
		t.Errorf("expected default satisfaction_threshold 92, got %v", cfg.History.SatisfactionThreshold)
	}
}

func TestLoadConfigWithDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "rcbt-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(configPath, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Upload.MaxSizeMB != 50 {
		t.Errorf("expected default max_size_mb 50, got %d", cfg.Upload.MaxSizeMB)
	}
	if cfg.MaxUploadBytes() != 50*1024*1024 {
		t.Errorf("unexpected MaxUploadBytes %d", cfg.MaxUploadBytes())
	}
	if cfg.Workflow.DetourPolicy != DetourHold {
		t.Errorf("expected default detour_policy 'hold', got '%s'", cfg.Workflow.DetourPolicy)
	}
	if len(cfg.Upload.AllowedMediaTypes) != 2 {
		t.Errorf("expected 2 allowed media types, got %d", len(cfg.Upload.AllowedMediaTypes))
	}
}

func TestLoadRejectsUnknownDetourPolicy(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[workflow]\ndetour_policy = \"maybe\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Fatal("expected validation error for unknown detour policy")
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrCreate(configPath)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.Server.URL == "" {
		t.Error("expected default server url")
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	reloaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to reload written config: %v", err)
	}
	if reloaded.Individual.Cap != 90 {
		t.Errorf("expected cap 90 after round trip, got %v", reloaded.Individual.Cap)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvServer, "http://env-server")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvTelegramChat, "4242")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Server.URL != "http://env-server" {
		t.Errorf("expected env server, got %s", cfg.Server.URL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected lowercased level, got %s", cfg.Logging.Level)
	}
	if cfg.Notifications.TelegramChatID != 4242 {
		t.Errorf("expected chat id 4242, got %d", cfg.Notifications.TelegramChatID)
	}
}

func TestApplyEnvInvalidChat(t *testing.T) {
	t.Setenv(EnvTelegramChat, "not-a-number")
	if err := ApplyEnv(DefaultConfig()); err == nil {
		t.Fatal("expected error for non-numeric chat id")
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", time.Second); got != time.Second {
		t.Errorf("expected fallback, got %v", got)
	}
	if got := Duration("bogus", time.Second); got != time.Second {
		t.Errorf("expected fallback for bogus, got %v", got)
	}
	if got := Duration("250ms", time.Second); got != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", got)
	}
}
