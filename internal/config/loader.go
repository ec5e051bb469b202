package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment overrides, read after the file so they always win
const (
	EnvServer       = "RCBT_SERVER"
	EnvLogLevel     = "RCBT_LOG_LEVEL"
	EnvStateDir     = "RCBT_STATE_DIR"
	EnvTelegramBot  = "RCBT_TELEGRAM_TOKEN"
	EnvTelegramChat = "RCBT_TELEGRAM_CHAT"
)

// Load reads config from path, applying defaults for missing values
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// LoadOrCreate loads config or creates default if missing
func LoadOrCreate(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		return cfg, Save(path, cfg)
	}
	return Load(path)
}

// Save writes config to path
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// ApplyEnv loads a .env file if present and applies RCBT_* overrides.
// godotenv never overrides variables already set in the process environment.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load()

	if v := os.Getenv(EnvServer); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv(EnvTelegramBot); v != "" {
		cfg.Notifications.TelegramToken = v
	}
	if v := os.Getenv(EnvTelegramChat); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTelegramChat, err)
		}
		cfg.Notifications.TelegramChatID = id
	}
	return cfg.Validate()
}

// Validate rejects values the client cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("server.url is empty")
	}
	switch c.Workflow.DetourPolicy {
	case DetourHold, DetourEnd:
	default:
		return fmt.Errorf("workflow.detour_policy must be %q or %q, got %q", DetourHold, DetourEnd, c.Workflow.DetourPolicy)
	}
	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("upload.max_size_mb must be positive")
	}
	if c.Individual.Cap <= 0 || c.Individual.Cap > 100 {
		return fmt.Errorf("individual.cap must be in (0, 100]")
	}
	return nil
}

// DefaultDir returns ~/.rcbt
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".rcbt"), nil
}

// ResolveStateDir returns the configured state directory, defaulting to
// <base>/state, and makes sure it exists
func (c *Config) ResolveStateDir(base string) (string, error) {
	dir := c.State.Dir
	if dir == "" {
		dir = filepath.Join(base, "state")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}
