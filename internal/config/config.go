package config

import "time"

// Config holds the main rcbt configuration
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Upload        UploadConfig        `toml:"upload"`
	Workflow      WorkflowConfig      `toml:"workflow"`
	Individual    IndividualConfig    `toml:"individual"`
	History       HistoryConfig       `toml:"history"`
	State         StateConfig         `toml:"state"`
	Notifications NotificationsConfig `toml:"notifications"`
	Schedule      ScheduleConfig      `toml:"schedule"`
	Logging       LoggingConfig       `toml:"logging"`
	UI            UIConfig            `toml:"ui"`
}

type ServerConfig struct {
	URL           string `toml:"url"`
	Timeout       string `toml:"timeout"`
	UploadTimeout string `toml:"upload_timeout"`
}

type UploadConfig struct {
	MaxSizeMB         int64    `toml:"max_size_mb"`
	AllowedMediaTypes []string `toml:"allowed_media_types"`
}

// Detour policies decide what the inconsistency-validation detour does to the workflow
const (
	DetourHold = "hold" // stay in AwaitingValidation until validation is confirmed
	DetourEnd  = "end"  // end the workflow immediately, like a completed generation
)

type WorkflowConfig struct {
	DetourPolicy  string `toml:"detour_policy"`
	StageInterval string `toml:"stage_interval"`
	ClearDelay    string `toml:"clear_delay"`
}

type IndividualConfig struct {
	Tick         string  `toml:"tick"`
	MaxIncrement float64 `toml:"max_increment"`
	Cap          float64 `toml:"cap"`
}

type HistoryConfig struct {
	ClosureThreshold      float64 `toml:"closure_threshold"`
	SatisfactionThreshold float64 `toml:"satisfaction_threshold"`
}

type StateConfig struct {
	Dir string `toml:"dir"`
}

type NotificationsConfig struct {
	Terminal       bool   `toml:"terminal"`
	LogFile        string `toml:"log_file"`
	TelegramToken  string `toml:"telegram_token"`
	TelegramChatID int64  `toml:"telegram_chat_id"`
}

type ScheduleConfig struct {
	Spec  string            `toml:"spec"`
	Files map[string]string `toml:"files"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type UIConfig struct {
	OpenBrowser bool `toml:"open_browser"`
}

// Duration parses a config duration string, falling back when empty or malformed
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// MaxUploadBytes returns the upload ceiling in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxSizeMB * 1024 * 1024
}
