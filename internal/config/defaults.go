package config

// Spreadsheet media types accepted for upload (modern and legacy Excel)
const (
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypeXLS  = "application/vnd.ms-excel"
)

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:           "http://localhost:5000",
			Timeout:       "2m",
			UploadTimeout: "10m",
		},
		Upload: UploadConfig{
			MaxSizeMB:         50,
			AllowedMediaTypes: []string{MediaTypeXLSX, MediaTypeXLS},
		},
		Workflow: WorkflowConfig{
			DetourPolicy:  DetourHold,
			StageInterval: "500ms",
			ClearDelay:    "1s",
		},
		Individual: IndividualConfig{
			Tick:         "200ms",
			MaxIncrement: 15,
			Cap:          90,
		},
		History: HistoryConfig{
			ClosureThreshold:      13,
			SatisfactionThreshold: 92,
		},
		State: StateConfig{
			Dir: "",
		},
		Notifications: NotificationsConfig{
			Terminal: true,
			LogFile:  "events.log",
		},
		Schedule: ScheduleConfig{
			Spec:  "",
			Files: map[string]string{},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		UI: UIConfig{
			OpenBrowser: true,
		},
	}
}
