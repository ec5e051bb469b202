package logger

import (
	"io"
	"os"
	"strings"

	"github.com/gabe/rcbt/internal/config"
	"github.com/sirupsen/logrus"
)

// Log is the global diagnostic logger. User-facing events go through notify instead.
var Log = logrus.New()

// Init configures the global logger from the logging section of the config
func Init(cfg config.LoggingConfig, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	Log.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'warn'. Error: %v", cfg.Level, err)
		Log.SetLevel(logrus.WarnLevel)
	} else {
		Log.SetLevel(level)
	}

	if strings.ToLower(cfg.Format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
}

// Get returns the configured global logger
func Get() *logrus.Logger {
	return Log
}
