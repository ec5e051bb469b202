package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileNotifier appends every entry to a log file, one dated line each
type FileNotifier struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileNotifier opens (and creates if needed) the log file in append mode
func NewFileNotifier(path string) (*FileNotifier, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &FileNotifier{file: f}, nil
}

// Notify appends "2006-01-02 15:04:05 [level] message"
func (f *FileNotifier) Notify(notification Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, err := fmt.Fprintf(f.file, "%s [%s] %s\n",
		notification.Timestamp.Format("2006-01-02 15:04:05"), notification.Level, notification.Message)
	return err
}

// Close closes the underlying file
func (f *FileNotifier) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
