package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// flagFileName is the marker left behind when the external validation flow completes
const flagFileName = "validation_completed.json"

// Flag records a completed inconsistency validation
type Flag struct {
	CompletedAt time.Time `json:"completed_at"`
	Note        string    `json:"note,omitempty"`
	Seq         int       `json:"seq"` // Sequence number to detect rewrites
}

// FlagStore handles the validation-completed flag inside the state directory
type FlagStore struct {
	dir string
	mu  sync.Mutex
	seq int
}

// NewFlagStore creates a store rooted at dir, creating it if needed
func NewFlagStore(dir string) (*FlagStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	s := &FlagStore{dir: dir}

	// Continue the sequence of a flag left by a previous run
	if flag, err := s.Read(); err == nil && flag != nil {
		s.seq = flag.Seq
	}

	return s, nil
}

// Mark sets the flag
func (s *FlagStore) Mark(note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	flag := Flag{CompletedAt: time.Now(), Note: note, Seq: s.seq}

	data, err := json.MarshalIndent(flag, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal flag: %w", err)
	}

	path := s.Path()
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write flag file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename flag file: %w", err)
	}
	return nil
}

// Read returns the current flag, or nil when it is not set
func (s *FlagStore) Read() (*Flag, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read flag file: %w", err)
	}

	var flag Flag
	if err := json.Unmarshal(data, &flag); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flag: %w", err)
	}
	return &flag, nil
}

// Exists reports whether the flag is set
func (s *FlagStore) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Consume reports whether the flag was set and removes it
func (s *FlagStore) Consume() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to clear flag file: %w", err)
	}
	return true, nil
}

// Watch returns a channel that receives the flag each time it is set.
// The directory is watched since the file usually does not exist yet.
func (s *FlagStore) Watch(ctx context.Context) (<-chan *Flag, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	flags := make(chan *Flag, 1)

	go func() {
		defer watcher.Close()
		defer close(flags)

		var lastSeq int
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != flagFileName {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				flag, err := s.Read()
				if err != nil || flag == nil || flag.Seq == lastSeq {
					continue
				}
				lastSeq = flag.Seq
				select {
				case flags <- flag:
				case <-ctx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return flags, nil
}

// Path returns the full path to the flag file
func (s *FlagStore) Path() string {
	return filepath.Join(s.dir, flagFileName)
}
