package validator

import (
	"errors"
	"fmt"
	"math"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabe/rcbt/internal/config"
	"github.com/gabe/rcbt/internal/models"
)

var (
	// ErrMissingFile is returned when a required slot has no file selected
	ErrMissingFile = errors.New("missing required file")

	// ErrMediaType is returned for files outside the spreadsheet allow-list
	ErrMediaType = errors.New("file type not allowed")

	// ErrTooLarge is returned for files above the size ceiling
	ErrTooLarge = errors.New("file too large")
)

// Error is a local validation failure; it never involves the network
type Error struct {
	Slot models.FileSlot
	File string
	Size int64
	Err  error
}

func (e *Error) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingFile):
		return fmt.Sprintf("please select the file: %s", e.Slot.FieldName())
	case errors.Is(e.Err, ErrTooLarge):
		return fmt.Sprintf("file too large: %s (%s)", e.File, FormatSize(e.Size))
	default:
		return fmt.Sprintf("file type not allowed: %s", e.File)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Logger is the part of the event stream the validator writes to
type Logger interface {
	Success(format string, args ...any)
	Error(format string, args ...any)
}

// Validator checks declared media type and size against a static policy
type Validator struct {
	allowed map[string]bool
	maxSize int64
	log     Logger
}

// New builds a validator from the upload section of the config
func New(cfg config.UploadConfig, log Logger) *Validator {
	allowed := make(map[string]bool, len(cfg.AllowedMediaTypes))
	for _, t := range cfg.AllowedMediaTypes {
		allowed[t] = true
	}
	return &Validator{
		allowed: allowed,
		maxSize: cfg.MaxSizeMB * 1024 * 1024,
		log:     log,
	}
}

// Check returns a *Error when the file breaks the policy. Size equal to
// the ceiling is accepted.
func (v *Validator) Check(slot models.FileSlot, f models.LocalFile) error {
	if !v.allowed[f.MediaType] {
		return &Error{Slot: slot, File: f.Name, Size: f.Size, Err: ErrMediaType}
	}
	if f.Size > v.maxSize {
		return &Error{Slot: slot, File: f.Name, Size: f.Size, Err: ErrTooLarge}
	}
	return nil
}

// Validate checks the file selected for slot. A rejected file is removed
// from the selection so it cannot be submitted.
func (v *Validator) Validate(sel models.Selection, slot models.FileSlot) bool {
	f, ok := sel[slot]
	if !ok {
		return false
	}
	if err := v.Check(slot, f); err != nil {
		sel.Clear(slot)
		v.log.Error("%s", capitalize(err.Error()))
		return false
	}
	v.log.Success("File validated: %s (%s)", f.Name, FormatSize(f.Size))
	return true
}

// Describe stats a local path and derives the declared media type from its
// extension, the way a browser file input does
func Describe(path string) (models.LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.LocalFile{}, err
	}
	if info.IsDir() {
		return models.LocalFile{}, fmt.Errorf("%s is a directory", path)
	}
	return models.LocalFile{
		Path:      path,
		Name:      filepath.Base(path),
		MediaType: MediaTypeOf(path),
		Size:      info.Size(),
	}, nil
}

// MediaTypeOf maps a file name to its declared media type
func MediaTypeOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return config.MediaTypeXLSX
	case ".xls":
		return config.MediaTypeXLS
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// FormatSize renders a byte count as "1.5 MB"
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64) + " " + sizes[i]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
