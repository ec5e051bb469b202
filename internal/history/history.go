// Package history lists, downloads and deletes the server's report records.
package history

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabe/rcbt/internal/config"
	"github.com/gabe/rcbt/internal/models"
)

// DeletePrompt is the question asked before a record is deleted
const DeletePrompt = "Are you sure you want to delete this report?"

// API is the part of the report server the browser uses. *client.Client implements it.
type API interface {
	History(ctx context.Context) ([]models.ReportRecord, error)
	DeleteHistory(ctx context.Context, id int64) error
	Download(ctx context.Context, reportPath string, w io.Writer) (string, error)
	DownloadURL(reportPath string) string
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// View renders the history table
type View interface {
	History(rows []Row)
}

// Logger is the part of the event stream the browser writes to
type Logger interface {
	Success(format string, args ...any)
	Error(format string, args ...any)
}

// Thresholds are the acceptance bars behind the row badges
type Thresholds struct {
	Closure      float64
	Satisfaction float64
}

// ThresholdsFromConfig reads the history section of the config
func ThresholdsFromConfig(cfg config.HistoryConfig) Thresholds {
	return Thresholds{Closure: cfg.ClosureThreshold, Satisfaction: cfg.SatisfactionThreshold}
}

// Row is one rendered history record with its badges
type Row struct {
	Record         models.ReportRecord
	ClosureOK      bool
	SatisfactionOK bool
}

// Responses is the survey volume column: Q1 responses, else shop tickets
func (r Row) Responses() (float64, bool) {
	if v := r.Record.ResponsesQ1; v != nil && *v != 0 {
		return *v, true
	}
	if v := r.Record.TicketsBoutiques; v != nil && *v != 0 {
		return *v, true
	}
	return 0, false
}

// Browser fetches, renders and deletes history records
type Browser struct {
	api        API
	view       View
	log        Logger
	confirm    Confirmer
	thresholds Thresholds
}

// NewBrowser creates a history browser
func NewBrowser(api API, view View, log Logger, confirm Confirmer, thresholds Thresholds) *Browser {
	return &Browser{
		api:        api,
		view:       view,
		log:        log,
		confirm:    confirm,
		thresholds: thresholds,
	}
}

// Rows derives the badges of each record. A missing rate counts as 0.
func (b *Browser) Rows(records []models.ReportRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			Record:         rec,
			ClosureOK:      value(rec.ClosureRate) >= b.thresholds.Closure,
			SatisfactionOK: value(rec.SatisfactionRate) >= b.thresholds.Satisfaction,
		})
	}
	return rows
}

// List fetches every record and renders it
func (b *Browser) List(ctx context.Context) ([]Row, error) {
	records, err := b.api.History(ctx)
	if err != nil {
		b.log.Error("Failed to load history: %v", err)
		return nil, err
	}
	rows := b.Rows(records)
	if b.view != nil {
		b.view.History(rows)
	}
	return rows, nil
}

// Delete removes a record after confirmation and re-fetches the whole list.
// It reports whether a deletion happened; a declined confirmation sends nothing.
func (b *Browser) Delete(ctx context.Context, id int64) (bool, error) {
	if b.confirm == nil || !b.confirm.Confirm(DeletePrompt) {
		return false, nil
	}
	if err := b.api.DeleteHistory(ctx, id); err != nil {
		b.log.Error("Delete failed: %v", err)
		return false, err
	}
	b.log.Success("Report deleted successfully")

	// The deletion already happened; a failed refresh is logged by List
	_, _ = b.List(ctx)
	return true, nil
}

// Save downloads a record's report into dir and returns the written path
func (b *Browser) Save(ctx context.Context, reportPath, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".rcbt-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}
	defer os.Remove(tmp.Name())

	name, err := b.api.Download(ctx, reportPath, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		b.log.Error("Download failed: %v", err)
		return "", err
	}

	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		name = "report.html"
	}
	dest := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	b.log.Success("Report saved to %s", dest)
	return dest, nil
}

// URL is the download address of a record's report
func (b *Browser) URL(rec models.ReportRecord) string {
	return b.api.DownloadURL(rec.FilePath)
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
