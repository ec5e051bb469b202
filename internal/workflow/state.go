// Package workflow sequences upload, global report generation, the
// inconsistency-validation detour, individual reports and session recovery.
package workflow

import (
	"errors"

	"github.com/gabe/rcbt/internal/models"
)

// State of the global workflow
type State int

const (
	Idle State = iota
	Uploading
	Generating
	AwaitingValidation
)

func (s State) String() string {
	switch s {
	case Uploading:
		return "uploading"
	case Generating:
		return "generating"
	case AwaitingValidation:
		return "awaiting validation"
	default:
		return "idle"
	}
}

// InProgress reports whether a global action is running
func (s State) InProgress() bool {
	return s == Uploading || s == Generating
}

var (
	// ErrBusy is returned when a global action is dispatched while another runs
	ErrBusy = errors.New("a global workflow is already in progress")

	// ErrIncompleteFiles is returned when generation is asked for without four uploaded files
	ErrIncompleteFiles = errors.New("all four files must be uploaded first")

	// ErrNoTarget is returned when an individual report lacks its type or target
	ErrNoTarget = errors.New("report type and target are required")

	// ErrIndividualHidden is returned when individual reports are not available yet
	ErrIndividualHidden = errors.New("individual reports are not available")

	// ErrNoReport is returned when there is no generated report to open
	ErrNoReport = errors.New("no report to download")

	// ErrStale is returned when a response was superseded by a newer request of the same kind
	ErrStale = errors.New("response superseded by a newer request")
)

// Snapshot is what a renderer needs to draw the workflow
type Snapshot struct {
	State             State
	Files             models.UploadedFileSet
	ReportPath        string
	Available         *models.AvailableData
	Detour            *models.Detour
	IndividualVisible bool
	CanUpload         bool
	CanGenerate       bool
}
