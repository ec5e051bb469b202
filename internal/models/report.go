package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// ReportKind distinguishes aggregate reports from filtered ones
type ReportKind string

const (
	ReportKindGlobal     ReportKind = "global"
	ReportKindIndividual ReportKind = "individual"
)

// TargetType is the filter dimension of an individual report
type TargetType string

const (
	TargetSite         TargetType = "site"
	TargetCollaborator TargetType = "collaborator"
)

// ParseTargetType validates a user-supplied report type
func ParseTargetType(s string) (TargetType, bool) {
	switch TargetType(s) {
	case TargetSite, TargetCollaborator:
		return TargetType(s), true
	}
	return "", false
}

// AvailableData holds the selectable targets for individual reports
type AvailableData struct {
	Sites         []string `json:"sites"`
	Collaborators []string `json:"collaborators"`
}

// Targets returns the collection matching the report type
func (d *AvailableData) Targets(t TargetType) []string {
	if d == nil {
		return nil
	}
	switch t {
	case TargetSite:
		return d.Sites
	case TargetCollaborator:
		return d.Collaborators
	}
	return nil
}

// Metrics is the summary returned with a generated global report
type Metrics struct {
	Page1 map[string]any `json:"page1"`
	Page2 map[string]any `json:"page2"`
}

// ClosureRate is page1.taux_closure
func (m Metrics) ClosureRate() float64 { return number(m.Page1["taux_closure"]) }

// ClosureOK is page1.closure_ok
func (m Metrics) ClosureOK() bool { return flag(m.Page1["closure_ok"]) }

// SatisfactionRate is page1.taux_sat
func (m Metrics) SatisfactionRate() float64 { return number(m.Page1["taux_sat"]) }

// SatisfactionOK is page1.sat_ok
func (m Metrics) SatisfactionOK() bool { return flag(m.Page1["sat_ok"]) }

// CommentsPercentage is page2.comments_percentage
func (m Metrics) CommentsPercentage() float64 { return number(m.Page2["comments_percentage"]) }

// TotalCollaborators is page2.total_collaborators
func (m Metrics) TotalCollaborators() int { return int(number(m.Page2["total_collaborators"])) }

// Detour is the soft conflict returned when inconsistencies need manual validation
type Detour struct {
	Inconsistencies int    `json:"inconsistencies_detected"`
	Message         string `json:"message"`
	RedirectTo      string `json:"redirect_to"`
}

// ReportRecord is one entry of the server-side report history
type ReportRecord struct {
	ID                 int64      `json:"id"`
	Timestamp          string     `json:"timestamp"`
	Kind               ReportKind `json:"report_type"`
	FilterType         string     `json:"filter_type,omitempty"`
	FilterValue        string     `json:"filter_value,omitempty"`
	Filename           string     `json:"filename"`
	FilePath           string     `json:"file_path"`
	TotalTickets       *float64   `json:"total_tickets,omitempty"`
	TicketsBoutiques   *float64   `json:"tickets_boutiques,omitempty"`
	ResponsesQ1        *float64   `json:"nb_reponses_q1,omitempty"`
	ClosureRate        *float64   `json:"taux_closure,omitempty"`
	SatisfactionRate   *float64   `json:"taux_satisfaction,omitempty"`
	CommentsPercentage *float64   `json:"comments_percentage,omitempty"`
}

// Time parses the server timestamp; the zero time is returned when it cannot be parsed
func (r ReportRecord) Time() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, r.Timestamp, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Filter returns "type: value" for individual reports and "-" otherwise
func (r ReportRecord) Filter() string {
	if r.FilterType == "" || r.FilterValue == "" {
		return "-"
	}
	return r.FilterType + ": " + r.FilterValue
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func flag(v any) bool {
	b, _ := v.(bool)
	return b
}
