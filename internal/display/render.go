package display

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gabe/rcbt/internal/history"
	"github.com/gabe/rcbt/internal/models"
)

// ProgressBar renders "[#####-----]  50%" with the given inner width
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return fmt.Sprintf("[%s%s] %3.0f%%", strings.Repeat("#", filled), strings.Repeat("-", width-filled), percent)
}

// Percent formats a rate the way the server reports it ("14%", "92.5%")
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// RenderMetrics renders the summary returned with a global report
func RenderMetrics(reportPath string, m models.Metrics) string {
	var sb strings.Builder
	sb.WriteString(sectionStyle.Render("Report"))
	sb.WriteString(" ")
	sb.WriteString(valueStyle.Render(reportPath))
	sb.WriteString("\n")

	lines := []struct {
		label string
		value string
	}{
		{"Closure rate", Badge(Percent(m.ClosureRate()), m.ClosureOK())},
		{"Satisfaction Q1", Badge(Percent(m.SatisfactionRate()), m.SatisfactionOK())},
		{"Surveys with comments", valueStyle.Render(Percent(m.CommentsPercentage()))},
		{"Collaborators analyzed", valueStyle.Render(strconv.Itoa(m.TotalCollaborators()))},
	}
	for i, l := range lines {
		branch := treeBranch
		if i == len(lines)-1 {
			branch = treeLastBranch
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", mutedStyle.Render(branch), labelStyle.Render(l.label+":"), l.value)
	}
	return sb.String()
}

// RenderDetour renders the inconsistency-validation call to action
func RenderDetour(d models.Detour, url string) string {
	var sb strings.Builder
	sb.WriteString(warningStyle.Bold(true).Render("Inconsistencies detected"))
	sb.WriteString("\n")
	if d.Message != "" {
		sb.WriteString("  " + valueStyle.Render(d.Message) + "\n")
	}
	fmt.Fprintf(&sb, "  %s %s\n", labelStyle.Render("Validate them at:"), linkStyle.Render(url))
	sb.WriteString("  " + mutedStyle.Render("then run `rcbt validation done` and `rcbt session`") + "\n")
	return sb.String()
}

// RenderTargets renders the target list of a report type, or the placeholder
func RenderTargets(kind models.TargetType, targets []string, placeholder string) string {
	if placeholder != "" {
		return mutedStyle.Render(placeholder) + "\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d)\n", sectionStyle.Render(targetTitle(kind)), len(targets))
	if len(targets) == 0 {
		sb.WriteString(mutedStyle.Render("  none") + "\n")
	}
	for i, t := range targets {
		branch := treeBranch
		if i == len(targets)-1 {
			branch = treeLastBranch
		}
		fmt.Fprintf(&sb, "  %s %s\n", mutedStyle.Render(branch), valueStyle.Render(t))
	}
	return sb.String()
}

func targetTitle(kind models.TargetType) string {
	if kind == models.TargetCollaborator {
		return "Collaborators"
	}
	return "Sites"
}

// RenderHistory renders the history table
func RenderHistory(rows []history.Row) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No reports in history") + "\n"
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tFILTER\tFILE\tTICKETS\tRESPONSES\tCLOSURE\tSATISFACTION")
	for _, r := range rows {
		rec := r.Record
		date := rec.Timestamp
		if t := rec.Time(); !t.IsZero() {
			date = t.Format("2006-01-02 15:04")
		}
		responses := "N/A"
		if v, ok := r.Responses(); ok {
			responses = number(v)
		}
		tickets := "N/A"
		if rec.TotalTickets != nil && *rec.TotalTickets != 0 {
			tickets = number(*rec.TotalTickets)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID,
			date,
			KindLabel(rec.Kind),
			rec.Filter(),
			rec.Filename,
			tickets,
			responses,
			Badge(Percent(deref(rec.ClosureRate)), r.ClosureOK),
			Badge(Percent(deref(rec.SatisfactionRate)), r.SatisfactionOK))
	}
	w.Flush()
	return sb.String()
}

// KindLabel is the display name of a report kind
func KindLabel(k models.ReportKind) string {
	if k == models.ReportKindGlobal {
		return "Global"
	}
	return "Individual"
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
