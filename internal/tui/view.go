package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/progress"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.renderTabs())
	sb.WriteString("\n")
	if toast, ok := m.toasts.Peek(); ok {
		sb.WriteString(levelStyle(toast.Level).Render(toast.Message))
		sb.WriteString("\n")
	}

	var body string
	switch m.activeTab {
	case tabWorkflow:
		body = m.renderWorkflow()
	case tabIndividual:
		body = m.renderIndividual()
	case tabHistory:
		body = m.renderHistory()
	case tabLog:
		body = m.logView.View()
	}
	sb.WriteString(contentStyle.Render(body))
	sb.WriteString("\n")

	if m.palette {
		sb.WriteString(m.renderPalette())
		sb.WriteString("\n")
	}
	sb.WriteString(m.renderHelp())
	return sb.String()
}

func (m Model) renderHeader() string {
	state := m.snap.State.String()
	if m.snap.State.InProgress() || len(m.running) > 0 {
		state = m.spinner.View() + " " + state
	}
	return logoStyle.Render("rcbt") + "  " + valueStyle.Render(state)
}

func (m Model) renderTabs() string {
	var tabs []string
	for i, name := range tabNames {
		label := "[" + name + "]"
		if tab(i) == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return tabBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderWorkflow() string {
	var sb strings.Builder

	var files strings.Builder
	for i, slot := range models.Slots {
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}
		ref := ""
		if r := m.snap.Files[slot]; r != "" {
			ref = mutedStyle.Render("  uploaded: " + r)
		}
		fmt.Fprintf(&files, "%s%s %s%s\n", cursor, labelStyle.Render(fmt.Sprintf("%-10s", slot.FieldName())), m.inputs[i].View(), ref)
	}
	style := panelStyle
	if m.editing {
		style = focusedPanelStyle
	}
	sb.WriteString(style.Render(strings.TrimRight(files.String(), "\n")))
	sb.WriteString("\n")

	generate := "generate disabled"
	if m.snap.CanGenerate {
		generate = "generate ready"
	}
	sb.WriteString(mutedStyle.Render(generate))
	sb.WriteString("\n")

	if m.global.Visible {
		sb.WriteString(m.renderBar(m.global))
		sb.WriteString("\n")
	}

	if m.detour != nil {
		sb.WriteString(baseStyle.Foreground(warningColor).Bold(true).Render(
			fmt.Sprintf("%d inconsistencies detected", m.detour.detour.Inconsistencies)))
		sb.WriteString("\n")
		if m.detour.detour.Message != "" {
			sb.WriteString(valueStyle.Render(m.detour.detour.Message) + "\n")
		}
		sb.WriteString("Validate at " + linkStyle.Render(m.detour.url) + "\n")
		sb.WriteString(mutedStyle.Render("The dashboard resumes when `rcbt validation done` is run") + "\n")
	} else if m.report != nil {
		sb.WriteString(m.renderMetrics())
	}

	if m.opened != "" {
		sb.WriteString(mutedStyle.Render("Last opened: ") + linkStyle.Render(m.opened) + "\n")
	}
	return sb.String()
}

func (m Model) renderMetrics() string {
	metrics := m.report.metrics
	rate := func(v float64) string { return fmt.Sprintf("%g%%", v) }
	lines := []string{
		titleStyle.Render("Report ") + valueStyle.Render(m.report.path),
		labelStyle.Render("Closure rate:          ") + badge(rate(metrics.ClosureRate()), metrics.ClosureOK()),
		labelStyle.Render("Satisfaction Q1:       ") + badge(rate(metrics.SatisfactionRate()), metrics.SatisfactionOK()),
		labelStyle.Render("Surveys with comments: ") + valueStyle.Render(rate(metrics.CommentsPercentage())),
		labelStyle.Render("Collaborators:         ") + valueStyle.Render(fmt.Sprint(metrics.TotalCollaborators())),
	}
	return panelStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func (m Model) renderIndividual() string {
	if !m.snap.IndividualVisible {
		return mutedStyle.Render("Individual reports become available after a global report")
	}

	var sb strings.Builder
	kind := "-"
	if m.kind != "" {
		kind = string(m.kind)
	}
	sb.WriteString(labelStyle.Render("Type:   ") + valueStyle.Render(kind) + "\n")

	target := m.holder
	if m.holder == "" {
		if sel := m.targets.Selected(); sel != "" {
			target = fmt.Sprintf("< %s >  (%d/%d)", sel, m.targets.Index+1, len(m.targets.Options))
		} else {
			target = "no targets"
		}
	}
	sb.WriteString(labelStyle.Render("Target: ") + valueStyle.Render(target) + "\n")

	if m.indiv.Visible {
		sb.WriteString(m.renderBar(m.indiv))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderHistory() string {
	var sb strings.Builder
	if len(m.rows) == 0 {
		sb.WriteString(mutedStyle.Render("No reports in history"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
	}
	if m.deleting != 0 {
		sb.WriteString(baseStyle.Foreground(warningColor).Render(
			fmt.Sprintf("Delete report #%d? Are you sure? (y/n)", m.deleting)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderBar(u progress.Update) string {
	return m.bar.ViewAs(u.Percent/100) + " " + valueStyle.Render(u.Label)
}

func (m Model) renderPalette() string {
	matches := FilterCommands(paletteCommands, m.paletteInput)
	var sb strings.Builder
	sb.WriteString(":" + m.paletteInput + "\n")
	for i, c := range matches {
		line := fmt.Sprintf("%-10s %s", c.Name, c.Description)
		if i == m.paletteIndex {
			line = labelStyle.Render(line)
		} else {
			line = mutedStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	return paletteStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) renderHelp() string {
	hints := []string{keyHint("tab", "switch"), keyHint(":", "commands")}
	switch m.activeTab {
	case tabWorkflow:
		hints = append(hints, keyHint("↑/↓", "slot"), keyHint("enter", "edit"), keyHint("u", "upload"), keyHint("g", "generate"), keyHint("o", "open"))
	case tabIndividual:
		hints = append(hints, keyHint("t", "type"), keyHint("←/→", "target"), keyHint("enter", "generate"))
	case tabHistory:
		hints = append(hints, keyHint("h", "reload"), keyHint("enter", "open"), keyHint("s", "save"), keyHint("d", "delete"))
	}
	hints = append(hints, keyHint("q", "quit"))
	return helpStyle.Render(strings.Join(hints, "  "))
}
