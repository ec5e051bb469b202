package display

import "github.com/charmbracelet/lipgloss"

// Styles for console output
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D4FF"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EEEEEE"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E22E"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FD971F"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F92672"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EEEEEE"))
	linkStyle    = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#00D4FF"))

	treeBranch     = "├─"
	treeLastBranch = "└─"
)

// Badge renders a value green when ok, orange otherwise
func Badge(text string, ok bool) string {
	if ok {
		return successStyle.Render(text)
	}
	return warningStyle.Render(text)
}

// Header renders a command title
func Header(s string) string { return headerStyle.Render(s) }

// Section renders a section title
func Section(s string) string { return sectionStyle.Render(s) }

// Label renders a field label
func Label(s string) string { return labelStyle.Render(s) }

// Value renders a field value
func Value(s string) string { return valueStyle.Render(s) }

// Muted renders secondary text
func Muted(s string) string { return mutedStyle.Render(s) }

// OK renders a positive status
func OK(s string) string { return successStyle.Render(s) }

// Fail renders a negative status
func Fail(s string) string { return errorStyle.Render(s) }
