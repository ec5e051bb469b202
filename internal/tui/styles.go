package tui

import "github.com/charmbracelet/lipgloss"

// Dark theme colors
var (
	bgColor        = lipgloss.Color("#0a0a0a")
	bgPanelColor   = lipgloss.Color("#141414")
	bgElementColor = lipgloss.Color("#1e1e1e")

	borderSubtleColor = lipgloss.Color("#3c3c3c")
	borderActiveColor = lipgloss.Color("#606060")

	primaryColor   = lipgloss.Color("#fab283") // warm peach
	secondaryColor = lipgloss.Color("#5c9cf5") // blue

	errorColor   = lipgloss.Color("#e06c75")
	warningColor = lipgloss.Color("#f5a742")
	successColor = lipgloss.Color("#7fd88f")
	infoColor    = lipgloss.Color("#56b6c2")

	textColor      = lipgloss.Color("#eeeeee")
	textMutedColor = lipgloss.Color("#808080")
)

var baseStyle = lipgloss.NewStyle().Background(bgColor)

var logoStyle = baseStyle.
	Foreground(textColor).
	Bold(true)

var panelBaseStyle = lipgloss.NewStyle().Background(bgPanelColor)

// Tab styles
var (
	activeTabStyle = panelBaseStyle.
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 2)

	inactiveTabStyle = panelBaseStyle.
				Foreground(textMutedColor).
				Padding(0, 2)

	tabBarStyle = baseStyle.
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(borderSubtleColor)
)

// Content styles
var (
	titleStyle = baseStyle.
			Foreground(textColor).
			Bold(true)

	helpStyle = baseStyle.
			Foreground(textMutedColor)

	mutedStyle = baseStyle.
			Foreground(textMutedColor)

	contentStyle = baseStyle.
			Padding(1, 2)

	panelStyle = lipgloss.NewStyle().
			Background(bgPanelColor).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(borderSubtleColor)

	focusedPanelStyle = panelStyle.
				BorderForeground(borderActiveColor)

	labelStyle = baseStyle.
			Foreground(primaryColor).
			Bold(true)

	valueStyle = baseStyle.
			Foreground(textMutedColor)

	keyStyle = baseStyle.
			Foreground(textColor).
			Bold(true)

	keyDescStyle = baseStyle.
			Foreground(textMutedColor)

	linkStyle = baseStyle.
			Foreground(secondaryColor).
			Underline(true)

	paletteStyle = lipgloss.NewStyle().
			Background(bgElementColor).
			Padding(0, 1)
)

// levelStyle colors an event by level
func levelStyle(level string) lipgloss.Style {
	switch level {
	case "success":
		return baseStyle.Foreground(successColor)
	case "warning":
		return baseStyle.Foreground(warningColor)
	case "error":
		return baseStyle.Foreground(errorColor)
	default:
		return baseStyle.Foreground(infoColor)
	}
}

// badge colors a value green when ok, orange otherwise
func badge(text string, ok bool) string {
	if ok {
		return baseStyle.Foreground(successColor).Render(text)
	}
	return baseStyle.Foreground(warningColor).Render(text)
}

// keyHint renders "key desc"
func keyHint(key, desc string) string {
	return keyStyle.Render(key) + " " + keyDescStyle.Render(desc)
}
