package tui

import "strings"

// Command is an entry of the ":" command palette
type Command struct {
	Name        string
	Description string
	Shortcut    string
}

var paletteCommands = []Command{
	{Name: "upload", Description: "Upload the four files", Shortcut: "u"},
	{Name: "generate", Description: "Generate the global report", Shortcut: "g"},
	{Name: "recover", Description: "Restore the server session", Shortcut: "r"},
	{Name: "open", Description: "Open the last global report", Shortcut: "o"},
	{Name: "history", Description: "Reload the report history", Shortcut: "h"},
	{Name: "quit", Description: "Leave the dashboard", Shortcut: "q"},
}

func FilterCommands(commands []Command, input string) []Command {
	query := strings.TrimPrefix(strings.TrimSpace(input), ":")
	if query == "" {
		return commands
	}
	var out []Command
	for _, cmd := range commands {
		if strings.HasPrefix(cmd.Name, query) {
			out = append(out, cmd)
		}
	}
	return out
}

func NextIndex(current int, total int, delta int) int {
	if total <= 0 {
		return 0
	}
	updated := current + delta
	if updated < 0 {
		return total - 1
	}
	if updated >= total {
		return 0
	}
	return updated
}
