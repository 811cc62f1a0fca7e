// Package console implements the line-oriented operator console: input
// normalization, the fixed command table, and dispatch to the state mutators
// and external collaborators.
package console

import (
	"fmt"
	"strings"
)

// Kind identifies a parsed command.
type Kind int

const (
	KindNone Kind = iota // empty input or console closed; nothing happened
	KindHelp
	KindBlueprint
	KindClear
	KindTheme
	KindRepo
	KindUnknown
)

// String returns the command word.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindHelp:
		return "help"
	case KindBlueprint:
		return "blueprint"
	case KindClear:
		return "clear"
	case KindTheme:
		return "theme"
	case KindRepo:
		return "repo"
	default:
		return "unknown"
	}
}

// CommandInfo holds metadata about a command.
type CommandInfo struct {
	Name        string
	Kind        Kind
	Description string
	ShowInHelp  bool
}

// CommandRegistry is the fixed command table, in help order.
var CommandRegistry = []CommandInfo{
	{Name: "help", Kind: KindHelp, Description: "Show available commands"},
	{Name: "blueprint", Kind: KindBlueprint, Description: "Toggle site blueprint mode", ShowInHelp: true},
	{Name: "clear", Kind: KindClear, Description: "Clear terminal logs", ShowInHelp: true},
	{Name: "theme", Kind: KindTheme, Description: "Toggle light/dark theme", ShowInHelp: true},
	{Name: "repo", Kind: KindRepo, Description: "Open GitHub repository", ShowInHelp: true},
}

// Lookup finds a command by its exact normalized name.
func Lookup(name string) (CommandInfo, bool) {
	for _, c := range CommandRegistry {
		if c.Name == name {
			return c, true
		}
	}
	return CommandInfo{}, false
}

// Normalize trims surrounding whitespace and lowercases.
func Normalize(line string) string {
	return strings.ToLower(strings.TrimSpace(line))
}

// Parse normalizes line and classifies it. Empty input yields KindNone.
func Parse(line string) (string, Kind) {
	cmd := Normalize(line)
	if cmd == "" {
		return "", KindNone
	}
	if info, ok := Lookup(cmd); ok {
		return cmd, info.Kind
	}
	return cmd, KindUnknown
}

// HelpLines renders the help output, one log entry per line.
func HelpLines() []string {
	width := 0
	for _, c := range CommandRegistry {
		if c.ShowInHelp && len(c.Name) > width {
			width = len(c.Name)
		}
	}
	lines := []string{"Available commands:"}
	for _, c := range CommandRegistry {
		if !c.ShowInHelp {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-*s - %s", width, c.Name, c.Description))
	}
	return lines
}

// UnknownMessage is logged for input that matches no command.
func UnknownMessage(cmd string) string {
	return fmt.Sprintf("Unknown command: %s. Type 'help' for options.", cmd)
}

// Markdown renders the command table for documentation output.
func Markdown() string {
	var sb strings.Builder
	sb.WriteString("## Console Commands\n\n")
	sb.WriteString("| Command | Description |\n")
	sb.WriteString("|---------|-------------|\n")
	for _, c := range CommandRegistry {
		sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", c.Name, c.Description))
	}
	sb.WriteString("\nInput is trimmed and lowercased before matching. ")
	sb.WriteString("Anything else is reported as an unknown command.\n")
	return sb.String()
}
