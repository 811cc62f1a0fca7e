package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"neuralterm/internal/console"
)

var plainCommands bool

// commandsCmd prints the console command reference
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Show the console command reference",
	RunE:  showCommands,
}

func init() {
	commandsCmd.Flags().BoolVar(&plainCommands, "plain", false, "Print raw markdown")
}

func showCommands(cmd *cobra.Command, args []string) error {
	md := console.Markdown()
	out := cmd.OutOrStdout()
	if plainCommands {
		fmt.Fprint(out, md)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render command reference: %w", err)
	}
	fmt.Fprint(out, rendered)
	return nil
}
