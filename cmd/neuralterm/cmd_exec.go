package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"neuralterm/cmd/neuralterm/ui"
	"neuralterm/internal/config"
	"neuralterm/internal/console"
	"neuralterm/internal/system"
)

var openLinks bool

// execCmd runs console lines without the interactive terminal
var execCmd = &cobra.Command{
	Use:   "exec [lines...]",
	Short: "Run console commands and print the resulting log",
	Long: `Boots the system state with the console open, submits each argument as
one console line, prints the log stream and tears the state down.

Example:
  neuralterm exec help blueprint xyz`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().BoolVar(&openLinks, "open-links", false, "Let 'repo' open the browser")
}

// newBatchState boots a state for one-shot commands. The scripted boot
// sequence is skipped so output only reflects what the command did.
func newBatchState(cfg *config.Config, mutate func(*system.Options)) *system.State {
	opts := system.OptionsFromConfig(cfg)
	opts.BootMessages = []string{}
	opts.Theme = console.NewMemoryTheme(ui.ResolveThemeName(cfg.UI.Theme))
	if mutate != nil {
		mutate(&opts)
	}
	state := system.New(opts)
	state.Init(context.Background())
	return state
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	state := newBatchState(cfg, func(o *system.Options) {
		o.ConsoleOpen = true
		if openLinks {
			o.Linker = console.SystemLinker{}
		}
	})
	defer state.Teardown()

	for _, line := range args {
		kind := state.Submit(line)
		logger.Debug("Submitted console line",
			zap.String("line", line),
			zap.String("kind", kind.String()))
	}

	printLines(cmd.OutOrStdout(), state.Snapshot().Lines())
	return nil
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
