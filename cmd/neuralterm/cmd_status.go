package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"neuralterm/cmd/neuralterm/ui"
	"neuralterm/internal/logging"
)

// statusCmd prints a snapshot of a freshly booted state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show neuralterm state and effective configuration",
	RunE:  showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, path, err := setup()
	if err != nil {
		return err
	}
	state := newBatchState(cfg, nil)
	defer state.Teardown()
	snap := state.Snapshot()

	styles := ui.NewStyles(ui.ThemeByName(snap.Theme))

	stateTable := ui.NewTable("State", "Field", "Value")
	stateTable.AddRow("header", snap.Header())
	stateTable.AddRow("entropy", fmt.Sprintf("%d/%d", snap.Entropy, cfg.Entropy.Max))
	stateTable.AddRow("blueprint", strconv.FormatBool(snap.Blueprint))
	stateTable.AddRow("theme", snap.Theme)
	stateTable.AddRow("console open", strconv.FormatBool(snap.ConsoleOpen))
	stateTable.AddRow("log lines", fmt.Sprintf("%d/%d", len(snap.Logs), cfg.Logs.Capacity))

	cfgTable := ui.NewTable("Configuration", "Key", "Value")
	cfgTable.AddRow("config file", path)
	cfgTable.AddRow("tick period", cfg.GetTickPeriod().String())
	cfgTable.AddRow("scroll threshold", strconv.Itoa(cfg.Scroll.Threshold))
	cfgTable.AddRow("repo url", cfg.Console.RepoURL)
	cfgTable.AddRow("debug logging", strconv.FormatBool(logging.IsDebugMode()))
	cfgTable.AddRow("instance", logging.InstanceID())

	out := cmd.OutOrStdout()
	fmt.Fprint(out, stateTable.View(styles))
	fmt.Fprintln(out)
	fmt.Fprint(out, cfgTable.View(styles))
	return nil
}
