package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"neuralterm/cmd/neuralterm/terminal"
	"neuralterm/cmd/neuralterm/ui"
	"neuralterm/internal/config"
	"neuralterm/internal/console"
	"neuralterm/internal/logging"
	"neuralterm/internal/scroll"
	"neuralterm/internal/system"
)

// runInteractive starts the terminal UI and the config watcher as one group.
// Whichever stops first cancels the other; the state is torn down last.
func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, path, err := setup()
	if err != nil {
		return err
	}
	log := logging.Get(logging.CategoryBoot)

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	feed := scroll.NewFeed()
	opts := system.OptionsFromConfig(cfg)
	opts.ScrollSource = feed
	opts.Theme = console.NewMemoryTheme(ui.ResolveThemeName(cfg.UI.Theme))
	opts.Linker = console.SystemLinker{}
	state := system.New(opts)

	model := terminal.New(terminal.Options{
		State:      state,
		Feed:       feed,
		LineHeight: cfg.Scroll.LineHeight,
	})

	state.Init(ctx)
	defer state.Teardown()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return watchConfig(gctx, path, state)
	})

	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(model,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
			tea.WithContext(gctx),
		)
		final, err := p.Run()
		if m, ok := final.(terminal.Model); ok {
			m.Shutdown()
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		return nil
	})

	log.Infow("interactive session started", "config", path)
	err = g.Wait()
	log.Infow("interactive session ended", "error", err)
	return err
}

// watchConfig hot-applies config edits until ctx is done. A watcher that
// cannot start (missing config directory) is logged and skipped.
func watchConfig(ctx context.Context, path string, state *system.State) error {
	log := logging.Get(logging.CategoryConfig)

	w, err := config.NewWatcher(path, state.ApplyConfig)
	if err != nil {
		log.Warnw("config watcher unavailable", "error", err)
		return nil
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		log.Warnw("config hot reload disabled", "path", path, "error", err)
		return nil
	}
	<-ctx.Done()
	return nil
}
