package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"neuralterm/internal/config"
	"neuralterm/internal/logging"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "neuralterm",
	Short: "neuralterm - ambient system health terminal",
	Long: `neuralterm is a terminal that slowly decays.

An entropy counter rises on a timer and distorts the display; the console
accepts a handful of commands (help, blueprint, clear, theme, repo) and
every state change is written to a bounded log stream.

Run without arguments to start the interactive terminal.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Close()
	},
	RunE: runInteractive,
}

func init() {
	// Assigned here rather than in the literal: the hook refers to rootCmd.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// The interactive terminal owns stdout/stderr; it logs to files only.
		if cmd == rootCmd {
			logger = zap.NewNop()
			return nil
		}

		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.neuralterm/config.yaml)")

	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(entropyCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the absolute workspace directory.
func resolveWorkspace() (string, error) {
	if workspace != "" {
		return filepath.Abs(workspace)
	}
	return os.Getwd()
}

// resolveConfigPath returns --config or the workspace default.
func resolveConfigPath(ws string) string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(ws, ".neuralterm", "config.yaml")
}

// setup loads config and initializes category logging. The returned path is
// the config file that was (or would have been) read.
func setup() (*config.Config, string, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	path := resolveConfigPath(ws)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := cfg.Logging.ToLogging()
	if verbose {
		logCfg.DebugMode = true
		logCfg.Level = "debug"
	}
	if err := logging.Initialize(ws, logCfg); err != nil {
		return nil, "", fmt.Errorf("failed to initialize logging: %w", err)
	}
	if logger != nil {
		logger.Debug("Configuration loaded",
			zap.String("path", path),
			zap.String("instance", logging.InstanceID()))
	}
	return cfg, path, nil
}
