// Package logging provides config-driven categorized file-based logging for neuralterm.
// Logs are written to <workspace>/.neuralterm/logs/ with separate files per category.
// Logging is controlled by debug_mode - when false, every category logger is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // State lifecycle, boot sequence
	CategoryEntropy Category = "entropy" // Scheduler ticks, resets
	CategoryConsole Category = "console" // Command dispatch, collaborators
	CategoryScroll  Category = "scroll"  // Scroll instrumentation
	CategoryUI      Category = "ui"      // Terminal render surface
	CategoryConfig  Category = "config"  // Config load and hot reload
)

// Config mirrors config.LoggingConfig to avoid circular imports.
type Config struct {
	DebugMode  bool
	Level      string
	JSONFormat bool
	Categories map[string]bool
}

var (
	loggers    = make(map[Category]*zap.SugaredLogger)
	files      []*os.File
	loggersMu  sync.RWMutex
	logsDir    string
	config     Config
	configMu   sync.RWMutex
	instanceID string
	nop        = zap.NewNop().Sugar()
)

// Initialize sets up the logging directory for the given workspace.
// Calling it again closes the previous category files first.
func Initialize(workspace string, cfg Config) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}
	Close()

	configMu.Lock()
	config = cfg
	instanceID = uuid.NewString()
	configMu.Unlock()

	if !cfg.DebugMode {
		return nil
	}

	dir := filepath.Join(workspace, ".neuralterm", "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	loggersMu.Lock()
	logsDir = dir
	loggersMu.Unlock()

	boot := Get(CategoryBoot)
	boot.Infow("logging initialized", "workspace", workspace, "logs_dir", dir, "level", cfg.Level)
	return nil
}

// Close flushes and closes every category file. Safe to call when nothing was opened.
func Close() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		_ = l.Sync()
	}
	for _, f := range files {
		_ = f.Close()
	}
	loggers = make(map[Category]*zap.SugaredLogger)
	files = nil
	logsDir = ""
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// InstanceID identifies this running instance in every log line.
func InstanceID() string {
	configMu.RLock()
	defer configMu.RUnlock()
	return instanceID
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *zap.SugaredLogger {
	if !IsCategoryEnabled(category) {
		return nop
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	dir := logsDir
	loggersMu.RUnlock()

	if dir == "" {
		return nop
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return nop
	}

	l := zap.New(zapcore.NewCore(encoder(), zapcore.AddSync(file), level())).
		Named(string(category)).
		With(zap.String("instance", InstanceID())).
		Sugar()
	loggers[category] = l
	files = append(files, file)
	return l
}

func encoder() zapcore.Encoder {
	configMu.RLock()
	jsonFormat := config.JSONFormat
	configMu.RUnlock()

	if jsonFormat {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return zapcore.NewConsoleEncoder(ec)
}

func level() zapcore.Level {
	configMu.RLock()
	defer configMu.RUnlock()
	return ParseLevel(config.Level)
}

// ParseLevel maps a config level string onto a zap level, defaulting to info.
func ParseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}

// Entropy logs to the entropy category at debug level.
func Entropy(format string, args ...interface{}) {
	Get(CategoryEntropy).Debugf(format, args...)
}
