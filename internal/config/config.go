package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all neuralterm configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Entropy EntropyConfig `yaml:"entropy"`
	Logs    LogsConfig    `yaml:"logs"`
	Scroll  ScrollConfig  `yaml:"scroll"`
	Boot    BootConfig    `yaml:"boot"`
	Console ConsoleConfig `yaml:"console"`
	UI      UIConfig      `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// EntropyConfig configures the decay counter and its scheduler.
type EntropyConfig struct {
	TickPeriod  string  `yaml:"tick_period"`
	Max         int     `yaml:"max"` // at most 100
	BlurStart   int     `yaml:"blur_start"`
	BlurDivisor float64 `yaml:"blur_divisor"`
	Seed        int64   `yaml:"seed"` // 0 = time-seeded
}

// LogsConfig configures the console log ring.
type LogsConfig struct {
	Capacity int `yaml:"capacity"`
}

// ScrollConfig configures scroll instrumentation.
type ScrollConfig struct {
	Threshold  int `yaml:"threshold"`   // offset units, compared against the last logged offset
	LineHeight int `yaml:"line_height"` // offset units per terminal line
}

// BootConfig configures the scripted startup sequence.
type BootConfig struct {
	Delay    string   `yaml:"delay"`
	Messages []string `yaml:"messages"`
}

// ConsoleConfig configures the command console.
type ConsoleConfig struct {
	RepoURL   string `yaml:"repo_url"`
	StartOpen bool   `yaml:"start_open"`
}

// UIConfig configures the terminal render surface.
type UIConfig struct {
	Theme string `yaml:"theme"` // light, dark, auto
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "neuralterm",
		Version: "0.3.0",

		Entropy: EntropyConfig{
			TickPeriod:  "5s",
			Max:         100,
			BlurStart:   50,
			BlurDivisor: 35,
		},

		Logs: LogsConfig{
			Capacity: 50,
		},

		Scroll: ScrollConfig{
			Threshold:  500,
			LineHeight: 20,
		},

		Boot: BootConfig{
			Delay: "100ms",
			Messages: []string{
				"OpenSyntaxHQ System Initialized...",
				"Loading modules... [OK]",
			},
		},

		Console: ConsoleConfig{
			RepoURL: "https://github.com/OpenSyntaxHQ",
		},

		UI: UIConfig{
			Theme: "auto",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

const maxEntropy = 100

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Logs.Capacity < 0 {
		return fmt.Errorf("logs.capacity must not be negative, got %d", c.Logs.Capacity)
	}
	if c.Entropy.Max < 0 || c.Entropy.Max > maxEntropy {
		return fmt.Errorf("entropy.max must be between 0 and %d, got %d", maxEntropy, c.Entropy.Max)
	}
	if c.Entropy.BlurDivisor < 0 {
		return fmt.Errorf("entropy.blur_divisor must not be negative, got %v", c.Entropy.BlurDivisor)
	}
	switch c.UI.Theme {
	case "", "auto", "light", "dark":
	default:
		return fmt.Errorf("ui.theme must be light, dark or auto, got %q", c.UI.Theme)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NEURALTERM_TICK"); v != "" {
		c.Entropy.TickPeriod = v
	}
	if v := os.Getenv("NEURALTERM_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
	if v := os.Getenv("NEURALTERM_REPO_URL"); v != "" {
		c.Console.RepoURL = v
	}
	if v := os.Getenv("NEURALTERM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NEURALTERM_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
}

// GetTickPeriod returns the entropy tick period as a duration.
func (c *Config) GetTickPeriod() time.Duration {
	d, err := time.ParseDuration(c.Entropy.TickPeriod)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// GetBootDelay returns the boot sequence delay as a duration.
func (c *Config) GetBootDelay() time.Duration {
	d, err := time.ParseDuration(c.Boot.Delay)
	if err != nil || d < 0 {
		return 100 * time.Millisecond
	}
	return d
}
