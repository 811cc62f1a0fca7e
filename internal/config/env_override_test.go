package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("NEURALTERM_TICK sets tick period", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEURALTERM_TICK", "1s")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, time.Second, cfg.GetTickPeriod())
	})

	t.Run("NEURALTERM_THEME is lowercased", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEURALTERM_THEME", "LIGHT")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "light", cfg.UI.Theme)
	})

	t.Run("NEURALTERM_REPO_URL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEURALTERM_REPO_URL", "https://example.org")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "https://example.org", cfg.Console.RepoURL)
	})

	t.Run("NEURALTERM_DEBUG parses bools", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEURALTERM_DEBUG", "true")
		t.Setenv("NEURALTERM_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("NEURALTERM_DEBUG garbage is ignored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEURALTERM_DEBUG", "sometimes")

		cfg := DefaultConfig()
		cfg.Logging.DebugMode = true
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("env beats file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEURALTERM_TICK", "2s")

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("entropy:\n  tick_period: 9s\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.GetTickPeriod())
	})

	t.Run("bad env value is rejected without a file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEURALTERM_THEME", "blue")

		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "ui.theme")
	})

	t.Run("bad env value is rejected with a file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEURALTERM_THEME", "blue")

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, DefaultConfig().Save(path))

		_, err := Load(path)
		assert.ErrorContains(t, err, "ui.theme")
	})
}
