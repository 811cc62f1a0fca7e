package console

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"
)

// MemoryTheme is a Theme that only remembers the selection. Render surfaces
// read it back from state snapshots and restyle themselves.
type MemoryTheme struct {
	mu    sync.Mutex
	theme string
}

// NewMemoryTheme starts at theme, defaulting to dark.
func NewMemoryTheme(theme string) *MemoryTheme {
	if theme != ThemeLight {
		theme = ThemeDark
	}
	return &MemoryTheme{theme: theme}
}

func (t *MemoryTheme) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme
}

func (t *MemoryTheme) Set(theme string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.theme = theme
}

// SystemLinker opens URLs with the platform's default handler.
type SystemLinker struct{}

// OpenExternal starts the opener and does not wait for it.
func (SystemLinker) OpenExternal(url string) error {
	name, args := openerCommand(runtime.GOOS, url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openerCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// DiscardLinker records nothing and never fails.
type DiscardLinker struct{}

func (DiscardLinker) OpenExternal(string) error { return nil }
