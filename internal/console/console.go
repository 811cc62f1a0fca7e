package console

import (
	"fmt"

	"neuralterm/internal/logging"
)

// Theme names understood by the theme collaborator.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultRepoURL is opened by the repo command.
const DefaultRepoURL = "https://github.com/OpenSyntaxHQ"

// Log is the ring the console echoes into and clears.
type Log interface {
	Append(message string)
	Clear()
}

// ModeToggler flips blueprint mode; it logs its own transition.
type ModeToggler interface {
	Toggle() bool
}

// Theme is the external theme collaborator.
type Theme interface {
	Current() string
	Set(theme string)
}

// Linker opens external URLs. Fire-and-forget: errors are only logged.
type Linker interface {
	OpenExternal(url string) error
}

// Console is the two-state (closed/open) interpreter. Not safe for
// concurrent use; callers serialize.
type Console struct {
	open    bool
	log     Log
	mode    ModeToggler
	theme   Theme
	links   Linker
	repoURL string
}

// New creates a closed console. repoURL falls back to DefaultRepoURL.
func New(log Log, mode ModeToggler, theme Theme, links Linker, repoURL string) *Console {
	if repoURL == "" {
		repoURL = DefaultRepoURL
	}
	return &Console{
		log:     log,
		mode:    mode,
		theme:   theme,
		links:   links,
		repoURL: repoURL,
	}
}

// IsOpen reports whether input is accepted.
func (c *Console) IsOpen() bool { return c.open }

// Open starts accepting input.
func (c *Console) Open() { c.open = true }

// Close stops accepting input.
func (c *Console) Close() { c.open = false }

// ToggleOpen flips between open and closed and returns the new state.
func (c *Console) ToggleOpen() bool {
	c.open = !c.open
	return c.open
}

// RepoURL returns the link opened by the repo command.
func (c *Console) RepoURL() string { return c.repoURL }

// SetRepoURL replaces the repo link; empty values are ignored.
func (c *Console) SetRepoURL(url string) {
	if url != "" {
		c.repoURL = url
	}
}

// Submit runs one input line. Closed consoles and empty input do nothing and
// return KindNone. Every branch is total: collaborator failures are logged to
// the process log, never surfaced.
func (c *Console) Submit(line string) Kind {
	if !c.open {
		return KindNone
	}
	cmd, kind := Parse(line)
	if kind == KindNone {
		return KindNone
	}

	c.log.Append("$ " + cmd)
	logging.Get(logging.CategoryConsole).Debugw("dispatch", "command", cmd, "kind", kind.String())

	switch kind {
	case KindHelp:
		for _, l := range HelpLines() {
			c.log.Append(l)
		}

	case KindBlueprint:
		c.mode.Toggle()

	case KindClear:
		c.log.Clear()

	case KindTheme:
		next := ThemeDark
		if c.theme.Current() == ThemeDark {
			next = ThemeLight
		}
		c.theme.Set(next)
		c.log.Append(fmt.Sprintf("Theme toggled to %s.", next))

	case KindRepo:
		if err := c.links.OpenExternal(c.repoURL); err != nil {
			logging.Get(logging.CategoryConsole).Warnw("open external failed", "url", c.repoURL, "error", err)
		}
		c.log.Append("Opening GitHub...")

	default:
		c.log.Append(UnknownMessage(cmd))
	}
	return kind
}
