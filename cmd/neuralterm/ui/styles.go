// Package ui provides the visual styling for the neuralterm terminal, with
// light/dark palettes and the entropy perturbation effects.
package ui

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"neuralterm/internal/console"
	"neuralterm/internal/entropy"
)

var (
	// Light mode
	LightBackground = lipgloss.Color("#f4f5f6")
	LightForeground = lipgloss.Color("#101F38")
	LightPrimary    = lipgloss.Color("#101F38")
	LightAccent     = lipgloss.Color("#8BC34A")
	LightMuted      = lipgloss.Color("#8a94a3")
	LightBorder     = lipgloss.Color("#dce0e5")

	// Dark mode
	DarkBackground = lipgloss.Color("#141d2b")
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#8BC34A")
	DarkAccent     = lipgloss.Color("#2196F3")
	DarkMuted      = lipgloss.Color("#6b7a92")
	DarkBorder     = lipgloss.Color("#2a3850")

	// Same in both modes
	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
	Blueprint   = lipgloss.Color("#4fc3f7")
)

// Theme holds one color scheme.
type Theme struct {
	Name       string
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light palette.
func LightTheme() Theme {
	return Theme{
		Name:       console.ThemeLight,
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark palette.
func DarkTheme() Theme {
	return Theme{
		Name:       console.ThemeDark,
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeByName maps a console theme name onto a palette. Unknown names are dark.
func ThemeByName(name string) Theme {
	if name == console.ThemeLight {
		return LightTheme()
	}
	return DarkTheme()
}

// DetectTheme guesses the palette from COLORFGBG, then NEURALTERM_DARK_MODE.
// Defaults to dark.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		// "foreground;background"; 0-6 and 8 are dark backgrounds
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
				return LightTheme()
			}
		}
	}
	if os.Getenv("NEURALTERM_DARK_MODE") == "0" {
		return LightTheme()
	}
	return DarkTheme()
}

// ResolveThemeName turns a configured preference ("auto", "light", "dark")
// into a concrete console theme name.
func ResolveThemeName(pref string) string {
	switch strings.ToLower(strings.TrimSpace(pref)) {
	case console.ThemeLight:
		return console.ThemeLight
	case console.ThemeDark:
		return console.ThemeDark
	}
	return DetectTheme().Name
}

// Styles holds the styled components of the terminal.
type Styles struct {
	Theme Theme

	Header          lipgloss.Style
	HeaderBlueprint lipgloss.Style
	Footer          lipgloss.Style
	Log             lipgloss.Style
	Timestamp       lipgloss.Style
	Prompt          lipgloss.Style
	Gauge           lipgloss.Style
	Critical        lipgloss.Style
	Frame           lipgloss.Style
	FrameBlueprint  lipgloss.Style

	// Plain output (status tables)
	Title lipgloss.Style
	Cell  lipgloss.Style
	Muted lipgloss.Style
}

// NewStyles creates Styles for theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.Background).
			Padding(0, 1).
			Bold(true),

		HeaderBlueprint: lipgloss.NewStyle().
			Background(Blueprint).
			Foreground(lipgloss.Color("#0b1a2e")).
			Padding(0, 1).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Log: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Timestamp: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Gauge: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Critical: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		FrameBlueprint: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Blueprint),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Cell: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// PixelsPerCell converts perturbation offsets into terminal columns/rows.
const PixelsPerCell = 5.0

// OffsetCells converts a pixel offset into a whole number of cells.
func OffsetCells(px float64) int {
	return int(math.Round(math.Abs(px) / PixelsPerCell))
}

// Perturb applies the perturbation to a rendered block. The horizontal offset
// becomes padding and any blur renders faint. A rotation of a degree or more
// italicizes. The vertical offset is only reported in the gauge line, since
// padding rows would push the prompt off screen.
func Perturb(base lipgloss.Style, p entropy.Perturbation) lipgloss.Style {
	style := base
	if p.OffsetX > 0 {
		style = style.PaddingLeft(OffsetCells(p.OffsetX))
	} else {
		style = style.PaddingRight(OffsetCells(p.OffsetX))
	}
	if p.BlurPx > 0 {
		style = style.Faint(true)
	}
	if math.Abs(p.RotationDeg) >= 1 {
		style = style.Italic(true)
	}
	return style
}
