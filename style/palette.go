package style

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme names persisted in user preferences.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Palette groups the semantic colors of one theme.
type Palette struct {
	Text, Subtext, Faint    lipgloss.Color
	Accent, Secondary       lipgloss.Color
	Success, Warning, Error lipgloss.Color
	Border, ActiveBorder    lipgloss.Color
}

var (
	Dark = Palette{
		Text:         lipgloss.Color("#cdd6f4"),
		Subtext:      lipgloss.Color("#a6adc8"),
		Faint:        lipgloss.Color("#6c7086"),
		Accent:       lipgloss.Color("#cba6f7"),
		Secondary:    lipgloss.Color("#b4befe"),
		Success:      lipgloss.Color("#a6e3a1"),
		Warning:      lipgloss.Color("#f9e2af"),
		Error:        lipgloss.Color("#f38ba8"),
		Border:       lipgloss.Color("#313244"),
		ActiveBorder: lipgloss.Color("#cba6f7"),
	}

	Light = Palette{
		Text:         lipgloss.Color("#4c4f69"),
		Subtext:      lipgloss.Color("#6c6f85"),
		Faint:        lipgloss.Color("#9ca0b0"),
		Accent:       lipgloss.Color("#8839ef"),
		Secondary:    lipgloss.Color("#7287fd"),
		Success:      lipgloss.Color("#40a02b"),
		Warning:      lipgloss.Color("#df8e1d"),
		Error:        lipgloss.Color("#d20f39"),
		Border:       lipgloss.Color("#ccd0da"),
		ActiveBorder: lipgloss.Color("#8839ef"),
	}
)

var (
	mu      sync.RWMutex
	current = ThemeDark
)

// SetTheme switches the active palette. Unknown names fall back to dark.
func SetTheme(name string) {
	mu.Lock()
	defer mu.Unlock()

	if name != ThemeLight {
		name = ThemeDark
	}
	current = name
}

// Theme returns the active theme name.
func Theme() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Current returns the active palette.
func Current() Palette {
	if Theme() == ThemeLight {
		return Light
	}
	return Dark
}
