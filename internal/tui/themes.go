package tui

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for the chat interface
type Theme struct {
	Name        string
	Description string

	// Base colors
	Surface lipgloss.Color
	Border  lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Text colors
	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// DefaultThemeName is used when no theme is configured
const DefaultThemeName = "tokyonight"

var themes = map[string]Theme{
	"tokyonight": {
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",
		Surface:     lipgloss.Color("#24283b"),
		Border:      lipgloss.Color("#414868"),
		Primary:     lipgloss.Color("#7aa2f7"),
		Secondary:   lipgloss.Color("#9ece6a"),
		Accent:      lipgloss.Color("#bb9af7"),
		Warning:     lipgloss.Color("#e0af68"),
		Error:       lipgloss.Color("#f7768e"),
		Text:        lipgloss.Color("#c0caf5"),
		TextDim:     lipgloss.Color("#565f89"),
		TextMute:    lipgloss.Color("#3b4261"),
	},
	"catppuccin": {
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",
		Surface:     lipgloss.Color("#313244"),
		Border:      lipgloss.Color("#45475a"),
		Primary:     lipgloss.Color("#89b4fa"), // Blue
		Secondary:   lipgloss.Color("#a6e3a1"), // Green
		Accent:      lipgloss.Color("#cba6f7"), // Mauve
		Warning:     lipgloss.Color("#f9e2af"), // Yellow
		Error:       lipgloss.Color("#f38ba8"), // Red
		Text:        lipgloss.Color("#cdd6f4"),
		TextDim:     lipgloss.Color("#6c7086"),
		TextMute:    lipgloss.Color("#45475a"),
	},
	"nord": {
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",
		Surface:     lipgloss.Color("#3b4252"),
		Border:      lipgloss.Color("#4c566a"),
		Primary:     lipgloss.Color("#88c0d0"), // Frost
		Secondary:   lipgloss.Color("#a3be8c"),
		Accent:      lipgloss.Color("#b48ead"),
		Warning:     lipgloss.Color("#ebcb8b"),
		Error:       lipgloss.Color("#bf616a"),
		Text:        lipgloss.Color("#eceff4"),
		TextDim:     lipgloss.Color("#7b88a1"),
		TextMute:    lipgloss.Color("#4c566a"),
	},
	"dracula": {
		Name:        "dracula",
		Description: "Dracula - Dark theme with vibrant colors",
		Surface:     lipgloss.Color("#44475a"),
		Border:      lipgloss.Color("#6272a4"),
		Primary:     lipgloss.Color("#8be9fd"),
		Secondary:   lipgloss.Color("#50fa7b"),
		Accent:      lipgloss.Color("#ff79c6"),
		Warning:     lipgloss.Color("#f1fa8c"),
		Error:       lipgloss.Color("#ff5555"),
		Text:        lipgloss.Color("#f8f8f2"),
		TextDim:     lipgloss.Color("#6272a4"),
		TextMute:    lipgloss.Color("#44475a"),
	},
	"gruvbox": {
		Name:        "gruvbox",
		Description: "Gruvbox - Retro groove with warm earthy tones",
		Surface:     lipgloss.Color("#3c3836"),
		Border:      lipgloss.Color("#504945"),
		Primary:     lipgloss.Color("#83a598"),
		Secondary:   lipgloss.Color("#b8bb26"),
		Accent:      lipgloss.Color("#d3869b"),
		Warning:     lipgloss.Color("#fabd2f"),
		Error:       lipgloss.Color("#fb4934"),
		Text:        lipgloss.Color("#ebdbb2"),
		TextDim:     lipgloss.Color("#928374"),
		TextMute:    lipgloss.Color("#665c54"),
	},
}

var (
	themeMu      sync.RWMutex
	currentTheme = themes[DefaultThemeName]
)

// CurrentTheme returns the active theme
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// ThemeByName looks up a theme, ignoring case
func ThemeByName(name string) (Theme, bool) {
	theme, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return theme, ok
}

// SetTheme activates the named theme and rebuilds styles.
// An empty name selects the default theme.
func SetTheme(name string) error {
	if strings.TrimSpace(name) == "" {
		name = DefaultThemeName
	}
	theme, ok := ThemeByName(name)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}

	themeMu.Lock()
	currentTheme = theme
	themeMu.Unlock()

	UpdateTheme()
	return nil
}

// ThemeNames returns the sorted names of all built-in themes
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
