// Package theme provides theming support for the TUI.
package theme

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wethinkt/go-daybook/internal/config"
)

//go:embed themes/*.json
var embeddedThemes embed.FS

// Style defines colors and text attributes for a UI element.
type Style struct {
	Fg        string `json:"fg,omitempty"`
	Bg        string `json:"bg,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// Theme defines all styles used in the TUI.
type Theme struct {
	// Metadata
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// UI chrome
	Accent         string `json:"accent,omitempty"`
	BorderActive   string `json:"border_active,omitempty"`
	BorderInactive string `json:"border_inactive,omitempty"`

	TextPrimary   Style `json:"text_primary,omitempty"`
	TextSecondary Style `json:"text_secondary,omitempty"`
	TextMuted     Style `json:"text_muted,omitempty"`

	// Feed blocks
	EntryBlock Style `json:"entry_block,omitempty"`
	ReplyBlock Style `json:"reply_block,omitempty"`
	EntryLabel Style `json:"entry_label,omitempty"`
	ReplyLabel Style `json:"reply_label,omitempty"`
	Highlight  Style `json:"highlight,omitempty"` // deep-linked entry

	FollowButton Style `json:"follow_button,omitempty"`
	Error        Style `json:"error,omitempty"`
}

// DefaultTheme returns the default dark theme (embedded fallback).
func DefaultTheme() Theme {
	theme, _ := LoadEmbedded("dark")
	return theme
}

// LoadEmbedded loads a theme from the embedded themes.
func LoadEmbedded(name string) (Theme, error) {
	data, err := embeddedThemes.ReadFile("themes/" + name + ".json")
	if err != nil {
		return Theme{}, err
	}

	var theme Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// ListEmbedded returns the names of all embedded themes.
func ListEmbedded() []string {
	entries, err := embeddedThemes.ReadDir("themes")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return names
}

// ThemesDir returns the path to the user themes directory.
func ThemesDir() (string, error) {
	configDir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "themes"), nil
}

// LoadByName loads a theme by name, checking user themes first, then embedded.
// A user theme only needs to set the fields it changes.
func LoadByName(name string) (Theme, error) {
	themesDir, err := ThemesDir()
	if err == nil {
		userPath := filepath.Join(themesDir, name+".json")
		if data, err := os.ReadFile(userPath); err == nil {
			theme := DefaultTheme()
			if err := json.Unmarshal(data, &theme); err == nil {
				theme.Name = name
				return theme, nil
			}
		}
	}
	return LoadEmbedded(name)
}

var (
	mu      sync.Mutex
	current *Theme
)

// Current returns the active theme, loading the dark theme if none was set.
func Current() Theme {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		t := DefaultTheme()
		current = &t
	}
	return *current
}

// Use makes the named theme active. Unknown names fall back to dark.
func Use(name string) (Theme, error) {
	t, err := LoadByName(name)
	if err != nil {
		t = DefaultTheme()
	}
	mu.Lock()
	current = &t
	mu.Unlock()
	return t, err
}

// GlamourStyle returns the glamour standard style matching t.
func (t Theme) GlamourStyle() string {
	if t.Name == "light" {
		return "light"
	}
	return "dark"
}

// GetAccent returns the accent color, with fallback.
func (t Theme) GetAccent() string {
	if t.Accent != "" {
		return t.Accent
	}
	return "#7D56F4"
}

// GetBorderActive returns the active border color.
func (t Theme) GetBorderActive() string {
	if t.BorderActive != "" {
		return t.BorderActive
	}
	return t.GetAccent()
}

// GetBorderInactive returns the inactive border color.
func (t Theme) GetBorderInactive() string {
	if t.BorderInactive != "" {
		return t.BorderInactive
	}
	return "#444444"
}
