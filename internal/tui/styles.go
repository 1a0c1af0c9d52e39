package tui

import (
	"sync"

	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-daybook/internal/tui/theme"
)

// Styles holds all the computed lipgloss styles for the TUI.
type Styles struct {
	Header    lipgloss.Style
	Brand     lipgloss.Style
	Crumb     lipgloss.Style
	StatusBar lipgloss.Style

	// Feed blocks
	EntryBlock lipgloss.Style
	ReplyBlock lipgloss.Style
	EntryLabel lipgloss.Style
	ReplyLabel lipgloss.Style
	Highlight  lipgloss.Style
	Streaming  lipgloss.Style
	Meta       lipgloss.Style

	FollowButton lipgloss.Style
	Composer     lipgloss.Style
	Help         lipgloss.Style
	Error        lipgloss.Style
}

var (
	stylesMu sync.Mutex
	styles   *Styles
)

// GetStyles returns the current styles, building them from the theme on
// first use.
func GetStyles() *Styles {
	stylesMu.Lock()
	defer stylesMu.Unlock()
	if styles == nil {
		s := buildStyles(theme.Current())
		styles = &s
	}
	return styles
}

// ReloadStyles switches to the named theme and rebuilds the styles.
func ReloadStyles(name string) *Styles {
	t, _ := theme.Use(name)
	s := buildStyles(t)
	stylesMu.Lock()
	styles = &s
	stylesMu.Unlock()
	return &s
}

// applyStyle applies a theme.Style to a lipgloss.Style builder.
func applyStyle(s lipgloss.Style, ts theme.Style) lipgloss.Style {
	if ts.Fg != "" {
		s = s.Foreground(lipgloss.Color(ts.Fg))
	}
	if ts.Bg != "" {
		s = s.Background(lipgloss.Color(ts.Bg))
	}
	if ts.Bold {
		s = s.Bold(true)
	}
	if ts.Italic {
		s = s.Italic(true)
	}
	if ts.Underline {
		s = s.Underline(true)
	}
	return s
}

// buildStyles creates Styles from a Theme.
func buildStyles(t theme.Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.TextSecondary.Fg)),
		Brand: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.GetAccent())).
			Bold(true),
		Crumb: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.TextPrimary.Fg)).
			Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.TextMuted.Fg)),

		EntryBlock: applyStyle(lipgloss.NewStyle(), t.EntryBlock).
			PaddingLeft(1),
		ReplyBlock: applyStyle(lipgloss.NewStyle(), t.ReplyBlock).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.GetBorderInactive())),
		EntryLabel: applyStyle(lipgloss.NewStyle(), t.EntryLabel),
		ReplyLabel: applyStyle(lipgloss.NewStyle(), t.ReplyLabel),
		Highlight:  applyStyle(lipgloss.NewStyle(), t.Highlight),
		Streaming: applyStyle(lipgloss.NewStyle(), t.ReplyBlock).
			PaddingLeft(1).
			Italic(true),
		Meta: applyStyle(lipgloss.NewStyle(), t.TextMuted),

		FollowButton: applyStyle(lipgloss.NewStyle(), t.FollowButton),
		Composer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.GetBorderActive())).
			Padding(0, 1),
		Help:  applyStyle(lipgloss.NewStyle(), t.TextMuted),
		Error: applyStyle(lipgloss.NewStyle(), t.Error),
	}
}
