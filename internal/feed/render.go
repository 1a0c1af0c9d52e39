package feed

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// Renderer turns block markdown into terminal output. The glamour renderer
// is rebuilt only when the width or style changes.
type Renderer struct {
	mu       sync.Mutex
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewRenderer creates a renderer using a glamour standard style such as
// "dark" or "light".
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = "dark"
	}
	return &Renderer{style: style}
}

// SetStyle switches the glamour style.
func (r *Renderer) SetStyle(style string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if style != "" && style != r.style {
		r.style = style
		r.renderer = nil
	}
}

// Render renders markdown wrapped to width. It falls back to the plain
// text when glamour fails.
func (r *Renderer) Render(text string, width int) string {
	width = max(20, width)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renderer == nil || r.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			tuilog.Log.WarnOnce("feed.renderer", "Renderer: glamour unavailable", "error", err)
			return text
		}
		r.renderer = tr
		r.width = width
	}

	out, err := r.renderer.Render(text)
	if err != nil {
		tuilog.Log.Debug("Renderer: render failed", "error", err)
		return text
	}
	return strings.Trim(out, "\n")
}
