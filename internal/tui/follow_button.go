package tui

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/scroll"
)

// followButton is the one-line "jump to latest" control under the feed.
// It manages its own visibility, so the coordinator binds a
// scroll.DelegatingToggle for it.
type followButton struct {
	id        string
	direction scroll.Direction
	visible   bool

	// Placement, in screen cells, refreshed by the page on every resize.
	row       int
	feedRight int
}

func newFollowButton(viewportID string) *followButton {
	return &followButton{
		id:        viewportID + "-follow",
		direction: scroll.Down,
	}
}

func (b *followButton) ID() string { return b.id }

func (b *followButton) SetVisible(v bool) { b.visible = v }

func (b *followButton) label() string {
	if b.direction == scroll.Up {
		return "↑ " + i18n.T("tui.follow.labelUp", "Jump to newest")
	}
	return "↓ " + i18n.T("tui.follow.label", "Jump to latest")
}

// Geometry implements scroll.FollowButton. The threshold is left to the
// coordinator's configured default.
func (b *followButton) Geometry() scroll.ButtonGeometry {
	w := ansi.StringWidth(b.render())
	return scroll.ButtonGeometry{
		Direction: b.direction,
		Rect: scroll.Rect{
			X:      max(b.feedRight-w, 0),
			Y:      b.row,
			Width:  w,
			Height: 1,
		},
	}
}

func (b *followButton) render() string {
	return fmt.Sprintf(" %s ", b.label())
}

// View renders the button right-aligned to the feed column, offset from
// the container's right edge. A hidden button keeps its line blank so the
// layout does not jump.
func (b *followButton) View(width int, m scroll.EdgeMetrics) string {
	if !b.visible || width <= 0 {
		return ""
	}
	s := GetStyles()
	btn := s.FollowButton.Render(b.render())
	avail := max(width-m.Offset, 0)
	if ansi.StringWidth(btn) > avail {
		btn = ansi.Truncate(btn, avail, "…")
	}
	return lipgloss.PlaceHorizontal(avail, lipgloss.Right, btn)
}
