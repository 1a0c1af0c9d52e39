package tui

import (
	"fmt"
	"sync/atomic"

	"charm.land/bubbles/v2/viewport"

	"github.com/wethinkt/go-daybook/internal/scroll"
)

var viewportSeq atomic.Uint64

// feedViewport exposes a bubbles viewport to the scroll coordinator.
// The day page owns the viewport.Model; the adapter only points at it.
type feedViewport struct {
	id        string
	model     *viewport.Model
	listeners map[int]func(scroll.ScrollEvent)
	nextID    int
}

func newFeedViewport(day string, model *viewport.Model) *feedViewport {
	return &feedViewport{
		id:        fmt.Sprintf("feed-%s-%d", day, viewportSeq.Add(1)),
		model:     model,
		listeners: make(map[int]func(scroll.ScrollEvent)),
	}
}

func (v *feedViewport) ID() string { return v.id }

func (v *feedViewport) ScrollTop() int { return v.model.YOffset() }

func (v *feedViewport) SetScrollTop(top int) { v.model.SetYOffset(top) }

func (v *feedViewport) ScrollHeight() int { return v.model.TotalLineCount() }

func (v *feedViewport) ClientHeight() int { return v.model.Height() }

func (v *feedViewport) OnScroll(fn func(scroll.ScrollEvent)) func() {
	v.nextID++
	id := v.nextID
	v.listeners[id] = fn
	return func() { delete(v.listeners, id) }
}

// notify reports a user scroll to every listener.
func (v *feedViewport) notify(kind scroll.InputKind) {
	for _, fn := range v.listeners {
		fn(scroll.ScrollEvent{Kind: kind})
	}
}

// listening reports whether the coordinator is bound to this viewport.
func (v *feedViewport) listening() bool {
	return len(v.listeners) > 0
}
