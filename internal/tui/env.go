package tui

import (
	"context"
	"time"

	"github.com/wethinkt/go-daybook/internal/feed"
	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/scroll"
	"github.com/wethinkt/go-daybook/internal/stream"
)

// Journal is the part of the journal store the TUI uses.
type Journal interface {
	Days(ctx context.Context) ([]journal.DaySummary, error)
	Entries(ctx context.Context, day string) ([]journal.Entry, error)
	Append(ctx context.Context, e journal.Entry) (journal.Entry, error)
}

// Env is shared by every page of one program. The shell builds it; pages
// only read it.
type Env struct {
	Journal   Journal
	Responder stream.Responder // nil disables replies
	Renderer  *feed.Renderer

	Bus    *scroll.Bus
	Stream *stream.Controller
	Coord  *scroll.Coordinator

	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) today() string {
	return journal.Today(e.now())
}

// OpenDayMsg asks the shell to show a day, optionally scrolled to the
// entry Target.
type OpenDayMsg struct {
	Day    string
	Target string
}

// dayMsg is implemented by messages addressed to the page of one day. The
// shell delivers them even when that page is not on top.
type dayMsg interface {
	dayOf() string
}

type dayLoadedMsg struct {
	day     string
	entries []journal.Entry
	err     error
}

type entrySavedMsg struct {
	day   string
	entry journal.Entry
	err   error
}

type replySavedMsg struct {
	day string
	id  string
	err error
}

type streamOpenedMsg struct {
	day string
	id  string
	ch  <-chan stream.Chunk
	err error
}

type streamChunkMsg struct {
	day   string
	id    string
	chunk stream.Chunk
	ch    <-chan stream.Chunk
}

type streamClosedMsg struct {
	day string
	id  string
}

type blockRenderedMsg struct {
	day    string
	id     string
	width  int
	output string
}

type highlightDoneMsg struct {
	day string
	seq int
}

func (m dayLoadedMsg) dayOf() string     { return m.day }
func (m entrySavedMsg) dayOf() string    { return m.day }
func (m replySavedMsg) dayOf() string    { return m.day }
func (m streamOpenedMsg) dayOf() string  { return m.day }
func (m streamChunkMsg) dayOf() string   { return m.day }
func (m streamClosedMsg) dayOf() string  { return m.day }
func (m blockRenderedMsg) dayOf() string { return m.day }
func (m highlightDoneMsg) dayOf() string { return m.day }
