package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/scroll"
	"github.com/wethinkt/go-daybook/internal/stream"
)

// testNow is "today" for every tui test.
var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local)

const (
	testToday     = "2026-10-19"
	testYesterday = "2026-10-18"
)

type fakeJournal struct {
	mu      sync.Mutex
	entries map[string][]journal.Entry
	seq     int
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{entries: make(map[string][]journal.Entry)}
}

// fill adds n entries of lines lines each to day, with IDs e1..en.
func (j *fakeJournal) fill(day string, n, lines int) {
	for i := 1; i <= n; i++ {
		var b strings.Builder
		for l := 1; l <= lines; l++ {
			fmt.Fprintf(&b, "entry %d line %d\n", i, l)
		}
		j.entries[day] = append(j.entries[day], journal.Entry{
			ID:        fmt.Sprintf("e%d", i),
			Day:       day,
			Role:      journal.RoleAuthor,
			Text:      strings.TrimRight(b.String(), "\n"),
			CreatedAt: testNow.Add(time.Duration(i) * time.Minute),
		})
	}
}

func (j *fakeJournal) Days(ctx context.Context) ([]journal.DaySummary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []journal.DaySummary
	for day, es := range j.entries {
		out = append(out, journal.DaySummary{Day: day, Count: len(es), LastAt: es[len(es)-1].CreatedAt})
	}
	return out, nil
}

func (j *fakeJournal) Entries(ctx context.Context, day string) ([]journal.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.Entry(nil), j.entries[day]...), nil
}

func (j *fakeJournal) Append(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if e.ID == "" {
		j.seq++
		e.ID = fmt.Sprintf("new%d", j.seq)
	}
	j.entries[e.Day] = append(j.entries[e.Day], e)
	return e, nil
}

func (j *fakeJournal) byRole(day string, role journal.Role) []journal.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []journal.Entry
	for _, e := range j.entries[day] {
		if e.Role == role {
			out = append(out, e)
		}
	}
	return out
}

// fakeResponder replies with a fixed list of chunks and closes the stream.
type fakeResponder struct {
	chunks []stream.Chunk
	reqs   []stream.Request
}

func (r *fakeResponder) Respond(ctx context.Context, req stream.Request) (<-chan stream.Chunk, error) {
	r.reqs = append(r.reqs, req)
	ch := make(chan stream.Chunk, len(r.chunks))
	for _, c := range r.chunks {
		c.MessageID = req.MessageID
		ch <- c
	}
	close(ch)
	return ch, nil
}

func newTestShell(t *testing.T, j Journal, r stream.Responder) (*Shell, *scroll.Store) {
	t.Helper()
	store := scroll.NewStore(scroll.NewMemoryBackend(), "test")
	s := NewShell(ShellOptions{
		Journal:   j,
		Responder: r,
		Store:     store,
		Scroll:    scroll.Options{Threshold: 3, Proximity: 1, Noise: 0},
		Now:       func() time.Time { return testNow },
	})
	t.Cleanup(s.Close)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return s, store
}

// openTestDay opens day through the shell and delivers the load, the size
// and every block render. Frames are not flushed.
func openTestDay(t *testing.T, s *Shell, day, target string) *DayPage {
	t.Helper()
	_, cmd := s.Update(OpenDayMsg{Day: day, Target: target})
	page, ok := s.topDay()
	if !ok || page.Day() != day {
		t.Fatalf("expected day page %s on top", day)
	}
	for _, msg := range runAllCmdMessages(cmd) {
		switch msg.(type) {
		case tea.WindowSizeMsg, dayLoadedMsg:
			s.Update(msg)
		}
	}
	renderAll(s, page)
	return page
}

// renderAll finishes every pending block render with the block's text.
func renderAll(s *Shell, page *DayPage) {
	for _, b := range page.feed.Pending() {
		s.Update(blockRenderedMsg{day: page.Day(), id: b.ID, width: page.renderWidth, output: b.Text})
	}
}

// pump feeds the day messages produced by cmd back into page until none
// are left.
func pump(page *DayPage, cmd tea.Cmd) {
	queue := runAllCmdMessages(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(dayMsg); !ok {
			continue
		}
		if m, ok := msg.(blockRenderedMsg); ok {
			if b, found := page.feed.Get(m.id); found {
				m.output = b.Text
			}
			msg = m
		}
		_, next := page.Update(msg)
		queue = append(queue, runAllCmdMessages(next)...)
	}
}

func maxTop(page *DayPage) int {
	return max(page.vp.TotalLineCount()-page.vp.Height(), 0)
}

func keyPress(text string) tea.KeyPressMsg {
	r := []rune(text)
	return tea.KeyPressMsg{Code: r[0], Text: text}
}
