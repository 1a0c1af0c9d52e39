package tui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/scroll"
	"github.com/wethinkt/go-daybook/internal/stream"
)

func TestDayPageOpensAtTopWithNothingSaved(t *testing.T) {
	j := newFakeJournal()
	j.fill(testYesterday, 6, 8)
	s, _ := newTestShell(t, j, nil)

	var completes []scroll.RestoreComplete
	s.env.Bus.RestoreComplete.Subscribe(func(ev scroll.RestoreComplete) {
		completes = append(completes, ev)
	})

	page := openTestDay(t, s, testYesterday, "")
	s.sched.Flush()

	if page.vp.TotalLineCount() <= page.vp.Height() {
		t.Fatalf("test content too short: %d lines in %d", page.vp.TotalLineCount(), page.vp.Height())
	}
	if got := page.vp.YOffset(); got != 0 {
		t.Fatalf("offset = %d, want 0", got)
	}
	if len(completes) != 1 || completes[0].Restored {
		t.Fatalf("expected one unrestored completion, got %+v", completes)
	}
	if s.env.Coord.AutoFollow() {
		t.Fatal("auto-follow should be off at the top of a long day")
	}
	// Still settling, so the button stays hidden.
	if page.button.visible {
		t.Fatal("follow button visible while settling")
	}
}

func TestDayPageRestoresSavedOffset(t *testing.T) {
	j := newFakeJournal()
	j.fill(testYesterday, 6, 8)
	s, store := newTestShell(t, j, nil)
	store.Save(scroll.DayKey(testYesterday), 7)

	page := openTestDay(t, s, testYesterday, "")
	s.sched.Flush()

	if got := page.vp.YOffset(); got != 7 {
		t.Fatalf("offset = %d, want restored 7", got)
	}
	if s.env.Coord.AutoFollow() {
		t.Fatal("auto-follow should be off away from the bottom")
	}
}

func TestLiveDayIgnoresSavedOffset(t *testing.T) {
	j := newFakeJournal()
	j.fill(testToday, 6, 8)
	s, store := newTestShell(t, j, nil)
	store.Save(scroll.DayKey(testToday), 3)

	page := openTestDay(t, s, testToday, "")
	s.sched.Flush()

	if got, want := page.vp.YOffset(), maxTop(page); got != want {
		t.Fatalf("today opened at %d, want bottom %d", got, want)
	}
}

func TestDayPageManualScrollPausesFollowing(t *testing.T) {
	j := newFakeJournal()
	j.fill(testToday, 6, 8)
	s, _ := newTestShell(t, j, nil)
	page := openTestDay(t, s, testToday, "")
	s.sched.Flush()

	for range 5 {
		s.Update(keyPress("k"))
	}
	if s.env.Coord.AutoFollow() {
		t.Fatal("scrolling up should pause auto-follow")
	}
	if !page.button.visible {
		t.Fatal("follow button should show away from the bottom")
	}
	if view := page.viewContent(); !strings.Contains(view, "Jump to latest") {
		t.Fatal("follow button missing from the view")
	}

	// New content does not pull a paused feed.
	at := page.vp.YOffset()
	s.Update(entrySavedMsg{day: testToday, entry: journal.Entry{
		ID: "late", Day: testToday, Role: journal.RoleAuthor, Text: "later thought", CreatedAt: testNow,
	}})
	renderAll(s, page)
	s.sched.Flush()
	if got := page.vp.YOffset(); got != at {
		t.Fatalf("paused feed moved from %d to %d", at, got)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnd})
	if got, want := page.vp.YOffset(), maxTop(page); got != want {
		t.Fatalf("end key left the feed at %d, want %d", got, want)
	}
	if !s.env.Coord.AutoFollow() {
		t.Fatal("jumping to the latest entry should resume auto-follow")
	}
	if page.button.visible {
		t.Fatal("follow button still visible after jumping to the latest entry")
	}
}

func TestDayPageDeepLinkWinsOverSavedOffset(t *testing.T) {
	j := newFakeJournal()
	j.fill(testYesterday, 6, 8)
	s, store := newTestShell(t, j, nil)
	store.Save(scroll.DayKey(testYesterday), 40)

	page := openTestDay(t, s, testYesterday, "e2")
	s.sched.Flush()

	top, height, ok := page.feed.LineOf("e2")
	if !ok {
		t.Fatal("target block not laid out")
	}
	want := min(max(top-(page.vp.Height()-height)/2, 0), maxTop(page))
	if got := page.vp.YOffset(); got != want {
		t.Fatalf("offset = %d, want target at %d", got, want)
	}
	if page.highlight != "e2" {
		t.Fatalf("highlight = %q, want e2", page.highlight)
	}
	if page.pendingTarget() != "" {
		t.Fatal("target should be consumed")
	}

	s.Update(highlightDoneMsg{day: testYesterday, seq: page.highlightSeq})
	if page.highlighting() {
		t.Fatal("highlight not cleared")
	}
}

func TestDayPageUnknownTargetIsDropped(t *testing.T) {
	j := newFakeJournal()
	j.fill(testYesterday, 3, 2)
	s, _ := newTestShell(t, j, nil)

	page := openTestDay(t, s, testYesterday, "missing")
	if page.pendingTarget() != "" || page.highlighting() {
		t.Fatal("an unknown target should be dropped without a highlight")
	}
}

func TestDayPageStreamsReplyAtEdge(t *testing.T) {
	j := newFakeJournal()
	j.fill(testToday, 6, 8)
	r := &fakeResponder{chunks: []stream.Chunk{
		{Text: "Hello "},
		{Text: "world"},
		{Done: true},
	}}
	s, _ := newTestShell(t, j, r)
	page := openTestDay(t, s, testToday, "")
	s.sched.Flush()

	for range 5 {
		s.Update(keyPress("k"))
	}
	if s.env.Coord.AutoFollow() {
		t.Fatal("expected auto-follow paused before the reply")
	}

	var transitions []stream.Transition
	s.env.Bus.Stream.Subscribe(func(snap stream.Snapshot) {
		transitions = append(transitions, snap.Transition)
	})

	entry, _ := j.Append(t.Context(), journal.Entry{Day: testToday, Role: journal.RoleAuthor, Text: "how was it?", CreatedAt: testNow})
	_, cmd := page.Update(entrySavedMsg{day: testToday, entry: entry})
	if !page.Streaming() {
		t.Fatal("expected a reply to be streaming")
	}
	if !s.env.Coord.AutoFollow() {
		t.Fatal("a starting reply should force auto-follow on")
	}
	pump(page, cmd)

	if page.Streaming() {
		t.Fatal("reply still streaming after done")
	}
	if got, want := page.vp.YOffset(), maxTop(page); got != want {
		t.Fatalf("offset = %d after the reply, want bottom %d", got, want)
	}
	replies := j.byRole(testToday, journal.RoleReply)
	if len(replies) != 1 || replies[0].Text != "Hello world" {
		t.Fatalf("unexpected saved replies %+v", replies)
	}
	if len(r.reqs) != 1 || r.reqs[0].Text != "how was it?" {
		t.Fatalf("unexpected responder requests %+v", r.reqs)
	}
	if len(transitions) != 2 || transitions[0] != stream.TransitionBegin || transitions[1] != stream.TransitionComplete {
		t.Fatalf("unexpected stream transitions %v", transitions)
	}
}

func TestDayPageAbortKeepsPosition(t *testing.T) {
	j := newFakeJournal()
	j.fill(testToday, 6, 8)
	s, _ := newTestShell(t, j, &fakeResponder{})
	page := openTestDay(t, s, testToday, "")
	s.sched.Flush()

	entry, _ := j.Append(t.Context(), journal.Entry{Day: testToday, Role: journal.RoleAuthor, Text: "hi", CreatedAt: testNow})
	page.Update(entrySavedMsg{day: testToday, entry: entry})
	if !page.Streaming() {
		t.Fatal("expected a reply to be streaming")
	}
	for range 3 {
		s.Update(keyPress("k"))
	}
	at := page.vp.YOffset()

	var outcome stream.Outcome
	s.env.Bus.Stream.Subscribe(func(snap stream.Snapshot) {
		if snap.Transition == stream.TransitionComplete {
			outcome = snap.Outcome
		}
	})
	s.Update(tea.KeyPressMsg{Code: 'x', Mod: tea.ModCtrl})

	if page.Streaming() {
		t.Fatal("reply still streaming after abort")
	}
	if got := page.vp.YOffset(); got != at {
		t.Fatalf("abort moved the feed from %d to %d", at, got)
	}
	if outcome != stream.OutcomeAborted {
		t.Fatalf("outcome = %q, want aborted", outcome)
	}
}

func TestDayPageComposerAppendsEntry(t *testing.T) {
	j := newFakeJournal()
	s, _ := newTestShell(t, j, nil)
	page := openTestDay(t, s, testYesterday, "")

	page.Update(tea.KeyPressMsg{Code: 'i', Text: "i"})
	if !page.composing {
		t.Fatal("expected the composer to open")
	}
	page.input.SetValue("  a new thought  ")
	_, cmd := page.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	pump(page, cmd)

	if page.feed.Len() != 1 {
		t.Fatalf("feed has %d blocks, want 1", page.feed.Len())
	}
	saved := j.byRole(testYesterday, journal.RoleAuthor)
	if len(saved) != 1 || saved[0].Text != "a new thought" {
		t.Fatalf("unexpected saved entries %+v", saved)
	}
	if page.input.Value() != "" {
		t.Fatal("composer not cleared after sending")
	}

	page.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if page.composing {
		t.Fatal("esc should close the composer")
	}
}

func TestDayPageResizeReRenders(t *testing.T) {
	j := newFakeJournal()
	j.fill(testYesterday, 2, 2)
	s, _ := newTestShell(t, j, nil)
	page := openTestDay(t, s, testYesterday, "")
	if len(page.feed.Pending()) != 0 {
		t.Fatal("expected every block rendered")
	}

	s.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	if len(page.feed.Pending()) != 2 {
		t.Fatalf("width change should invalidate renders, %d pending", len(page.feed.Pending()))
	}

	// A render for the old width is redone rather than applied.
	s.Update(blockRenderedMsg{day: testYesterday, id: "e1", width: 97, output: "stale"})
	if b, _ := page.feed.Get("e1"); b.Rendered {
		t.Fatal("stale-width render was applied")
	}
}
