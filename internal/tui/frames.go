package tui

import (
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
)

// frameInterval is the display refresh the scheduler simulates.
const frameInterval = time.Second / 60

// frameMsg wakes the scheduler. seq drops ticks armed before a flush.
type frameMsg struct {
	seq uint64
	at  time.Time
}

type timer struct {
	due time.Time
	fn  func()
}

// FrameScheduler implements scroll.Scheduler on top of tea ticks. Callbacks
// run inside Update, on the program's goroutine, when the shell handles a
// frameMsg. It is not safe for concurrent use.
type FrameScheduler struct {
	now    func() time.Time
	next   uint64
	frames map[uint64]func()
	order  []uint64
	timers map[uint64]timer
	armed  bool
	seq    uint64

	deadline time.Time
}

// NewFrameScheduler creates an idle scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{
		now:    time.Now,
		frames: make(map[uint64]func()),
		timers: make(map[uint64]timer),
	}
}

// NextFrame runs fn on the next frame.
func (s *FrameScheduler) NextFrame(fn func()) func() {
	s.next++
	id := s.next
	s.frames[id] = fn
	s.order = append(s.order, id)
	return func() { delete(s.frames, id) }
}

// After runs fn once d has elapsed, on the first frame after the deadline.
func (s *FrameScheduler) After(d time.Duration, fn func()) func() {
	s.next++
	id := s.next
	s.timers[id] = timer{due: s.now().Add(d), fn: fn}
	return func() { delete(s.timers, id) }
}

// Pending reports how many callbacks are waiting.
func (s *FrameScheduler) Pending() int {
	return len(s.frames) + len(s.timers)
}

// Cmd arms a tick for the earliest pending callback. It returns nil when
// nothing is waiting or the tick in flight is already early enough; an
// earlier need supersedes the armed tick.
func (s *FrameScheduler) Cmd() tea.Cmd {
	if s.Pending() == 0 {
		return nil
	}
	now := s.now()
	wait := frameInterval
	if len(s.frames) == 0 {
		wait = s.untilEarliest(now)
	}
	deadline := now.Add(wait)
	if s.armed && !deadline.Before(s.deadline) {
		return nil
	}
	s.seq++
	s.armed = true
	s.deadline = deadline
	seq := s.seq
	return tea.Tick(wait, func(at time.Time) tea.Msg {
		return frameMsg{seq: seq, at: at}
	})
}

func (s *FrameScheduler) untilEarliest(now time.Time) time.Duration {
	var earliest time.Time
	for _, t := range s.timers {
		if earliest.IsZero() || t.due.Before(earliest) {
			earliest = t.due
		}
	}
	return max(earliest.Sub(now), frameInterval)
}

// Flush runs every frame callback registered before the call and every
// timer that is due. Callbacks registered while flushing wait for the next
// frame.
func (s *FrameScheduler) Flush() int {
	s.armed = false
	s.seq++

	order := s.order
	s.order = nil
	ran := 0
	for _, id := range order {
		fn, ok := s.frames[id]
		if !ok {
			continue
		}
		delete(s.frames, id)
		fn()
		ran++
	}

	now := s.now()
	var due []uint64
	for id, t := range s.timers {
		if !t.due.After(now) {
			due = append(due, id)
		}
	}
	slices.SortFunc(due, func(a, b uint64) int {
		return s.timers[a].due.Compare(s.timers[b].due)
	})
	for _, id := range due {
		t, ok := s.timers[id]
		if !ok {
			continue
		}
		delete(s.timers, id)
		t.fn()
		ran++
	}
	return ran
}

// handle consumes a frameMsg, reporting false for a stale tick.
func (s *FrameScheduler) handle(msg frameMsg) bool {
	if msg.seq != s.seq {
		return false
	}
	s.Flush()
	return true
}
