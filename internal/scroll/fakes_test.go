package scroll

import (
	"sort"
	"time"
)

const frameInterval = 16 * time.Millisecond

// fakeScheduler runs callbacks only when the test advances it.
type fakeScheduler struct {
	now    time.Duration
	nextID int
	frames map[int]func()
	timers map[int]fakeTimer
}

type fakeTimer struct {
	due time.Duration
	fn  func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		frames: make(map[int]func()),
		timers: make(map[int]fakeTimer),
	}
}

func (s *fakeScheduler) NextFrame(fn func()) func() {
	s.nextID++
	id := s.nextID
	s.frames[id] = fn
	return func() { delete(s.frames, id) }
}

func (s *fakeScheduler) After(d time.Duration, fn func()) func() {
	s.nextID++
	id := s.nextID
	s.timers[id] = fakeTimer{due: s.now + d, fn: fn}
	return func() { delete(s.timers, id) }
}

// Frame runs the callbacks queued before this call, in scheduling order.
func (s *fakeScheduler) Frame() {
	ids := make([]int, 0, len(s.frames))
	for id := range s.frames {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fn, ok := s.frames[id]
		if !ok {
			continue
		}
		delete(s.frames, id)
		fn()
	}
}

// Advance moves time forward one frame at a time, firing due timers.
func (s *fakeScheduler) Advance(d time.Duration) {
	end := s.now + d
	for s.now < end {
		step := min(frameInterval, end-s.now)
		s.now += step
		s.Frame()
		s.fireDue()
	}
}

func (s *fakeScheduler) fireDue() {
	ids := make([]int, 0, len(s.timers))
	for id, t := range s.timers {
		if t.due <= s.now {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	for _, id := range ids {
		t, ok := s.timers[id]
		if !ok {
			continue
		}
		delete(s.timers, id)
		t.fn()
	}
}

func (s *fakeScheduler) Pending() int {
	return len(s.frames) + len(s.timers)
}

// fakeViewport is a scroll container with a fixed content height.
type fakeViewport struct {
	id        string
	top       int
	height    int
	client    int
	sets      int
	nextID    int
	listeners map[int]func(ScrollEvent)
}

func newFakeViewport(id string, height, client int) *fakeViewport {
	return &fakeViewport{id: id, height: height, client: client, listeners: make(map[int]func(ScrollEvent))}
}

func (v *fakeViewport) ID() string        { return v.id }
func (v *fakeViewport) ScrollTop() int    { return v.top }
func (v *fakeViewport) ScrollHeight() int { return v.height }
func (v *fakeViewport) ClientHeight() int { return v.client }

func (v *fakeViewport) SetScrollTop(top int) {
	v.sets++
	v.top = min(max(top, 0), max(v.height-v.client, 0))
}

func (v *fakeViewport) OnScroll(fn func(ScrollEvent)) func() {
	v.nextID++
	id := v.nextID
	v.listeners[id] = fn
	return func() { delete(v.listeners, id) }
}

// userScroll moves the viewport the way a reader would and notifies.
func (v *fakeViewport) userScroll(top int) {
	v.top = min(max(top, 0), max(v.height-v.client, 0))
	for _, fn := range v.listeners {
		fn(ScrollEvent{Kind: InputWheel})
	}
}

func (v *fakeViewport) bottom() int {
	return max(v.height-v.client, 0)
}

// fakeButton manages its own visibility, so it binds a DelegatingToggle.
type fakeButton struct {
	id      string
	geo     ButtonGeometry
	visible bool
	calls   int
}

func (b *fakeButton) ID() string               { return b.id }
func (b *fakeButton) Geometry() ButtonGeometry { return b.geo }
func (b *fakeButton) SetVisible(v bool) {
	b.calls++
	b.visible = v
}

// classButton is toggled through a class.
type classButton struct {
	id      string
	classes map[string]bool
}

func (b *classButton) ID() string               { return b.id }
func (b *classButton) Geometry() ButtonGeometry { return ButtonGeometry{} }
func (b *classButton) SetClass(name string, on bool) {
	if b.classes == nil {
		b.classes = make(map[string]bool)
	}
	b.classes[name] = on
}

type staticContent []BlockState

func (c staticContent) BlockStates() []BlockState { return c }

type location struct{ top, height int }

type fakeSurface struct {
	vp           *fakeViewport
	btn          FollowButton
	key          ViewKey
	blocks       staticContent
	target       string
	highlighting bool
	layout       Layout
	locations    map[string]location
}

func (s *fakeSurface) Viewport() Viewport {
	if s.vp == nil {
		return nil
	}
	return s.vp
}

func (s *fakeSurface) FollowButton() FollowButton { return s.btn }
func (s *fakeSurface) Layout() Layout             { return s.layout }
func (s *fakeSurface) Content() Content           { return s.blocks }
func (s *fakeSurface) ViewKey() ViewKey           { return s.key }
func (s *fakeSurface) PendingTarget() string      { return s.target }
func (s *fakeSurface) Highlighting() bool         { return s.highlighting }

func (s *fakeSurface) Locate(id string) (int, int, bool) {
	l, ok := s.locations[id]
	return l.top, l.height, ok
}

type harness struct {
	surface   *fakeSurface
	vp        *fakeViewport
	btn       *fakeButton
	bus       *Bus
	store     *Store
	sched     *fakeScheduler
	c         *Coordinator
	completes []RestoreComplete
}

func newHarness(key ViewKey) *harness {
	vp := newFakeViewport("feed", 2000, 500)
	btn := &fakeButton{id: "follow", geo: ButtonGeometry{Direction: Down}}
	surface := &fakeSurface{
		vp:  vp,
		btn: btn,
		key: key,
		layout: Layout{
			Container: Rect{Width: 1000, Height: 500},
			Feed:      Rect{X: 100, Width: 700, Height: 500},
		},
		locations: map[string]location{},
	}
	h := &harness{
		surface: surface,
		vp:      vp,
		btn:     btn,
		bus:     NewBus(),
		store:   NewStore(NewMemoryBackend(), "test"),
		sched:   newFakeScheduler(),
	}
	h.c = NewCoordinator(surface, h.bus, h.store, h.sched, DefaultOptions())
	h.bus.RestoreComplete.Subscribe(func(ev RestoreComplete) {
		h.completes = append(h.completes, ev)
	})
	return h
}

func (h *harness) attach() {
	h.c.Attach(h.surface.Viewport(), h.surface.FollowButton())
}
