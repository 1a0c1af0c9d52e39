package scroll

import (
	"time"

	"github.com/wethinkt/go-daybook/internal/stream"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// InputKind says what produced a scroll notification.
type InputKind string

const (
	InputScroll InputKind = "scroll"
	InputWheel  InputKind = "wheel"
	InputTouch  InputKind = "touch"
	InputKey    InputKind = "key"
)

// ScrollEvent is delivered by a Viewport when the user scrolls it.
type ScrollEvent struct {
	Kind InputKind
}

// Viewport is the scrollable container showing the feed.
type Viewport interface {
	ID() string
	ScrollTop() int
	SetScrollTop(top int)
	ScrollHeight() int
	ClientHeight() int
	// OnScroll registers fn for user-initiated scrolling and returns a
	// function that removes it.
	OnScroll(fn func(ScrollEvent)) (unbind func())
}

// Surface is the document the coordinator resolves its elements from.
// Viewport and FollowButton return nil while the element is absent.
type Surface interface {
	Viewport() Viewport
	FollowButton() FollowButton
	Layout() Layout
	Content() Content
	ViewKey() ViewKey
	// Locate returns the offset and height of the element id.
	Locate(id string) (top, height int, ok bool)
	// PendingTarget returns the deep-link target the current location
	// carries, or "".
	PendingTarget() string
	// Highlighting reports whether a highlight animation is running.
	Highlighting() bool
}

// State is the coordinator's lifecycle state.
type State int

const (
	StateDetached State = iota
	StateSettling
	StateSteady
)

func (s State) String() string {
	switch s {
	case StateSettling:
		return "settling"
	case StateSteady:
		return "steady"
	default:
		return "detached"
	}
}

// Options tune the coordinator. Distances are in viewport units.
type Options struct {
	Threshold        int           // hide the follow button within this distance of the edge
	Proximity        int           // follow resumes within this distance of the edge
	Noise            int           // scroll-away movements up to this size are ignored
	SettleTimeout    time.Duration // longest settling window after attach
	TargetCleanup    time.Duration // consumed-target marker lifetime
	RestoreTolerance int           // cache restores within this distance are left alone
}

// DefaultOptions returns pixel-scaled defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:        DefaultThreshold,
		Proximity:        10,
		Noise:            2,
		SettleTimeout:    500 * time.Millisecond,
		TargetCleanup:    1500 * time.Millisecond,
		RestoreTolerance: 4,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Threshold <= 0 {
		o.Threshold = def.Threshold
	}
	o.Proximity = max(o.Proximity, 0)
	o.Noise = max(o.Noise, 0)
	o.RestoreTolerance = max(o.RestoreTolerance, 0)
	if o.SettleTimeout <= 0 {
		o.SettleTimeout = def.SettleTimeout
	}
	if o.TargetCleanup <= 0 {
		o.TargetCleanup = def.TargetCleanup
	}
	return o
}

type pendingRestore struct {
	token uint64
	key   ViewKey
	gen   uint64
}

// Coordinator binds one viewport and follow button at a time and decides
// where the viewport is scrolled. Every method is safe to call while
// nothing is bound.
type Coordinator struct {
	opts       Options
	surface    Surface
	bus        *Bus
	store      *Store
	sched      Scheduler
	strategies Strategies

	state   State
	gen     uint64
	vp      Viewport
	btn     FollowButton
	toggle  Toggle
	unbind  func()
	metrics EdgeMetrics
	follow  FollowState
	lastTop int

	settlePoll    func()
	settleTimeout func()
	align         func()
	apply         func()
	cleanup       func()

	pending  *pendingRestore
	tokens   uint64
	skipNext bool
	consumed string
}

// NewCoordinator creates a detached coordinator.
func NewCoordinator(surface Surface, bus *Bus, store *Store, sched Scheduler, opts Options) *Coordinator {
	if bus == nil {
		bus = NewBus()
	}
	opts = opts.normalized()
	return &Coordinator{
		opts:    opts,
		surface: surface,
		bus:     bus,
		store:   store,
		sched:   sched,
		follow:  FollowState{Direction: Down, Noise: opts.Noise, Proximity: opts.Proximity},
	}
}

// Register adds a per-view strategy.
func (c *Coordinator) Register(s Strategy) {
	c.strategies.Register(s)
}

// SetOptions replaces the tuning options and re-derives bound state.
func (c *Coordinator) SetOptions(opts Options) {
	c.opts = opts.normalized()
	c.follow.Noise = c.opts.Noise
	c.follow.Proximity = c.opts.Proximity
	if c.state != StateDetached {
		c.recomputeMetrics()
		c.updateButton()
	}
}

// Options returns the active options.
func (c *Coordinator) Options() Options { return c.opts }

// State returns the lifecycle state.
func (c *Coordinator) State() State { return c.state }

// AutoFollow reports whether new content pulls the viewport along.
func (c *Coordinator) AutoFollow() bool { return c.follow.Enabled }

// Metrics returns the bound button's edge metrics.
func (c *Coordinator) Metrics() EdgeMetrics { return c.metrics }

// Generation increases on every attach and detach.
func (c *Coordinator) Generation() uint64 { return c.gen }

// ButtonVisible reports the bound follow button's visibility.
func (c *Coordinator) ButtonVisible() bool {
	return c.toggle != nil && c.toggle.Visible()
}

// PendingKey returns the view key of an outstanding deferred restoration.
func (c *Coordinator) PendingKey() (ViewKey, bool) {
	if c.pending == nil {
		return "", false
	}
	return c.pending.key, true
}

// BoundViewport returns the ID of the bound viewport, or "".
func (c *Coordinator) BoundViewport() string {
	if c.vp == nil {
		return ""
	}
	return c.vp.ID()
}

// Attach binds vp and btn, replacing any previous binding, and enters the
// settling window. btn may be nil.
func (c *Coordinator) Attach(vp Viewport, btn FollowButton) {
	if vp == nil {
		return
	}
	if c.state != StateDetached {
		c.Detach()
	}

	c.gen++
	gen := c.gen
	c.vp = vp
	c.btn = btn
	c.unbind = vp.OnScroll(func(ev ScrollEvent) {
		if gen != c.gen {
			staleCallbacks.Inc()
			return
		}
		c.HandleScroll(ev)
	})
	if btn != nil {
		c.toggle = BindToggle(btn)
	}

	c.recomputeMetrics()
	c.lastTop = vp.ScrollTop()
	c.follow.Reset(c.distance())

	c.state = StateSettling
	c.setVisible(false)
	c.settleTimeout = c.sched.After(c.opts.SettleTimeout, func() {
		if gen != c.gen {
			staleCallbacks.Inc()
			return
		}
		c.exitSettling("timeout")
	})
	c.pollSettling(gen)
	attachments.Set(1)

	tuilog.Log.Info("Coordinator: attached",
		"viewport", vp.ID(), "gen", gen, "direction", c.metrics.Direction, "follow", c.follow.Enabled)
}

func (c *Coordinator) pollSettling(gen uint64) {
	c.settlePoll = c.sched.NextFrame(func() {
		c.settlePoll = nil
		if gen != c.gen || c.state != StateSettling {
			return
		}
		if c.distance() <= c.opts.Proximity {
			c.exitSettling("proximity")
			return
		}
		c.pollSettling(gen)
	})
}

func (c *Coordinator) exitSettling(reason string) {
	if c.state != StateSettling {
		return
	}
	stop(&c.settlePoll)
	stop(&c.settleTimeout)
	c.state = StateSteady
	tuilog.Log.Debug("Coordinator: settled", "reason", reason, "gen", c.gen)
	c.updateButton()
}

// Detach unbinds everything and cancels all deferred work for the
// viewport. Detaching twice is a no-op.
func (c *Coordinator) Detach() {
	if c.state == StateDetached {
		return
	}
	c.gen++
	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
	stop(&c.settlePoll)
	stop(&c.settleTimeout)
	stop(&c.align)
	stop(&c.apply)
	c.pending = nil

	id := c.vp.ID()
	c.vp = nil
	c.btn = nil
	c.toggle = nil
	c.metrics = EdgeMetrics{}
	c.state = StateDetached
	attachments.Set(0)

	tuilog.Log.Info("Coordinator: detached", "viewport", id, "gen", c.gen)
}

// EnsureElements re-resolves the viewport and follow button from the
// surface, rebinding when either changed. It reports whether a viewport is
// bound afterwards.
func (c *Coordinator) EnsureElements() bool {
	if c.surface == nil {
		return false
	}
	vp := c.surface.Viewport()
	btn := c.surface.FollowButton()
	if vp == nil {
		if c.state != StateDetached {
			tuilog.Log.Debug("Coordinator: viewport gone")
			c.Detach()
		}
		return false
	}
	if c.state != StateDetached && c.vp.ID() == vp.ID() && sameButton(c.btn, btn) {
		c.recomputeMetrics()
		return true
	}
	c.Attach(vp, btn)
	return true
}

func sameButton(a, b FollowButton) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// Refresh re-resolves elements and re-checks button visibility.
func (c *Coordinator) Refresh() {
	c.EnsureElements()
	c.updateButton()
}

// HandleScroll processes a manual scroll sample.
func (c *Coordinator) HandleScroll(ev ScrollEvent) {
	if c.state == StateDetached {
		return
	}
	top := c.vp.ScrollTop()
	s := Sample{
		Top:          top,
		Previous:     c.lastTop,
		ScrollHeight: c.vp.ScrollHeight(),
		ClientHeight: c.vp.ClientHeight(),
	}
	if c.follow.Apply(s) {
		state := "off"
		if c.follow.Enabled {
			state = "on"
		}
		followFlips.WithLabelValues(state).Inc()
		tuilog.Log.Debug("Coordinator: follow changed", "follow", c.follow.Enabled, "top", top, "input", ev.Kind)
	}
	c.lastTop = top

	if top != s.Previous && (c.pending != nil || c.apply != nil) {
		tuilog.Log.Debug("Coordinator: manual scroll cancels restoration")
		c.pending = nil
		stop(&c.apply)
	}

	c.updateButton()
	c.saveCurrent()
}

// HandleForceEdge serves an edge-scroll request.
func (c *Coordinator) HandleForceEdge(req ForceEdgeRequest) {
	if c.state == StateDetached && !c.EnsureElements() {
		return
	}
	c.ScrollToEdge(req.Force, req.Direction)
}

// ScrollToEdge scrolls to the follow edge. Bottom scrolls happen only while
// following or when forced; a forced scroll also turns following on. Top
// scrolls are always honoured. A zero dir uses the bound direction.
func (c *Coordinator) ScrollToEdge(force bool, dir Direction) {
	if c.state == StateDetached {
		return
	}
	if dir != Down && dir != Up {
		dir = c.metrics.Direction
	}

	before := c.vp.ScrollTop()
	switch dir {
	case Up:
		c.vp.SetScrollTop(0)
		if c.follow.Direction == Up {
			c.follow.Force()
		} else {
			c.follow.Reset(c.distance())
		}
	default:
		if c.follow.Enabled || force {
			c.vp.SetScrollTop(c.maxTop())
			if force {
				c.follow.Force()
			}
		}
	}
	if force {
		forcedEdgeScrolls.Inc()
	}

	c.lastTop = c.vp.ScrollTop()
	if c.lastTop != before {
		c.saveCurrent()
	}
	c.recomputeMetrics()
	c.updateButton()
}

// ScrollToTarget scrolls the element id into view. It reports whether the
// element was found. The next restoration attempt is skipped so the target
// is not overwritten by a saved offset.
func (c *Coordinator) ScrollToTarget(req TargetRequest) bool {
	if c.state == StateDetached && !c.EnsureElements() {
		return false
	}
	top, height, ok := c.surface.Locate(req.ID)
	if !ok {
		tuilog.Log.Debug("Coordinator: target not found", "id", req.ID, "source", req.Source)
		return false
	}

	view := c.vp.ClientHeight()
	switch req.Align {
	case AlignCenter:
		top -= (view - height) / 2
	case AlignEnd:
		top += height - view
	}
	top = min(max(top, 0), c.maxTop())

	c.cancelPending("target")
	c.vp.SetScrollTop(top)
	c.lastTop = c.vp.ScrollTop()
	c.skipNext = true
	c.follow.Reset(c.distance())
	c.updateButton()

	tuilog.Log.Info("Coordinator: scrolled to target", "id", req.ID, "top", c.lastTop, "source", req.Source)
	return true
}

// Save persists the current offset under the active view key.
func (c *Coordinator) Save() {
	if c.state == StateDetached {
		return
	}
	c.saveCurrent()
}

// Restore applies the saved offset for the active view. A pending deep-link
// target wins; unfinished content defers the restore until it is painted.
func (c *Coordinator) Restore() {
	if c.state == StateDetached {
		return
	}
	key := c.surface.ViewKey()

	if c.targetPending() {
		restoreAttempts.WithLabelValues("target").Inc()
		tuilog.Log.Debug("Coordinator: restore yields to deep-link", "key", key)
		c.cancelPending("target")
		return
	}

	if NeedsDeferredRender(c.surface.Content()) {
		stop(&c.apply)
		c.tokens++
		c.pending = &pendingRestore{token: c.tokens, key: key, gen: c.gen}
		restoreAttempts.WithLabelValues("deferred").Inc()
		tuilog.Log.Debug("Coordinator: restore deferred", "key", key, "token", c.tokens)
		return
	}

	c.pending = nil
	c.applySaved(key)
}

func (c *Coordinator) maybeRestore() {
	if c.skipNext || c.consumed != "" {
		c.skipNext = false
		restoreAttempts.WithLabelValues("skipped").Inc()
		tuilog.Log.Debug("Coordinator: restore skipped after target", "target", c.consumed)
		return
	}
	c.Restore()
}

func (c *Coordinator) applySaved(key ViewKey) {
	_, hooks := c.hooks(key)
	stop(&c.apply)

	offset, ok := hooks.Restore(key)
	if !ok {
		restoreAttempts.WithLabelValues("missing").Inc()
		c.emitComplete(key, false)
		return
	}

	c.tokens++
	token, gen := c.tokens, c.gen
	c.apply = c.sched.NextFrame(func() {
		c.apply = nil
		if gen != c.gen || token != c.tokens || c.surface.ViewKey() != key {
			staleCallbacks.Inc()
			return
		}
		c.vp.SetScrollTop(min(offset, c.maxTop()))
		c.lastTop = c.vp.ScrollTop()
		c.follow.Reset(c.distance())
		c.updateButton()

		restoreAttempts.WithLabelValues("restored").Inc()
		tuilog.Log.Info("Coordinator: restored", "key", key, "offset", c.lastTop)
		c.emitComplete(key, true)
	})
}

// resolvePending retries a deferred restoration. It reports whether the
// restoration went ahead.
func (c *Coordinator) resolvePending() bool {
	p := c.pending
	if p == nil || c.state == StateDetached {
		return false
	}
	if p.gen != c.gen || p.token != c.tokens || p.key != c.surface.ViewKey() {
		c.pending = nil
		staleCallbacks.Inc()
		tuilog.Log.Debug("Coordinator: discarded stale restoration", "key", p.key, "token", p.token)
		return false
	}
	if c.targetPending() {
		c.cancelPending("target")
		return false
	}
	if NeedsDeferredRender(c.surface.Content()) {
		return false
	}
	c.pending = nil
	c.applySaved(p.key)
	return true
}

func (c *Coordinator) cancelPending(reason string) {
	if c.pending != nil || c.apply != nil {
		tuilog.Log.Debug("Coordinator: restoration cancelled", "reason", reason)
	}
	c.pending = nil
	stop(&c.apply)
}

// HandleContentRendered reacts to content being painted: it resolves a
// deferred restoration or keeps a following viewport at its edge.
func (c *Coordinator) HandleContentRendered(ev ContentRendered) {
	if c.state == StateDetached {
		return
	}
	if ev.ViewportID != "" && ev.ViewportID != c.vp.ID() {
		staleCallbacks.Inc()
		return
	}
	c.consumed = ""

	if c.resolvePending() && c.apply != nil {
		return
	}
	if c.pending == nil && c.apply == nil && c.follow.Enabled {
		c.ScrollToEdge(false, 0)
		return
	}
	c.updateButton()
}

// HandleResize realigns on the next frame after a layout change.
func (c *Coordinator) HandleResize(ev LayoutChanged) {
	if c.state == StateDetached {
		return
	}
	stop(&c.align)
	gen := c.gen
	c.align = c.sched.NextFrame(func() {
		c.align = nil
		if gen != c.gen {
			staleCallbacks.Inc()
			return
		}
		c.recomputeMetrics()
		if c.resolvePending() && c.apply != nil {
			return
		}
		if c.follow.Enabled && c.pending == nil && c.apply == nil {
			c.ScrollToEdge(false, 0)
			return
		}
		c.updateButton()
	})
}

// HandlePageShow handles a page shown again from memory. The saved offset
// is reapplied only when the displayed one drifted from it.
func (c *Coordinator) HandlePageShow(ev PageShow) {
	if !ev.Persisted {
		return
	}
	if !c.EnsureElements() {
		return
	}
	key := c.surface.ViewKey()
	_, hooks := c.hooks(key)
	saved, ok := hooks.Restore(key)
	if !ok {
		c.updateButton()
		return
	}
	cur := c.vp.ScrollTop()
	if cur == 0 || abs(cur-saved) > c.opts.RestoreTolerance {
		tuilog.Log.Debug("Coordinator: page shown with drifted offset", "key", key, "current", cur, "saved", saved)
		c.Restore()
		return
	}
	c.updateButton()
}

// HandleBeforeSwap saves the position of a viewport that is about to be
// replaced.
func (c *Coordinator) HandleBeforeSwap(ev BeforeSwap) {
	if c.state == StateDetached || ev.TargetID != c.vp.ID() {
		return
	}
	c.saveCurrent()
}

// HandleLoad handles a completed view swap.
func (c *Coordinator) HandleLoad(ev AfterSwap) {
	if !c.EnsureElements() {
		return
	}
	key := c.surface.ViewKey()
	if name, hooks := c.hooks(key); hooks.AfterSwap != nil {
		tuilog.Log.Debug("Coordinator: after-swap hook", "strategy", name, "key", key)
		hooks.AfterSwap(key)
	}
	c.maybeRestore()
}

// HandleTargetConsumed records that a target navigation was handled
// elsewhere; the next restoration is skipped. The marker is dropped on
// the next content render or after the cleanup delay.
func (c *Coordinator) HandleTargetConsumed(ev TargetConsumed) {
	target := ev.Target
	if target == "" {
		target = "*"
	}
	c.consumed = target
	c.skipNext = true
	c.cancelPending("target consumed")

	stop(&c.cleanup)
	c.cleanup = c.sched.After(c.opts.TargetCleanup, func() {
		c.cleanup = nil
		if c.consumed != "" || c.skipNext {
			tuilog.Log.Debug("Coordinator: consumed target expired", "target", c.consumed)
		}
		c.consumed = ""
		c.skipNext = false
	})
}

// HandleHistoryNavigated announces a history restore and then treats the
// navigation as a completed swap.
func (c *Coordinator) HandleHistoryNavigated(ev HistoryNavigated) {
	key := ViewKey("")
	if c.surface != nil {
		key = c.surface.ViewKey()
	}
	c.bus.HistoryRestore.Publish(HistoryRestore{
		Envelope: c.bus.Envelope("scroll", "history"),
		Key:      key,
	})
	c.HandleLoad(AfterSwap{Envelope: ev.Envelope})
}

// HandleStream forces the viewport to its edge when a stream begins and
// when it ends, unless the reader aborted it. Snapshots of a stream that
// writes into another viewport are dropped.
func (c *Coordinator) HandleStream(s stream.Snapshot) {
	if c.state == StateDetached && !c.EnsureElements() {
		return
	}
	if s.ViewportID != "" && s.ViewportID != c.vp.ID() {
		staleCallbacks.Inc()
		return
	}
	switch s.Transition {
	case stream.TransitionBegin:
		c.HandleForceEdge(ForceEdgeRequest{Force: true})
	case stream.TransitionComplete:
		if s.Outcome != stream.OutcomeAborted {
			c.HandleForceEdge(ForceEdgeRequest{Force: true})
		}
	}
}

func (c *Coordinator) hooks(key ViewKey) (string, Hooks) {
	return c.strategies.Resolve(key, Hooks{
		Save:    c.store.Save,
		Restore: c.store.Load,
	})
}

func (c *Coordinator) saveCurrent() {
	key := c.surface.ViewKey()
	_, hooks := c.hooks(key)
	hooks.Save(key, c.vp.ScrollTop())
}

func (c *Coordinator) emitComplete(key ViewKey, restored bool) {
	c.bus.RestoreComplete.Publish(RestoreComplete{
		Envelope: c.bus.Envelope("scroll", "restore"),
		Key:      key,
		Restored: restored,
	})
}

func (c *Coordinator) targetPending() bool {
	return c.surface.PendingTarget() != "" || c.surface.Highlighting()
}

func (c *Coordinator) recomputeMetrics() {
	var g ButtonGeometry
	if c.btn != nil {
		g = c.btn.Geometry()
	}
	if g.Threshold <= 0 {
		g.Threshold = c.opts.Threshold
	}
	c.metrics = ComputeEdgeMetrics(g, c.surface.Layout())
	c.follow.Direction = c.metrics.Direction
}

func (c *Coordinator) updateButton() {
	if c.toggle == nil {
		return
	}
	if c.state != StateSteady {
		c.toggle.SetVisible(false)
		return
	}
	c.toggle.SetVisible(c.distance() > c.metrics.Threshold)
}

func (c *Coordinator) setVisible(v bool) {
	if c.toggle != nil {
		c.toggle.SetVisible(v)
	}
}

func (c *Coordinator) distance() int {
	return Sample{
		Top:          c.vp.ScrollTop(),
		ScrollHeight: c.vp.ScrollHeight(),
		ClientHeight: c.vp.ClientHeight(),
	}.Distance(c.follow.Direction)
}

func (c *Coordinator) maxTop() int {
	return max(c.vp.ScrollHeight()-c.vp.ClientHeight(), 0)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
