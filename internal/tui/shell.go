package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-daybook/internal/config"
	"github.com/wethinkt/go-daybook/internal/feed"
	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/scroll"
	"github.com/wethinkt/go-daybook/internal/stream"
	"github.com/wethinkt/go-daybook/internal/tui/theme"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

const headerHeight = 1

// NavItem represents a page in the navigation stack
type NavItem struct {
	Title string
	Model tea.Model
}

// NavStack manages navigation history
type NavStack struct {
	items []NavItem
}

func NewNavStack() *NavStack {
	return &NavStack{items: make([]NavItem, 0)}
}

func (ns *NavStack) Push(item NavItem, width, height int) tea.Cmd {
	ns.items = append(ns.items, item)
	initCmd := item.Model.Init()
	// Send current window size to the new model so it can initialize its viewport
	if width > 0 && height > 0 {
		sizeCmd := func() tea.Msg {
			return tea.WindowSizeMsg{Width: width, Height: height}
		}
		return tea.Batch(initCmd, sizeCmd)
	}
	return initCmd
}

// Replace swaps the top item for item without growing the stack.
func (ns *NavStack) Replace(item NavItem) {
	if len(ns.items) == 0 {
		ns.items = append(ns.items, item)
		return
	}
	ns.items[len(ns.items)-1] = item
}

func (ns *NavStack) Pop() {
	if len(ns.items) > 0 {
		ns.items = ns.items[:len(ns.items)-1]
	}
}

func (ns *NavStack) Peek() (NavItem, bool) {
	if len(ns.items) == 0 {
		return NavItem{}, false
	}
	return ns.items[len(ns.items)-1], true
}

func (ns *NavStack) IsEmpty() bool {
	return len(ns.items) == 0
}

func (ns *NavStack) Path() []string {
	path := make([]string, len(ns.items))
	for i, item := range ns.items {
		path[i] = item.Title
	}
	return path
}

// Navigation messages
type PushPageMsg struct {
	Item NavItem
}

type PopPageMsg struct{}

// ConfigReloadedMsg carries a configuration reloaded from disk.
type ConfigReloadedMsg struct {
	Config config.Config
}

// Shell is the main TUI container. Its navigation stack is the swap
// transport for the scroll coordinator: pushing, replacing and popping
// pages publish the matching lifecycle signals on the bus.
type Shell struct {
	width  int
	height int
	stack  *NavStack
	env    *Env
	sched  *FrameScheduler
	bridge *scroll.Bridge
	keys   shellKeyMap

	// Day pages stay alive once opened so going back shows them as they
	// were left.
	pages   map[string]*DayPage
	history []string
	pos     int
}

// ShellOptions configures NewShell.
type ShellOptions struct {
	Journal   Journal
	Responder stream.Responder
	Store     *scroll.Store
	Renderer  *feed.Renderer
	Scroll    scroll.Options
	Now       func() time.Time

	// Day opens this day on top of the picker; Target deep-links an entry
	// inside it.
	Day    string
	Target string
}

// NewShell wires the coordinator, its bus and the frame scheduler.
func NewShell(opts ShellOptions) *Shell {
	bus := scroll.NewBus()
	sched := NewFrameScheduler()
	s := &Shell{
		stack: NewNavStack(),
		sched: sched,
		keys:  defaultShellKeyMap(),
		pages: make(map[string]*DayPage),
		pos:   -1,
	}
	s.env = &Env{
		Journal:   opts.Journal,
		Responder: opts.Responder,
		Renderer:  opts.Renderer,
		Bus:       bus,
		Stream:    stream.NewController(bus.Stream),
		Now:       opts.Now,
	}
	if s.env.Renderer == nil {
		s.env.Renderer = feed.NewRenderer(theme.Current().GlamourStyle())
	}
	store := opts.Store
	if store == nil {
		store = scroll.NewStore(scroll.NewMemoryBackend(), "daybook")
	}
	s.env.Coord = scroll.NewCoordinator(shellSurface{s}, bus, store, sched, opts.Scroll)
	s.env.Coord.Register(liveDayStrategy(bus, s.env.today))
	s.bridge = scroll.NewBridge(bus, s.env.Coord)
	s.bridge.Start()

	bus.HistoryRestore.Subscribe(func(ev scroll.HistoryRestore) {
		tuilog.Log.Debug("Shell: history restore", "key", ev.Key)
	})
	bus.RestoreComplete.Subscribe(func(ev scroll.RestoreComplete) {
		tuilog.Log.Debug("Shell: restore complete", "key", ev.Key, "restored", ev.Restored)
	})

	s.stack.items = append(s.stack.items, NavItem{
		Title: i18n.T("tui.days.title", "Days"),
		Model: NewDayPicker(s.env),
	})
	if opts.Day != "" {
		page := NewDayPage(s.env, opts.Day, opts.Target)
		s.pages[opts.Day] = page
		s.visit(opts.Day)
		s.stack.items = append(s.stack.items, NavItem{Title: opts.Day, Model: page})
	}
	return s
}

// Env returns the shared page environment.
func (s *Shell) Env() *Env { return s.env }

func (s *Shell) Init() tea.Cmd {
	tuilog.Log.Info("Shell.Init: starting", "pages", len(s.stack.items))
	var cmds []tea.Cmd
	for _, item := range s.stack.items {
		cmds = append(cmds, item.Model.Init())
	}
	return tea.Batch(cmds...)
}

func (s *Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case frameMsg:
		s.sched.handle(msg)
		return s, s.sched.Cmd()

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, s.resizeTop()

	case dayMsg:
		page, ok := s.pages[msg.dayOf()]
		if !ok {
			return s, s.sched.Cmd()
		}
		_, cmd := page.Update(msg)
		return s, tea.Batch(cmd, s.sched.Cmd())

	case OpenDayMsg:
		return s, tea.Batch(s.openDay(msg.Day, msg.Target), s.sched.Cmd())

	case PushPageMsg:
		s.beforeSwap()
		cmds = append(cmds, s.stack.Push(msg.Item, s.width, s.height), s.sched.Cmd())
		return s, tea.Batch(cmds...)

	case PopPageMsg:
		tuilog.Log.Info("Shell.Update: PopPageMsg received")
		s.stack.Pop()
		if s.stack.IsEmpty() {
			tuilog.Log.Info("Shell.Update: stack empty, quitting")
			s.bridge.Stop()
			return s, tea.Quit
		}
		// Send WindowSizeMsg to the revealed page so it re-renders
		if s.width > 0 && s.height > 0 {
			cmds = append(cmds, func() tea.Msg {
				return tea.WindowSizeMsg{Width: s.width, Height: s.height}
			})
		}
		s.env.Bus.PageShow.Publish(scroll.PageShow{
			Envelope:  s.env.Bus.Envelope("shell", "pop"),
			Persisted: true,
		})
		cmds = append(cmds, s.sched.Cmd())
		return s, tea.Batch(cmds...)

	case ConfigReloadedMsg:
		return s, tea.Batch(s.applyConfig(msg.Config), s.sched.Cmd())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.HistoryBack):
			return s, tea.Batch(s.walkHistory(-1), s.sched.Cmd())
		case key.Matches(msg, s.keys.HistoryForward):
			return s, tea.Batch(s.walkHistory(1), s.sched.Cmd())
		}
	}

	// Pass message to current page
	cmds = append(cmds, s.forward(msg), s.sched.Cmd())
	return s, tea.Batch(cmds...)
}

func (s *Shell) childSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: s.width, Height: max(s.height-headerHeight, 0)}
}

// resizeTop sends the current child size to the page on top, if the
// terminal size is known yet.
func (s *Shell) resizeTop() tea.Cmd {
	if s.width <= 0 || s.height <= 0 {
		return nil
	}
	return s.forward(s.childSize())
}

func (s *Shell) forward(msg tea.Msg) tea.Cmd {
	current, ok := s.stack.Peek()
	if !ok {
		return nil
	}
	newModel, cmd := current.Model.Update(msg)
	current.Model = newModel
	s.stack.items[len(s.stack.items)-1] = current
	return cmd
}

// beforeSwap lets the coordinator save the outgoing day's position.
func (s *Shell) beforeSwap() {
	if page, ok := s.topDay(); ok && page.ready {
		s.env.Bus.BeforeSwap.Publish(scroll.BeforeSwap{
			Envelope: s.env.Bus.Envelope("shell", "swap"),
			TargetID: page.adapter.ID(),
		})
	}
}

// openDay shows day. A day page that was opened before is shown again as
// it was left; a new one announces itself once it has a size.
func (s *Shell) openDay(day, target string) tea.Cmd {
	tuilog.Log.Info("Shell: open day", "day", day, "target", target)
	s.visit(day)
	s.beforeSwap()

	replace := false
	if _, ok := s.topDay(); ok {
		replace = true
	}

	if page, ok := s.pages[day]; ok {
		if target != "" {
			page.target = target
		}
		item := NavItem{Title: day, Model: page}
		if replace {
			s.stack.Replace(item)
		} else {
			s.stack.items = append(s.stack.items, item)
		}
		// Shown before the resize so a new target is still pending when
		// the coordinator considers restoring.
		s.env.Bus.PageShow.Publish(scroll.PageShow{
			Envelope:  s.env.Bus.Envelope("shell", "cached"),
			Persisted: true,
		})
		return s.resizeTop()
	}

	page := NewDayPage(s.env, day, target)
	s.pages[day] = page
	item := NavItem{Title: day, Model: page}
	if replace {
		s.stack.Replace(item)
		return tea.Batch(page.Init(), s.resizeTop())
	}
	return s.stack.Push(item, s.width, s.height)
}

// walkHistory moves through the days opened in this session and tells the
// coordinator a history navigation happened.
func (s *Shell) walkHistory(delta int) tea.Cmd {
	next := s.pos + delta
	if next < 0 || next >= len(s.history) {
		return nil
	}
	s.pos = next
	day := s.history[next]
	tuilog.Log.Info("Shell: history", "day", day, "pos", next)

	s.beforeSwap()
	page, cached := s.pages[day]
	if !cached {
		page = NewDayPage(s.env, day, "")
		s.pages[day] = page
	}
	// The history signal below stands in for the page's own announcement.
	page.announced = true
	item := NavItem{Title: day, Model: page}
	if _, ok := s.topDay(); ok {
		s.stack.Replace(item)
	} else {
		s.stack.items = append(s.stack.items, item)
	}

	var cmds []tea.Cmd
	if !cached {
		cmds = append(cmds, page.Init())
	}
	cmds = append(cmds, s.resizeTop())
	s.env.Bus.History.Publish(scroll.HistoryNavigated{
		Envelope: s.env.Bus.Envelope("shell", "history"),
	})
	return tea.Batch(cmds...)
}

// visit records day as the newest history entry, dropping anything ahead
// of the current position.
func (s *Shell) visit(day string) {
	if s.pos >= 0 && s.pos < len(s.history) && s.history[s.pos] == day {
		return
	}
	s.history = append(s.history[:s.pos+1], day)
	s.pos = len(s.history) - 1
}

func (s *Shell) topDay() (*DayPage, bool) {
	current, ok := s.stack.Peek()
	if !ok {
		return nil, false
	}
	page, ok := current.Model.(*DayPage)
	return page, ok
}

// applyConfig picks up a reloaded config. The day on top is re-rendered in
// the new theme; other cached days catch up when they are resized.
func (s *Shell) applyConfig(cfg config.Config) tea.Cmd {
	tuilog.Log.Info("Shell: config reloaded", "theme", cfg.Theme, "language", cfg.Language)
	s.env.Coord.SetOptions(ScrollOptions(cfg.Scroll))
	i18n.Init(i18n.ResolveLocale(cfg.Language))
	ReloadStyles(cfg.Theme)
	s.env.Renderer.SetStyle(theme.Current().GlamourStyle())
	page, ok := s.topDay()
	if !ok {
		return nil
	}
	page.feed.Invalidate()
	page.refresh()
	return page.renderPending()
}

// ScrollOptions converts the scroll section of the config file.
func ScrollOptions(c config.ScrollConfig) scroll.Options {
	return scroll.Options{
		Threshold:        c.FollowThreshold,
		Proximity:        c.ProximityBand,
		Noise:            c.NoiseThreshold,
		SettleTimeout:    c.SettleDuration(),
		TargetCleanup:    c.CleanupDuration(),
		RestoreTolerance: c.RestoreTolerance,
	}
}

func (s *Shell) View() tea.View {
	if s.stack.IsEmpty() {
		v := tea.NewView(i18n.T("tui.shell.empty", "No pages to display"))
		v.AltScreen = true
		return v
	}

	current, _ := s.stack.Peek()
	page, ok := current.Model.(pageContent)
	if !ok {
		return current.Model.View()
	}
	v := tea.NewView(s.header() + "\n" + page.viewContent())
	v.AltScreen = true
	return v
}

// pageContent is implemented by pages drawn below the shell header.
type pageContent interface {
	viewContent() string
}

func (s *Shell) header() string {
	st := GetStyles()
	brand := st.Brand.Render("daybook")

	crumbs := s.stack.Path()
	for i, c := range crumbs {
		if label := i18n.DayLabel(c, s.env.now()); label != c {
			crumbs[i] = label
		}
	}
	path := st.Header.Render(" " + strings.Join(crumbs, " › "))

	var status string
	if _, ok := s.topDay(); ok && s.env.Coord.State() != scroll.StateDetached {
		if s.env.Coord.AutoFollow() {
			status = i18n.T("tui.header.following", "following")
		} else {
			status = i18n.T("tui.header.paused", "paused")
		}
	}
	left := brand + path
	if status == "" || s.width <= 0 {
		return left
	}
	right := st.StatusBar.Render(status)
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// shellSurface resolves the coordinator's elements from the page on top.
type shellSurface struct {
	s *Shell
}

func (ss shellSurface) Viewport() scroll.Viewport {
	if page, ok := ss.s.topDay(); ok {
		return page.scrollViewport()
	}
	return nil
}

func (ss shellSurface) FollowButton() scroll.FollowButton {
	if page, ok := ss.s.topDay(); ok {
		return page.followButton()
	}
	return nil
}

func (ss shellSurface) Layout() scroll.Layout {
	if page, ok := ss.s.topDay(); ok {
		return page.layout()
	}
	return scroll.Layout{}
}

func (ss shellSurface) Content() scroll.Content {
	if page, ok := ss.s.topDay(); ok {
		return page.feed
	}
	return nil
}

func (ss shellSurface) ViewKey() scroll.ViewKey {
	if page, ok := ss.s.topDay(); ok {
		return page.ViewKey()
	}
	return scroll.PathKey(DaysPath)
}

func (ss shellSurface) Locate(id string) (int, int, bool) {
	if page, ok := ss.s.topDay(); ok {
		return page.locate(id)
	}
	return 0, 0, false
}

func (ss shellSurface) PendingTarget() string {
	if page, ok := ss.s.topDay(); ok {
		return page.pendingTarget()
	}
	return ""
}

func (ss shellSurface) Highlighting() bool {
	if page, ok := ss.s.topDay(); ok {
		return page.highlighting()
	}
	return false
}
