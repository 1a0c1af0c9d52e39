package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/wethinkt/go-daybook/internal/feed"
	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/scroll"
	"github.com/wethinkt/go-daybook/internal/stream"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

const (
	feedPadding       = 1
	highlightDuration = 1500 * time.Millisecond

	// Rows around the feed: title, follow button, composer (3), help.
	titleRows    = 1
	chromeRows   = titleRows + 1 + 3 + 1
	minFeedRows  = 1
	pageSource   = "day-page"
	composeLimit = 2000
)

// DayPage shows one journal day: the feed of entries and replies, the
// follow button and the composer. It is a pointer model; the scroll
// coordinator holds on to its viewport between updates.
type DayPage struct {
	env *Env
	day string

	feed    *feed.Feed
	vp      viewport.Model
	adapter *feedViewport
	button  *followButton
	input   textinput.Model
	spinner spinner.Model
	keys    dayKeyMap

	width       int
	height      int
	ready       bool
	loading     bool
	composing   bool
	announced   bool
	renderWidth int
	rendering   map[string]bool

	target       string
	highlight    string
	highlightSeq int

	streamID     string
	streamCancel context.CancelFunc

	err error
}

// NewDayPage creates the page for day. target, if set, is an entry to
// scroll to and highlight once the day has been rendered.
func NewDayPage(env *Env, day, target string) *DayPage {
	ti := textinput.New()
	ti.Placeholder = i18n.T("tui.composer.placeholder", "Write something...")
	ti.CharLimit = composeLimit

	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(GetStyles().Brand),
	)

	p := &DayPage{
		env:       env,
		day:       day,
		feed:      feed.New(),
		vp:        viewport.New(),
		input:     ti,
		spinner:   sp,
		keys:      defaultDayKeyMap(),
		loading:   true,
		rendering: make(map[string]bool),
		target:    target,
	}
	p.adapter = newFeedViewport(day, &p.vp)
	p.button = newFollowButton(p.adapter.ID())
	p.feed.SetLoading(true)
	return p
}

// Day returns the page's day.
func (p *DayPage) Day() string { return p.day }

// ViewKey returns the key positions of this page are stored under.
func (p *DayPage) ViewKey() scroll.ViewKey { return scroll.DayKey(p.day) }

func (p *DayPage) Init() tea.Cmd {
	tuilog.Log.Info("DayPage.Init", "day", p.day, "target", p.target)
	return tea.Batch(p.loadDay(), p.spinner.Tick)
}

func (p *DayPage) loadDay() tea.Cmd {
	j, day := p.env.Journal, p.day
	return func() tea.Msg {
		if j == nil {
			return dayLoadedMsg{day: day}
		}
		entries, err := j.Entries(context.Background(), day)
		return dayLoadedMsg{day: day, entries: entries, err: err}
	}
}

func (p *DayPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return p, p.resize(msg.Width, msg.Height)

	case dayLoadedMsg:
		return p, p.handleLoaded(msg)

	case blockRenderedMsg:
		return p, p.handleRendered(msg)

	case entrySavedMsg:
		if msg.err != nil {
			tuilog.Log.Error("DayPage: append failed", "day", p.day, "error", msg.err)
			p.err = msg.err
			return p, nil
		}
		p.err = nil
		p.feed.Append(blockFor(msg.entry))
		p.refresh()
		cmds = append(cmds, p.renderPending(), p.beginReply(msg.entry))
		return p, tea.Batch(cmds...)

	case replySavedMsg:
		if msg.err != nil {
			tuilog.Log.Warn("DayPage: reply not saved", "id", msg.id, "error", msg.err)
		}
		return p, nil

	case streamOpenedMsg:
		if msg.id != p.streamID {
			return p, nil
		}
		if msg.err != nil {
			tuilog.Log.Warn("DayPage: responder unavailable", "id", msg.id, "error", msg.err)
			p.feed.AppendChunk(msg.id, replyFailure(msg.err.Error()))
			return p, p.finishReply(stream.OutcomeError)
		}
		return p, waitForChunk(p.day, msg.id, msg.ch)

	case streamChunkMsg:
		return p, p.handleChunk(msg)

	case streamClosedMsg:
		if msg.id == p.streamID {
			return p, p.finishReply(stream.OutcomeAborted)
		}
		return p, nil

	case highlightDoneMsg:
		if msg.seq == p.highlightSeq && p.highlight != "" {
			tuilog.Log.Debug("DayPage: highlight finished", "id", p.highlight)
			p.highlight = ""
			p.refresh()
		}
		return p, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.composing {
			return p, p.updateComposer(msg)
		}
		return p, p.handleKey(msg)
	}

	return p, tea.Batch(cmds...)
}

func (p *DayPage) resize(width, height int) tea.Cmd {
	p.width = width
	p.height = height
	vpHeight := max(height-chromeRows, minFeedRows)
	p.vp.SetWidth(max(width-2*feedPadding, 1))
	p.vp.SetHeight(vpHeight)
	p.button.row = titleRows + vpHeight
	p.button.feedRight = width - feedPadding

	var cmds []tea.Cmd
	if w := p.contentWidth(); w != p.renderWidth {
		if p.renderWidth != 0 {
			n := p.feed.Invalidate()
			tuilog.Log.Debug("DayPage: width changed, re-rendering", "blocks", n, "width", w)
		}
		p.renderWidth = w
		cmds = append(cmds, p.renderPending())
	}
	p.refresh()

	first := !p.ready
	p.ready = true
	if first && !p.announced {
		p.announced = true
		p.env.Bus.AfterSwap.Publish(scroll.AfterSwap{
			Envelope: p.env.Bus.Envelope(pageSource, "ready"),
			TargetID: p.adapter.ID(),
		})
	}
	p.env.Bus.Layout.Publish(scroll.LayoutChanged{
		Envelope: p.env.Bus.Envelope(pageSource, "resize"),
		Width:    width,
		Height:   height,
	})
	cmds = append(cmds, p.maybeTarget())
	return tea.Batch(cmds...)
}

func (p *DayPage) contentWidth() int {
	// Room for the block padding and the reply border.
	return max(p.vp.Width()-3, 20)
}

func (p *DayPage) handleLoaded(msg dayLoadedMsg) tea.Cmd {
	p.loading = false
	p.feed.SetLoading(false)
	if msg.err != nil {
		tuilog.Log.Error("DayPage: load failed", "day", p.day, "error", msg.err)
		p.err = msg.err
	}
	for _, e := range msg.entries {
		p.feed.Append(blockFor(e))
	}
	tuilog.Log.Info("DayPage: loaded", "day", p.day, "entries", len(msg.entries))
	p.refresh()
	p.publishRendered("")
	return tea.Batch(p.renderPending(), p.maybeTarget())
}

// renderPending starts an async glamour render for every finished block
// that has no output yet. Nothing is rendered before the width is known.
func (p *DayPage) renderPending() tea.Cmd {
	if !p.ready && p.renderWidth == 0 {
		return nil
	}
	r, day, width := p.env.Renderer, p.day, p.renderWidth
	var cmds []tea.Cmd
	for _, b := range p.feed.Pending() {
		if p.rendering[b.ID] {
			continue
		}
		p.rendering[b.ID] = true
		id, text := b.ID, b.Text
		cmds = append(cmds, func() tea.Msg {
			out := text
			if r != nil {
				out = r.Render(text, width)
			}
			return blockRenderedMsg{day: day, id: id, width: width, output: out}
		})
	}
	return tea.Batch(cmds...)
}

func (p *DayPage) handleRendered(msg blockRenderedMsg) tea.Cmd {
	delete(p.rendering, msg.id)
	if msg.width != p.renderWidth {
		return p.renderPending()
	}
	if !p.feed.MarkRendered(msg.id, msg.output) {
		return nil
	}
	p.refresh()
	p.publishRendered(msg.id)
	return p.maybeTarget()
}

func (p *DayPage) publishRendered(blockID string) {
	p.env.Bus.ContentRendered.Publish(scroll.ContentRendered{
		Envelope:   p.env.Bus.Envelope(pageSource, "render"),
		ViewportID: p.adapter.ID(),
		BlockID:    blockID,
	})
}

// maybeTarget scrolls to the deep-link target once every block is painted,
// then highlights it for a moment.
func (p *DayPage) maybeTarget() tea.Cmd {
	if p.target == "" || !p.ready || p.loading || len(p.feed.Pending()) > 0 {
		return nil
	}
	target := p.target
	p.target = ""
	if _, ok := p.feed.Get(target); !ok {
		tuilog.Log.Warn("DayPage: deep-link target not found", "day", p.day, "id", target)
		return nil
	}

	p.highlight = target
	p.highlightSeq++
	p.refresh()
	p.env.Bus.RequestTarget(pageSource, "deep-link", target, scroll.AlignCenter)
	p.env.Bus.RequestTargetConsumed(pageSource, "deep-link", target)

	day, seq := p.day, p.highlightSeq
	return tea.Tick(highlightDuration, func(time.Time) tea.Msg {
		return highlightDoneMsg{day: day, seq: seq}
	})
}

func (p *DayPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.Back):
		p.save()
		return func() tea.Msg { return PopPageMsg{} }
	case key.Matches(msg, p.keys.Quit):
		p.save()
		p.abortReply()
		return tea.Quit
	case key.Matches(msg, p.keys.Abort):
		return p.abortReply()
	case key.Matches(msg, p.keys.Compose):
		p.composing = true
		return p.input.Focus()
	case key.Matches(msg, p.keys.End):
		p.env.Bus.RequestForceEdge(pageSource, "key", true, scroll.Down)
		return nil
	case key.Matches(msg, p.keys.Home):
		p.scrollBy(-p.vp.YOffset())
	case key.Matches(msg, p.keys.Up):
		p.scrollBy(-1)
	case key.Matches(msg, p.keys.Down):
		p.scrollBy(1)
	case key.Matches(msg, p.keys.PgUp):
		p.scrollBy(-p.vp.Height())
	case key.Matches(msg, p.keys.PgDown):
		p.scrollBy(p.vp.Height())
	}
	return nil
}

// scrollBy moves the feed like the reader would and tells the coordinator.
func (p *DayPage) scrollBy(delta int) {
	if !p.ready {
		return
	}
	p.vp.SetYOffset(p.vp.YOffset() + delta)
	p.adapter.notify(scroll.InputKey)
}

func (p *DayPage) save() {
	if p.ready {
		p.env.Bus.BeforeSwap.Publish(scroll.BeforeSwap{
			Envelope: p.env.Bus.Envelope(pageSource, "leave"),
			TargetID: p.adapter.ID(),
		})
	}
}

func (p *DayPage) updateComposer(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.Abort):
		return p.abortReply()
	case key.Matches(msg, p.keys.Submit):
		text := strings.TrimSpace(p.input.Value())
		if text == "" {
			return nil
		}
		p.input.Reset()
		return p.appendEntry(text)
	case msg.String() == "esc":
		p.composing = false
		p.input.Blur()
		return nil
	case msg.String() == "ctrl+c":
		p.save()
		p.abortReply()
		return tea.Quit
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *DayPage) appendEntry(text string) tea.Cmd {
	j, day, now := p.env.Journal, p.day, p.env.now()
	return func() tea.Msg {
		e := journal.Entry{Day: day, Role: journal.RoleAuthor, Text: text, CreatedAt: now}
		if j == nil {
			e.ID = uuid.NewString()
			return entrySavedMsg{day: day, entry: e}
		}
		saved, err := j.Append(context.Background(), e)
		return entrySavedMsg{day: day, entry: saved, err: err}
	}
}

// beginReply starts streaming a reply to e. The stream controller's begin
// transition pulls the feed to its edge.
func (p *DayPage) beginReply(e journal.Entry) tea.Cmd {
	if p.env.Responder == nil {
		return nil
	}
	if p.streamID != "" {
		p.abortReply()
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	p.streamID = id
	p.streamCancel = cancel
	p.feed.BeginStream(id, p.env.now())
	p.refresh()
	if p.env.Stream != nil {
		p.env.Stream.BeginIn(p.adapter.ID(), id)
	}

	r, day := p.env.Responder, p.day
	req := stream.Request{MessageID: id, Day: day, Text: e.Text}
	return func() tea.Msg {
		ch, err := r.Respond(ctx, req)
		return streamOpenedMsg{day: day, id: id, ch: ch, err: err}
	}
}

func waitForChunk(day, id string, ch <-chan stream.Chunk) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return streamClosedMsg{day: day, id: id}
		}
		return streamChunkMsg{day: day, id: id, chunk: c, ch: ch}
	}
}

func (p *DayPage) handleChunk(msg streamChunkMsg) tea.Cmd {
	if msg.id != p.streamID {
		return nil
	}
	c := msg.chunk
	if c.Text != "" && p.feed.AppendChunk(msg.id, c.Text) {
		p.refresh()
		p.publishRendered(msg.id)
	}
	switch {
	case c.Error != "":
		p.feed.AppendChunk(msg.id, replyFailure(c.Error))
		return p.finishReply(stream.OutcomeError)
	case c.Done:
		return p.finishReply(stream.OutcomeDone)
	}
	return waitForChunk(p.day, msg.id, msg.ch)
}

// abortReply stops the active reply. Repeated calls are no-ops.
func (p *DayPage) abortReply() tea.Cmd {
	if p.streamID == "" {
		return nil
	}
	if p.env.Stream != nil && p.env.Stream.Active() == p.streamID {
		p.env.Stream.Abort()
	}
	return p.finishReply(stream.OutcomeAborted)
}

func (p *DayPage) finishReply(outcome stream.Outcome) tea.Cmd {
	id := p.streamID
	if id == "" {
		return nil
	}
	p.streamID = ""
	if p.streamCancel != nil {
		p.streamCancel()
		p.streamCancel = nil
	}
	p.feed.FinishStream(id)
	if p.env.Stream != nil && p.env.Stream.Active() == id {
		p.env.Stream.Complete(outcome)
	}
	p.refresh()
	tuilog.Log.Info("DayPage: reply finished", "id", id, "outcome", outcome)

	cmds := []tea.Cmd{p.renderPending()}
	if b, ok := p.feed.Get(id); ok && strings.TrimSpace(b.Text) != "" && p.env.Journal != nil {
		j, day := p.env.Journal, p.day
		e := journal.Entry{ID: id, Day: day, Role: journal.RoleReply, Text: b.Text, CreatedAt: b.At}
		cmds = append(cmds, func() tea.Msg {
			_, err := j.Append(context.Background(), e)
			return replySavedMsg{day: day, id: id, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func replyFailure(reason string) string {
	return "\n\n_" + i18n.Tf("tui.day.replyFailed", "Reply unavailable: %s", reason) + "_"
}

func blockFor(e journal.Entry) feed.Block {
	kind := feed.KindEntry
	if e.Role == journal.RoleReply {
		kind = feed.KindReply
	}
	return feed.Block{ID: e.ID, Kind: kind, Text: e.Text, At: e.CreatedAt}
}

// refresh recomposes the feed into the viewport. The offset is kept; the
// coordinator decides whether to move it.
func (p *DayPage) refresh() {
	if !p.ready && p.width == 0 {
		return
	}
	p.vp.SetContent(p.feed.Compose(p.decorate))
}

func (p *DayPage) decorate(b feed.Block) string {
	s := GetStyles()
	stamp := b.At.Format("15:04")

	var label string
	var block lipgloss.Style
	if b.Kind == feed.KindReply {
		label = s.ReplyLabel.Render(i18n.T("tui.day.replyLabel", "Daybook"))
		block = s.ReplyBlock
	} else {
		label = s.EntryLabel.Render(i18n.T("tui.day.entryLabel", "You"))
		block = s.EntryBlock
	}
	header := label + " " + s.Meta.Render(stamp)
	if b.ID == p.highlight {
		header = s.Highlight.Render(" " + header + " ")
	}

	width := p.contentWidth()
	var body string
	switch {
	case b.Streaming:
		body = s.Streaming.Width(width).Render(b.Text + "▍")
	case b.Rendered:
		body = block.Render(b.Output)
	default:
		body = block.Width(width).Render(b.Text)
	}
	return header + "\n" + body
}

// Surface pieces used by the shell.

func (p *DayPage) scrollViewport() scroll.Viewport {
	if !p.ready {
		return nil
	}
	return p.adapter
}

func (p *DayPage) followButton() scroll.FollowButton {
	if !p.ready {
		return nil
	}
	return p.button
}

func (p *DayPage) layout() scroll.Layout {
	h := p.vp.Height()
	return scroll.Layout{
		Container: scroll.Rect{X: 0, Y: titleRows, Width: p.width, Height: h},
		Feed:      scroll.Rect{X: feedPadding, Y: titleRows, Width: max(p.width-2*feedPadding, 0), Height: h},
	}
}

func (p *DayPage) locate(id string) (int, int, bool) {
	return p.feed.LineOf(id)
}

func (p *DayPage) pendingTarget() string { return p.target }

func (p *DayPage) highlighting() bool { return p.highlight != "" }

// Streaming reports whether a reply is being written.
func (p *DayPage) Streaming() bool { return p.streamID != "" }

func (p *DayPage) View() tea.View {
	v := tea.NewView(p.viewContent())
	v.AltScreen = true
	return v
}

func (p *DayPage) viewContent() string {
	if !p.ready {
		return i18n.T("tui.day.loading", "Loading...")
	}
	s := GetStyles()
	pad := lipgloss.NewStyle().PaddingLeft(feedPadding)

	var b strings.Builder
	b.WriteString(p.titleLine())
	b.WriteString("\n")
	b.WriteString(pad.Render(p.vp.View()))
	b.WriteString("\n")
	var metrics scroll.EdgeMetrics
	if p.env.Coord != nil {
		metrics = p.env.Coord.Metrics()
	}
	b.WriteString(p.button.View(p.width, metrics))
	b.WriteString("\n")
	b.WriteString(s.Composer.Render(p.input.View()))
	b.WriteString("\n")
	b.WriteString(p.helpLine())
	return b.String()
}

func (p *DayPage) titleLine() string {
	s := GetStyles()
	title := s.Crumb.Render(i18n.DayLabel(p.day, p.env.now()))
	n := p.feed.Len()
	info := s.Meta.Render(" · " + i18n.Tn("tui.day.entries", "{{.Count}} entry", "{{.Count}} entries", n))

	var status string
	switch {
	case p.loading:
		status = "  " + p.spinner.View() + " " + s.Meta.Render(i18n.T("tui.day.loading", "Loading..."))
	case p.streamID != "":
		status = "  " + p.spinner.View() + " " + s.Meta.Render(i18n.T("tui.day.replying", "Writing a reply..."))
	case p.err != nil:
		status = "  " + s.Error.Render(p.err.Error())
	}
	return title + info + status
}

func (p *DayPage) helpLine() string {
	s := GetStyles()
	var parts []string
	if p.composing {
		parts = []string{
			i18n.T("tui.help.send", "enter: send"),
			i18n.T("tui.help.stopWriting", "esc: stop writing"),
		}
	} else {
		parts = []string{
			i18n.T("tui.help.write", "i: write"),
			i18n.T("tui.help.scroll", "j/k: scroll"),
			i18n.T("tui.help.latest", "G: latest"),
			i18n.T("tui.help.back", "esc: back"),
			i18n.T("tui.help.quit", "q: quit"),
		}
	}
	if p.streamID != "" {
		parts = append(parts, i18n.T("tui.help.abort", "ctrl+x: stop reply"))
	}
	return s.Help.Render(fmt.Sprintf(" %s", strings.Join(parts, "  ·  ")))
}
