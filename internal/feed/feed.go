// Package feed holds the blocks shown in a day view and tracks which of
// them still have to be rendered.
package feed

import (
	"strings"
	"sync"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-daybook/internal/scroll"
)

// Kind is the kind of block.
type Kind string

const (
	KindEntry Kind = "entry"
	KindReply Kind = "reply"
)

// LoadingID is the ID of the sentinel block reported while a day loads.
const LoadingID = "loading"

// Block is one entry or reply in the feed.
type Block struct {
	ID        string
	Kind      Kind
	Text      string
	At        time.Time
	Streaming bool
	Rendered  bool
	// Output is the rendered form of Text, valid once Rendered is set.
	Output string
}

type span struct {
	top, height int
}

// Feed is an ordered list of blocks. All methods are safe for concurrent
// use and on a nil *Feed.
type Feed struct {
	mu      sync.Mutex
	blocks  []*Block
	index   map[string]int
	loading bool
	spans   map[string]span
}

// New creates an empty feed.
func New() *Feed {
	return &Feed{index: make(map[string]int), spans: make(map[string]span)}
}

// SetLoading marks the feed as waiting for its blocks.
func (f *Feed) SetLoading(loading bool) {
	if f == nil {
		return
	}
	f.mu.Lock()
	f.loading = loading
	f.mu.Unlock()
}

// Reset drops every block.
func (f *Feed) Reset() {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks = nil
	f.index = make(map[string]int)
	f.spans = make(map[string]span)
}

// Len returns the number of blocks.
func (f *Feed) Len() int {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blocks)
}

// Append adds a finished block that still needs rendering. A block with an
// existing ID replaces it.
func (f *Feed) Append(b Block) {
	if f == nil || b.ID == "" {
		return
	}
	b.Streaming = false
	b.Rendered = false
	b.Output = ""
	f.put(b)
}

// BeginStream adds an empty streaming reply.
func (f *Feed) BeginStream(id string, at time.Time) {
	if f == nil || id == "" {
		return
	}
	f.put(Block{ID: id, Kind: KindReply, At: at, Streaming: true})
}

func (f *Feed) put(b Block) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i, ok := f.index[b.ID]; ok {
		f.blocks[i] = &b
		return
	}
	f.index[b.ID] = len(f.blocks)
	f.blocks = append(f.blocks, &b)
}

// AppendChunk adds text to a streaming block. It reports whether the block
// exists and is still streaming.
func (f *Feed) AppendChunk(id, text string) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.lookup(id)
	if b == nil || !b.Streaming {
		return false
	}
	b.Text += text
	return true
}

// FinishStream ends a stream; the block then waits to be rendered.
func (f *Feed) FinishStream(id string) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.lookup(id)
	if b == nil || !b.Streaming {
		return false
	}
	b.Streaming = false
	b.Rendered = false
	return true
}

// MarkRendered stores output for a block. Output for a block that changed
// since the render started (still streaming) is ignored.
func (f *Feed) MarkRendered(id, output string) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.lookup(id)
	if b == nil || b.Streaming {
		return false
	}
	b.Output = output
	b.Rendered = true
	return true
}

// Invalidate drops the rendered output of every finished block, e.g. after
// the wrap width changed. It returns the number of blocks affected.
func (f *Feed) Invalidate() int {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.blocks {
		if b.Streaming {
			continue
		}
		b.Rendered = false
		n++
	}
	return n
}

// Get returns a copy of block id.
func (f *Feed) Get(id string) (Block, bool) {
	if f == nil {
		return Block{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.lookup(id)
	if b == nil {
		return Block{}, false
	}
	return *b, true
}

// Pending returns copies of the blocks that are finished but not rendered.
func (f *Feed) Pending() []Block {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Block
	for _, b := range f.blocks {
		if !b.Rendered && !b.Streaming {
			out = append(out, *b)
		}
	}
	return out
}

// BlockStates implements scroll.Content.
func (f *Feed) BlockStates() []scroll.BlockState {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	states := make([]scroll.BlockState, 0, len(f.blocks)+1)
	if f.loading {
		states = append(states, scroll.BlockState{ID: LoadingID})
	}
	for _, b := range f.blocks {
		states = append(states, scroll.BlockState{ID: b.ID, Rendered: b.Rendered, Streaming: b.Streaming})
	}
	return states
}

// Compose joins the blocks through decorate and records where each one
// starts, for LineOf. Blocks are separated by a blank line.
func (f *Feed) Compose(decorate func(Block) string) string {
	if f == nil {
		return ""
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.spans = make(map[string]span, len(f.blocks))
	var sb strings.Builder
	line := 0
	for i, b := range f.blocks {
		s := strings.TrimRight(decorate(*b), "\n")
		if i > 0 {
			sb.WriteString("\n\n")
			line++
		}
		h := lipgloss.Height(s)
		f.spans[b.ID] = span{top: line, height: h}
		sb.WriteString(s)
		line += h
	}
	return sb.String()
}

// LineOf returns the first line and height of block id in the last
// composed content.
func (f *Feed) LineOf(id string) (top, height int, ok bool) {
	if f == nil {
		return 0, 0, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spans[id]
	return s.top, s.height, ok
}

func (f *Feed) lookup(id string) *Block {
	i, ok := f.index[id]
	if !ok {
		return nil
	}
	return f.blocks[i]
}
