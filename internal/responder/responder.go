// Package responder writes short reflective replies to journal entries and
// streams them word by word.
package responder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/wethinkt/go-daybook/internal/stream"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// DefaultMaxStreams is how many replies an Engine streams at once.
const DefaultMaxStreams = 4

// Engine is a stream.Responder that needs no network.
type Engine struct {
	cps int
	sem chan struct{}
}

// New creates an engine emitting about charsPerSecond characters per
// second per stream. Zero or less disables pacing.
func New(charsPerSecond, maxStreams int) *Engine {
	if maxStreams <= 0 {
		maxStreams = DefaultMaxStreams
	}
	return &Engine{cps: charsPerSecond, sem: make(chan struct{}, maxStreams)}
}

var _ stream.Responder = (*Engine)(nil)

// Respond starts streaming a reply to req. It returns stream.ErrBusy when
// every stream slot is taken.
func (e *Engine) Respond(ctx context.Context, req stream.Request) (<-chan stream.Chunk, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("responder: empty request")
	}
	select {
	case e.sem <- struct{}{}:
	default:
		return nil, stream.ErrBusy
	}

	ch := make(chan stream.Chunk, 8)
	go func() {
		defer func() { <-e.sem }()
		defer close(ch)
		e.run(ctx, req, ch)
	}()
	return ch, nil
}

func (e *Engine) limiter() *rate.Limiter {
	if e.cps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(e.cps), max(e.cps/4, 8))
}

func (e *Engine) run(ctx context.Context, req stream.Request, ch chan<- stream.Chunk) {
	lim := e.limiter()
	reply := Reflect(req.Text)
	words := strings.SplitAfter(reply, " ")
	tuilog.Log.Debug("Responder: streaming", "message_id", req.MessageID, "words", len(words))

	for _, w := range words {
		n := min(len(w), max(lim.Burst(), 1))
		if err := lim.WaitN(ctx, n); err != nil {
			if ctx.Err() == nil {
				send(ctx, ch, stream.Chunk{MessageID: req.MessageID, Done: true, Error: err.Error()})
			}
			return
		}
		if !send(ctx, ch, stream.Chunk{MessageID: req.MessageID, Text: w}) {
			return
		}
	}
	send(ctx, ch, stream.Chunk{MessageID: req.MessageID, Done: true})
}

func send(ctx context.Context, ch chan<- stream.Chunk, c stream.Chunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// Reflect builds the reply text for an entry. The same entry always
// produces the same reply.
func Reflect(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var sb strings.Builder
	sb.WriteString("Thanks for writing this down.")

	if kw := keywords(words, 2); len(kw) > 0 {
		sb.WriteString(" It sounds like **")
		sb.WriteString(strings.Join(kw, "** and **"))
		sb.WriteString("** were on your mind.")
	}
	if strings.Contains(text, "?") {
		sb.WriteString(" You asked yourself a question; what would a good answer look like tomorrow?")
	}
	fmt.Fprintf(&sb, " That is %s %s.", humanize.Comma(int64(len(words))), plural(len(words), "word", "words"))
	return sb.String()
}

// keywords returns up to n of the longest distinct words, longest first.
func keywords(words []string, n int) []string {
	seen := make(map[string]bool)
	var cands []string
	for _, w := range words {
		lw := strings.ToLower(w)
		if len([]rune(lw)) < 5 || seen[lw] {
			continue
		}
		seen[lw] = true
		cands = append(cands, lw)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return len([]rune(cands[i])) > len([]rune(cands[j]))
	})
	if len(cands) > n {
		cands = cands[:n]
	}
	return cands
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
