package scroll

import (
	"time"

	"github.com/wethinkt/go-daybook/internal/eventbus"
	"github.com/wethinkt/go-daybook/internal/stream"
)

// Envelope is embedded in every event.
type Envelope struct {
	Source    string    `json:"source"`
	Reason    string    `json:"reason,omitempty"`
	EmittedAt time.Time `json:"emittedAt"`
}

// ForceEdgeRequest asks the bound viewport to jump to an edge.
// A zero Direction means the bound button's direction.
type ForceEdgeRequest struct {
	Envelope
	Force     bool      `json:"force"`
	Direction Direction `json:"direction,omitempty"`
}

// TargetRequest asks to scroll an element into view.
type TargetRequest struct {
	Envelope
	ID    string `json:"id"`
	Align Align  `json:"align,omitempty"`
}

// TargetConsumed reports that a target-based navigation was handled
// elsewhere.
type TargetConsumed struct {
	Envelope
	Target string `json:"target"`
}

// RefreshRequest asks the coordinator to re-resolve its bound elements.
type RefreshRequest struct {
	Envelope
}

// ContentRendered reports that a block inside a viewport was (re)rendered.
// An empty ViewportID matches whatever viewport is bound.
type ContentRendered struct {
	Envelope
	ViewportID string `json:"viewportId,omitempty"`
	BlockID    string `json:"blockId,omitempty"`
}

// LayoutChanged reports that the feed's size changed.
type LayoutChanged struct {
	Envelope
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BeforeSwap is sent just before the node TargetID is replaced.
type BeforeSwap struct {
	Envelope
	TargetID string `json:"targetId"`
}

// AfterSwap is sent once the replacement for TargetID is in place.
type AfterSwap struct {
	Envelope
	TargetID string `json:"targetId"`
}

// PageShow is sent when a page becomes visible again. Persisted is true
// when the page was kept in memory rather than rebuilt.
type PageShow struct {
	Envelope
	Persisted bool `json:"persisted"`
}

// HistoryNavigated is sent after back/forward navigation between views.
type HistoryNavigated struct {
	Envelope
}

// HistoryRestore is emitted by the coordinator when it handles a history
// navigation.
type HistoryRestore struct {
	Envelope
	Key ViewKey `json:"key"`
}

// RestoreComplete is emitted when a restoration attempt resolves.
type RestoreComplete struct {
	Envelope
	Key      ViewKey `json:"key"`
	Restored bool    `json:"restored"`
}

// Bus carries every signal the coordinator consumes or emits.
// Construct it once and inject it into the coordinator and all emitters.
type Bus struct {
	ForceEdge       *eventbus.Bus[ForceEdgeRequest]
	Target          *eventbus.Bus[TargetRequest]
	TargetConsumed  *eventbus.Bus[TargetConsumed]
	Refresh         *eventbus.Bus[RefreshRequest]
	ContentRendered *eventbus.Bus[ContentRendered]
	Layout          *eventbus.Bus[LayoutChanged]
	BeforeSwap      *eventbus.Bus[BeforeSwap]
	AfterSwap       *eventbus.Bus[AfterSwap]
	PageShow        *eventbus.Bus[PageShow]
	History         *eventbus.Bus[HistoryNavigated]
	Stream          *eventbus.Bus[stream.Snapshot]

	HistoryRestore  *eventbus.Bus[HistoryRestore]
	RestoreComplete *eventbus.Bus[RestoreComplete]

	// Now stamps envelopes. Defaults to time.Now.
	Now func() time.Time
}

// NewBus creates a bus with every channel allocated.
func NewBus() *Bus {
	return &Bus{
		ForceEdge:       eventbus.New[ForceEdgeRequest](),
		Target:          eventbus.New[TargetRequest](),
		TargetConsumed:  eventbus.New[TargetConsumed](),
		Refresh:         eventbus.New[RefreshRequest](),
		ContentRendered: eventbus.New[ContentRendered](),
		Layout:          eventbus.New[LayoutChanged](),
		BeforeSwap:      eventbus.New[BeforeSwap](),
		AfterSwap:       eventbus.New[AfterSwap](),
		PageShow:        eventbus.New[PageShow](),
		History:         eventbus.New[HistoryNavigated](),
		Stream:          eventbus.New[stream.Snapshot](),
		HistoryRestore:  eventbus.New[HistoryRestore](),
		RestoreComplete: eventbus.New[RestoreComplete](),
		Now:             time.Now,
	}
}

// Envelope stamps a new envelope.
func (b *Bus) Envelope(source, reason string) Envelope {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return Envelope{Source: source, Reason: reason, EmittedAt: now()}
}

// RequestForceEdge asks the bound viewport to jump to an edge.
func (b *Bus) RequestForceEdge(source, reason string, force bool, dir Direction) {
	b.ForceEdge.Publish(ForceEdgeRequest{
		Envelope:  b.Envelope(source, reason),
		Force:     force,
		Direction: dir,
	})
}

// RequestTarget asks to scroll the element id into view.
func (b *Bus) RequestTarget(source, reason, id string, align Align) {
	b.Target.Publish(TargetRequest{
		Envelope: b.Envelope(source, reason),
		ID:       id,
		Align:    align,
	})
}

// RequestTargetConsumed reports that target was handled elsewhere.
func (b *Bus) RequestTargetConsumed(source, reason, target string) {
	b.TargetConsumed.Publish(TargetConsumed{
		Envelope: b.Envelope(source, reason),
		Target:   target,
	})
}

// RequestRefresh asks the coordinator to re-resolve its elements.
func (b *Bus) RequestRefresh(source, reason string) {
	b.Refresh.Publish(RefreshRequest{Envelope: b.Envelope(source, reason)})
}
