package scroll

import (
	"github.com/wethinkt/go-daybook/internal/stream"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// Bridge subscribes a Coordinator to a Bus. Each signal maps to exactly one
// coordinator call; the bridge itself makes no decisions.
type Bridge struct {
	bus    *Bus
	c      *Coordinator
	unsubs []func()
}

// NewBridge creates a stopped bridge.
func NewBridge(bus *Bus, c *Coordinator) *Bridge {
	return &Bridge{bus: bus, c: c}
}

// Start subscribes to every signal. Starting a running bridge is a no-op.
func (b *Bridge) Start() {
	if b.unsubs != nil {
		return
	}
	c := b.c
	b.unsubs = []func(){
		b.bus.ForceEdge.Subscribe(c.HandleForceEdge),
		b.bus.Target.Subscribe(func(ev TargetRequest) { c.ScrollToTarget(ev) }),
		b.bus.Refresh.Subscribe(func(RefreshRequest) { c.Refresh() }),
		b.bus.TargetConsumed.Subscribe(c.HandleTargetConsumed),
		b.bus.ContentRendered.Subscribe(c.HandleContentRendered),
		b.bus.Layout.Subscribe(c.HandleResize),
		b.bus.PageShow.Subscribe(c.HandlePageShow),
		b.bus.BeforeSwap.Subscribe(c.HandleBeforeSwap),
		b.bus.AfterSwap.Subscribe(c.HandleLoad),
		b.bus.History.Subscribe(c.HandleHistoryNavigated),
		b.bus.Stream.Subscribe(func(s stream.Snapshot) { c.HandleStream(s) }),
	}
	tuilog.Log.Debug("Bridge: started", "subscriptions", len(b.unsubs))
}

// Stop removes every subscription.
func (b *Bridge) Stop() {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
}

// Running reports whether the bridge is subscribed.
func (b *Bridge) Running() bool {
	return b.unsubs != nil
}
