// Package stream tracks the assistant reply that is currently streaming into
// the feed and delivers reply chunks from a responder.
package stream

import (
	"sync"
	"time"

	"github.com/wethinkt/go-daybook/internal/eventbus"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// Status is the controller's current state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
	StatusAborting  Status = "aborting"
)

// Transition names the change that produced a snapshot.
type Transition string

const (
	TransitionBegin    Transition = "begin"
	TransitionAbort    Transition = "abort"
	TransitionComplete Transition = "complete"
)

// Outcome is the terminal label of a completed stream.
type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeError   Outcome = "error"
	OutcomeAborted Outcome = "aborted"
)

// Source is the envelope source of controller snapshots.
const Source = "stream"

// Snapshot is published on every transition. Source, Reason and EmittedAt
// carry the same envelope as the scroll events.
type Snapshot struct {
	Source    string    `json:"source"`
	Reason    string    `json:"reason,omitempty"`
	EmittedAt time.Time `json:"emittedAt"`

	Status     Status     `json:"status"`
	MessageID  string     `json:"currentMessageId,omitempty"`
	Transition Transition `json:"transition"`
	// Finished is the id of the message a complete transition closed.
	Finished string  `json:"finishedMessageId,omitempty"`
	Outcome  Outcome `json:"outcome,omitempty"`
	// ViewportID is the feed the stream writes into. Empty means any.
	ViewportID string `json:"viewportId,omitempty"`
}

// Controller is the streaming session state machine:
// idle -> streaming -> (aborting | idle).
type Controller struct {
	mu     sync.Mutex
	status Status
	id     string
	owner  string
	bus    *eventbus.Bus[Snapshot]
	now    func() time.Time
}

// NewController creates an idle controller publishing to bus.
// A nil bus gets a private one.
func NewController(bus *eventbus.Bus[Snapshot]) *Controller {
	if bus == nil {
		bus = eventbus.New[Snapshot]()
	}
	return &Controller{
		status: StatusIdle,
		bus:    bus,
		now:    time.Now,
	}
}

// Bus returns the bus snapshots are published on.
func (c *Controller) Bus() *eventbus.Bus[Snapshot] {
	return c.bus
}

// Begin marks id as the streaming message. Beginning the message that is
// already streaming is a no-op and returns false.
func (c *Controller) Begin(id string) bool {
	return c.BeginIn("", id)
}

// BeginIn is Begin for a stream writing into the feed viewportID. Every
// snapshot of the stream carries that id.
func (c *Controller) BeginIn(viewportID, id string) bool {
	if id == "" {
		return false
	}
	c.mu.Lock()
	if c.status == StatusStreaming && c.id == id {
		c.mu.Unlock()
		return false
	}
	if c.status != StatusIdle {
		tuilog.Log.Debug("Stream: superseding active stream", "previous", c.id, "next", id)
	}
	c.status = StatusStreaming
	c.id = id
	c.owner = viewportID
	snap := c.snapshotLocked(TransitionBegin, "", "")
	c.mu.Unlock()

	tuilog.Log.Info("Stream: begin", "message_id", id, "viewport", viewportID)
	c.bus.Publish(snap)
	return true
}

// Abort asks the active stream to stop. It only acts on a streaming
// controller, so repeated calls are no-ops.
func (c *Controller) Abort() bool {
	c.mu.Lock()
	if c.status != StatusStreaming {
		c.mu.Unlock()
		return false
	}
	c.status = StatusAborting
	snap := c.snapshotLocked(TransitionAbort, "", "")
	c.mu.Unlock()

	tuilog.Log.Info("Stream: abort", "message_id", snap.MessageID)
	c.bus.Publish(snap)
	return true
}

// Complete returns the controller to idle and clears the active id.
// A stream that was aborting always completes as OutcomeAborted.
func (c *Controller) Complete(outcome Outcome) bool {
	c.mu.Lock()
	if c.status == StatusIdle {
		c.mu.Unlock()
		return false
	}
	if c.status == StatusAborting {
		outcome = OutcomeAborted
	}
	if outcome == "" {
		outcome = OutcomeDone
	}
	finished := c.id
	c.status = StatusIdle
	c.id = ""
	snap := c.snapshotLocked(TransitionComplete, finished, outcome)
	c.owner = ""
	c.mu.Unlock()

	tuilog.Log.Info("Stream: complete", "message_id", finished, "outcome", outcome)
	c.bus.Publish(snap)
	return true
}

// Snapshot returns the current state without publishing.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Source:     Source,
		EmittedAt:  c.now(),
		Status:     c.status,
		MessageID:  c.id,
		ViewportID: c.owner,
	}
}

// Active returns the id of the streaming message, or "".
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Controller) snapshotLocked(t Transition, finished string, outcome Outcome) Snapshot {
	return Snapshot{
		Source:     Source,
		Reason:     string(t),
		EmittedAt:  c.now(),
		Status:     c.status,
		MessageID:  c.id,
		Transition: t,
		Finished:   finished,
		Outcome:    outcome,
		ViewportID: c.owner,
	}
}
