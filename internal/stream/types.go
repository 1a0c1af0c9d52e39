package stream

import (
	"context"
	"errors"
)

// ErrBusy is returned by a Responder that cannot take another stream.
var ErrBusy = errors.New("stream: responder busy")

// Request asks a responder to reply to a journal entry.
type Request struct {
	MessageID string `json:"message_id"`
	Day       string `json:"day"`
	Text      string `json:"text"`
}

// Chunk is one piece of a streamed reply. The last chunk has Done set;
// a failed reply ends with a Done chunk carrying Error.
type Chunk struct {
	MessageID string `json:"message_id"`
	Text      string `json:"text,omitempty"`
	Done      bool   `json:"done,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Responder produces a streamed reply. The returned channel is closed after
// the final chunk or when ctx is cancelled.
type Responder interface {
	Respond(ctx context.Context, req Request) (<-chan Chunk, error)
}
