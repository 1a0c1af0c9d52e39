package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// Client is a Responder backed by a daybook server's /ws/respond endpoint.
type Client struct {
	url    string
	header http.Header
}

// NewClient creates a client for the websocket endpoint at url.
func NewClient(url string) *Client {
	return &Client{url: url}
}

// WithHeader returns a copy of the client that sends h on dial.
func (c *Client) WithHeader(h http.Header) *Client {
	cp := *c
	cp.header = h.Clone()
	return &cp
}

// Respond dials the endpoint, sends req and streams the reply chunks.
func (c *Client) Respond(ctx context.Context, req Request) (<-chan Chunk, error) {
	opts := &websocket.DialOptions{HTTPHeader: c.header}
	conn, _, err := websocket.Dial(ctx, c.url, opts)
	if err != nil {
		return nil, fmt.Errorf("dial responder: %w", err)
	}
	if err := wsjson.Write(ctx, conn, req); err != nil {
		conn.CloseNow()
		return nil, fmt.Errorf("send request: %w", err)
	}

	ch := make(chan Chunk, 16)
	go c.readLoop(ctx, conn, req.MessageID, ch)
	return ch, nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, id string, ch chan<- Chunk) {
	defer close(ch)
	defer conn.CloseNow()

	for {
		var chunk Chunk
		if err := wsjson.Read(ctx, conn, &chunk); err != nil {
			if ctx.Err() != nil {
				return
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				return
			}
			tuilog.Log.Warn("Responder stream read failed", "message_id", id, "error", err)
			select {
			case ch <- Chunk{MessageID: id, Done: true, Error: err.Error()}:
			case <-ctx.Done():
			}
			return
		}

		select {
		case ch <- chunk:
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "client closing")
			return
		}
		if chunk.Done {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}
