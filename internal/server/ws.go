package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/wethinkt/go-daybook/internal/stream"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// handleRespondWS reads one stream.Request and writes the reply chunks
// back as JSON messages.
func (s *HTTPServer) handleRespondWS(w http.ResponseWriter, r *http.Request) {
	if s.responder == nil {
		writeError(w, http.StatusServiceUnavailable, "responder_disabled", "No responder configured")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		tuilog.Log.Error("WebSocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	var req stream.Request
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		tuilog.Log.Debug("WS request read failed", "error", err)
		conn.Close(websocket.StatusUnsupportedData, "invalid request")
		return
	}

	chunks, err := s.responder.Respond(ctx, req)
	if err != nil {
		outcome := "error"
		if errors.Is(err, stream.ErrBusy) {
			outcome = "busy"
		}
		wsStreamsTotal.WithLabelValues(outcome).Inc()
		writeErrorChunk(ctx, conn, req.MessageID, err)
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	wsStreamsActive.Inc()
	defer wsStreamsActive.Dec()
	tuilog.Log.Info("WS reply stream started", "message_id", req.MessageID, "day", req.Day)

	for chunk := range chunks {
		if err := wsjson.Write(ctx, conn, chunk); err != nil {
			tuilog.Log.Debug("WS write failed", "message_id", req.MessageID, "error", err)
			wsStreamsTotal.WithLabelValues("aborted").Inc()
			return
		}
		if chunk.Done {
			outcome := "done"
			if chunk.Error != "" {
				outcome = "error"
			}
			wsStreamsTotal.WithLabelValues(outcome).Inc()
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
	wsStreamsTotal.WithLabelValues("aborted").Inc()
	conn.Close(websocket.StatusNormalClosure, "")
}

// writeErrorChunk ends the stream id with a done chunk carrying err.
func writeErrorChunk(ctx context.Context, conn *websocket.Conn, id string, err error) error {
	werr := wsjson.Write(ctx, conn, stream.Chunk{MessageID: id, Done: true, Error: err.Error()})
	if werr != nil {
		tuilog.Log.Debug("WS error reply failed", "message_id", id, "error", werr)
	}
	return werr
}
