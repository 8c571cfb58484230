package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Order-Alone/Order-Alone-Mobile/internal/identity"
	"github.com/coder/websocket"
)

// SessionStream streams session events (ticks, state transitions, cart and
// mission changes, the terminal summary) to the browser over WebSocket.
func (h *Handler) SessionStream(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	engine := h.sessions.Get(userID, sessionID)
	if engine == nil {
		Error(w, http.StatusNotFound, "no active session")
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, unsubscribe := engine.Subscribe()
	defer unsubscribe()

	// Prime the client with a full snapshot before streaming deltas.
	if err := writeJSON(ctx, ws, engine.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Engine finalized or closed; the summary, if any, was the
				// last event delivered.
				return
			}
			if err := writeJSON(ctx, ws, ev); err != nil {
				slog.Debug("Session stream write failed", "error", err, "user_id", userID)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
