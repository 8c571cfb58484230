package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Order-Alone/Order-Alone-Mobile/internal/identity"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/kiosk"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

func TestSessionStream(t *testing.T) {
	repo := &fakeRepo{}
	svc := &fakeAPI{}
	sessions := kiosk.NewManager()
	cfg := testConfig()

	h := NewHandler(repo, svc, sessions, cfg)
	r := chi.NewRouter()
	r.Use(identity.Middleware(true))
	h.RegisterRoutes(r)
	r.Get("/ws/session", h.SessionStream)

	ts := newServerWithRouter(t, r, repo, svc)
	defer sessions.Shutdown()

	if resp, _ := ts.do(t, http.MethodPost, "/api/session/start", nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("start failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/session"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPClient: ts.client,
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// First frame is the full snapshot.
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snap struct {
		State   string `json:"state"`
		Mission string `json:"mission"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.State != "active" || snap.Mission == "" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	// A cart mutation shows up as an event frame.
	ts.do(t, http.MethodPost, "/api/session/item", map[string]string{"item_id": "burger-1"})
	ts.do(t, http.MethodPost, "/api/session/cart", nil)

	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatalf("no cart event received")
		}
		_, data, err = conn.Read(ctx)
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		var ev struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if ev.Type == "cart" {
			return
		}
	}
}

func TestSessionStream_NoSession(t *testing.T) {
	repo := &fakeRepo{}
	svc := &fakeAPI{}
	sessions := kiosk.NewManager()
	h := NewHandler(repo, svc, sessions, testConfig())

	r := chi.NewRouter()
	r.Use(identity.Middleware(true))
	r.Get("/ws/session", h.SessionStream)

	ts := newServerWithRouter(t, r, repo, svc)

	resp, err := ts.client.Get(ts.URL + "/ws/session")
	if err != nil {
		t.Fatalf("GET /ws/session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
