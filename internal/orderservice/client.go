// Package orderservice provides the HTTP client for the remote Order Service,
// the network boundary supplying menus, missions and authoritative scoring.
package orderservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// API is the surface the session engine and handlers consume. Every call
// returns the decoded payload or an error; callers apply their own
// degrade-to-fallback policy, the client never does.
type API interface {
	StartGame(ctx context.Context, menuID string) (*StartGameResponse, error)
	EndGame(ctx context.Context, gameID string) (*EndGameResponse, error)
	RequestNextOrder(ctx context.Context, gameID string) (*OrderRecord, error)
	ScoreOrder(ctx context.Context, req ScoreRequest) (*ScoreResponse, error)
	GetMenuSummary(ctx context.Context, limit int) ([]MenuSummary, error)
	GetMenuDetail(ctx context.Context, menuID string) (*MenuDetail, error)
	GetOrdersByGame(ctx context.Context, gameID string, limit int) ([]OrderRecord, error)
	GetMyGames(ctx context.Context, limit int) ([]GameRecord, error)
	GetTopGames(ctx context.Context, limit int) ([]GameRecord, error)
	GetBestGame(ctx context.Context) (*GameRecord, error)
}

// ServiceError is a non-2xx response from the Order Service.
type ServiceError struct {
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("order service responded %d: %s", e.Status, e.Body)
}

// Client is the HTTP implementation of API. Concurrent duplicate reads of the
// same path are collapsed into one underlying request via singleflight.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	group   singleflight.Group
}

var _ API = (*Client)(nil)

// NewClient creates a client for the Order Service at baseURL. The token, if
// non-empty, is sent as a bearer credential on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// StartGame begins a session and returns the first issued order.
func (c *Client) StartGame(ctx context.Context, menuID string) (*StartGameResponse, error) {
	var out StartGameResponse
	body := map[string]string{"menu_id": menuID}
	if err := c.do(ctx, http.MethodPost, "/game/start", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EndGame finishes the game and returns the authoritative final score.
func (c *Client) EndGame(ctx context.Context, gameID string) (*EndGameResponse, error) {
	var out EndGameResponse
	body := map[string]string{"game_id": gameID}
	if err := c.do(ctx, http.MethodPost, "/game/end", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestNextOrder advances the game to its next issued order.
func (c *Client) RequestNextOrder(ctx context.Context, gameID string) (*OrderRecord, error) {
	var out OrderRecord
	body := map[string]string{"game_id": gameID}
	if err := c.do(ctx, http.MethodPost, "/order", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ScoreOrder submits a completed order for authoritative scoring.
func (c *Client) ScoreOrder(ctx context.Context, req ScoreRequest) (*ScoreResponse, error) {
	if req.ToppingNames == nil {
		req.ToppingNames = []string{}
	}
	var out ScoreResponse
	if err := c.do(ctx, http.MethodPost, "/order/score", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMenuSummary lists up to limit menus.
func (c *Client) GetMenuSummary(ctx context.Context, limit int) ([]MenuSummary, error) {
	path := "/menu/summary?limit=" + strconv.Itoa(limit)
	return getShared[[]MenuSummary](ctx, c, path)
}

// GetMenuDetail fetches the full category/item/topping detail for a menu.
func (c *Client) GetMenuDetail(ctx context.Context, menuID string) (*MenuDetail, error) {
	out, err := getShared[MenuDetail](ctx, c, "/menu/"+url.PathEscape(menuID))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrdersByGame lists the orders issued during a game.
func (c *Client) GetOrdersByGame(ctx context.Context, gameID string, limit int) ([]OrderRecord, error) {
	path := "/order/game/" + url.PathEscape(gameID) + "?limit=" + strconv.Itoa(limit)
	return getShared[[]OrderRecord](ctx, c, path)
}

// GetMyGames lists the authenticated user's finished games.
func (c *Client) GetMyGames(ctx context.Context, limit int) ([]GameRecord, error) {
	path := "/game/"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	return getShared[[]GameRecord](ctx, c, path)
}

// GetTopGames lists the global top-scoring games.
func (c *Client) GetTopGames(ctx context.Context, limit int) ([]GameRecord, error) {
	path := "/game/top?limit=" + strconv.Itoa(limit)
	return getShared[[]GameRecord](ctx, c, path)
}

// GetBestGame returns the authenticated user's best game.
func (c *Client) GetBestGame(ctx context.Context) (*GameRecord, error) {
	out, err := getShared[GameRecord](ctx, c, "/game/best")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// getShared performs a GET with singleflight deduplication keyed by path, so
// concurrent identical reads fan out one result to all callers. The shared
// request runs under its own deadline, not the first caller's context, so a
// caller cancelling never poisons the waiters collapsed onto its flight.
func getShared[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	ch := c.group.DoChan(path, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), c.httpc.Timeout)
		defer cancel()
		var out T
		if err := c.do(fetchCtx, http.MethodGet, path, nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("order service request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServiceError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
