package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Order-Alone/Order-Alone-Mobile/internal/domain"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/identity"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/orderservice"
	"github.com/go-chi/chi/v5"
)

// gameView is the response shape for game listings, remote or local.
type gameView struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	MenuID   string `json:"menu_id"`
	Score    int    `json:"score"`
	Date     string `json:"date"`
}

func remoteGameView(g orderservice.GameRecord) gameView {
	return gameView{ID: g.ID, UserID: g.UserID, UserName: g.UserName, MenuID: g.MenuID, Score: g.Score, Date: g.Date}
}

func localGameView(g *domain.GameRecord) gameView {
	return gameView{ID: g.ID, UserID: g.UserID, UserName: g.UserName, MenuID: g.MenuID, Score: g.Score, Date: g.CreatedAt.Format(time.RFC3339)}
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Menus lists the available menus from the Order Service.
func (h *Handler) Menus(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, 100)
	summaries, err := h.svc.GetMenuSummary(r.Context(), limit)
	if err != nil {
		slog.Warn("Menu summary unavailable", "error", err)
		JSON(w, http.StatusOK, []orderservice.MenuSummary{})
		return
	}
	JSON(w, http.StatusOK, summaries)
}

// GameOrders replays the orders issued during a finished game, for the
// result screen. Orders live only on the Order Service; when it is
// unreachable the replay degrades to an empty list.
func (h *Handler) GameOrders(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	limit := limitParam(r, 100)

	orders, err := h.svc.GetOrdersByGame(r.Context(), gameID, limit)
	if err != nil {
		slog.Warn("Order replay unavailable", "error", err, "game_id", gameID)
		JSON(w, http.StatusOK, []orderservice.OrderRecord{})
		return
	}
	JSON(w, http.StatusOK, orders)
}

// MyGames lists the caller's finished games: Order Service first, local
// records when the service is unreachable.
func (h *Handler) MyGames(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, 20)

	if remote, err := h.svc.GetMyGames(r.Context(), limit); err == nil {
		views := make([]gameView, len(remote))
		for i, g := range remote {
			views[i] = remoteGameView(g)
		}
		JSON(w, http.StatusOK, views)
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	local, err := h.repo.GamesByUser(r.Context(), userID, limit)
	if err != nil {
		slog.Error("Failed to load local games", "error", err, "user_id", userID)
		JSON(w, http.StatusOK, []gameView{})
		return
	}
	views := make([]gameView, len(local))
	for i, g := range local {
		views[i] = localGameView(g)
	}
	JSON(w, http.StatusOK, views)
}

// TopGames lists the highest-scoring games, remote first with local fallback.
func (h *Handler) TopGames(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, 10)

	if remote, err := h.svc.GetTopGames(r.Context(), limit); err == nil {
		views := make([]gameView, len(remote))
		for i, g := range remote {
			views[i] = remoteGameView(g)
		}
		JSON(w, http.StatusOK, views)
		return
	}

	local, err := h.repo.TopGames(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to load local top games", "error", err)
		JSON(w, http.StatusOK, []gameView{})
		return
	}
	views := make([]gameView, len(local))
	for i, g := range local {
		views[i] = localGameView(g)
	}
	JSON(w, http.StatusOK, views)
}

// BestGame returns the caller's best game, remote first with local fallback.
func (h *Handler) BestGame(w http.ResponseWriter, r *http.Request) {
	if remote, err := h.svc.GetBestGame(r.Context()); err == nil && remote != nil {
		JSON(w, http.StatusOK, remoteGameView(*remote))
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	local, err := h.repo.BestGame(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to load local best game", "error", err, "user_id", userID)
		Error(w, http.StatusNotFound, "no games recorded")
		return
	}
	if local == nil {
		Error(w, http.StatusNotFound, "no games recorded")
		return
	}
	JSON(w, http.StatusOK, localGameView(local))
}
