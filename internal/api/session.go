package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Order-Alone/Order-Alone-Mobile/internal/domain"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/identity"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/kiosk"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RegisterRoutes registers all kiosk API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/me", h.GetMe)
		r.Post("/me", h.SetMe)

		r.Post("/session/start", h.StartSession)
		r.Get("/session", h.GetSession)
		r.Delete("/session", h.EndSession)
		r.Post("/session/category", h.SelectCategory)
		r.Post("/session/item", h.SelectItem)
		r.Post("/session/topping", h.ToggleTopping)
		r.Post("/session/cart", h.AddToCart)
		r.Post("/session/cart/quantity", h.ChangeQuantity)
		r.Post("/session/cart/open", h.OpenCart)
		r.Post("/session/payment/open", h.OpenPayment)
		r.Post("/session/payment", h.ChoosePayment)
		r.Post("/session/purchase", h.Purchase)

		r.Get("/menus", h.Menus)
		r.Get("/games", h.MyGames)
		r.Get("/games/{gameID}/orders", h.GameOrders)
		r.Get("/rankings/top", h.TopGames)
		r.Get("/rankings/best", h.BestGame)
	})
}

// GetMe returns the caller's anonymous identity and display name.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"user_id":     identity.UserIDFromContext(r.Context()),
		"player_name": identity.PlayerNameFromContext(r.Context()),
	})
}

// SetMe stores the caller's display name.
func (h *Handler) SetMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}
	identity.SetPlayerName(w, req.Name, h.cfg.IsDevelopment())
	JSON(w, http.StatusOK, map[string]string{"player_name": req.Name})
}

// StartSession creates and boots a kiosk session for the caller, replacing
// any session already running in the same tab.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	var req struct {
		MenuID string `json:"menu_id"`
	}
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player := kiosk.Player{
		ID:   userID,
		Name: identity.PlayerNameFromContext(r.Context()),
	}
	engine := kiosk.NewEngine(h.svc, player, kiosk.Options{
		MenuID:         req.MenuID,
		SessionSeconds: h.cfg.SessionSeconds,
		SettleDelay:    h.cfg.SettleDelay(),
		OnSummary:      h.recordSummary(userID),
	})
	h.sessions.Register(userID, sessionID, engine)
	engine.Start()

	JSON(w, http.StatusCreated, engine.Snapshot())
}

// recordSummary persists the terminal summary as a local game record.
func (h *Handler) recordSummary(userID string) func(kiosk.SessionSummary) {
	return func(summary kiosk.SessionSummary) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		game := &domain.GameRecord{
			ID:        uuid.NewString(),
			UserID:    userID,
			UserName:  summary.PlayerName,
			MenuID:    summary.MenuID,
			Score:     summary.Score,
			CreatedAt: time.Now(),
		}
		if err := h.repo.SaveGame(ctx, game); err != nil {
			slog.Error("Failed to record finished game", "error", err, "user_id", userID, "game_id", summary.GameID)
			return
		}
		slog.Info("Finished game recorded", "user_id", userID, "game_id", summary.GameID, "score", summary.Score)
	}
}

func (h *Handler) engine(w http.ResponseWriter, r *http.Request) *kiosk.Engine {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	engine := h.sessions.Get(userID, sessionID)
	if engine == nil {
		Error(w, http.StatusNotFound, "no active session")
		return nil
	}
	return engine
}

// GetSession returns the current session snapshot.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	JSON(w, http.StatusOK, engine.Snapshot())
}

// EndSession tears the caller's session down.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	engine := h.sessions.Get(userID, sessionID)
	if engine == nil {
		Error(w, http.StatusNotFound, "no active session")
		return
	}
	engine.Close()
	h.sessions.Unregister(userID, sessionID, engine)
	JSON(w, http.StatusOK, map[string]bool{"closed": true})
}

// SelectCategory switches the active menu category.
func (h *Handler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	var req struct {
		Category string `json:"category"`
	}
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	engine.SelectCategory(req.Category)
	JSON(w, http.StatusOK, engine.Snapshot())
}

// SelectItem opens the topping sheet for a menu item.
func (h *Handler) SelectItem(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	engine.SelectItem(req.ItemID)
	JSON(w, http.StatusOK, engine.Snapshot())
}

// ToggleTopping toggles a topping on the selected item.
func (h *Handler) ToggleTopping(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	var req struct {
		ToppingID string `json:"topping_id"`
	}
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	engine.ToggleTopping(req.ToppingID)
	JSON(w, http.StatusOK, engine.Snapshot())
}

// AddToCart commits the selected item and toppings to the cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	engine.AddToCart()
	JSON(w, http.StatusOK, engine.Snapshot())
}

// ChangeQuantity adjusts a cart line quantity.
func (h *Handler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	var req struct {
		Index int `json:"index"`
		Delta int `json:"delta"`
	}
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	engine.ChangeQuantity(req.Index, req.Delta)
	JSON(w, http.StatusOK, engine.Snapshot())
}

// OpenCart opens the cart sheet.
func (h *Handler) OpenCart(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	engine.OpenCart()
	JSON(w, http.StatusOK, engine.Snapshot())
}

// OpenPayment opens the payment sheet.
func (h *Handler) OpenPayment(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	engine.OpenPayment()
	JSON(w, http.StatusOK, engine.Snapshot())
}

// ChoosePayment records the payment method.
func (h *Handler) ChoosePayment(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	var req struct {
		Method string `json:"method"`
	}
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	engine.ChoosePayment(kiosk.PaymentMethod(req.Method))
	JSON(w, http.StatusOK, engine.Snapshot())
}

// Purchase submits the assembled cart. Preconditions that fail (empty cart,
// no payment method, session not active) come back as accepted=false, never
// as an error.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	accepted := engine.Purchase()
	JSON(w, http.StatusOK, map[string]interface{}{
		"accepted": accepted,
		"session":  engine.Snapshot(),
	})
}
