// Package api provides HTTP handlers for the kiosk API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Order-Alone/Order-Alone-Mobile/internal/config"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/kiosk"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/orderservice"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/store"
)

// Handler provides common handler utilities.
type Handler struct {
	repo     store.Repository
	svc      orderservice.API
	sessions *kiosk.Manager
	cfg      *config.Config
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, svc orderservice.API, sessions *kiosk.Manager, cfg *config.Config) *Handler {
	return &Handler{
		repo:     repo,
		svc:      svc,
		sessions: sessions,
		cfg:      cfg,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON request body into v. An empty body is accepted.
func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
