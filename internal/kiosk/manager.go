package kiosk

import (
	"log/slog"
	"sync"
)

// Manager tracks the active session engine for each user and tab session.
type Manager struct {
	mu     sync.RWMutex
	active map[string]map[string]*Engine
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		active: make(map[string]map[string]*Engine),
	}
}

// Get returns the active engine for a user and session.
func (m *Manager) Get(userID, sessionID string) *Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sessions, ok := m.active[userID]; ok {
		return sessions[sessionID]
	}
	return nil
}

// Register installs a new engine for a user/session, closing any engine it
// replaces.
func (m *Manager) Register(userID, sessionID string, e *Engine) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[userID]; !exists {
		m.active[userID] = make(map[string]*Engine)
	}

	if existing, exists := m.active[userID][sessionID]; exists && existing != e {
		existing.Close()
	}

	m.active[userID][sessionID] = e
	slog.Info("Kiosk session registered", "user_id", userID, "session_id", sessionID)
}

// Unregister removes an engine for a user/session if it is still the
// registered one.
func (m *Manager) Unregister(userID, sessionID string, e *Engine) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessions, ok := m.active[userID]; ok {
		if current, exists := sessions[sessionID]; exists && current == e {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(m.active, userID)
			}
			slog.Info("Kiosk session unregistered", "user_id", userID, "session_id", sessionID)
		}
	}
}

// CloseUser tears down all active sessions for a user.
func (m *Manager) CloseUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions, ok := m.active[userID]
	if !ok {
		return
	}
	for sid, e := range sessions {
		e.Close()
		slog.Info("Kiosk session closed by manager", "user_id", userID, "session_id", sid)
	}
	delete(m.active, userID)
}

// Shutdown tears down every active session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, sessions := range m.active {
		for _, e := range sessions {
			e.Close()
		}
		delete(m.active, userID)
	}
}
