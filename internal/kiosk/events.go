package kiosk

import "github.com/Order-Alone/Order-Alone-Mobile/internal/domain"

// Event types published to session subscribers.
const (
	EventTick    = "tick"
	EventState   = "state"
	EventMission = "mission"
	EventCart    = "cart"
	EventSummary = "summary"
)

// Event is a session update pushed to subscribed clients.
type Event struct {
	Type      string             `json:"type"`
	State     string             `json:"state"`
	Remaining int                `json:"remaining_seconds"`
	Mission   string             `json:"mission,omitempty"`
	Cart      []domain.CartEntry `json:"cart,omitempty"`
	Summary   *SessionSummary    `json:"summary,omitempty"`
}

const subscriberBuffer = 32

// Subscribe registers a listener for session events. The returned cancel
// function must be called when the listener goes away. Events are dropped,
// not blocked on, when a subscriber falls behind.
func (e *Engine) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	e.mu.Lock()
	if e.subs == nil {
		e.subs = make(map[chan Event]struct{})
	}
	e.subs[ch] = struct{}{}
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// publish fans an event out to all subscribers. Caller must hold e.mu.
func (e *Engine) publish(ev Event) {
	for ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// closeSubscribers drops all subscribers. Caller must hold e.mu.
func (e *Engine) closeSubscribers() {
	for ch := range e.subs {
		close(ch)
	}
	e.subs = nil
}
