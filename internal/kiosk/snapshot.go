package kiosk

import "github.com/Order-Alone/Order-Alone-Mobile/internal/domain"

// Snapshot is a point-in-time view of the session for rendering.
type Snapshot struct {
	State            string                `json:"state"`
	Remaining        int                   `json:"remaining_seconds"`
	Mission          string                `json:"mission"`
	Categories       []string              `json:"categories"`
	ActiveCategory   string                `json:"active_category"`
	Items            []domain.MenuItem     `json:"items"`
	ToppingGroups    []domain.ToppingGroup `json:"topping_groups,omitempty"`
	SelectedItem     *domain.MenuItem      `json:"selected_item,omitempty"`
	SelectedToppings []domain.ToppingItem  `json:"selected_toppings,omitempty"`
	Cart             []domain.CartEntry    `json:"cart"`
	CartOpen         bool                  `json:"cart_open"`
	PaymentOpen      bool                  `json:"payment_open"`
	Payment          string                `json:"payment,omitempty"`
	SuccessOrders    []string              `json:"success_orders"`
	GameID           string                `json:"game_id,omitempty"`
	Summary          *SessionSummary       `json:"summary,omitempty"`
}

// Snapshot captures the current session state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:          e.state.String(),
		Remaining:      e.clock.Remaining(),
		Mission:        e.mission.RequirementLabel(),
		Categories:     e.catalog.Names(),
		ActiveCategory: e.activeCategory,
		Cart:           e.cart.Entries(),
		CartOpen:       e.cartOpen,
		PaymentOpen:    e.paymentOpen,
		Payment:        string(e.payment),
		SuccessOrders:  append([]string(nil), e.successOrders...),
		GameID:         e.gameID,
		Summary:        e.summary,
	}
	if cat, ok := e.catalog.Find(e.activeCategory); ok {
		snap.Items = cat.Items
		snap.ToppingGroups = cat.Toppings
	}
	if e.selectedItem != nil {
		item := *e.selectedItem
		snap.SelectedItem = &item
		snap.SelectedToppings = append([]domain.ToppingItem(nil), e.selectedToppings...)
	}
	return snap
}
