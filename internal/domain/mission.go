package domain

import (
	"fmt"
	"strings"
)

// Requirement is one mission line: an item name and the exact quantity the
// assembled cart must contain for it.
type Requirement struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Selection is the structured expected selection attached to missions issued
// by the Order Service. Fallback missions never carry one.
type Selection struct {
	Category     string   `json:"category"`
	ItemName     string   `json:"item_name"`
	ToppingNames []string `json:"topping_names,omitempty"`
}

// Mission is the target order a player must reproduce before time runs out.
// Missions are single-use: once submitted the engine discards them.
type Mission struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Requirements []Requirement `json:"requirements"`
	Selection    *Selection    `json:"selection,omitempty"`
}

// HasToppingConstraint reports whether the mission constrains toppings.
// A mission with an empty topping list never does.
func (m Mission) HasToppingConstraint() bool {
	return m.Selection != nil && len(m.Selection.ToppingNames) > 0
}

// RequirementLabel renders the mission the way the mission box and the
// success list display it: "불고기버거 세트 2개, 콜라 1개", plus a second
// line listing topping names when the mission constrains toppings.
func (m Mission) RequirementLabel() string {
	parts := make([]string, len(m.Requirements))
	for i, r := range m.Requirements {
		parts[i] = fmt.Sprintf("%s %d개", r.Name, r.Quantity)
	}
	label := strings.Join(parts, ", ")
	if !m.HasToppingConstraint() {
		return label
	}
	return label + "\n토핑: " + strings.Join(m.Selection.ToppingNames, ", ")
}

// Matches reports whether the cart exactly satisfies the mission.
//
// Quantities are compared as a multiset keyed by item name: the cart must
// contain exactly the required names, each with exactly the required summed
// quantity. No supersets, no partial credit. When the mission constrains
// toppings, the cart line whose item name equals the mission's target item
// must carry exactly the required topping names, compared as sets.
//
// The check is advisory: it feeds the local success list only and is never
// reconciled with the Order Service's own scoring.
func (m Mission) Matches(entries []CartEntry) bool {
	expected := make(map[string]int, len(m.Requirements))
	for _, r := range m.Requirements {
		expected[r.Name] = r.Quantity
	}
	actual := make(map[string]int, len(entries))
	for _, e := range entries {
		actual[e.Item.Name] += e.Quantity
	}
	if len(expected) != len(actual) {
		return false
	}
	for name, qty := range expected {
		if actual[name] != qty {
			return false
		}
	}
	if !m.HasToppingConstraint() {
		return true
	}

	var target []string
	for _, e := range entries {
		if e.Item.Name == m.Selection.ItemName {
			target = e.ToppingNames()
			break
		}
	}
	if len(target) != len(m.Selection.ToppingNames) {
		return false
	}
	required := make(map[string]struct{}, len(m.Selection.ToppingNames))
	for _, name := range m.Selection.ToppingNames {
		required[name] = struct{}{}
	}
	for _, name := range target {
		if _, ok := required[name]; !ok {
			return false
		}
	}
	return true
}
