package domain

import (
	"sort"
	"strings"
)

// CartEntry is one cart line: a menu item, its selected toppings and a
// positive quantity. An entry whose quantity would drop to zero is removed
// from the cart, never kept at zero.
type CartEntry struct {
	Item     MenuItem      `json:"item"`
	Toppings []ToppingItem `json:"toppings"`
	Quantity int           `json:"quantity"`
}

// Key returns the cart key identifying this line.
func (e CartEntry) Key() string {
	return CartKey(e.Item, e.Toppings)
}

// ToppingNames returns the names of the entry's toppings in selection order.
func (e CartEntry) ToppingNames() []string {
	names := make([]string, len(e.Toppings))
	for i, t := range e.Toppings {
		names[i] = t.Name
	}
	return names
}

// CartKey builds the identity of a cart line: the item id joined with the
// sorted topping ids. Two lines are the same iff their keys are equal.
func CartKey(item MenuItem, toppings []ToppingItem) string {
	ids := make([]string, len(toppings))
	for i, t := range toppings {
		ids[i] = t.ID
	}
	sort.Strings(ids)
	return item.ID + "|" + strings.Join(ids, ",")
}

// Cart is an ordered sequence of cart entries. Insertion order is preserved;
// it affects display only, never mission verification.
type Cart struct {
	entries []CartEntry
}

// Entries returns a copy of the cart lines.
func (c *Cart) Entries() []CartEntry {
	out := make([]CartEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of cart lines.
func (c *Cart) Len() int { return len(c.entries) }

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return len(c.entries) == 0 }

// AddOrIncrement adds a line for the item/topping combination, or increments
// the quantity of the existing line with the same cart key.
func (c *Cart) AddOrIncrement(item MenuItem, toppings []ToppingItem) {
	key := CartKey(item, toppings)
	for i := range c.entries {
		if c.entries[i].Key() == key {
			c.entries[i].Quantity++
			return
		}
	}
	kept := make([]ToppingItem, len(toppings))
	copy(kept, toppings)
	c.entries = append(c.entries, CartEntry{Item: item, Toppings: kept, Quantity: 1})
}

// ChangeQuantity adjusts the quantity of the line at index by delta, which
// may be negative. A resulting quantity of zero or below removes the line.
// Out-of-bounds indexes are ignored.
func (c *Cart) ChangeQuantity(index, delta int) {
	if index < 0 || index >= len(c.entries) {
		return
	}
	next := c.entries[index].Quantity + delta
	if next <= 0 {
		c.entries = append(c.entries[:index], c.entries[index+1:]...)
		return
	}
	c.entries[index].Quantity = next
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.entries = nil
}
