// Package domain contains core domain types for the kiosk trainer.
package domain

import "time"

// MenuItem is an immutable menu catalog entry.
type MenuItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ToppingItem is a selectable topping belonging to a named topping group.
type ToppingItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Group string `json:"group"`
}

// ToppingGroup is a named group of toppings offered for a category.
type ToppingGroup struct {
	Name  string        `json:"name"`
	Items []ToppingItem `json:"items"`
}

// Category groups menu items and their topping groups under a display name.
type Category struct {
	Name     string         `json:"name"`
	Items    []MenuItem     `json:"items"`
	Toppings []ToppingGroup `json:"topping_groups"`
}

// Catalog is the set of categories a session renders choices from.
type Catalog []Category

// Names returns the category names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

// Find returns the category with the given name.
func (c Catalog) Find(name string) (Category, bool) {
	for _, cat := range c {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// GameRecord is a locally persisted play-through result.
type GameRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	MenuID    string    `json:"menu_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
