package orderservice

// Wire shapes follow the Order Service contract as served, including the
// service's own field spellings ("kategorie", "toping").

// Item is a named menu or topping entry with its image reference.
type Item struct {
	Name string `json:"name"`
	Img  string `json:"img"`
}

// SelectionTopping is a single topping of an order selection.
type SelectionTopping struct {
	Group string `json:"group"`
	Item  Item   `json:"item"`
}

// Selection is the expected selection attached to an issued order.
type Selection struct {
	Category string             `json:"category"`
	Item     Item               `json:"item"`
	Topping  []SelectionTopping `json:"topping"`
}

// Order is the order embedded in a start-game response.
type Order struct {
	ID        string    `json:"id"`
	MenuID    string    `json:"menu_id"`
	GameID    string    `json:"game_id"`
	Selection Selection `json:"selection"`
}

// StartGameResponse is the payload of POST /game/start.
type StartGameResponse struct {
	Order Order `json:"order"`
}

// EndGameResponse is the payload of POST /game/end.
type EndGameResponse struct {
	GameID string `json:"game_id"`
	Score  int    `json:"score"`
}

// GameRecord is a finished game as the service reports it.
type GameRecord struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	MenuID   string `json:"menu_id"`
	Score    int    `json:"score"`
	Date     string `json:"date"`
}

// OrderRecord is an issued order as returned by POST /order.
type OrderRecord struct {
	ID              string    `json:"id"`
	MenuID          string    `json:"menu_id"`
	GameID          string    `json:"game_id"`
	MenuName        string    `json:"menu_name"`
	MenuDescription string    `json:"menu_description"`
	Level           int       `json:"level"`
	Selection       Selection `json:"selection"`
	CreatedAt       string    `json:"created_at"`
}

// ScoreRequest is the payload of POST /order/score.
type ScoreRequest struct {
	OrderID      string   `json:"order_id"`
	GameID       string   `json:"game_id"`
	Category     string   `json:"category"`
	MenuName     string   `json:"menu_name"`
	ToppingNames []string `json:"topping_names"`
}

// ExpectedSelection is the authoritative expectation echoed by score responses.
type ExpectedSelection struct {
	Category     string   `json:"category"`
	MenuName     string   `json:"menu_name"`
	ToppingNames []string `json:"topping_names"`
}

// ScoreResponse is the payload of POST /order/score.
type ScoreResponse struct {
	OrderID  string            `json:"order_id"`
	Correct  bool              `json:"correct"`
	Expected ExpectedSelection `json:"expected"`
}

// MenuSummary is a menu listing entry.
type MenuSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToppingGroup is a named topping group within a menu category.
type ToppingGroup struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// MenuCategory is one category of a menu detail.
type MenuCategory struct {
	Name     string         `json:"kategorie"`
	Items    []Item         `json:"menus"`
	Toppings []ToppingGroup `json:"toping"`
}

// MenuDetail is the payload of GET /menu/{id}.
type MenuDetail struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Level       int            `json:"level"`
	Data        []MenuCategory `json:"data"`
}
