// Package kiosk implements the kiosk session engine: the in-memory state
// machine driving mission issuance, cart construction, mission verification,
// countdown-driven session termination and score reporting.
package kiosk

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Order-Alone/Order-Alone-Mobile/internal/domain"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/orderservice"
)

// State is the session lifecycle phase.
type State int

const (
	StateStarting State = iota
	StateActive
	StateEnding
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateEnding:
		return "ending"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// PaymentMethod is the payment choice required before a purchase.
type PaymentMethod string

const (
	PaymentNone PaymentMethod = ""
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Player identifies the session owner for end-of-session presentation.
type Player struct {
	ID   string
	Name string
}

// SessionSummary is the terminal report of a session, produced exactly once.
type SessionSummary struct {
	GameID        string   `json:"game_id,omitempty"`
	MenuID        string   `json:"menu_id,omitempty"`
	Score         int      `json:"score"`
	SuccessOrders []string `json:"success_orders"`
	PlayerName    string   `json:"player_name"`
}

// Options tune a session engine. Zero values select the defaults.
type Options struct {
	// MenuID preselects the menu; when empty the first menu from the
	// service's summary listing is used.
	MenuID string
	// SessionSeconds is the countdown budget. Defaults to 60.
	SessionSeconds int
	// SettleDelay is how long the time-over screen holds before the
	// session finalizes. Defaults to 3s.
	SettleDelay time.Duration
	// TickInterval is the clock driver period. Defaults to 1s. Tests
	// set a long interval and drive Tick directly.
	TickInterval time.Duration
	// OnSummary, when set, receives the terminal summary exactly once.
	OnSummary func(SessionSummary)
}

const (
	defaultSessionSeconds = 60
	defaultSettleDelay    = 3 * time.Second
	serviceCallTimeout    = 10 * time.Second
)

// Engine is one timed play-through. It exclusively owns the session
// aggregate: mission, cart, clock, payment and sheet state. All Order
// Service failures degrade to local fallback data; the engine never
// surfaces a service error to the player.
type Engine struct {
	svc    orderservice.API
	player Player
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state State
	alive bool
	clock *Clock

	catalog        domain.Catalog
	activeCategory string

	mission     domain.Mission
	fallbackIdx int

	gameID  string
	orderID string
	menuID  string

	cart             domain.Cart
	selectedItem     *domain.MenuItem
	selectedToppings []domain.ToppingItem
	cartOpen         bool
	paymentOpen      bool
	payment          PaymentMethod
	purchasing       bool

	successOrders []string
	endScore      int
	summary       *SessionSummary

	subs map[chan Event]struct{}
}

// NewEngine creates a session engine in the Starting state. Call Start to
// bootstrap it against the Order Service and begin the countdown.
func NewEngine(svc orderservice.API, player Player, opts Options) *Engine {
	if opts.SessionSeconds <= 0 {
		opts.SessionSeconds = defaultSessionSeconds
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = defaultSettleDelay
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	catalog := domain.FallbackCatalog()
	return &Engine{
		svc:            svc,
		player:         player,
		opts:           opts,
		ctx:            ctx,
		cancel:         cancel,
		state:          StateStarting,
		alive:          true,
		clock:          NewClock(opts.SessionSeconds),
		catalog:        catalog,
		activeCategory: catalog[0].Name,
		mission:        domain.FallbackMissions[0],
	}
}

// Start bootstraps the session: picks a menu, starts a remote game, adopts
// the first mission and menu detail, then transitions to Active and launches
// the clock driver. Every service failure degrades to the fallback mission
// cycle and the static menu table; Start never fails.
func (e *Engine) Start() {
	ctx, cancelCall := context.WithTimeout(e.ctx, serviceCallTimeout)
	defer cancelCall()

	menuID := e.opts.MenuID
	if menuID == "" {
		if summaries, err := e.svc.GetMenuSummary(ctx, 1); err != nil {
			slog.Warn("Menu summary unavailable, using fallback menu", "error", err, "user_id", e.player.ID)
		} else if len(summaries) > 0 {
			menuID = summaries[0].ID
		}
	}

	var started *orderservice.StartGameResponse
	if menuID != "" {
		resp, err := e.svc.StartGame(ctx, menuID)
		if err != nil {
			slog.Warn("Game start failed, running on fallback missions", "error", err, "menu_id", menuID, "user_id", e.player.ID)
		} else {
			started = resp
		}
	}

	var detail *orderservice.MenuDetail
	if started != nil {
		d, err := e.svc.GetMenuDetail(ctx, started.Order.MenuID)
		if err != nil {
			slog.Warn("Menu detail unavailable, keeping static menu table", "error", err, "menu_id", started.Order.MenuID)
		} else {
			detail = d
		}
	}

	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return
	}
	e.menuID = menuID
	if started != nil {
		e.gameID = started.Order.GameID
		e.orderID = started.Order.ID
		e.menuID = started.Order.MenuID
		e.mission = missionFromSelection(started.Order.ID, started.Order.Selection)
	}
	if detail != nil {
		if catalog := catalogFromDetail(detail); len(catalog) > 0 {
			e.catalog = catalog
			e.activeCategory = catalog[0].Name
		}
	}
	e.state = StateActive
	e.publish(Event{Type: EventState, State: e.state.String(), Remaining: e.clock.Remaining(), Mission: e.mission.RequirementLabel()})
	e.mu.Unlock()

	slog.Info("Kiosk session started",
		"user_id", e.player.ID,
		"game_id", e.gameID,
		"menu_id", e.menuID,
		"remote", started != nil)

	go e.runClock()
}

func (e *Engine) runClock() {
	ticker := time.NewTicker(e.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.Tick()
		case <-e.ctx.Done():
			return
		}
	}
}

// Tick advances the countdown by one second. The countdown only runs while
// the session is Active; the first tick that lands on zero fires the Ending
// transition and later ticks are ignored.
func (e *Engine) Tick() {
	e.mu.Lock()
	if !e.alive || e.state != StateActive {
		e.mu.Unlock()
		return
	}

	remaining := e.clock.Tick()
	if remaining > 0 {
		e.publish(Event{Type: EventTick, State: e.state.String(), Remaining: remaining})
		e.mu.Unlock()
		return
	}

	// Leaving Active here is the single-use guard: once the session is
	// Ending, further ticks fall out at the state check above.
	e.state = StateEnding
	e.selectedItem = nil
	e.selectedToppings = nil
	e.cartOpen = false
	e.paymentOpen = false
	e.payment = PaymentNone
	gameID := e.gameID
	e.publish(Event{Type: EventState, State: e.state.String(), Remaining: 0})
	e.mu.Unlock()

	slog.Info("Session time over", "user_id", e.player.ID, "game_id", gameID)
	go e.finishGame(gameID)
}

// finishGame obtains the authoritative final score, then finalizes the
// session after the settle delay. A score of zero stands in when the call
// fails or no remote game exists.
func (e *Engine) finishGame(gameID string) {
	score := 0
	if gameID != "" {
		ctx, cancel := context.WithTimeout(e.ctx, serviceCallTimeout)
		defer cancel()
		resp, err := e.svc.EndGame(ctx, gameID)
		if err != nil {
			slog.Warn("End game call failed, reporting zero score", "error", err, "game_id", gameID)
		} else {
			score = resp.Score
		}
	}

	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return
	}
	e.endScore = score
	e.mu.Unlock()

	time.AfterFunc(e.opts.SettleDelay, e.finalize)
}

func (e *Engine) finalize() {
	e.mu.Lock()
	if !e.alive || e.state == StateEnded {
		e.mu.Unlock()
		return
	}
	e.state = StateEnded
	name := e.player.Name
	if name == "" {
		name = "사용자"
	}
	summary := SessionSummary{
		GameID:        e.gameID,
		MenuID:        e.menuID,
		Score:         e.endScore,
		SuccessOrders: append([]string(nil), e.successOrders...),
		PlayerName:    name,
	}
	e.summary = &summary
	e.publish(Event{Type: EventSummary, State: e.state.String(), Remaining: 0, Summary: &summary})
	e.closeSubscribers()
	onSummary := e.opts.OnSummary
	e.mu.Unlock()

	slog.Info("Kiosk session ended",
		"user_id", e.player.ID,
		"game_id", summary.GameID,
		"score", summary.Score,
		"success_orders", len(summary.SuccessOrders))

	if onSummary != nil {
		onSummary(summary)
	}
}

// Close tears the engine down. In-flight Order Service results are discarded
// rather than applied to a dead session.
func (e *Engine) Close() {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return
	}
	e.alive = false
	e.closeSubscribers()
	e.mu.Unlock()
	e.cancel()
	slog.Info("Kiosk session closed", "user_id", e.player.ID, "game_id", e.gameID)
}

// SelectCategory switches the active menu category.
func (e *Engine) SelectCategory(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return false
	}
	if _, ok := e.catalog.Find(name); !ok {
		return false
	}
	e.activeCategory = name
	return true
}

// SelectItem opens the topping sheet for an item of the active category.
func (e *Engine) SelectItem(itemID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return false
	}
	cat, ok := e.catalog.Find(e.activeCategory)
	if !ok {
		return false
	}
	for _, item := range cat.Items {
		if item.ID == itemID {
			picked := item
			e.selectedItem = &picked
			e.selectedToppings = nil
			e.cartOpen = false
			return true
		}
	}
	return false
}

// ToggleTopping adds or removes a topping of the active category on the
// currently selected item.
func (e *Engine) ToggleTopping(toppingID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive || e.selectedItem == nil {
		return false
	}
	for i, t := range e.selectedToppings {
		if t.ID == toppingID {
			e.selectedToppings = append(e.selectedToppings[:i], e.selectedToppings[i+1:]...)
			return true
		}
	}
	cat, ok := e.catalog.Find(e.activeCategory)
	if !ok {
		return false
	}
	for _, group := range cat.Toppings {
		for _, t := range group.Items {
			if t.ID == toppingID {
				e.selectedToppings = append(e.selectedToppings, t)
				return true
			}
		}
	}
	return false
}

// AddToCart commits the selected item and toppings as a cart line, merging
// into an existing line with the same cart key.
func (e *Engine) AddToCart() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive || e.selectedItem == nil {
		return false
	}
	e.cart.AddOrIncrement(*e.selectedItem, e.selectedToppings)
	e.selectedItem = nil
	e.selectedToppings = nil
	e.publish(Event{Type: EventCart, State: e.state.String(), Remaining: e.clock.Remaining(), Cart: e.cart.Entries()})
	return true
}

// ChangeQuantity adjusts a cart line quantity; dropping to zero removes it.
func (e *Engine) ChangeQuantity(index, delta int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return false
	}
	e.cart.ChangeQuantity(index, delta)
	e.publish(Event{Type: EventCart, State: e.state.String(), Remaining: e.clock.Remaining(), Cart: e.cart.Entries()})
	return true
}

// OpenCart opens the cart sheet, dismissing the topping and payment sheets.
func (e *Engine) OpenCart() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return false
	}
	e.cartOpen = true
	e.paymentOpen = false
	e.selectedItem = nil
	e.selectedToppings = nil
	return true
}

// OpenPayment opens the payment sheet; refused while the cart is empty.
func (e *Engine) OpenPayment() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive || e.cart.IsEmpty() {
		return false
	}
	e.paymentOpen = true
	e.cartOpen = false
	return true
}

// ChoosePayment records the payment method required before a purchase.
func (e *Engine) ChoosePayment(method PaymentMethod) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return false
	}
	if method != PaymentCash && method != PaymentCard {
		return false
	}
	e.payment = method
	return true
}

// Purchase submits the assembled cart. It is refused, silently, unless the
// session is Active with a non-empty cart, a chosen payment method and no
// submission already in flight.
//
// The sequence follows the session contract: score the primary cart line
// (failures ignored), request the next order (advancing the fallback cycle
// on failure), verify the cart against the mission before clearing it, then
// reset cart, payment and sheet state. The countdown can expire while the
// submission is in flight; its effects still commit exactly once, but no
// further purchases are accepted.
func (e *Engine) Purchase() bool {
	e.mu.Lock()
	if e.state != StateActive || e.purchasing || e.cart.IsEmpty() || e.payment == PaymentNone {
		e.mu.Unlock()
		return false
	}
	e.purchasing = true
	entries := e.cart.Entries()
	mission := e.mission
	gameID, orderID := e.gameID, e.orderID
	category := e.activeCategory
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(e.ctx, serviceCallTimeout)
	defer cancel()

	// Advisory telemetry: the authoritative result lives server-side and is
	// not consumed here.
	if gameID != "" && orderID != "" {
		primary := entries[0]
		_, err := e.svc.ScoreOrder(ctx, orderservice.ScoreRequest{
			OrderID:      orderID,
			GameID:       gameID,
			Category:     category,
			MenuName:     primary.Item.Name,
			ToppingNames: primary.ToppingNames(),
		})
		if err != nil {
			slog.Debug("Score submission failed, ignoring", "error", err, "order_id", orderID, "game_id", gameID)
		}
	}

	var next *orderservice.OrderRecord
	if gameID != "" {
		record, err := e.svc.RequestNextOrder(ctx, gameID)
		if err != nil {
			slog.Warn("Next order unavailable, advancing fallback missions", "error", err, "game_id", gameID)
		} else {
			next = record
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return false
	}
	e.purchasing = false

	matched := mission.Matches(entries)
	if matched {
		e.successOrders = append(e.successOrders, mission.RequirementLabel())
	}

	if next != nil {
		e.orderID = next.ID
		e.mission = missionFromSelection(next.ID, next.Selection)
	} else {
		e.fallbackIdx++
		e.mission = domain.FallbackMissions[e.fallbackIdx%len(domain.FallbackMissions)]
	}

	e.cart.Clear()
	e.payment = PaymentNone
	e.paymentOpen = false
	e.publish(Event{Type: EventMission, State: e.state.String(), Remaining: e.clock.Remaining(), Mission: e.mission.RequirementLabel(), Cart: e.cart.Entries()})

	slog.Info("Order submitted",
		"user_id", e.player.ID,
		"game_id", gameID,
		"order_id", orderID,
		"matched", matched)
	return true
}

// Summary returns the terminal summary, present only once Ended is reached.
func (e *Engine) Summary() *SessionSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary
}

// missionFromSelection derives the single-line mission for an issued order.
func missionFromSelection(orderID string, sel orderservice.Selection) domain.Mission {
	m := domain.Mission{
		ID:    orderID,
		Title: sel.Item.Name,
		Requirements: []domain.Requirement{
			{Name: sel.Item.Name, Quantity: 1},
		},
		Selection: &domain.Selection{
			Category: sel.Category,
			ItemName: sel.Item.Name,
		},
	}
	for _, t := range sel.Topping {
		m.Selection.ToppingNames = append(m.Selection.ToppingNames, t.Item.Name)
	}
	return m
}

// catalogFromDetail converts a menu detail payload to the domain catalog.
// Item and topping ids are positional within their category.
func catalogFromDetail(detail *orderservice.MenuDetail) domain.Catalog {
	catalog := make(domain.Catalog, 0, len(detail.Data))
	for _, mc := range detail.Data {
		cat := domain.Category{Name: mc.Name}
		for i, item := range mc.Items {
			cat.Items = append(cat.Items, domain.MenuItem{
				ID:    mc.Name + "-" + strconv.Itoa(i),
				Name:  item.Name,
				Image: item.Img,
			})
		}
		for gi, group := range mc.Toppings {
			tg := domain.ToppingGroup{Name: group.Name}
			for ti, item := range group.Items {
				tg.Items = append(tg.Items, domain.ToppingItem{
					ID:    strconv.Itoa(gi) + "-" + strconv.Itoa(ti),
					Name:  item.Name,
					Image: item.Img,
					Group: group.Name,
				})
			}
			cat.Toppings = append(cat.Toppings, tg)
		}
		catalog = append(catalog, cat)
	}
	return catalog
}
