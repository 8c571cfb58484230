package kiosk

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Order-Alone/Order-Alone-Mobile/internal/domain"
	"github.com/Order-Alone/Order-Alone-Mobile/internal/orderservice"
)

var errServiceDown = errors.New("service unavailable")

// fakeService is a scriptable Order Service for engine tests.
type fakeService struct {
	mu sync.Mutex

	failAll   bool
	endScore  int
	nextBlock chan struct{} // when set, RequestNextOrder waits on it
	endBlock  chan struct{} // when set, EndGame waits on it

	startCalls int
	nextCalls  int
	scoreCalls int
	endCalls   int

	lastScore orderservice.ScoreRequest
}

func burgerSelection() orderservice.Selection {
	return orderservice.Selection{
		Category: "버거",
		Item:     orderservice.Item{Name: "불고기버거", Img: "/bulgogi.svg"},
	}
}

func colaSelection() orderservice.Selection {
	return orderservice.Selection{
		Category: "음료",
		Item:     orderservice.Item{Name: "콜라", Img: "/bulgogi.svg"},
	}
}

func (f *fakeService) StartGame(ctx context.Context, menuID string) (*orderservice.StartGameResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.failAll {
		return nil, errServiceDown
	}
	return &orderservice.StartGameResponse{
		Order: orderservice.Order{
			ID:        "order-1",
			MenuID:    menuID,
			GameID:    "game-1",
			Selection: burgerSelection(),
		},
	}, nil
}

func (f *fakeService) EndGame(ctx context.Context, gameID string) (*orderservice.EndGameResponse, error) {
	f.mu.Lock()
	f.endCalls++
	block := f.endBlock
	fail := f.failAll
	score := f.endScore
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if fail {
		return nil, errServiceDown
	}
	return &orderservice.EndGameResponse{GameID: gameID, Score: score}, nil
}

func (f *fakeService) RequestNextOrder(ctx context.Context, gameID string) (*orderservice.OrderRecord, error) {
	f.mu.Lock()
	block := f.nextBlock
	f.nextCalls++
	fail := f.failAll
	n := f.nextCalls
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if fail {
		return nil, errServiceDown
	}
	return &orderservice.OrderRecord{
		ID:        "order-" + strconv.Itoa(n+1),
		GameID:    gameID,
		Selection: colaSelection(),
	}, nil
}

func (f *fakeService) ScoreOrder(ctx context.Context, req orderservice.ScoreRequest) (*orderservice.ScoreResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoreCalls++
	f.lastScore = req
	if f.failAll {
		return nil, errServiceDown
	}
	return &orderservice.ScoreResponse{OrderID: req.OrderID, Correct: true}, nil
}

func (f *fakeService) GetMenuSummary(ctx context.Context, limit int) ([]orderservice.MenuSummary, error) {
	if f.failAll {
		return nil, errServiceDown
	}
	return []orderservice.MenuSummary{{ID: "menu-1", Name: "햄버거 가게"}}, nil
}

func (f *fakeService) GetMenuDetail(ctx context.Context, menuID string) (*orderservice.MenuDetail, error) {
	if f.failAll {
		return nil, errServiceDown
	}
	return &orderservice.MenuDetail{
		ID: menuID,
		Data: []orderservice.MenuCategory{
			{
				Name:  "버거",
				Items: []orderservice.Item{{Name: "불고기버거", Img: "/bulgogi.svg"}},
				Toppings: []orderservice.ToppingGroup{
					{Name: "토핑", Items: []orderservice.Item{
						{Name: "치즈", Img: "/cheese.svg"},
						{Name: "베이컨", Img: "/bacon.svg"},
					}},
				},
			},
			{
				Name:  "음료",
				Items: []orderservice.Item{{Name: "콜라", Img: "/bulgogi.svg"}},
			},
		},
	}, nil
}

func (f *fakeService) GetOrdersByGame(ctx context.Context, gameID string, limit int) ([]orderservice.OrderRecord, error) {
	return nil, errServiceDown
}

func (f *fakeService) GetMyGames(ctx context.Context, limit int) ([]orderservice.GameRecord, error) {
	return nil, errServiceDown
}

func (f *fakeService) GetTopGames(ctx context.Context, limit int) ([]orderservice.GameRecord, error) {
	return nil, errServiceDown
}

func (f *fakeService) GetBestGame(ctx context.Context) (*orderservice.GameRecord, error) {
	return nil, errServiceDown
}

func testOptions(seconds int, onSummary func(SessionSummary)) Options {
	return Options{
		SessionSeconds: seconds,
		SettleDelay:    time.Millisecond,
		TickInterval:   time.Hour, // tests drive Tick directly
		OnSummary:      onSummary,
	}
}

func startEngine(t *testing.T, svc orderservice.API, opts Options) *Engine {
	t.Helper()
	e := NewEngine(svc, Player{ID: "user-1", Name: "테스터"}, opts)
	t.Cleanup(e.Close)
	e.Start()
	return e
}

func TestEngine_StartAdoptsRemoteMission(t *testing.T) {
	svc := &fakeService{}
	e := startEngine(t, svc, testOptions(60, nil))

	snap := e.Snapshot()
	if snap.State != "active" {
		t.Fatalf("expected active state, got %q", snap.State)
	}
	if snap.GameID != "game-1" {
		t.Errorf("expected game id from service, got %q", snap.GameID)
	}
	if snap.Mission != "불고기버거 1개" {
		t.Errorf("expected remote mission, got %q", snap.Mission)
	}
	want := []string{"버거", "음료"}
	if len(snap.Categories) != len(want) || snap.Categories[0] != want[0] || snap.Categories[1] != want[1] {
		t.Errorf("expected remote categories %v, got %v", want, snap.Categories)
	}
}

func TestEngine_StartDegradesToFallback(t *testing.T) {
	svc := &fakeService{failAll: true}
	e := startEngine(t, svc, testOptions(60, nil))

	snap := e.Snapshot()
	if snap.State != "active" {
		t.Fatalf("expected active state even when service is down, got %q", snap.State)
	}
	if snap.GameID != "" {
		t.Errorf("expected no game id, got %q", snap.GameID)
	}
	if snap.Mission != domain.FallbackMissions[0].RequirementLabel() {
		t.Errorf("expected fallback mission, got %q", snap.Mission)
	}
	if len(snap.Categories) != 4 || snap.Categories[0] != "버거" {
		t.Errorf("expected static menu categories, got %v", snap.Categories)
	}
}

func TestEngine_PurchasePreconditions(t *testing.T) {
	svc := &fakeService{}
	e := startEngine(t, svc, testOptions(60, nil))

	if e.Purchase() {
		t.Errorf("expected purchase with empty cart to be refused")
	}

	if !e.SelectItem("버거-0") {
		t.Fatalf("expected item selection to succeed")
	}
	if !e.AddToCart() {
		t.Fatalf("expected add to cart to succeed")
	}
	if e.Purchase() {
		t.Errorf("expected purchase without payment method to be refused")
	}

	if !e.ChoosePayment(PaymentCard) {
		t.Fatalf("expected payment choice to succeed")
	}
	if !e.Purchase() {
		t.Errorf("expected purchase to be accepted")
	}
}

func TestEngine_PurchaseRecordsSuccess(t *testing.T) {
	svc := &fakeService{}
	e := startEngine(t, svc, testOptions(60, nil))

	e.SelectItem("버거-0")
	e.AddToCart()
	e.ChoosePayment(PaymentCash)
	if !e.Purchase() {
		t.Fatalf("expected purchase to be accepted")
	}

	snap := e.Snapshot()
	if len(snap.SuccessOrders) != 1 {
		t.Fatalf("expected 1 success order, got %d", len(snap.SuccessOrders))
	}
	if snap.SuccessOrders[0] != "불고기버거 1개" {
		t.Errorf("unexpected success label %q", snap.SuccessOrders[0])
	}
	if len(snap.Cart) != 0 {
		t.Errorf("expected cart cleared after purchase, got %d entries", len(snap.Cart))
	}
	if snap.Payment != "" {
		t.Errorf("expected payment reset after purchase, got %q", snap.Payment)
	}
	if snap.Mission != "콜라 1개" {
		t.Errorf("expected next remote mission adopted, got %q", snap.Mission)
	}
	if svc.scoreCalls != 1 {
		t.Errorf("expected 1 score call, got %d", svc.scoreCalls)
	}
	if svc.lastScore.MenuName != "불고기버거" {
		t.Errorf("expected primary line scored, got %q", svc.lastScore.MenuName)
	}
}

func TestEngine_PurchaseMismatchNotRecorded(t *testing.T) {
	svc := &fakeService{}
	e := startEngine(t, svc, testOptions(60, nil))

	// Two burgers against a mission requiring one.
	e.SelectItem("버거-0")
	e.AddToCart()
	e.SelectItem("버거-0")
	e.AddToCart()
	e.ChoosePayment(PaymentCard)
	if !e.Purchase() {
		t.Fatalf("expected purchase to be accepted")
	}

	snap := e.Snapshot()
	if len(snap.SuccessOrders) != 0 {
		t.Errorf("expected no success orders for a mismatched cart, got %v", snap.SuccessOrders)
	}
	if len(snap.Cart) != 0 {
		t.Errorf("expected cart cleared even on mismatch, got %d entries", len(snap.Cart))
	}
}

func TestEngine_NextOrderFailureAdvancesFallback(t *testing.T) {
	svc := &fakeService{}
	e := startEngine(t, svc, testOptions(60, nil))
	svc.mu.Lock()
	svc.failAll = true
	svc.mu.Unlock()

	e.SelectItem("버거-0")
	e.AddToCart()
	e.ChoosePayment(PaymentCard)
	if !e.Purchase() {
		t.Fatalf("expected purchase to be accepted")
	}

	snap := e.Snapshot()
	want := domain.FallbackMissions[1].RequirementLabel()
	if snap.Mission != want {
		t.Errorf("expected fallback mission %q, got %q", want, snap.Mission)
	}
}

func TestEngine_EndingFiresOnce(t *testing.T) {
	summaries := make(chan SessionSummary, 4)
	svc := &fakeService{endScore: 1200}
	e := startEngine(t, svc, testOptions(2, func(s SessionSummary) { summaries <- s }))

	for i := 0; i < 10; i++ {
		e.Tick()
	}

	var summary SessionSummary
	select {
	case summary = <-summaries:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for session summary")
	}

	if summary.Score != 1200 {
		t.Errorf("expected authoritative score 1200, got %d", summary.Score)
	}
	if summary.GameID != "game-1" {
		t.Errorf("expected game id in summary, got %q", summary.GameID)
	}
	if summary.PlayerName != "테스터" {
		t.Errorf("expected player name in summary, got %q", summary.PlayerName)
	}

	// Repeated ticks at zero must not re-trigger the Ending side effects.
	for i := 0; i < 10; i++ {
		e.Tick()
	}
	time.Sleep(20 * time.Millisecond)

	svc.mu.Lock()
	endCalls := svc.endCalls
	svc.mu.Unlock()
	if endCalls != 1 {
		t.Errorf("expected exactly 1 end game call, got %d", endCalls)
	}
	select {
	case <-summaries:
		t.Errorf("expected exactly one summary")
	default:
	}
}

func TestEngine_FallbackSessionEndsCleanly(t *testing.T) {
	summaries := make(chan SessionSummary, 1)
	svc := &fakeService{failAll: true}
	e := startEngine(t, svc, testOptions(2, func(s SessionSummary) { summaries <- s }))

	// The player can still assemble a cart against the fallback mission.
	if !e.SelectCategory("세트") {
		t.Fatalf("expected fallback category selection to succeed")
	}
	if !e.SelectItem("set-1") {
		t.Fatalf("expected fallback item selection to succeed")
	}
	if !e.AddToCart() {
		t.Fatalf("expected add to cart to succeed")
	}

	e.Tick()
	e.Tick()

	var summary SessionSummary
	select {
	case summary = <-summaries:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for session summary")
	}

	if summary.Score != 0 {
		t.Errorf("expected zero score without a remote game, got %d", summary.Score)
	}
	if summary.GameID != "" {
		t.Errorf("expected empty game id, got %q", summary.GameID)
	}
}

func TestEngine_NoCountdownBeforeStart(t *testing.T) {
	svc := &fakeService{}
	e := NewEngine(svc, Player{ID: "user-1"}, testOptions(60, nil))
	t.Cleanup(e.Close)

	// Ticks delivered while the session is still bootstrapping must not
	// move the clock or fire the Ending transition.
	for i := 0; i < 70; i++ {
		e.Tick()
	}

	snap := e.Snapshot()
	if snap.State != "starting" {
		t.Fatalf("state = %q, want starting", snap.State)
	}
	if snap.Remaining != 60 {
		t.Errorf("remaining = %d, want untouched budget 60", snap.Remaining)
	}
	if svc.endCalls != 0 {
		t.Errorf("expected no end game call, got %d", svc.endCalls)
	}
}

func TestEngine_NoMutationAfterEnding(t *testing.T) {
	svc := &fakeService{}
	e := startEngine(t, svc, testOptions(1, nil))

	e.Tick()

	if e.SelectItem("버거-0") {
		t.Errorf("expected item selection refused after ending")
	}
	if e.AddToCart() {
		t.Errorf("expected add to cart refused after ending")
	}
	if e.ChangeQuantity(0, 1) {
		t.Errorf("expected quantity change refused after ending")
	}
	if e.ChoosePayment(PaymentCash) {
		t.Errorf("expected payment choice refused after ending")
	}
	if e.Purchase() {
		t.Errorf("expected purchase refused after ending")
	}
}

func TestEngine_TimeoutDuringPurchase(t *testing.T) {
	block := make(chan struct{})
	endBlock := make(chan struct{})
	svc := &fakeService{nextBlock: block, endBlock: endBlock, endScore: 700}
	summaries := make(chan SessionSummary, 1)
	e := startEngine(t, svc, testOptions(1, func(s SessionSummary) { summaries <- s }))

	e.SelectItem("버거-0")
	e.AddToCart()
	e.ChoosePayment(PaymentCard)

	done := make(chan bool, 1)
	go func() { done <- e.Purchase() }()

	// Wait for the purchase to reach the in-flight service call, then let
	// the countdown expire underneath it. EndGame is held open so the
	// session cannot finalize before the submission commits.
	waitFor(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return svc.nextCalls > 0
	})
	e.Tick()
	close(block)

	if accepted := <-done; !accepted {
		t.Fatalf("expected in-flight purchase to complete")
	}

	snap := e.Snapshot()
	if len(snap.SuccessOrders) != 1 {
		t.Errorf("expected the in-flight submission's success to apply exactly once, got %d", len(snap.SuccessOrders))
	}
	if len(snap.Cart) != 0 {
		t.Errorf("expected cart cleared by the in-flight submission")
	}
	close(endBlock)

	select {
	case summary := <-summaries:
		if summary.Score != 700 {
			t.Errorf("expected score 700, got %d", summary.Score)
		}
		if len(summary.SuccessOrders) != 1 {
			t.Errorf("expected summary to carry the success recorded mid-ending, got %d", len(summary.SuccessOrders))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for session summary")
	}
}

func TestEngine_CloseDiscardsInFlightResult(t *testing.T) {
	block := make(chan struct{})
	svc := &fakeService{nextBlock: block}
	e := NewEngine(svc, Player{ID: "user-1"}, testOptions(60, nil))
	e.Start()

	e.SelectItem("버거-0")
	e.AddToCart()
	e.ChoosePayment(PaymentCard)

	done := make(chan bool, 1)
	go func() { done <- e.Purchase() }()

	waitFor(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return svc.nextCalls > 0
	})
	e.Close()
	close(block)

	if accepted := <-done; accepted {
		t.Errorf("expected in-flight purchase result to be discarded after close")
	}
	if got := e.Summary(); got != nil {
		t.Errorf("expected no summary from a torn-down session")
	}
}

func TestEngine_SubscribeReceivesTicks(t *testing.T) {
	svc := &fakeService{}
	e := startEngine(t, svc, testOptions(60, nil))

	events, unsubscribe := e.Subscribe()
	defer unsubscribe()

	e.Tick()

	select {
	case ev := <-events:
		if ev.Type != EventTick {
			t.Errorf("expected tick event, got %q", ev.Type)
		}
		if ev.Remaining != 59 {
			t.Errorf("expected 59 remaining, got %d", ev.Remaining)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for tick event")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestMissionFromSelection_Toppings(t *testing.T) {
	m := missionFromSelection("order-x", orderservice.Selection{
		Category: "버거",
		Item:     orderservice.Item{Name: "불고기버거"},
		Topping: []orderservice.SelectionTopping{
			{Group: "토핑", Item: orderservice.Item{Name: "치즈"}},
		},
	})
	label := m.RequirementLabel()
	if !strings.Contains(label, "토핑: 치즈") {
		t.Errorf("expected topping line in label, got %q", label)
	}
	if len(m.Requirements) != 1 || m.Requirements[0].Quantity != 1 {
		t.Errorf("expected single-unit requirement, got %v", m.Requirements)
	}
}
