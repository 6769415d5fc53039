package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"papertrader/src/marketdata"
	"papertrader/src/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// memStore is an in-memory TradeStore with snapshot rollback, so a failed
// Atomic block leaves no partial mutation behind.
type memStore struct {
	balance  decimal.Decimal
	holdings map[string]*model.Holding
	orders   []*model.Order

	failOrderInsert bool
}

func newMemStore(balance decimal.Decimal) *memStore {
	return &memStore{
		balance:  balance,
		holdings: make(map[string]*model.Holding),
	}
}

func (m *memStore) snapshot() *memStore {
	cp := &memStore{balance: m.balance, holdings: make(map[string]*model.Holding), failOrderInsert: m.failOrderInsert}
	for k, v := range m.holdings {
		h := *v
		cp.holdings[k] = &h
	}
	cp.orders = append(cp.orders, m.orders...)
	return cp
}

func (m *memStore) Atomic(ctx context.Context, fn func(tx TradeTx) error) error {
	saved := m.snapshot()
	if err := fn(m); err != nil {
		*m = *saved
		return err
	}
	return nil
}

func (m *memStore) DebitIfSufficient(_ context.Context, _ uint, amount decimal.Decimal) (bool, error) {
	if m.balance.LessThan(amount) {
		return false, nil
	}
	m.balance = m.balance.Sub(amount)
	return true, nil
}

func (m *memStore) Credit(_ context.Context, _ uint, amount decimal.Decimal) error {
	m.balance = m.balance.Add(amount)
	return nil
}

func (m *memStore) GetHolding(_ context.Context, _ uint, symbol string) (*model.Holding, error) {
	h, ok := m.holdings[symbol]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (m *memStore) SaveHolding(_ context.Context, holding *model.Holding) error {
	cp := *holding
	m.holdings[holding.Symbol] = &cp
	return nil
}

func (m *memStore) DeleteHolding(_ context.Context, _ uint, symbol string) error {
	delete(m.holdings, symbol)
	return nil
}

func (m *memStore) InsertOrder(_ context.Context, order *model.Order) error {
	if m.failOrderInsert {
		return errors.New("order table unavailable")
	}
	m.orders = append(m.orders, order)
	return nil
}

type stubPrices map[string]decimal.Decimal

func (p stubPrices) Get(symbol string) (marketdata.Entry, bool) {
	ltp, ok := p[symbol]
	if !ok {
		return marketdata.Entry{}, false
	}
	return marketdata.Entry{Symbol: symbol, LTP: ltp, Timestamp: time.Now()}, true
}

func newTestSimulator(store TradeStore, prices PriceSource) *Simulator {
	return NewSimulator(store, prices).
		WithDelay(0).
		WithSlippage(decimal.Zero)
}

func TestExecuteBuyCreatesHolding(t *testing.T) {
	store := newMemStore(d("10000"))
	sim := newTestSimulator(store, stubPrices{"RELIANCE": d("100")})

	res, err := sim.ExecuteBuy(context.Background(), 1, nil, "RELIANCE", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.ExecutionPrice.Equal(d("100")) {
		t.Fatalf("price mismatch. got=%s want=100", res.ExecutionPrice)
	}

	h := store.holdings["RELIANCE"]
	if h == nil {
		t.Fatal("expected holding")
	}
	if h.Quantity != 10 {
		t.Fatalf("quantity mismatch. got=%d want=10", h.Quantity)
	}
	if !h.AverageBuyPrice.Equal(d("100")) {
		t.Fatalf("average buy price must be gross. got=%s want=100", h.AverageBuyPrice)
	}
	// invested = 1000 + charges(1.19)
	if !h.TotalInvested.Equal(d("1001.19")) {
		t.Fatalf("total invested mismatch. got=%s want=1001.19", h.TotalInvested)
	}
	if !store.balance.Equal(d("10000").Sub(d("1001.19"))) {
		t.Fatalf("balance mismatch. got=%s", store.balance)
	}
	if len(store.orders) != 1 || store.orders[0].Side != model.OrderSideBuy {
		t.Fatalf("expected one buy order. got=%+v", store.orders)
	}
}

func TestExecuteBuyWeightedAverageExcludesCharges(t *testing.T) {
	store := newMemStore(d("100000"))
	prices := stubPrices{"TCS": d("100")}
	sim := newTestSimulator(store, prices)

	if _, err := sim.ExecuteBuy(context.Background(), 1, nil, "TCS", 10); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	prices["TCS"] = d("200")
	if _, err := sim.ExecuteBuy(context.Background(), 1, nil, "TCS", 10); err != nil {
		t.Fatalf("second buy: %v", err)
	}

	h := store.holdings["TCS"]
	// (10*100 + 10*200) / 20 = 150, charges excluded
	if !h.AverageBuyPrice.Equal(d("150")) {
		t.Fatalf("weighted average mismatch. got=%s want=150", h.AverageBuyPrice)
	}
	if h.Quantity != 20 {
		t.Fatalf("quantity mismatch. got=%d want=20", h.Quantity)
	}
}

func TestExecuteBuyInsufficientBalance(t *testing.T) {
	store := newMemStore(d("500"))
	sim := newTestSimulator(store, stubPrices{"RELIANCE": d("100")})

	_, err := sim.ExecuteBuy(context.Background(), 1, nil, "RELIANCE", 10)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance. got=%v", err)
	}
	if !store.balance.Equal(d("500")) {
		t.Fatalf("balance must be untouched. got=%s", store.balance)
	}
	if len(store.orders) != 0 {
		t.Fatal("no order must be written")
	}
}

func TestExecuteBuyPriceUnavailable(t *testing.T) {
	sim := newTestSimulator(newMemStore(d("10000")), stubPrices{})

	_, err := sim.ExecuteBuy(context.Background(), 1, nil, "UNKNOWN", 1)
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("expected ErrPriceUnavailable. got=%v", err)
	}
}

func TestExecuteSellFullExitDeletesHoldingAndRealizesPnl(t *testing.T) {
	store := newMemStore(d("10000"))
	prices := stubPrices{"RELIANCE": d("100")}
	sim := newTestSimulator(store, prices)

	if _, err := sim.ExecuteBuy(context.Background(), 1, nil, "RELIANCE", 10); err != nil {
		t.Fatalf("buy: %v", err)
	}
	prices["RELIANCE"] = d("110")

	res, err := sim.ExecuteSell(context.Background(), 1, nil, "RELIANCE", 10)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if _, ok := store.holdings["RELIANCE"]; ok {
		t.Fatal("holding must be deleted on full exit")
	}
	if res.RealizedPnl == nil {
		t.Fatal("expected realized pnl")
	}
	// (110-100)*10 minus both legs' charges: buy 1.19, sell 1.14
	if !res.RealizedPnl.Equal(d("97.67")) {
		t.Fatalf("pnl mismatch. got=%s want=97.67", res.RealizedPnl)
	}
	// balance: 10000 - 1001.19 + (1100 - 1.14)
	if !store.balance.Equal(d("10097.67")) {
		t.Fatalf("balance mismatch. got=%s", store.balance)
	}
}

func TestExecuteSellPartialReducesInvestedProportionally(t *testing.T) {
	store := newMemStore(d("100000"))
	prices := stubPrices{"INFY": d("100")}
	sim := newTestSimulator(store, prices)

	if _, err := sim.ExecuteBuy(context.Background(), 1, nil, "INFY", 10); err != nil {
		t.Fatalf("buy: %v", err)
	}
	investedBefore := store.holdings["INFY"].TotalInvested

	if _, err := sim.ExecuteSell(context.Background(), 1, nil, "INFY", 4); err != nil {
		t.Fatalf("sell: %v", err)
	}

	h := store.holdings["INFY"]
	if h.Quantity != 6 {
		t.Fatalf("quantity mismatch. got=%d want=6", h.Quantity)
	}
	wantInvested := investedBefore.Mul(d("0.6"))
	if !h.TotalInvested.Sub(wantInvested).Abs().LessThanOrEqual(d("0.01")) {
		t.Fatalf("invested not reduced proportionally. got=%s want~%s", h.TotalInvested, wantInvested)
	}
	if !h.AverageBuyPrice.Equal(d("100")) {
		t.Fatalf("average must not change on sell. got=%s", h.AverageBuyPrice)
	}
}

func TestExecuteSellWithoutHolding(t *testing.T) {
	sim := newTestSimulator(newMemStore(d("10000")), stubPrices{"RELIANCE": d("100")})

	_, err := sim.ExecuteSell(context.Background(), 1, nil, "RELIANCE", 1)
	if !errors.Is(err, ErrNoHolding) {
		t.Fatalf("expected ErrNoHolding. got=%v", err)
	}
}

func TestExecuteSellMoreThanHeld(t *testing.T) {
	store := newMemStore(d("10000"))
	sim := newTestSimulator(store, stubPrices{"RELIANCE": d("100")})

	if _, err := sim.ExecuteBuy(context.Background(), 1, nil, "RELIANCE", 5); err != nil {
		t.Fatalf("buy: %v", err)
	}

	_, err := sim.ExecuteSell(context.Background(), 1, nil, "RELIANCE", 6)
	if !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("expected ErrInsufficientShares. got=%v", err)
	}
	if store.holdings["RELIANCE"].Quantity != 5 {
		t.Fatal("holding must never go negative")
	}
}

func TestSlippageAppliedAgainstTrader(t *testing.T) {
	store := newMemStore(d("100000"))
	sim := NewSimulator(store, stubPrices{"RELIANCE": d("1000")}).
		WithDelay(0).
		WithSlippage(d("0.05"))

	buy, err := sim.ExecuteBuy(context.Background(), 1, nil, "RELIANCE", 1)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if !buy.ExecutionPrice.Equal(d("1000.50")) {
		t.Fatalf("buy fill must be above ltp. got=%s want=1000.50", buy.ExecutionPrice)
	}

	sell, err := sim.ExecuteSell(context.Background(), 1, nil, "RELIANCE", 1)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !sell.ExecutionPrice.Equal(d("999.50")) {
		t.Fatalf("sell fill must be below ltp. got=%s want=999.50", sell.ExecutionPrice)
	}
	if !sell.SlippagePct.Equal(d("0.05")) {
		t.Fatalf("reported slippage mismatch. got=%s", sell.SlippagePct)
	}
}

func TestFailedCommitLeavesNoPartialMutation(t *testing.T) {
	store := newMemStore(d("10000"))
	store.failOrderInsert = true
	sim := newTestSimulator(store, stubPrices{"RELIANCE": d("100")})

	_, err := sim.ExecuteBuy(context.Background(), 1, nil, "RELIANCE", 10)
	if err == nil {
		t.Fatal("expected commit failure")
	}

	if !store.balance.Equal(d("10000")) {
		t.Fatalf("balance must roll back. got=%s", store.balance)
	}
	if len(store.holdings) != 0 {
		t.Fatal("holding must roll back")
	}
}

func TestConservationOverBuySellSequence(t *testing.T) {
	store := newMemStore(d("1000000"))
	prices := stubPrices{"SBIN": d("600")}
	sim := newTestSimulator(store, prices)
	ctx := context.Background()

	invested := decimal.Zero
	buy := func(qty int64, price string) {
		t.Helper()
		prices["SBIN"] = d(price)
		res, err := sim.ExecuteBuy(ctx, 1, nil, "SBIN", qty)
		if err != nil {
			t.Fatalf("buy %d@%s: %v", qty, price, err)
		}
		invested = invested.Add(res.Order.NetAmount)
	}
	sell := func(qty int64, price string) {
		t.Helper()
		prices["SBIN"] = d(price)
		before := store.holdings["SBIN"]
		removed := before.TotalInvested.
			Div(decimal.NewFromInt(before.Quantity)).
			Mul(decimal.NewFromInt(qty))
		if _, err := sim.ExecuteSell(ctx, 1, nil, "SBIN", qty); err != nil {
			t.Fatalf("sell %d@%s: %v", qty, price, err)
		}
		invested = invested.Sub(removed)
	}

	buy(10, "600")
	buy(5, "620")
	sell(8, "640")
	buy(3, "590")
	sell(6, "630")

	h := store.holdings["SBIN"]
	if h == nil {
		t.Fatal("expected remaining holding")
	}
	if diff := h.TotalInvested.Sub(invested).Abs(); diff.GreaterThan(d("0.01")) {
		t.Fatalf("conservation violated. holding=%s tracked=%s diff=%s", h.TotalInvested, invested, diff)
	}
}

func TestLatencyRespectsContextCancel(t *testing.T) {
	store := newMemStore(d("10000"))
	sim := NewSimulator(store, stubPrices{"RELIANCE": d("100")}).
		WithDelay(5 * time.Second).
		WithSlippage(decimal.Zero)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := sim.ExecuteBuy(ctx, 1, nil, "RELIANCE", 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded. got=%v", err)
	}
	if !store.balance.Equal(d("10000")) {
		t.Fatal("no mutation may happen after a canceled wait")
	}
}

func TestConcurrentSellsCannotOversell(t *testing.T) {
	store := newMemStore(d("100000"))
	sim := newTestSimulator(store, stubPrices{"RELIANCE": d("100")})
	ctx := context.Background()

	if _, err := sim.ExecuteBuy(ctx, 1, nil, "RELIANCE", 10); err != nil {
		t.Fatalf("buy: %v", err)
	}

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := sim.ExecuteSell(ctx, 1, nil, "RELIANCE", 10)
			results <- err
		}()
	}

	var failures int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			if !errors.Is(err, ErrNoHolding) && !errors.Is(err, ErrInsufficientShares) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("exactly one concurrent sell must fail. failures=%d", failures)
	}
}
