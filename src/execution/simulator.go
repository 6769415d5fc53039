package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/charges"
	"papertrader/src/marketdata"
	"papertrader/src/model"
)

// TradeTx is the set of mutations one execution commits. Implementations
// must run every call of one Atomic block inside a single transaction.
type TradeTx interface {
	DebitIfSufficient(ctx context.Context, userID uint, amount decimal.Decimal) (bool, error)
	Credit(ctx context.Context, userID uint, amount decimal.Decimal) error
	GetHolding(ctx context.Context, userID uint, symbol string) (*model.Holding, error)
	SaveHolding(ctx context.Context, holding *model.Holding) error
	DeleteHolding(ctx context.Context, userID uint, symbol string) error
	InsertOrder(ctx context.Context, order *model.Order) error
}

type TradeStore interface {
	Atomic(ctx context.Context, fn func(tx TradeTx) error) error
}

type PriceSource interface {
	Get(symbol string) (marketdata.Entry, bool)
}

// Result describes one committed simulated fill.
type Result struct {
	Order          *model.Order
	ExecutionPrice decimal.Decimal
	SlippagePct    decimal.Decimal
	Charges        charges.Breakdown
	RealizedPnl    *decimal.Decimal
	ExecutedAt     time.Time
}

// Simulator fills orders against the price cache, mutating balance,
// holding and order records atomically. Executions for the same user are
// serialized; different users proceed in parallel.
type Simulator struct {
	store  TradeStore
	prices PriceSource
	rates  charges.RateConfig

	mode        string
	slippagePct decimal.Decimal
	delay       time.Duration
	now         func() time.Time

	locks userLocks
	log   *logger.Entry
}

func NewSimulator(store TradeStore, prices PriceSource) *Simulator {
	config := GetConfig()

	return &Simulator{
		store:       store,
		prices:      prices,
		rates:       charges.DefaultRateConfig(),
		mode:        config.Mode,
		slippagePct: decimal.NewFromFloat(config.SlippagePct),
		delay:       config.ExecutionDelay,
		now:         time.Now,
		locks:       userLocks{locks: make(map[uint]*sync.Mutex)},
		log:         logger.WithField("component", "order_executor"),
	}
}

// WithDelay overrides the simulated latency. Tests set it to zero.
func (s *Simulator) WithDelay(d time.Duration) *Simulator {
	s.delay = d
	return s
}

// WithSlippage overrides the configured slippage percentage.
func (s *Simulator) WithSlippage(pct decimal.Decimal) *Simulator {
	s.slippagePct = pct
	return s
}

// WithClock overrides the time source.
func (s *Simulator) WithClock(now func() time.Time) *Simulator {
	s.now = now
	return s
}

// ExecuteBuy simulates a market buy of quantity shares of symbol.
func (s *Simulator) ExecuteBuy(ctx context.Context, userID uint, strategyID *uint, symbol string, quantity int64) (*Result, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("invalid quantity %d", quantity)
	}

	price, slippage, err := s.fillPrice(symbol, model.OrderSideBuy)
	if err != nil {
		return nil, err
	}

	if err := s.applyLatency(ctx); err != nil {
		return nil, err
	}

	gross := price.Mul(decimal.NewFromInt(quantity))
	breakdown := charges.Calculate(charges.SideBuy, gross, s.rates)
	totalCost := gross.Add(breakdown.Total)

	executedAt := s.now()
	order := &model.Order{
		ClientOrderID: uuid.NewString(),
		UserID:        userID,
		StrategyID:    strategyID,
		Symbol:        symbol,
		Side:          model.OrderSideBuy,
		Quantity:      quantity,
		Price:         price,
		SlippagePct:   slippage,
		GrossValue:    gross,
		Charges:       breakdown.Total,
		NetAmount:     totalCost,
		Mode:          s.mode,
		Status:        model.OrderStatusExecuted,
		ExecutedAt:    &executedAt,
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	err = s.store.Atomic(ctx, func(tx TradeTx) error {
		ok, err := tx.DebitIfSufficient(ctx, userID, totalCost)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: need %s", ErrInsufficientBalance, totalCost)
		}

		holding, err := tx.GetHolding(ctx, userID, symbol)
		if err != nil {
			return err
		}

		if holding == nil {
			holding = &model.Holding{
				UserID:          userID,
				Symbol:          symbol,
				Quantity:        quantity,
				AverageBuyPrice: price,
				TotalInvested:   totalCost,
			}
		} else {
			// Gross-value-weighted average: charges stay out of the
			// average but land in TotalInvested.
			prevGross := holding.AverageBuyPrice.Mul(decimal.NewFromInt(holding.Quantity))
			newQty := holding.Quantity + quantity
			holding.AverageBuyPrice = prevGross.Add(gross).Div(decimal.NewFromInt(newQty))
			holding.Quantity = newQty
			holding.TotalInvested = holding.TotalInvested.Add(totalCost)
		}

		if err := tx.SaveHolding(ctx, holding); err != nil {
			return err
		}
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logger.Fields{
		"user_id":  userID,
		"symbol":   symbol,
		"quantity": quantity,
		"price":    price.String(),
	}).Info("buy executed")

	return &Result{
		Order:          order,
		ExecutionPrice: price,
		SlippagePct:    slippage,
		Charges:        breakdown,
		ExecutedAt:     executedAt,
	}, nil
}

// ExecuteSell simulates a market sell of quantity shares of symbol and
// realizes P&L against the holding's average buy price, net of both legs'
// charges.
func (s *Simulator) ExecuteSell(ctx context.Context, userID uint, strategyID *uint, symbol string, quantity int64) (*Result, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("invalid quantity %d", quantity)
	}

	price, slippage, err := s.fillPrice(symbol, model.OrderSideSell)
	if err != nil {
		return nil, err
	}

	if err := s.applyLatency(ctx); err != nil {
		return nil, err
	}

	gross := price.Mul(decimal.NewFromInt(quantity))
	breakdown := charges.Calculate(charges.SideSell, gross, s.rates)
	netProceeds := gross.Sub(breakdown.Total)

	executedAt := s.now()
	var realized decimal.Decimal

	unlock := s.locks.lock(userID)
	defer unlock()

	order := &model.Order{
		ClientOrderID: uuid.NewString(),
		UserID:        userID,
		StrategyID:    strategyID,
		Symbol:        symbol,
		Side:          model.OrderSideSell,
		Quantity:      quantity,
		Price:         price,
		SlippagePct:   slippage,
		GrossValue:    gross,
		Charges:       breakdown.Total,
		NetAmount:     netProceeds,
		Mode:          s.mode,
		Status:        model.OrderStatusExecuted,
		ExecutedAt:    &executedAt,
	}

	err = s.store.Atomic(ctx, func(tx TradeTx) error {
		holding, err := tx.GetHolding(ctx, userID, symbol)
		if err != nil {
			return err
		}
		if holding == nil {
			return fmt.Errorf("%w: %s", ErrNoHolding, symbol)
		}
		if quantity > holding.Quantity {
			return fmt.Errorf("%w: have %d, want %d", ErrInsufficientShares, holding.Quantity, quantity)
		}

		// Proportional slice of the charge-inclusive invested amount.
		investedRemoved := holding.TotalInvested.
			Div(decimal.NewFromInt(holding.Quantity)).
			Mul(decimal.NewFromInt(quantity))
		realized = netProceeds.Sub(investedRemoved)

		if err := tx.Credit(ctx, userID, netProceeds); err != nil {
			return err
		}

		remaining := holding.Quantity - quantity
		if remaining == 0 {
			if err := tx.DeleteHolding(ctx, userID, symbol); err != nil {
				return err
			}
		} else {
			holding.Quantity = remaining
			holding.TotalInvested = holding.TotalInvested.Sub(investedRemoved)
			if err := tx.SaveHolding(ctx, holding); err != nil {
				return err
			}
		}

		order.RealizedPnl = &realized
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logger.Fields{
		"user_id":      userID,
		"symbol":       symbol,
		"quantity":     quantity,
		"price":        price.String(),
		"realized_pnl": realized.String(),
	}).Info("sell executed")

	return &Result{
		Order:          order,
		ExecutionPrice: price,
		SlippagePct:    slippage,
		Charges:        breakdown,
		RealizedPnl:    &realized,
		ExecutedAt:     executedAt,
	}, nil
}

// fillPrice reads the cache and applies paper-mode slippage against the
// trader. Live mode would use the raw price unmodified; it is a stub and
// is rejected up front.
func (s *Simulator) fillPrice(symbol, side string) (decimal.Decimal, decimal.Decimal, error) {
	if s.mode == model.ExecutionModeLive {
		return decimal.Zero, decimal.Zero, ErrLiveModeUnsupported
	}

	entry, ok := s.prices.Get(symbol)
	if !ok || !entry.LTP.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
	}

	factor := s.slippagePct.Div(decimal.NewFromInt(100))
	if side == model.OrderSideBuy {
		factor = decimal.NewFromInt(1).Add(factor)
	} else {
		factor = decimal.NewFromInt(1).Sub(factor)
	}

	return entry.LTP.Mul(factor).Round(2), s.slippagePct, nil
}

// applyLatency blocks the current request for the configured delay. The
// wait is scoped to this execution only and aborts cleanly on ctx cancel,
// before any state is touched.
func (s *Simulator) applyLatency(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// userLocks serializes executions per user id.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (l *userLocks) lock(userID uint) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
