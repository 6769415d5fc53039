package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/execution"
	"papertrader/src/externalmodel"
	"papertrader/src/model"
	"papertrader/src/monitoring"
	"papertrader/src/risk"
)

type StrategyStore interface {
	FindActiveBySecretDigest(ctx context.Context, digest string) (*model.Strategy, error)
	UpdateStats(ctx context.Context, strat *model.Strategy) error
}

type InstrumentStore interface {
	FindBySymbol(ctx context.Context, symbol string) (*model.Instrument, error)
}

type AuditSink interface {
	Append(ctx context.Context, entry *model.AuditLog) error
}

type OrderExecutor interface {
	ExecuteBuy(ctx context.Context, userID uint, strategyID *uint, symbol string, quantity int64) (*execution.Result, error)
	ExecuteSell(ctx context.Context, userID uint, strategyID *uint, symbol string, quantity int64) (*execution.Result, error)
}

type RiskController interface {
	Validate(strat *model.Strategy, tradeAmount decimal.Decimal) risk.Decision
	Record(strategyID uint, profitLoss decimal.Decimal)
}

type PriceTracker interface {
	EnsureTracked(symbol string, refPrice decimal.Decimal)
}

type SecretDigester func(secret string) string

// Engine runs the signal pipeline: validate, resolve, deduplicate, admit,
// execute, then record statistics and the audit trail. Signals for one
// strategy are serialized; different strategies proceed in parallel.
type Engine struct {
	strategies  StrategyStore
	instruments InstrumentStore
	audit       AuditSink
	executor    OrderExecutor
	riskCtrl    RiskController
	prices      PriceTracker
	digest      SecretDigester

	dedup *dedupCache
	locks strategyLocks
	now   func() time.Time
	log   *logger.Entry
}

func NewEngine(
	strategies StrategyStore,
	instruments InstrumentStore,
	audit AuditSink,
	executor OrderExecutor,
	riskCtrl RiskController,
	prices PriceTracker,
	digest SecretDigester,
) *Engine {
	config := GetConfig()

	return &Engine{
		strategies:  strategies,
		instruments: instruments,
		audit:       audit,
		executor:    executor,
		riskCtrl:    riskCtrl,
		prices:      prices,
		digest:      digest,
		dedup:       newDedupCache(config.DedupWindow),
		locks:       strategyLocks{locks: make(map[uint]*sync.Mutex)},
		now:         time.Now,
		log:         logger.WithField("component", "signal_engine"),
	}
}

// WithClock overrides the engine and dedup time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	e.dedup.now = now
	return e
}

// Process takes one inbound signal to its terminal outcome. Statistics
// and risk counters advance only after the executor has fully committed;
// every earlier exit leaves them untouched.
func (e *Engine) Process(ctx context.Context, signal externalmodel.WebhookSignal) Result {
	started := e.now()
	defer func() {
		monitoring.RecordPipelineLatency(e.now().Sub(started))
	}()

	// 1. Structural validation. No audit: no strategy is resolved yet.
	action := strings.ToUpper(strings.TrimSpace(signal.Action))
	if detail, ok := validate(signal, action); !ok {
		monitoring.RecordSignalRejected(ReasonValidation)
		return e.finish(started, Result{Status: StatusRejected, Reason: ReasonValidation, Detail: detail})
	}

	// 2. Strategy resolution by webhook secret.
	strat, err := e.strategies.FindActiveBySecretDigest(ctx, e.digest(signal.Secret))
	if err != nil {
		return e.finish(started, Result{Status: StatusError, Reason: ReasonExecutionError, Detail: "strategy lookup failed"})
	}
	if strat == nil {
		monitoring.RecordSignalRejected(ReasonStrategyNotFound)
		return e.finish(started, Result{Status: StatusRejected, Reason: ReasonStrategyNotFound, Detail: "no active strategy matches the supplied secret"})
	}

	// Everything from dedup through bookkeeping holds the strategy lock,
	// so two near-simultaneous signals cannot both pass admission when
	// only one should.
	unlock := e.locks.lock(strat.ID)
	defer unlock()

	// 3. Idempotency.
	dedupKey := fmt.Sprintf("%d|%s", strat.ID, signal.Timestamp)
	if e.dedup.Seen(dedupKey) {
		e.log.WithFields(logger.Fields{"strategy_id": strat.ID, "timestamp": signal.Timestamp}).
			Info("duplicate signal ignored")
		return e.finish(started, Result{Status: StatusDuplicate, Reason: ReasonDuplicateSignal, Detail: "signal already processed"})
	}

	// 4. Audit the arrival.
	monitoring.RecordSignalReceived(signal.Symbol, action)
	e.appendAudit(ctx, &model.AuditLog{
		StrategyID: &strat.ID,
		EventType:  model.AuditSignalReceived,
		Symbol:     signal.Symbol,
		Action:     action,
		Quantity:   quantityOrDefault(signal),
		Metadata:   signal.Redacted(),
	})

	// 5. Instrument resolution.
	symbol := NormalizeSymbol(signal.Symbol)
	instrument, err := e.instruments.FindBySymbol(ctx, symbol)
	if err != nil {
		return e.errorOut(ctx, started, strat, signal, action, "instrument lookup failed")
	}
	if instrument == nil || !instrument.Active {
		monitoring.RecordSignalRejected(ReasonInstrumentUnavailable)
		detail := fmt.Sprintf("instrument %s not found or inactive", symbol)
		e.appendAudit(ctx, &model.AuditLog{
			StrategyID: &strat.ID,
			EventType:  model.AuditOrderRejected,
			Symbol:     symbol,
			Action:     action,
			Quantity:   quantityOrDefault(signal),
			Reason:     detail,
		})
		return e.finish(started, Result{Status: StatusRejected, Reason: ReasonInstrumentUnavailable, Detail: detail})
	}

	// 6. Admission control. A rejection here must not touch any counter.
	quantity := quantityOrDefault(signal)
	refPrice := instrument.LastClose
	if signal.Price != nil && signal.Price.IsPositive() {
		refPrice = *signal.Price
	}
	tradeAmount := refPrice.Mul(decimal.NewFromInt(quantity))

	decision := e.riskCtrl.Validate(strat, tradeAmount)
	if !decision.Allowed {
		monitoring.RecordSignalRejected(ReasonRiskLimitExceeded)
		e.appendAudit(ctx, &model.AuditLog{
			StrategyID: &strat.ID,
			EventType:  model.AuditRiskLimitHit,
			Symbol:     symbol,
			Action:     action,
			Quantity:   quantity,
			Reason:     decision.Reason,
			Metadata:   map[string]any{"limit": decision.Limit},
		})
		return e.finish(started, Result{Status: StatusRejected, Reason: ReasonRiskLimitExceeded, Detail: decision.Limit})
	}

	// 7. Execution. Seed the cache first so an instrument that has not
	// streamed yet still resolves to its last persisted close.
	e.prices.EnsureTracked(symbol, instrument.LastClose)

	var execResult *execution.Result
	if action == model.OrderSideBuy {
		execResult, err = e.executor.ExecuteBuy(ctx, strat.UserID, &strat.ID, symbol, quantity)
	} else {
		execResult, err = e.executor.ExecuteSell(ctx, strat.UserID, &strat.ID, symbol, quantity)
	}
	if err != nil {
		reason := executionReason(err)
		monitoring.RecordExecutionError(symbol)
		e.appendAudit(ctx, &model.AuditLog{
			StrategyID: &strat.ID,
			EventType:  model.AuditError,
			Symbol:     symbol,
			Action:     action,
			Quantity:   quantity,
			Reason:     err.Error(),
			Metadata:   map[string]any{"kind": reason},
		})
		if reason == ReasonExecutionError {
			// The only class worth alerting on: the trade was admitted
			// but could not be committed.
			e.log.WithError(err).WithField("strategy_id", strat.ID).Error("execution failed after admission")
		} else {
			e.log.WithError(err).WithField("strategy_id", strat.ID).Warn("execution rejected")
		}
		return e.finish(started, Result{Status: StatusError, Reason: reason, Detail: err.Error()})
	}

	// 8. Post-commit bookkeeping.
	pnl := decimal.Zero
	if execResult.RealizedPnl != nil {
		pnl = *execResult.RealizedPnl
	}
	e.updateStatistics(ctx, strat, pnl)
	e.riskCtrl.Record(strat.ID, pnl)
	e.dedup.Insert(dedupKey)
	monitoring.RecordSignalExecuted(symbol, action)

	e.appendAudit(ctx, &model.AuditLog{
		StrategyID: &strat.ID,
		OrderID:    &execResult.Order.ID,
		EventType:  model.AuditOrderExecuted,
		Symbol:     symbol,
		Action:     action,
		Quantity:   quantity,
		Metadata: map[string]any{
			"execution_price": execResult.ExecutionPrice.String(),
			"slippage_pct":    execResult.SlippagePct.String(),
			"realized_pnl":    pnl.String(),
			"latency_ms":      e.now().Sub(started).Milliseconds(),
		},
	})

	return e.finish(started, Result{
		Status:         StatusExecuted,
		Order:          execResult.Order,
		ExecutionPrice: execResult.ExecutionPrice,
		SlippagePct:    execResult.SlippagePct,
		RealizedPnl:    execResult.RealizedPnl,
	})
}

// updateStatistics folds one realized P&L into the strategy's running
// stats. Win rate is profit over profit plus loss, zero when neither has
// accrued.
func (e *Engine) updateStatistics(ctx context.Context, strat *model.Strategy, pnl decimal.Decimal) {
	strat.TotalTrades++
	if pnl.IsPositive() {
		strat.TotalProfit = strat.TotalProfit.Add(pnl)
	} else if pnl.IsNegative() {
		strat.TotalLoss = strat.TotalLoss.Add(pnl.Abs())
	}

	denominator := strat.TotalProfit.Add(strat.TotalLoss)
	if denominator.IsPositive() {
		strat.WinRate = strat.TotalProfit.
			Div(denominator).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	} else {
		strat.WinRate = decimal.Zero
	}

	executedAt := e.now()
	strat.LastExecutedAt = &executedAt

	if err := e.strategies.UpdateStats(ctx, strat); err != nil {
		e.log.WithError(err).WithField("strategy_id", strat.ID).
			Error("failed to persist strategy statistics")
	}
}

func (e *Engine) errorOut(ctx context.Context, started time.Time, strat *model.Strategy, signal externalmodel.WebhookSignal, action, detail string) Result {
	e.appendAudit(ctx, &model.AuditLog{
		StrategyID: &strat.ID,
		EventType:  model.AuditError,
		Symbol:     signal.Symbol,
		Action:     action,
		Quantity:   quantityOrDefault(signal),
		Reason:     detail,
	})
	return e.finish(started, Result{Status: StatusError, Reason: ReasonExecutionError, Detail: detail})
}

func (e *Engine) finish(started time.Time, result Result) Result {
	result.LatencyMs = e.now().Sub(started).Milliseconds()
	return result
}

func (e *Engine) appendAudit(ctx context.Context, entry *model.AuditLog) {
	if err := e.audit.Append(ctx, entry); err != nil {
		e.log.WithError(err).WithField("event_type", entry.EventType).
			Error("failed to write audit entry")
	}
}

// validate applies the structural rules of step 1. It reports the first
// violation; nothing here needs the database.
func validate(signal externalmodel.WebhookSignal, action string) (string, bool) {
	if strings.TrimSpace(signal.Symbol) == "" {
		return "symbol is required", false
	}
	if action != model.OrderSideBuy && action != model.OrderSideSell {
		return fmt.Sprintf("action must be BUY or SELL, got %q", signal.Action), false
	}
	if strings.TrimSpace(signal.Secret) == "" {
		return "secret is required", false
	}
	if signal.Quantity != 0 && signal.Quantity < 1 {
		return "quantity must be at least 1", false
	}
	if signal.Price != nil && !signal.Price.IsPositive() {
		return "price must be greater than zero", false
	}
	return "", true
}

// NormalizeSymbol strips an exchange-prefix qualifier such as "NSE:".
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if i := strings.LastIndex(symbol, ":"); i >= 0 {
		symbol = symbol[i+1:]
	}
	return strings.ToUpper(symbol)
}

func quantityOrDefault(signal externalmodel.WebhookSignal) int64 {
	if signal.Quantity >= 1 {
		return signal.Quantity
	}
	return 1
}

func executionReason(err error) string {
	switch {
	case errors.Is(err, execution.ErrPriceUnavailable):
		return ReasonPriceUnavailable
	case errors.Is(err, execution.ErrInsufficientBalance):
		return ReasonInsufficientBalance
	case errors.Is(err, execution.ErrNoHolding):
		return ReasonNoHolding
	case errors.Is(err, execution.ErrInsufficientShares):
		return ReasonInsufficientShares
	default:
		return ReasonExecutionError
	}
}

// strategyLocks serializes pipeline stages per strategy id.
type strategyLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (l *strategyLocks) lock(strategyID uint) func() {
	l.mu.Lock()
	m, ok := l.locks[strategyID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[strategyID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
