package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/model"
	"papertrader/src/utils"
)

// Limit names surfaced on rejection. Callers and tests match on these, so
// they are part of the contract.
const (
	LimitStrategyInactive   = "strategy_inactive"
	LimitMaxTradesPerDay    = "max_trades_per_day"
	LimitMaxLossPerDay      = "max_loss_per_day"
	LimitMaxCapitalPerTrade = "max_capital_per_trade"
	LimitCooldown           = "cooldown_between_trades"
	LimitCapitalAllocated   = "capital_allocated"
	LimitMarketClosed       = "market_closed"
)

// State is the per-strategy risk ledger for the current exchange day.
// Process-lifetime only: it bounds today's activity and is rebuilt empty
// after a restart.
type State struct {
	TradesToday int             `json:"trades_today"`
	LossToday   decimal.Decimal `json:"loss_today"`
	LastTradeAt time.Time       `json:"last_trade_at"`
}

type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

type Decision struct {
	Allowed bool          `json:"allowed"`
	Limit   string        `json:"limit,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	Checks  []CheckResult `json:"checks"`
}

// Manager owns the transient risk state and the daily reset schedule.
type Manager struct {
	mu     sync.Mutex
	states map[uint]State

	loc *time.Location
	now func() time.Time
	log *logger.Entry
}

func NewManager() *Manager {
	config := GetConfig()

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		logger.WithError(err).WithField("timezone", config.Timezone).
			Warn("failed to load risk timezone, falling back to UTC")
		loc = time.UTC
	}

	return &Manager{
		states: make(map[uint]State),
		loc:    loc,
		now:    time.Now,
		log:    logger.WithField("component", "risk_manager"),
	}
}

// WithClock overrides the time source. Tests use this to pin the session
// window and to force midnight rollovers.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Validate decides whether a trade of tradeAmount may proceed for strat.
// The decision itself is a pure function of (state, strategy, now); see
// Evaluate. Checks run in a fixed order and the first failure is the
// reported reason.
func (m *Manager) Validate(strat *model.Strategy, tradeAmount decimal.Decimal) Decision {
	state := m.StateOf(strat.ID)
	decision := Evaluate(state, strat, tradeAmount, m.now().In(m.loc))

	if !decision.Allowed {
		m.log.WithFields(logger.Fields{
			"strategy_id": strat.ID,
			"limit":       decision.Limit,
		}).Debug("trade rejected by admission control")
	}
	return decision
}

// Record advances the counters after a committed execution. Loss is
// accumulated from negative P&L only; the cooldown clock always restarts.
func (m *Manager) Record(strategyID uint, profitLoss decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.states[strategyID]
	state.TradesToday++
	if profitLoss.IsNegative() {
		state.LossToday = state.LossToday.Add(profitLoss.Abs())
	}
	state.LastTradeAt = m.now()
	m.states[strategyID] = state
}

// ResetStrategyCounters is the administrative override clearing one
// strategy's state ahead of the scheduled daily reset.
func (m *Manager) ResetStrategyCounters(strategyID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, strategyID)
	m.log.WithField("strategy_id", strategyID).Info("risk counters reset")
}

// StateOf returns a copy of the current state for strategyID.
func (m *Manager) StateOf(strategyID uint) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[strategyID]
}

// StartDailyReset clears every strategy's counters at the next local
// midnight and every 24h after that, until ctx is canceled. The reset is
// a real recurring timer: a long-idle process still resets on schedule.
func (m *Manager) StartDailyReset(ctx context.Context) {
	go func() {
		for {
			now := m.now().In(m.loc)
			wait := utils.NextMidnight(now).Sub(now)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				m.resetAllCounters()
			}
		}
	}()
}

func (m *Manager) resetAllCounters() {
	m.mu.Lock()
	cleared := len(m.states)
	m.states = make(map[uint]State)
	m.mu.Unlock()

	m.log.WithField("strategies", cleared).Info("daily risk counters reset")
}

// Evaluate is the admission decision as a pure function. Order matters:
// callers rely on which single reason is surfaced when several limits are
// violated at once.
func Evaluate(state State, strat *model.Strategy, tradeAmount decimal.Decimal, now time.Time) Decision {
	decision := Decision{Allowed: true}

	record := func(name string, passed bool, detail string) bool {
		decision.Checks = append(decision.Checks, CheckResult{Name: name, Passed: passed, Detail: detail})
		if !passed && decision.Allowed {
			decision.Allowed = false
			decision.Limit = name
			decision.Reason = detail
		}
		return passed
	}

	if !record(LimitStrategyInactive, strat.Active, "strategy is not active") {
		return decision
	}
	if !record(LimitMaxTradesPerDay, state.TradesToday < strat.MaxTradesPerDay,
		fmt.Sprintf("daily trade limit reached (%d/%d)", state.TradesToday, strat.MaxTradesPerDay)) {
		return decision
	}
	if !record(LimitMaxLossPerDay, state.LossToday.LessThan(strat.MaxLossPerDay),
		fmt.Sprintf("daily loss limit reached (%s/%s)", state.LossToday, strat.MaxLossPerDay)) {
		return decision
	}
	if !record(LimitMaxCapitalPerTrade, tradeAmount.LessThanOrEqual(strat.MaxCapitalPerTrade),
		fmt.Sprintf("trade amount %s exceeds per-trade capital limit %s", tradeAmount, strat.MaxCapitalPerTrade)) {
		return decision
	}

	cooldown := time.Duration(strat.CooldownBetweenTrades) * time.Second
	inCooldown := !state.LastTradeAt.IsZero() && now.Sub(state.LastTradeAt) < cooldown
	if !record(LimitCooldown, !inCooldown,
		fmt.Sprintf("cooldown of %s since last trade not elapsed", cooldown)) {
		return decision
	}
	if !record(LimitCapitalAllocated, tradeAmount.LessThanOrEqual(strat.CapitalAllocated),
		fmt.Sprintf("trade amount %s exceeds allocated capital %s", tradeAmount, strat.CapitalAllocated)) {
		return decision
	}
	if !record(LimitMarketClosed, utils.IsMarketOpen(now), "outside trading session (09:15-15:30, weekdays)") {
		return decision
	}

	return decision
}
