package engine

import (
	"github.com/shopspring/decimal"

	"papertrader/src/model"
)

// Pipeline outcome statuses.
const (
	StatusExecuted  = "executed"
	StatusRejected  = "rejected"
	StatusDuplicate = "duplicate"
	StatusError     = "error"
)

// Machine-readable rejection/failure kinds. The HTTP layer maps these to
// status codes; nothing in the pipeline depends on the transport.
const (
	ReasonValidation            = "VALIDATION_ERROR"
	ReasonStrategyNotFound      = "STRATEGY_NOT_FOUND"
	ReasonDuplicateSignal       = "DUPLICATE_SIGNAL"
	ReasonInstrumentUnavailable = "INSTRUMENT_UNAVAILABLE"
	ReasonRiskLimitExceeded     = "RISK_LIMIT_EXCEEDED"
	ReasonPriceUnavailable      = "PRICE_UNAVAILABLE"
	ReasonInsufficientBalance   = "INSUFFICIENT_BALANCE"
	ReasonNoHolding             = "NO_HOLDING"
	ReasonInsufficientShares    = "INSUFFICIENT_SHARES"
	ReasonExecutionError        = "EXECUTION_ERROR"
)

// Result is the terminal outcome for one inbound signal. No stage is
// retried; a failed signal yields exactly one Result.
type Result struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`

	Order          *model.Order     `json:"order,omitempty"`
	ExecutionPrice decimal.Decimal  `json:"execution_price,omitempty"`
	SlippagePct    decimal.Decimal  `json:"slippage_pct,omitempty"`
	RealizedPnl    *decimal.Decimal `json:"realized_pnl,omitempty"`
	LatencyMs      int64            `json:"latency_ms"`
}

func (r Result) Executed() bool { return r.Status == StatusExecuted }
