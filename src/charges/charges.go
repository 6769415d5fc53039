package charges

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Breakdown is the itemized cost of one executed leg. Total is the sum of
// every component and is what the simulator adds on top of (buy) or
// subtracts from (sell) the gross value.
type Breakdown struct {
	Brokerage    decimal.Decimal `json:"brokerage"`
	STT          decimal.Decimal `json:"stt"`
	ExchangeTxn  decimal.Decimal `json:"exchange_txn"`
	SEBITurnover decimal.Decimal `json:"sebi_turnover"`
	StampDuty    decimal.Decimal `json:"stamp_duty"`
	GST          decimal.Decimal `json:"gst"`
	Total        decimal.Decimal `json:"total"`
}

// Rate config for delivery equity. Zero-brokerage delivery model.
type RateConfig struct {
	STTPct          decimal.Decimal
	ExchangeTxnPct  decimal.Decimal
	SEBITurnoverPct decimal.Decimal
	StampDutyPct    decimal.Decimal
	GSTPct          decimal.Decimal
}

func DefaultRateConfig() RateConfig {
	return RateConfig{
		STTPct:          decimal.RequireFromString("0.1"),
		ExchangeTxnPct:  decimal.RequireFromString("0.00297"),
		SEBITurnoverPct: decimal.RequireFromString("0.0001"),
		StampDutyPct:    decimal.RequireFromString("0.015"),
		GSTPct:          decimal.RequireFromString("18"),
	}
}

var hundred = decimal.NewFromInt(100)

// Calculate returns the charge breakdown for one leg of grossValue.
// Stamp duty applies to buys only; GST applies to brokerage, exchange
// transaction and SEBI turnover fees. Every component is rounded to the
// paisa before summing.
func Calculate(side Side, grossValue decimal.Decimal, cfg RateConfig) Breakdown {
	if grossValue.LessThanOrEqual(decimal.Zero) {
		return Breakdown{}
	}

	pct := func(rate decimal.Decimal) decimal.Decimal {
		return grossValue.Mul(rate).Div(hundred).Round(2)
	}

	b := Breakdown{
		Brokerage:    decimal.Zero,
		STT:          pct(cfg.STTPct),
		ExchangeTxn:  pct(cfg.ExchangeTxnPct),
		SEBITurnover: pct(cfg.SEBITurnoverPct),
	}

	if isBuy(side) {
		b.StampDuty = pct(cfg.StampDutyPct)
	} else {
		b.StampDuty = decimal.Zero
	}

	taxable := b.Brokerage.Add(b.ExchangeTxn).Add(b.SEBITurnover)
	b.GST = taxable.Mul(cfg.GSTPct).Div(hundred).Round(2)

	b.Total = b.Brokerage.
		Add(b.STT).
		Add(b.ExchangeTxn).
		Add(b.SEBITurnover).
		Add(b.StampDuty).
		Add(b.GST)

	return b
}

func isBuy(side Side) bool {
	return strings.EqualFold(string(side), string(SideBuy))
}
