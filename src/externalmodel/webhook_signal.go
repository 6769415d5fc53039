package externalmodel

import "github.com/shopspring/decimal"

// WebhookSignal is the raw alert payload posted by the charting service.
// It is ephemeral: the fields are untrusted until the engine has matched
// Secret against an active strategy.
type WebhookSignal struct {
	Symbol   string           `json:"symbol"`
	Action   string           `json:"action"`
	Quantity int64            `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Strategy string           `json:"strategy,omitempty"`
	Secret   string           `json:"secret"`

	// Timestamp is kept as the sender's raw string. Together with the
	// resolved strategy id it forms the idempotency key, so two retries
	// of the same alert carry the identical value.
	Timestamp string `json:"timestamp"`
}

// Redacted returns a copy safe for logging and audit metadata.
func (s WebhookSignal) Redacted() map[string]any {
	m := map[string]any{
		"symbol":    s.Symbol,
		"action":    s.Action,
		"quantity":  s.Quantity,
		"strategy":  s.Strategy,
		"timestamp": s.Timestamp,
	}
	if s.Price != nil {
		m["price"] = s.Price.String()
	}
	return m
}
