package model

import "time"

// Audit event types, one per terminal pipeline outcome.
const (
	AuditSignalReceived = "SIGNAL_RECEIVED"
	AuditOrderExecuted  = "ORDER_EXECUTED"
	AuditOrderRejected  = "ORDER_REJECTED"
	AuditRiskLimitHit   = "RISK_LIMIT_HIT"
	AuditError          = "ERROR"
)

// AuditLog is append-only. Rows are never updated or deleted, so the
// model intentionally carries no UpdatedAt.
type AuditLog struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	StrategyID *uint  `gorm:"index" json:"strategy_id,omitempty"`
	OrderID    *uint  `gorm:"index" json:"order_id,omitempty"`
	EventType  string `gorm:"size:30;not null;index" json:"event_type"`

	Symbol   string `gorm:"size:50" json:"symbol"`
	Action   string `gorm:"size:10" json:"action"`
	Quantity int64  `json:"quantity"`

	Reason   string         `gorm:"size:512" json:"reason,omitempty"`
	Metadata map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
