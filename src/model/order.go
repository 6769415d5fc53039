package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"

	OrderStatusExecuted = "executed"

	ExecutionModePaper = "paper"
	ExecutionModeLive  = "live"
)

// Order is the record of one simulated fill. Orders are written exactly
// once by the execution simulator and never updated.
type Order struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ClientOrderID string `gorm:"size:64;uniqueIndex" json:"client_order_id"`
	UserID        uint   `gorm:"index" json:"user_id"`
	StrategyID    *uint  `gorm:"index" json:"strategy_id,omitempty"`
	Symbol        string `gorm:"size:50;not null" json:"symbol"`
	Side          string `gorm:"size:10;not null" json:"side"`
	Quantity      int64  `gorm:"not null" json:"quantity"`

	// Fill details.
	Price       decimal.Decimal  `gorm:"type:numeric(18,4)" json:"price"`
	SlippagePct decimal.Decimal  `gorm:"type:numeric(8,4)" json:"slippage_pct"`
	GrossValue  decimal.Decimal  `gorm:"type:numeric(18,2)" json:"gross_value"`
	Charges     decimal.Decimal  `gorm:"type:numeric(18,2)" json:"charges"`
	NetAmount   decimal.Decimal  `gorm:"type:numeric(18,2)" json:"net_amount"`
	RealizedPnl *decimal.Decimal `gorm:"type:numeric(18,2)" json:"realized_pnl,omitempty"`

	Mode       string     `gorm:"size:10;not null;default:paper" json:"mode"`
	Status     string     `gorm:"size:20;not null;default:executed" json:"status"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}
