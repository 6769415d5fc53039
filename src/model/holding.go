package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one user's position in one symbol. Quantity never goes below
// zero; the row is deleted when a sell brings it to exactly zero.
//
// AverageBuyPrice is gross (execution charges excluded); TotalInvested is
// charge-inclusive.
type Holding struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;uniqueIndex:idx_holding_user_symbol" json:"user_id"`
	Symbol          string          `gorm:"size:50;not null;uniqueIndex:idx_holding_user_symbol" json:"symbol"`
	Quantity        int64           `gorm:"not null" json:"quantity"`
	AverageBuyPrice decimal.Decimal `gorm:"type:numeric(18,4)" json:"average_buy_price"`
	TotalInvested   decimal.Decimal `gorm:"type:numeric(18,2)" json:"total_invested"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
