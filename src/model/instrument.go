package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Instrument struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Symbol   string `gorm:"size:50;uniqueIndex;not null" json:"symbol"`
	Name     string `gorm:"size:255" json:"name"`
	Exchange string `gorm:"size:20;not null;default:NSE" json:"exchange"`
	Active   bool   `gorm:"not null;default:true" json:"active"`

	// LastClose is the reference price used to seed the price cache for
	// instruments that have not streamed a tick yet.
	LastClose decimal.Decimal `gorm:"type:numeric(18,2)" json:"last_close"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
