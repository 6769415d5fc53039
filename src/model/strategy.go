package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Strategy connects a webhook alert source to one tradable symbol for one
// user. The webhook secret never leaves the security package in plaintext:
// SecretDigest is the deterministic lookup column, SecretCipher the sealed
// original for display in the owner's dashboard.
type Strategy struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Description  string `gorm:"size:512" json:"description"`
	Symbol       string `gorm:"size:50;not null" json:"symbol"`
	SecretDigest string `gorm:"size:64;uniqueIndex;not null" json:"-"`
	SecretCipher string `gorm:"size:512" json:"-"`
	Active       bool   `gorm:"not null;default:true" json:"active"`

	// Risk configuration, enforced by the admission controller.
	MaxTradesPerDay       int             `gorm:"not null;default:5" json:"max_trades_per_day"`
	MaxLossPerDay         decimal.Decimal `gorm:"type:numeric(18,2)" json:"max_loss_per_day"`
	MaxCapitalPerTrade    decimal.Decimal `gorm:"type:numeric(18,2)" json:"max_capital_per_trade"`
	CooldownBetweenTrades int             `gorm:"not null;default:60" json:"cooldown_between_trades"`
	CapitalAllocated      decimal.Decimal `gorm:"type:numeric(18,2)" json:"capital_allocated"`

	// Running statistics, mutated only by the signal engine after a
	// successful execution.
	TotalTrades    int             `gorm:"not null;default:0" json:"total_trades"`
	TotalProfit    decimal.Decimal `gorm:"type:numeric(18,2)" json:"total_profit"`
	TotalLoss      decimal.Decimal `gorm:"type:numeric(18,2)" json:"total_loss"`
	WinRate        decimal.Decimal `gorm:"type:numeric(6,2)" json:"win_rate"`
	LastExecutedAt *time.Time      `json:"last_executed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
