package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	UserName string          `gorm:"size:100;uniqueIndex;not null" json:"user_name"`
	Email    string          `gorm:"size:255" json:"email"`
	Balance  decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"balance"`
	Active   bool            `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
