package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/execution"
	"papertrader/src/model"
)

// GormTradeStore implements execution.TradeStore. Atomic wraps the whole
// balance/holding/order mutation of one fill in a single transaction, so
// either all of it lands or none of it does.
type GormTradeStore struct {
	db *gorm.DB
}

func NewTradeStore() *GormTradeStore {
	return &GormTradeStore{db: database.MainDB}
}

func (s *GormTradeStore) WithDB(db *gorm.DB) *GormTradeStore {
	return &GormTradeStore{db: db}
}

func (s *GormTradeStore) Atomic(ctx context.Context, fn func(tx execution.TradeTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormTradeStore{db: tx})
	})
}

// DebitIfSufficient atomically subtracts amount from the user's balance.
// The balance guard lives in the WHERE clause, so two concurrent debits
// can never both succeed on funds that cover only one.
func (s *GormTradeStore) DebitIfSufficient(ctx context.Context, userID uint, amount decimal.Decimal) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormTradeStore) Credit(ctx context.Context, userID uint, amount decimal.Decimal) error {
	res := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormTradeStore) GetHolding(ctx context.Context, userID uint, symbol string) (*model.Holding, error) {
	var holding model.Holding
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		First(&holding).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &holding, nil
}

func (s *GormTradeStore) SaveHolding(ctx context.Context, holding *model.Holding) error {
	return s.db.WithContext(ctx).Save(holding).Error
}

func (s *GormTradeStore) DeleteHolding(ctx context.Context, userID uint, symbol string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Delete(&model.Holding{}).Error
}

func (s *GormTradeStore) InsertOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}
