package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/model"
)

type GormStrategyRepository struct {
	db *gorm.DB
}

func NewStrategyRepository() *GormStrategyRepository {
	return &GormStrategyRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance. Useful for
// tests or custom sessions/transactions.
func (r *GormStrategyRepository) WithDB(db *gorm.DB) *GormStrategyRepository {
	return &GormStrategyRepository{db: db}
}

// FindActiveBySecretDigest resolves the strategy owning a webhook secret.
// Returns (nil, nil) when no active strategy matches; an unknown secret is
// not a database error.
func (r *GormStrategyRepository) FindActiveBySecretDigest(ctx context.Context, digest string) (*model.Strategy, error) {
	var strat model.Strategy
	err := r.db.WithContext(ctx).
		Where("secret_digest = ? AND active = ?", digest, true).
		First(&strat).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithError(err).Error("failed to fetch strategy by secret digest")
		return nil, err
	}
	return &strat, nil
}

func (r *GormStrategyRepository) FindByID(ctx context.Context, id uint) (*model.Strategy, error) {
	var strat model.Strategy
	err := r.db.WithContext(ctx).First(&strat, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &strat, nil
}

// UpdateStats persists the running statistics mutated by the signal
// engine after a successful execution.
func (r *GormStrategyRepository) UpdateStats(ctx context.Context, strat *model.Strategy) error {
	return r.db.WithContext(ctx).
		Model(&model.Strategy{}).
		Where("id = ?", strat.ID).
		Updates(map[string]any{
			"total_trades":     strat.TotalTrades,
			"total_profit":     strat.TotalProfit,
			"total_loss":       strat.TotalLoss,
			"win_rate":         strat.WinRate,
			"last_executed_at": strat.LastExecutedAt,
		}).Error
}

// Deactivate soft-disables a strategy. Strategies referenced by audit
// history are never deleted.
func (r *GormStrategyRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Strategy{}).
		Where("id = ?", id).
		Update("active", false).Error
}
