package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/model"
)

type GormInstrumentRepository struct {
	db *gorm.DB
}

func NewInstrumentRepository() *GormInstrumentRepository {
	return &GormInstrumentRepository{db: database.MainDB}
}

func (r *GormInstrumentRepository) WithDB(db *gorm.DB) *GormInstrumentRepository {
	return &GormInstrumentRepository{db: db}
}

// FindBySymbol returns (nil, nil) when the symbol is unknown.
func (r *GormInstrumentRepository) FindBySymbol(ctx context.Context, symbol string) (*model.Instrument, error) {
	var inst model.Instrument
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		First(&inst).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inst, nil
}

// ListActive returns every tradable instrument, used to seed the price
// cache at startup.
func (r *GormInstrumentRepository) ListActive(ctx context.Context) ([]model.Instrument, error) {
	var instruments []model.Instrument
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}
