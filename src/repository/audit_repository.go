package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/model"
)

// GormAuditRepository is the append-only sink for pipeline audit events.
// Entries are never updated or deleted.
type GormAuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository() *GormAuditRepository {
	return &GormAuditRepository{db: database.MainDB}
}

func (r *GormAuditRepository) WithDB(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Append(ctx context.Context, entry *model.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.WithError(err).WithField("event_type", entry.EventType).
			Error("failed to append audit log entry")
		return err
	}
	return nil
}
