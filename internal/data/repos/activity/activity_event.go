package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type ActivityEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.ActivityEvent) ([]*types.ActivityEvent, error)
	ListRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ActivityEvent, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type activityEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityEventRepo(db *gorm.DB, baseLog *logger.Logger) ActivityEventRepo {
	return &activityEventRepo{db: db, log: baseLog.With("repo", "ActivityEventRepo")}
}

func (r *activityEventRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *activityEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.ActivityEvent) ([]*types.ActivityEvent, error) {
	if len(events) == 0 {
		return []*types.ActivityEvent{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *activityEventRepo) ListRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ActivityEvent, error) {
	var results []*types.ActivityEvent
	if limit <= 0 {
		limit = 50
	}
	if err := r.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityEventRepo) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	res := r.handle(tx).WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&types.ActivityEvent{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
