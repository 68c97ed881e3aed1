package collection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type RawCardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cards []*types.RawCard) ([]*types.RawCard, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.RawCard, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*types.RawCard, error)
	Update(ctx context.Context, tx *gorm.DB, card *types.RawCard) (*types.RawCard, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, status string) error
	MarkSold(ctx context.Context, tx *gorm.DB, id uuid.UUID, soldAt time.Time) error
	UpdateImage(ctx context.Context, tx *gorm.DB, id uuid.UUID, bucketKey, url string) error
	UpdateOCRCandidates(ctx context.Context, tx *gorm.DB, id uuid.UUID, candidates datatypes.JSON) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (*ValueTotals, error)
}

type rawCardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRawCardRepo(db *gorm.DB, baseLog *logger.Logger) RawCardRepo {
	return &rawCardRepo{db: db, log: baseLog.With("repo", "RawCardRepo")}
}

func (r *rawCardRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *rawCardRepo) Create(ctx context.Context, tx *gorm.DB, cards []*types.RawCard) ([]*types.RawCard, error) {
	if len(cards) == 0 {
		return []*types.RawCard{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *rawCardRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.RawCard, error) {
	var results []*types.RawCard
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.handle(tx).WithContext(ctx).
		Preload("CardDefinition").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rawCardRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*types.RawCard, error) {
	var results []*types.RawCard
	q := r.handle(tx).WithContext(ctx).
		Preload("CardDefinition").
		Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SetID != nil {
		q = q.Joins("JOIN card_definition ON card_definition.id = raw_card.card_definition_id").
			Where("card_definition.set_id = ?", *filter.SetID)
	}
	if err := q.Order("raw_card.created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rawCardRepo) Update(ctx context.Context, tx *gorm.DB, card *types.RawCard) (*types.RawCard, error) {
	if err := r.handle(tx).WithContext(ctx).Save(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

func (r *rawCardRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Model(&types.RawCard{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

func (r *rawCardRepo) MarkSold(ctx context.Context, tx *gorm.DB, id uuid.UUID, soldAt time.Time) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.RawCard{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  types.ItemStatusSold,
			"sold_at": soldAt,
		}).Error
}

func (r *rawCardRepo) UpdateImage(ctx context.Context, tx *gorm.DB, id uuid.UUID, bucketKey, url string) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.RawCard{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"image_bucket_key": bucketKey,
			"image_url":        url,
		}).Error
}

func (r *rawCardRepo) UpdateOCRCandidates(ctx context.Context, tx *gorm.DB, id uuid.UUID, candidates datatypes.JSON) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.RawCard{}).
		Where("id = ?", id).
		Update("ocr_candidates", candidates).Error
}

func (r *rawCardRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.RawCard{}).Error
}

func (r *rawCardRepo) TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (*ValueTotals, error) {
	var totals ValueTotals
	q := r.handle(tx).WithContext(ctx).
		Model(&types.RawCard{}).
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Select(
		"COUNT(*) AS count",
		"COALESCE(SUM(purchase_price * quantity), 0) AS purchase_price",
		"COALESCE(SUM(estimated_value * quantity), 0) AS estimated_value",
	).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
