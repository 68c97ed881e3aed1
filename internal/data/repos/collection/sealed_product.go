package collection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type SealedProductRepo interface {
	Create(ctx context.Context, tx *gorm.DB, products []*types.SealedProduct) ([]*types.SealedProduct, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SealedProduct, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*types.SealedProduct, error)
	Update(ctx context.Context, tx *gorm.DB, product *types.SealedProduct) (*types.SealedProduct, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, status string) error
	MarkSold(ctx context.Context, tx *gorm.DB, id uuid.UUID, soldAt time.Time) error
	UpdateImage(ctx context.Context, tx *gorm.DB, id uuid.UUID, bucketKey, url string) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (*ValueTotals, error)
}

type sealedProductRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSealedProductRepo(db *gorm.DB, baseLog *logger.Logger) SealedProductRepo {
	return &sealedProductRepo{db: db, log: baseLog.With("repo", "SealedProductRepo")}
}

func (r *sealedProductRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sealedProductRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.SealedProduct) ([]*types.SealedProduct, error) {
	if len(products) == 0 {
		return []*types.SealedProduct{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *sealedProductRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SealedProduct, error) {
	var results []*types.SealedProduct
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.handle(tx).WithContext(ctx).
		Preload("Set").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sealedProductRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*types.SealedProduct, error) {
	var results []*types.SealedProduct
	q := r.handle(tx).WithContext(ctx).
		Preload("Set").
		Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SetID != nil {
		q = q.Where("set_id = ?", *filter.SetID)
	}
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sealedProductRepo) Update(ctx context.Context, tx *gorm.DB, product *types.SealedProduct) (*types.SealedProduct, error) {
	if err := r.handle(tx).WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *sealedProductRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Model(&types.SealedProduct{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

func (r *sealedProductRepo) MarkSold(ctx context.Context, tx *gorm.DB, id uuid.UUID, soldAt time.Time) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.SealedProduct{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  types.ItemStatusSold,
			"sold_at": soldAt,
		}).Error
}

func (r *sealedProductRepo) UpdateImage(ctx context.Context, tx *gorm.DB, id uuid.UUID, bucketKey, url string) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.SealedProduct{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"image_bucket_key": bucketKey,
			"image_url":        url,
		}).Error
}

func (r *sealedProductRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.SealedProduct{}).Error
}

func (r *sealedProductRepo) TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (*ValueTotals, error) {
	var totals ValueTotals
	q := r.handle(tx).WithContext(ctx).
		Model(&types.SealedProduct{}).
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
