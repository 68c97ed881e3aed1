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

// ListFilter narrows collection listings. Zero values mean "no filter".
type ListFilter struct {
	Status string
	SetID  *uuid.UUID
}

// ValueTotals is the aggregate used by the analytics dashboard.
type ValueTotals struct {
	Count          int64
	PurchasePrice  int64
	EstimatedValue int64
}

type GradedCardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cards []*types.GradedCard) ([]*types.GradedCard, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.GradedCard, error)
	GetByCertNumber(ctx context.Context, tx *gorm.DB, certNumber string) (*types.GradedCard, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*types.GradedCard, error)
	Update(ctx context.Context, tx *gorm.DB, card *types.GradedCard) (*types.GradedCard, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, status string) error
	MarkSold(ctx context.Context, tx *gorm.DB, id uuid.UUID, soldAt time.Time) error
	UpdateImage(ctx context.Context, tx *gorm.DB, id uuid.UUID, bucketKey, url string) error
	UpdateOCRCandidates(ctx context.Context, tx *gorm.DB, id uuid.UUID, candidates datatypes.JSON) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (*ValueTotals, error)
}

type gradedCardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGradedCardRepo(db *gorm.DB, baseLog *logger.Logger) GradedCardRepo {
	return &gradedCardRepo{db: db, log: baseLog.With("repo", "GradedCardRepo")}
}

func (r *gradedCardRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *gradedCardRepo) Create(ctx context.Context, tx *gorm.DB, cards []*types.GradedCard) ([]*types.GradedCard, error) {
	if len(cards) == 0 {
		return []*types.GradedCard{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *gradedCardRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.GradedCard, error) {
	var results []*types.GradedCard
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

func (r *gradedCardRepo) GetByCertNumber(ctx context.Context, tx *gorm.DB, certNumber string) (*types.GradedCard, error) {
	var result types.GradedCard
	err := r.handle(tx).WithContext(ctx).
		Where("cert_number = ?", certNumber).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *gradedCardRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*types.GradedCard, error) {
	var results []*types.GradedCard
	q := r.handle(tx).WithContext(ctx).
		Preload("CardDefinition").
		Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SetID != nil {
		q = q.Joins("JOIN card_definition ON card_definition.id = graded_card.card_definition_id").
			Where("card_definition.set_id = ?", *filter.SetID)
	}
	if err := q.Order("graded_card.created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gradedCardRepo) Update(ctx context.Context, tx *gorm.DB, card *types.GradedCard) (*types.GradedCard, error) {
	if err := r.handle(tx).WithContext(ctx).Save(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

func (r *gradedCardRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Model(&types.GradedCard{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

func (r *gradedCardRepo) MarkSold(ctx context.Context, tx *gorm.DB, id uuid.UUID, soldAt time.Time) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.GradedCard{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  types.ItemStatusSold,
			"sold_at": soldAt,
		}).Error
}

func (r *gradedCardRepo) UpdateImage(ctx context.Context, tx *gorm.DB, id uuid.UUID, bucketKey, url string) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.GradedCard{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"image_bucket_key": bucketKey,
			"image_url":        url,
		}).Error
}

func (r *gradedCardRepo) UpdateOCRCandidates(ctx context.Context, tx *gorm.DB, id uuid.UUID, candidates datatypes.JSON) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.GradedCard{}).
		Where("id = ?", id).
		Update("ocr_candidates", candidates).Error
}

func (r *gradedCardRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.GradedCard{}).Error
}

func (r *gradedCardRepo) TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (*ValueTotals, error) {
	var totals ValueTotals
	q := r.handle(tx).WithContext(ctx).
		Model(&types.GradedCard{}).
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Select(
		"COUNT(*) AS count",
		"COALESCE(SUM(purchase_price), 0) AS purchase_price",
		"COALESCE(SUM(estimated_value), 0) AS estimated_value",
	).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
