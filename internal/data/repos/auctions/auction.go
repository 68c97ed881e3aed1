package auctions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type AuctionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, auctions []*types.Auction) ([]*types.Auction, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Auction, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) ([]*types.Auction, error)
	Update(ctx context.Context, tx *gorm.DB, auction *types.Auction) (*types.Auction, error)
	MarkExported(ctx context.Context, tx *gorm.DB, id uuid.UUID, exportedAt time.Time) error
	MarkClosed(ctx context.Context, tx *gorm.DB, id uuid.UUID, closedAt time.Time) error
	UpdateTotalEstimate(ctx context.Context, tx *gorm.DB, id uuid.UUID, total int64) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type auctionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuctionRepo(db *gorm.DB, baseLog *logger.Logger) AuctionRepo {
	return &auctionRepo{db: db, log: baseLog.With("repo", "AuctionRepo")}
}

func (r *auctionRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *auctionRepo) Create(ctx context.Context, tx *gorm.DB, auctions []*types.Auction) ([]*types.Auction, error) {
	if len(auctions) == 0 {
		return []*types.Auction{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&auctions).Error; err != nil {
		return nil, err
	}
	return auctions, nil
}

func (r *auctionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Auction, error) {
	var results []*types.Auction
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.handle(tx).WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("auction_item.lot_number ASC")
		}).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *auctionRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) ([]*types.Auction, error) {
	var results []*types.Auction
	q := r.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *auctionRepo) Update(ctx context.Context, tx *gorm.DB, auction *types.Auction) (*types.Auction, error) {
	if err := r.handle(tx).WithContext(ctx).Save(auction).Error; err != nil {
		return nil, err
	}
	return auction, nil
}

func (r *auctionRepo) MarkExported(ctx context.Context, tx *gorm.DB, id uuid.UUID, exportedAt time.Time) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.Auction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      types.AuctionStatusExported,
			"exported_at": exportedAt,
		}).Error
}

func (r *auctionRepo) MarkClosed(ctx context.Context, tx *gorm.DB, id uuid.UUID, closedAt time.Time) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.Auction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    types.AuctionStatusClosed,
			"closed_at": closedAt,
		}).Error
}

func (r *auctionRepo) UpdateTotalEstimate(ctx context.Context, tx *gorm.DB, id uuid.UUID, total int64) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.Auction{}).
		Where("id = ?", id).
		Update("total_estimate", total).Error
}

func (r *auctionRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Auction{}).Error
}
