package auctions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type AuctionItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*types.AuctionItem) ([]*types.AuctionItem, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AuctionItem, error)
	ListByAuctionID(ctx context.Context, tx *gorm.DB, auctionID uuid.UUID) ([]*types.AuctionItem, error)
	MaxLotNumber(ctx context.Context, tx *gorm.DB, auctionID uuid.UUID) (int, error)
	ItemInOpenAuction(ctx context.Context, tx *gorm.DB, itemKind string, itemID uuid.UUID) (bool, error)
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	FullDeleteByAuctionIDs(ctx context.Context, tx *gorm.DB, auctionIDs []uuid.UUID) error
}

type auctionItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuctionItemRepo(db *gorm.DB, baseLog *logger.Logger) AuctionItemRepo {
	return &auctionItemRepo{db: db, log: baseLog.With("repo", "AuctionItemRepo")}
}

func (r *auctionItemRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *auctionItemRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.AuctionItem) ([]*types.AuctionItem, error) {
	if len(items) == 0 {
		return []*types.AuctionItem{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *auctionItemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AuctionItem, error) {
	var results []*types.AuctionItem
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.handle(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *auctionItemRepo) ListByAuctionID(ctx context.Context, tx *gorm.DB, auctionID uuid.UUID) ([]*types.AuctionItem, error) {
	var results []*types.AuctionItem
	if err := r.handle(tx).WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("lot_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *auctionItemRepo) MaxLotNumber(ctx context.Context, tx *gorm.DB, auctionID uuid.UUID) (int, error) {
	var max int
	err := r.handle(tx).WithContext(ctx).
		Model(&types.AuctionItem{}).
		Where("auction_id = ?", auctionID).
		Select("COALESCE(MAX(lot_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

// ItemInOpenAuction reports whether a collection item is already a lot in
// a draft or exported auction.
func (r *auctionItemRepo) ItemInOpenAuction(ctx context.Context, tx *gorm.DB, itemKind string, itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.handle(tx).WithContext(ctx).
		Model(&types.AuctionItem{}).
		Joins("JOIN auction ON auction.id = auction_item.auction_id").
		Where("auction_item.item_kind = ? AND auction_item.item_id = ?", itemKind, itemID).
		Where("auction.status IN ?", []string{types.AuctionStatusDraft, types.AuctionStatusExported}).
		Where("auction.deleted_at IS NULL").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *auctionItemRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Unscoped().
		Where("id IN ?", ids).
		Delete(&types.AuctionItem{}).Error
}

func (r *auctionItemRepo) FullDeleteByAuctionIDs(ctx context.Context, tx *gorm.DB, auctionIDs []uuid.UUID) error {
	if len(auctionIDs) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Unscoped().
		Where("auction_id IN ?", auctionIDs).
		Delete(&types.AuctionItem{}).Error
}
