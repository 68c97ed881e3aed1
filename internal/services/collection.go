package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/clients/gcp"
	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/apierr"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/realtime"
)

// SaleInput describes a completed sale of a collection item.
type SaleInput struct {
	ItemKind  string
	ItemID    uuid.UUID
	SalePrice int64
	Fees      int64
	Channel   string
	Buyer     string
	SoldAt    time.Time
}

type CollectionService interface {
	AddGradedCard(ctx context.Context, userID uuid.UUID, card *types.GradedCard) (*types.GradedCard, error)
	AddRawCard(ctx context.Context, userID uuid.UUID, card *types.RawCard) (*types.RawCard, error)
	AddSealedProduct(ctx context.Context, userID uuid.UUID, product *types.SealedProduct) (*types.SealedProduct, error)

	ListGraded(ctx context.Context, userID uuid.UUID, filter repos.ListFilter) ([]*types.GradedCard, error)
	ListRaw(ctx context.Context, userID uuid.UUID, filter repos.ListFilter) ([]*types.RawCard, error)
	ListSealed(ctx context.Context, userID uuid.UUID, filter repos.ListFilter) ([]*types.SealedProduct, error)

	UpdateGradedCard(ctx context.Context, userID uuid.UUID, card *types.GradedCard) (*types.GradedCard, error)
	UpdateRawCard(ctx context.Context, userID uuid.UUID, card *types.RawCard) (*types.RawCard, error)
	UpdateSealedProduct(ctx context.Context, userID uuid.UUID, product *types.SealedProduct) (*types.SealedProduct, error)

	AttachImage(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID, raw []byte, filename string) (string, error)
	RecordSale(ctx context.Context, userID uuid.UUID, sale SaleInput) (*types.SaleRecord, error)
	DeleteItem(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID) error
	ListSales(ctx context.Context, userID uuid.UUID, since *time.Time) ([]*types.SaleRecord, error)
}

type collectionService struct {
	db  *gorm.DB
	log *logger.Logger

	gradedRepo  repos.GradedCardRepo
	rawRepo     repos.RawCardRepo
	sealedRepo  repos.SealedProductRepo
	saleRepo    repos.SaleRecordRepo
	auctionItem repos.AuctionItemRepo

	bucketService gcp.BucketService
	activity      ActivityService
	analytics     AnalyticsService
	emitter       Emitter
}

func NewCollectionService(
	db *gorm.DB,
	log *logger.Logger,
	gradedRepo repos.GradedCardRepo,
	rawRepo repos.RawCardRepo,
	sealedRepo repos.SealedProductRepo,
	saleRepo repos.SaleRecordRepo,
	auctionItem repos.AuctionItemRepo,
	bucketService gcp.BucketService,
	activity ActivityService,
	analytics AnalyticsService,
	emitter Emitter,
) CollectionService {
	return &collectionService{
		db:            db,
		log:           log.With("service", "CollectionService"),
		gradedRepo:    gradedRepo,
		rawRepo:       rawRepo,
		sealedRepo:    sealedRepo,
		saleRepo:      saleRepo,
		auctionItem:   auctionItem,
		bucketService: bucketService,
		activity:      activity,
		analytics:     analytics,
		emitter:       emitter,
	}
}

func (cs *collectionService) AddGradedCard(ctx context.Context, userID uuid.UUID, card *types.GradedCard) (*types.GradedCard, error) {
	if card.Grade < 1 || card.Grade > 10 {
		return nil, fmt.Errorf("grade must be between 1 and 10")
	}
	if card.CertNumber == "" {
		return nil, fmt.Errorf("cert number is required")
	}
	existing, err := cs.gradedRepo.GetByCertNumber(ctx, nil, card.CertNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check cert number: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("cert number %s is already in the collection", card.CertNumber)
	}

	card.ID = uuid.New()
	card.UserID = userID
	card.Status = types.ItemStatusOwned

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.gradedRepo.Create(ctx, tx, []*types.GradedCard{card}); err != nil {
			return fmt.Errorf("failed to create graded card: %w", err)
		}
		return cs.activity.Record(ctx, tx, userID, types.ActivityItemAdded,
			fmt.Sprintf("%s %d #%s", card.GradingCompany, card.Grade, card.CertNumber),
			map[string]any{"item_kind": types.ItemKindGraded, "item_id": card.ID})
	})
	if err != nil {
		return nil, err
	}

	cs.afterMutation(ctx, userID, realtime.EventItemAdded, types.ItemKindGraded, card.ID)
	return card, nil
}

func (cs *collectionService) AddRawCard(ctx context.Context, userID uuid.UUID, card *types.RawCard) (*types.RawCard, error) {
	if card.Quantity < 1 {
		card.Quantity = 1
	}
	card.ID = uuid.New()
	card.UserID = userID
	card.Status = types.ItemStatusOwned

	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.rawRepo.Create(ctx, tx, []*types.RawCard{card}); err != nil {
			return fmt.Errorf("failed to create raw card: %w", err)
		}
		return cs.activity.Record(ctx, tx, userID, types.ActivityItemAdded,
			fmt.Sprintf("raw card (%s) x%d", card.Condition, card.Quantity),
			map[string]any{"item_kind": types.ItemKindRaw, "item_id": card.ID})
	})
	if err != nil {
		return nil, err
	}

	cs.afterMutation(ctx, userID, realtime.EventItemAdded, types.ItemKindRaw, card.ID)
	return card, nil
}

func (cs *collectionService) AddSealedProduct(ctx context.Context, userID uuid.UUID, product *types.SealedProduct) (*types.SealedProduct, error) {
	if product.Name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if product.Quantity < 1 {
		product.Quantity = 1
	}
	product.ID = uuid.New()
	product.UserID = userID
	product.Status = types.ItemStatusOwned

	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.sealedRepo.Create(ctx, tx, []*types.SealedProduct{product}); err != nil {
			return fmt.Errorf("failed to create sealed product: %w", err)
		}
		return cs.activity.Record(ctx, tx, userID, types.ActivityItemAdded,
			product.Name,
			map[string]any{"item_kind": types.ItemKindSealed, "item_id": product.ID})
	})
	if err != nil {
		return nil, err
	}

	cs.afterMutation(ctx, userID, realtime.EventItemAdded, types.ItemKindSealed, product.ID)
	return product, nil
}

func (cs *collectionService) ListGraded(ctx context.Context, userID uuid.UUID, filter repos.ListFilter) ([]*types.GradedCard, error) {
	return cs.gradedRepo.ListByUserID(ctx, nil, userID, filter)
}

func (cs *collectionService) ListRaw(ctx context.Context, userID uuid.UUID, filter repos.ListFilter) ([]*types.RawCard, error) {
	return cs.rawRepo.ListByUserID(ctx, nil, userID, filter)
}

func (cs *collectionService) ListSealed(ctx context.Context, userID uuid.UUID, filter repos.ListFilter) ([]*types.SealedProduct, error) {
	return cs.sealedRepo.ListByUserID(ctx, nil, userID, filter)
}

func (cs *collectionService) UpdateGradedCard(ctx context.Context, userID uuid.UUID, card *types.GradedCard) (*types.GradedCard, error) {
	if err := cs.ensureOwnership(ctx, userID, types.ItemKindGraded, card.ID); err != nil {
		return nil, err
	}
	card.UserID = userID
	updated, err := cs.gradedRepo.Update(ctx, nil, card)
	if err != nil {
		return nil, err
	}
	cs.afterMutation(ctx, userID, realtime.EventItemUpdated, types.ItemKindGraded, card.ID)
	return updated, nil
}

func (cs *collectionService) UpdateRawCard(ctx context.Context, userID uuid.UUID, card *types.RawCard) (*types.RawCard, error) {
	if err := cs.ensureOwnership(ctx, userID, types.ItemKindRaw, card.ID); err != nil {
		return nil, err
	}
	card.UserID = userID
	updated, err := cs.rawRepo.Update(ctx, nil, card)
	if err != nil {
		return nil, err
	}
	cs.afterMutation(ctx, userID, realtime.EventItemUpdated, types.ItemKindRaw, card.ID)
	return updated, nil
}

func (cs *collectionService) UpdateSealedProduct(ctx context.Context, userID uuid.UUID, product *types.SealedProduct) (*types.SealedProduct, error) {
	if err := cs.ensureOwnership(ctx, userID, types.ItemKindSealed, product.ID); err != nil {
		return nil, err
	}
	product.UserID = userID
	updated, err := cs.sealedRepo.Update(ctx, nil, product)
	if err != nil {
		return nil, err
	}
	cs.afterMutation(ctx, userID, realtime.EventItemUpdated, types.ItemKindSealed, product.ID)
	return updated, nil
}

func (cs *collectionService) AttachImage(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID, raw []byte, filename string) (string, error) {
	if err := cs.ensureOwnership(ctx, userID, itemKind, itemID); err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty image")
	}
	if cs.bucketService == nil {
		return "", apierr.New(http.StatusServiceUnavailable, "STORAGE_NOT_CONFIGURED",
			fmt.Errorf("image storage is not configured"))
	}

	key := fmt.Sprintf("card_image/%s/%s/%d_%s", userID, itemID, time.Now().UnixNano(), filename)
	if err := cs.bucketService.UploadFile(ctx, gcp.BucketCategoryCard, key, bytes.NewReader(raw)); err != nil {
		return "", fmt.Errorf("failed to upload card image: %w", err)
	}
	url := cs.bucketService.GetPublicURL(gcp.BucketCategoryCard, key)

	var err error
	switch itemKind {
	case types.ItemKindGraded:
		err = cs.gradedRepo.UpdateImage(ctx, nil, itemID, key, url)
	case types.ItemKindRaw:
		err = cs.rawRepo.UpdateImage(ctx, nil, itemID, key, url)
	case types.ItemKindSealed:
		err = cs.sealedRepo.UpdateImage(ctx, nil, itemID, key, url)
	default:
		err = fmt.Errorf("unknown item kind %q", itemKind)
	}
	if err != nil {
		return "", err
	}

	cs.afterMutation(ctx, userID, realtime.EventItemUpdated, itemKind, itemID)
	return url, nil
}

func (cs *collectionService) RecordSale(ctx context.Context, userID uuid.UUID, sale SaleInput) (*types.SaleRecord, error) {
	if err := cs.ensureOwnership(ctx, userID, sale.ItemKind, sale.ItemID); err != nil {
		return nil, err
	}
	if sale.SalePrice <= 0 {
		return nil, fmt.Errorf("sale price must be positive")
	}
	if sale.SoldAt.IsZero() {
		sale.SoldAt = time.Now().UTC()
	}
	switch sale.Channel {
	case types.SaleChannelAuction, types.SaleChannelDBA, types.SaleChannelDirect:
	case "":
		sale.Channel = types.SaleChannelDirect
	default:
		return nil, fmt.Errorf("unknown sale channel %q", sale.Channel)
	}

	record := &types.SaleRecord{
		ID:        uuid.New(),
		UserID:    userID,
		ItemKind:  sale.ItemKind,
		ItemID:    sale.ItemID,
		SalePrice: sale.SalePrice,
		Fees:      sale.Fees,
		Channel:   sale.Channel,
		Buyer:     sale.Buyer,
		SoldAt:    sale.SoldAt,
	}

	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch sale.ItemKind {
		case types.ItemKindGraded:
			err = cs.gradedRepo.MarkSold(ctx, tx, sale.ItemID, sale.SoldAt)
		case types.ItemKindRaw:
			err = cs.rawRepo.MarkSold(ctx, tx, sale.ItemID, sale.SoldAt)
		case types.ItemKindSealed:
			err = cs.sealedRepo.MarkSold(ctx, tx, sale.ItemID, sale.SoldAt)
		default:
			err = fmt.Errorf("unknown item kind %q", sale.ItemKind)
		}
		if err != nil {
			return err
		}
		if _, err := cs.saleRepo.Create(ctx, tx, []*types.SaleRecord{record}); err != nil {
			return fmt.Errorf("failed to create sale record: %w", err)
		}
		return cs.activity.Record(ctx, tx, userID, types.ActivityItemSold,
			fmt.Sprintf("sold via %s", record.Channel),
			map[string]any{"item_kind": sale.ItemKind, "item_id": sale.ItemID, "sale_price": sale.SalePrice})
	})
	if err != nil {
		return nil, err
	}

	cs.afterMutation(ctx, userID, realtime.EventItemSold, sale.ItemKind, sale.ItemID)
	return record, nil
}

func (cs *collectionService) DeleteItem(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID) error {
	if err := cs.ensureOwnership(ctx, userID, itemKind, itemID); err != nil {
		return err
	}
	inAuction, err := cs.auctionItem.ItemInOpenAuction(ctx, nil, itemKind, itemID)
	if err != nil {
		return fmt.Errorf("failed to check auctions: %w", err)
	}
	if inAuction {
		return fmt.Errorf("item is part of an open auction")
	}

	switch itemKind {
	case types.ItemKindGraded:
		err = cs.gradedRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{itemID})
	case types.ItemKindRaw:
		err = cs.rawRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{itemID})
	case types.ItemKindSealed:
		err = cs.sealedRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{itemID})
	default:
		err = fmt.Errorf("unknown item kind %q", itemKind)
	}
	if err != nil {
		return err
	}

	cs.afterMutation(ctx, userID, realtime.EventItemUpdated, itemKind, itemID)
	return nil
}

func (cs *collectionService) ListSales(ctx context.Context, userID uuid.UUID, since *time.Time) ([]*types.SaleRecord, error) {
	return cs.saleRepo.ListByUserID(ctx, nil, userID, since)
}

// ensureOwnership verifies the item exists and belongs to the user.
func (cs *collectionService) ensureOwnership(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID) error {
	var ownerID uuid.UUID
	switch itemKind {
	case types.ItemKindGraded:
		rows, err := cs.gradedRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("graded card not found")
		}
		ownerID = rows[0].UserID
	case types.ItemKindRaw:
		rows, err := cs.rawRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("raw card not found")
		}
		ownerID = rows[0].UserID
	case types.ItemKindSealed:
		rows, err := cs.sealedRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("sealed product not found")
		}
		ownerID = rows[0].UserID
	default:
		return fmt.Errorf("unknown item kind %q", itemKind)
	}
	if ownerID != userID {
		return fmt.Errorf("item does not belong to user")
	}
	return nil
}

// afterMutation emits the realtime event and drops the cached analytics
// snapshot.
func (cs *collectionService) afterMutation(ctx context.Context, userID uuid.UUID, event realtime.Event, itemKind string, itemID uuid.UUID) {
	if cs.analytics != nil {
		cs.analytics.Invalidate(ctx, userID)
	}
	if cs.emitter != nil {
		cs.emitter.Emit(ctx, realtime.Message{
			Channel: realtime.UserChannel(userID),
			Event:   event,
			Data:    map[string]any{"item_kind": itemKind, "item_id": itemID},
		})
	}
}
