package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/realtime"
)

// LotInput adds one collection item to an auction.
type LotInput struct {
	ItemKind      string
	ItemID        uuid.UUID
	StartingPrice int64
	Notes         string
}

// LotSale reports the hammer price for one lot when closing an auction.
// Lots absent from the list are treated as unsold.
type LotSale struct {
	LotNumber int
	Price     int64
	Buyer     string
}

type AuctionService interface {
	Create(ctx context.Context, userID uuid.UUID, title, description string, reservePrice int64) (*types.Auction, error)
	Get(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID) (*types.Auction, error)
	List(ctx context.Context, userID uuid.UUID, status string) ([]*types.Auction, error)
	AddLots(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID, lots []LotInput) (*types.Auction, error)
	RemoveLot(ctx context.Context, userID uuid.UUID, auctionID, lotID uuid.UUID) error
	ExportCSV(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID) ([]byte, error)
	ExportJSON(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID) ([]byte, error)
	Close(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID, sales []LotSale) (*types.Auction, error)
}

type auctionService struct {
	db  *gorm.DB
	log *logger.Logger

	auctionRepo repos.AuctionRepo
	itemRepo    repos.AuctionItemRepo
	gradedRepo  repos.GradedCardRepo
	rawRepo     repos.RawCardRepo
	sealedRepo  repos.SealedProductRepo
	saleRepo    repos.SaleRecordRepo

	activity  ActivityService
	analytics AnalyticsService
	emitter   Emitter
}

func NewAuctionService(
	db *gorm.DB,
	log *logger.Logger,
	auctionRepo repos.AuctionRepo,
	itemRepo repos.AuctionItemRepo,
	gradedRepo repos.GradedCardRepo,
	rawRepo repos.RawCardRepo,
	sealedRepo repos.SealedProductRepo,
	saleRepo repos.SaleRecordRepo,
	activity ActivityService,
	analytics AnalyticsService,
	emitter Emitter,
) AuctionService {
	return &auctionService{
		db:          db,
		log:         log.With("service", "AuctionService"),
		auctionRepo: auctionRepo,
		itemRepo:    itemRepo,
		gradedRepo:  gradedRepo,
		rawRepo:     rawRepo,
		sealedRepo:  sealedRepo,
		saleRepo:    saleRepo,
		activity:    activity,
		analytics:   analytics,
		emitter:     emitter,
	}
}

func (s *auctionService) Create(ctx context.Context, userID uuid.UUID, title, description string, reservePrice int64) (*types.Auction, error) {
	if title == "" {
		return nil, fmt.Errorf("auction title is required")
	}
	auction := &types.Auction{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        title,
		Description:  description,
		Status:       types.AuctionStatusDraft,
		ReservePrice: reservePrice,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.auctionRepo.Create(ctx, tx, []*types.Auction{auction}); err != nil {
			return fmt.Errorf("failed to create auction: %w", err)
		}
		return s.activity.Record(ctx, tx, userID, types.ActivityAuctionCreated, title,
			map[string]any{"auction_id": auction.ID})
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, realtime.Message{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.EventAuctionCreated,
		Data:    map[string]any{"auction_id": auction.ID, "title": title},
	})
	return auction, nil
}

func (s *auctionService) Get(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID) (*types.Auction, error) {
	rows, err := s.auctionRepo.GetByIDs(ctx, nil, []uuid.UUID{auctionID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].UserID != userID {
		return nil, fmt.Errorf("auction not found")
	}
	return rows[0], nil
}

func (s *auctionService) List(ctx context.Context, userID uuid.UUID, status string) ([]*types.Auction, error) {
	return s.auctionRepo.ListByUserID(ctx, nil, userID, status)
}

func (s *auctionService) AddLots(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID, lots []LotInput) (*types.Auction, error) {
	auction, err := s.Get(ctx, userID, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != types.AuctionStatusDraft {
		return nil, fmt.Errorf("lots can only be added to a draft auction")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nextLot, err := s.itemRepo.MaxLotNumber(ctx, tx, auctionID)
		if err != nil {
			return fmt.Errorf("failed to read lot numbers: %w", err)
		}

		var total int64
		items := make([]*types.AuctionItem, 0, len(lots))
		for _, lot := range lots {
			inAuction, err := s.itemRepo.ItemInOpenAuction(ctx, tx, lot.ItemKind, lot.ItemID)
			if err != nil {
				return fmt.Errorf("failed to check open auctions: %w", err)
			}
			if inAuction {
				return fmt.Errorf("item %s is already in an open auction", lot.ItemID)
			}
			estimate, err := s.itemEstimate(ctx, tx, userID, lot.ItemKind, lot.ItemID)
			if err != nil {
				return err
			}
			total += estimate

			nextLot++
			items = append(items, &types.AuctionItem{
				ID:            uuid.New(),
				AuctionID:     auctionID,
				ItemKind:      lot.ItemKind,
				ItemID:        lot.ItemID,
				LotNumber:     nextLot,
				StartingPrice: lot.StartingPrice,
				Notes:         lot.Notes,
			})
		}
		if _, err := s.itemRepo.Create(ctx, tx, items); err != nil {
			return fmt.Errorf("failed to create lots: %w", err)
		}

		for _, lot := range lots {
			if err := s.setItemStatus(ctx, tx, lot.ItemKind, lot.ItemID, types.ItemStatusListed); err != nil {
				return err
			}
		}
		return s.auctionRepo.UpdateTotalEstimate(ctx, tx, auctionID, auction.TotalEstimate+total)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, auctionID)
}

func (s *auctionService) RemoveLot(ctx context.Context, userID uuid.UUID, auctionID, lotID uuid.UUID) error {
	auction, err := s.Get(ctx, userID, auctionID)
	if err != nil {
		return err
	}
	if auction.Status != types.AuctionStatusDraft {
		return fmt.Errorf("lots can only be removed from a draft auction")
	}

	lots, err := s.itemRepo.GetByIDs(ctx, nil, []uuid.UUID{lotID})
	if err != nil {
		return err
	}
	if len(lots) == 0 || lots[0].AuctionID != auctionID {
		return fmt.Errorf("lot not found")
	}
	lot := lots[0]

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{lotID}); err != nil {
			return err
		}
		return s.setItemStatus(ctx, tx, lot.ItemKind, lot.ItemID, types.ItemStatusOwned)
	})
}

// lotRow is one line of the lot sheet shared by both export formats.
type lotRow struct {
	Lot              int    `json:"lot"`
	Description      string `json:"description"`
	StartingPriceDKK string `json:"starting_price_dkk"`
	Notes            string `json:"notes,omitempty"`
}

func (s *auctionService) lotSheet(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID) (*types.Auction, []lotRow, error) {
	auction, err := s.Get(ctx, userID, auctionID)
	if err != nil {
		return nil, nil, err
	}
	if len(auction.Items) == 0 {
		return nil, nil, fmt.Errorf("auction has no lots")
	}

	rows := make([]lotRow, 0, len(auction.Items))
	for _, item := range auction.Items {
		desc, err := s.itemDescription(ctx, userID, item.ItemKind, item.ItemID)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, lotRow{
			Lot:              item.LotNumber,
			Description:      desc,
			StartingPriceDKK: formatDKK(item.StartingPrice),
			Notes:            item.Notes,
		})
	}
	return auction, rows, nil
}

func (s *auctionService) markSheetExported(ctx context.Context, auction *types.Auction) error {
	if auction.Status != types.AuctionStatusDraft {
		return nil
	}
	return s.auctionRepo.MarkExported(ctx, nil, auction.ID, time.Now().UTC())
}

// ExportCSV renders the lot sheet in the format the auction house
// intake form expects and marks the auction exported.
func (s *auctionService) ExportCSV(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID) ([]byte, error) {
	auction, rows, err := s.lotSheet(ctx, userID, auctionID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"lot", "description", "starting_price_dkk", "notes"})
	for _, row := range rows {
		_ = w.Write([]string{
			strconv.Itoa(row.Lot),
			row.Description,
			row.StartingPriceDKK,
			row.Notes,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	if err := s.markSheetExported(ctx, auction); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON renders the same lot sheet as a JSON document and marks
// the auction exported.
func (s *auctionService) ExportJSON(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID) ([]byte, error) {
	auction, rows, err := s.lotSheet(ctx, userID, auctionID)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, err
	}

	if err := s.markSheetExported(ctx, auction); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *auctionService) Close(ctx context.Context, userID uuid.UUID, auctionID uuid.UUID, sales []LotSale) (*types.Auction, error) {
	auction, err := s.Get(ctx, userID, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status == types.AuctionStatusClosed {
		return nil, fmt.Errorf("auction already closed")
	}

	saleByLot := make(map[int]LotSale, len(sales))
	for _, sale := range sales {
		saleByLot[sale.LotNumber] = sale
	}

	closedAt := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range auction.Items {
			sale, sold := saleByLot[item.LotNumber]
			if !sold {
				if err := s.setItemStatus(ctx, tx, item.ItemKind, item.ItemID, types.ItemStatusOwned); err != nil {
					return err
				}
				continue
			}
			if err := s.markItemSold(ctx, tx, item.ItemKind, item.ItemID, closedAt); err != nil {
				return err
			}
			_, err := s.saleRepo.Create(ctx, tx, []*types.SaleRecord{{
				ID:        uuid.New(),
				UserID:    userID,
				ItemKind:  item.ItemKind,
				ItemID:    item.ItemID,
				SalePrice: sale.Price,
				Channel:   types.SaleChannelAuction,
				Buyer:     sale.Buyer,
				SoldAt:    closedAt,
			}})
			if err != nil {
				return fmt.Errorf("failed to record lot sale: %w", err)
			}
		}
		if err := s.auctionRepo.MarkClosed(ctx, tx, auctionID, closedAt); err != nil {
			return err
		}
		return s.activity.Record(ctx, tx, userID, types.ActivityAuctionClosed, auction.Title,
			map[string]any{"auction_id": auctionID, "sold": len(sales), "lots": len(auction.Items)})
	})
	if err != nil {
		return nil, err
	}

	if s.analytics != nil {
		s.analytics.Invalidate(ctx, userID)
	}
	s.emitter.Emit(ctx, realtime.Message{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.EventAuctionClosed,
		Data:    map[string]any{"auction_id": auctionID, "sold": len(sales)},
	})
	return s.Get(ctx, userID, auctionID)
}

func (s *auctionService) itemEstimate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemKind string, itemID uuid.UUID) (int64, error) {
	switch itemKind {
	case types.ItemKindGraded:
		rows, err := s.gradedRepo.GetByIDs(ctx, tx, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 || rows[0].UserID != userID {
			return 0, fmt.Errorf("graded card %s not found", itemID)
		}
		return rows[0].EstimatedValue, nil
	case types.ItemKindRaw:
		rows, err := s.rawRepo.GetByIDs(ctx, tx, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 || rows[0].UserID != userID {
			return 0, fmt.Errorf("raw card %s not found", itemID)
		}
		return rows[0].EstimatedValue, nil
	case types.ItemKindSealed:
		rows, err := s.sealedRepo.GetByIDs(ctx, tx, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 || rows[0].UserID != userID {
			return 0, fmt.Errorf("sealed product %s not found", itemID)
		}
		return rows[0].EstimatedValue, nil
	default:
		return 0, fmt.Errorf("unknown item kind %q", itemKind)
	}
}

func (s *auctionService) itemDescription(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID) (string, error) {
	switch itemKind {
	case types.ItemKindGraded:
		rows, err := s.gradedRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 {
			return "", fmt.Errorf("graded card %s not found", itemID)
		}
		g := rows[0]
		name := "graded card"
		if g.CardDefinition != nil {
			name = g.CardDefinition.Name + " " + g.CardDefinition.Number
		}
		return fmt.Sprintf("%s %s %d cert %s", name, g.GradingCompany, g.Grade, g.CertNumber), nil
	case types.ItemKindRaw:
		rows, err := s.rawRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 {
			return "", fmt.Errorf("raw card %s not found", itemID)
		}
		r := rows[0]
		name := "raw card"
		if r.CardDefinition != nil {
			name = r.CardDefinition.Name + " " + r.CardDefinition.Number
		}
		return fmt.Sprintf("%s (%s)", name, r.Condition), nil
	case types.ItemKindSealed:
		rows, err := s.sealedRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 {
			return "", fmt.Errorf("sealed product %s not found", itemID)
		}
		return rows[0].Name, nil
	default:
		return "", fmt.Errorf("unknown item kind %q", itemKind)
	}
}

func (s *auctionService) setItemStatus(ctx context.Context, tx *gorm.DB, itemKind string, itemID uuid.UUID, status string) error {
	switch itemKind {
	case types.ItemKindGraded:
		return s.gradedRepo.UpdateStatus(ctx, tx, []uuid.UUID{itemID}, status)
	case types.ItemKindRaw:
		return s.rawRepo.UpdateStatus(ctx, tx, []uuid.UUID{itemID}, status)
	case types.ItemKindSealed:
		return s.sealedRepo.UpdateStatus(ctx, tx, []uuid.UUID{itemID}, status)
	default:
		return fmt.Errorf("unknown item kind %q", itemKind)
	}
}

func (s *auctionService) markItemSold(ctx context.Context, tx *gorm.DB, itemKind string, itemID uuid.UUID, soldAt time.Time) error {
	switch itemKind {
	case types.ItemKindGraded:
		return s.gradedRepo.MarkSold(ctx, tx, itemID, soldAt)
	case types.ItemKindRaw:
		return s.rawRepo.MarkSold(ctx, tx, itemID, soldAt)
	case types.ItemKindSealed:
		return s.sealedRepo.MarkSold(ctx, tx, itemID, soldAt)
	default:
		return fmt.Errorf("unknown item kind %q", itemKind)
	}
}

// formatDKK renders øre as a kroner amount with two decimals.
func formatDKK(ore int64) string {
	return fmt.Sprintf("%d.%02d", ore/100, ore%100)
}
