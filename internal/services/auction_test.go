package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type stubAuctionByID struct {
	repos.AuctionRepo
	auction  *types.Auction
	exported int
}

func (s *stubAuctionByID) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Auction, error) {
	return []*types.Auction{s.auction}, nil
}

func (s *stubAuctionByID) MarkExported(ctx context.Context, tx *gorm.DB, id uuid.UUID, exportedAt time.Time) error {
	s.exported++
	s.auction.Status = types.AuctionStatusExported
	return nil
}

type stubSealedByID struct {
	repos.SealedProductRepo
	products map[uuid.UUID]*types.SealedProduct
}

func (s *stubSealedByID) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SealedProduct, error) {
	var out []*types.SealedProduct
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestExportJSON_RendersLotSheetAndMarksExported(t *testing.T) {
	log, err := logger.New("debug")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	userID := uuid.New()
	boxID, packID := uuid.New(), uuid.New()
	auctionRepo := &stubAuctionByID{auction: &types.Auction{
		ID:     uuid.New(),
		UserID: userID,
		Status: types.AuctionStatusDraft,
		Items: []types.AuctionItem{
			{ItemKind: types.ItemKindSealed, ItemID: boxID, LotNumber: 1, StartingPrice: 150_00, Notes: "mint box"},
			{ItemKind: types.ItemKindSealed, ItemID: packID, LotNumber: 2, StartingPrice: 49_50},
		},
	}}
	svc := &auctionService{
		log:         log.With("service", "AuctionService"),
		auctionRepo: auctionRepo,
		sealedRepo: &stubSealedByID{products: map[uuid.UUID]*types.SealedProduct{
			boxID:  {ID: boxID, UserID: userID, Name: "Base Set Booster Box"},
			packID: {ID: packID, UserID: userID, Name: "Jungle Booster Pack"},
		}},
	}

	data, err := svc.ExportJSON(context.Background(), userID, auctionRepo.auction.ID)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var rows []lotRow
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 lots, got %d", len(rows))
	}
	if rows[0].Lot != 1 || rows[0].Description != "Base Set Booster Box" || rows[0].StartingPriceDKK != "150.00" {
		t.Fatalf("unexpected first lot: %+v", rows[0])
	}
	if rows[1].Lot != 2 || rows[1].StartingPriceDKK != "49.50" || rows[1].Notes != "" {
		t.Fatalf("unexpected second lot: %+v", rows[1])
	}
	if auctionRepo.exported != 1 {
		t.Fatalf("expected one MarkExported call, got %d", auctionRepo.exported)
	}

	// A second export of an already-exported auction must not touch the status again.
	if _, err := svc.ExportJSON(context.Background(), userID, auctionRepo.auction.ID); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if auctionRepo.exported != 1 {
		t.Fatalf("expected no further MarkExported calls, got %d", auctionRepo.exported)
	}
}
