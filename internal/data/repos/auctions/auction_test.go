package auctions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/testutil"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
)

func TestAuctionRepoLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	auctionRepo := NewAuctionRepo(db, testutil.Logger(t))
	itemRepo := NewAuctionItemRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "auctionrepo@example.com")
	g := testutil.SeedGradedCard(t, ctx, tx, u.ID, "90000001")

	a := &types.Auction{
		ID:     uuid.New(),
		UserID: u.ID,
		Title:  "Vintage holos",
		Status: types.AuctionStatusDraft,
	}
	if _, err := auctionRepo.Create(ctx, tx, []*types.Auction{a}); err != nil {
		t.Fatalf("Create auction: %v", err)
	}

	if max, err := itemRepo.MaxLotNumber(ctx, tx, a.ID); err != nil || max != 0 {
		t.Fatalf("MaxLotNumber empty: err=%v max=%d", err, max)
	}

	item := &types.AuctionItem{
		ID:            uuid.New(),
		AuctionID:     a.ID,
		ItemKind:      types.ItemKindGraded,
		ItemID:        g.ID,
		LotNumber:     1,
		StartingPrice: 500000,
	}
	if _, err := itemRepo.Create(ctx, tx, []*types.AuctionItem{item}); err != nil {
		t.Fatalf("Create item: %v", err)
	}

	if max, err := itemRepo.MaxLotNumber(ctx, tx, a.ID); err != nil || max != 1 {
		t.Fatalf("MaxLotNumber: err=%v max=%d", err, max)
	}

	if in, err := itemRepo.ItemInOpenAuction(ctx, tx, types.ItemKindGraded, g.ID); err != nil || !in {
		t.Fatalf("ItemInOpenAuction: err=%v in=%v", err, in)
	}
	if in, err := itemRepo.ItemInOpenAuction(ctx, tx, types.ItemKindRaw, g.ID); err != nil || in {
		t.Fatalf("ItemInOpenAuction wrong kind: err=%v in=%v", err, in)
	}

	rows, err := auctionRepo.GetByIDs(ctx, tx, []uuid.UUID{a.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if len(rows[0].Items) != 1 || rows[0].Items[0].LotNumber != 1 {
		t.Fatalf("expected preloaded lot, got %+v", rows[0].Items)
	}

	if err := auctionRepo.MarkExported(ctx, tx, a.ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
	if err := auctionRepo.MarkClosed(ctx, tx, a.ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkClosed: %v", err)
	}
	rows, err = auctionRepo.GetByIDs(ctx, tx, []uuid.UUID{a.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs after close: err=%v len=%d", err, len(rows))
	}
	if rows[0].Status != types.AuctionStatusClosed || rows[0].ClosedAt == nil || rows[0].ExportedAt == nil {
		t.Fatalf("unexpected closed auction: %+v", rows[0])
	}

	// A closed auction no longer holds its items open.
	if in, err := itemRepo.ItemInOpenAuction(ctx, tx, types.ItemKindGraded, g.ID); err != nil || in {
		t.Fatalf("ItemInOpenAuction after close: err=%v in=%v", err, in)
	}
}
