package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "Søren",
		LastName:  "K",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCardSet(tb testing.TB, ctx context.Context, tx *gorm.DB, sourceID string) *types.CardSet {
	tb.Helper()
	s := &types.CardSet{
		ID:       uuid.New(),
		SourceID: sourceID,
		Name:     "Base Set",
		Series:   "Original",
		Language: "en",
		SyncedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed card set: %v", err)
	}
	return s
}

func SeedCardDefinition(tb testing.TB, ctx context.Context, tx *gorm.DB, setID uuid.UUID, sourceID string) *types.CardDefinition {
	tb.Helper()
	d := &types.CardDefinition{
		ID:       uuid.New(),
		SetID:    setID,
		SourceID: sourceID,
		Name:     "Charizard",
		Number:   "4/102",
		Rarity:   "Holo Rare",
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed card definition: %v", err)
	}
	return d
}

func SeedGradedCard(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, certNumber string) *types.GradedCard {
	tb.Helper()
	g := &types.GradedCard{
		ID:             uuid.New(),
		UserID:         userID,
		GradingCompany: "PSA",
		Grade:          9,
		CertNumber:     certNumber,
		PurchasePrice:  250000,
		EstimatedValue: 400000,
		Status:         types.ItemStatusOwned,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed graded card: %v", err)
	}
	return g
}

func SeedRawCard(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.RawCard {
	tb.Helper()
	rc := &types.RawCard{
		ID:             uuid.New(),
		UserID:         userID,
		Condition:      "NM",
		Quantity:       1,
		PurchasePrice:  5000,
		EstimatedValue: 8000,
		Status:         types.ItemStatusOwned,
	}
	if err := tx.WithContext(ctx).Create(rc).Error; err != nil {
		tb.Fatalf("seed raw card: %v", err)
	}
	return rc
}

func SeedSealedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.SealedProduct {
	tb.Helper()
	sp := &types.SealedProduct{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Evolving Skies Booster Box",
		ProductType:    "booster_box",
		Language:       "en",
		Quantity:       1,
		PurchasePrice:  1200000,
		EstimatedValue: 1800000,
		Status:         types.ItemStatusOwned,
	}
	if err := tx.WithContext(ctx).Create(sp).Error; err != nil {
		tb.Fatalf("seed sealed product: %v", err)
	}
	return sp
}

func SeedAuction(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Auction {
	tb.Helper()
	a := &types.Auction{
		ID:     uuid.New(),
		UserID: userID,
		Title:  "Spring vintage lot",
		Status: types.AuctionStatusDraft,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed auction: %v", err)
	}
	return a
}

func SeedAuctionItem(tb testing.TB, ctx context.Context, tx *gorm.DB, auctionID, itemID uuid.UUID, lotNumber int) *types.AuctionItem {
	tb.Helper()
	ai := &types.AuctionItem{
		ID:            uuid.New(),
		AuctionID:     auctionID,
		ItemKind:      types.ItemKindGraded,
		ItemID:        itemID,
		LotNumber:     lotNumber,
		StartingPrice: 100000,
	}
	if err := tx.WithContext(ctx).Create(ai).Error; err != nil {
		tb.Fatalf("seed auction item: %v", err)
	}
	return ai
}

func SeedSaleRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID, soldAt time.Time, price int64) *types.SaleRecord {
	tb.Helper()
	sr := &types.SaleRecord{
		ID:        uuid.New(),
		UserID:    userID,
		ItemKind:  types.ItemKindGraded,
		ItemID:    itemID,
		SalePrice: price,
		Channel:   types.SaleChannelDirect,
		SoldAt:    soldAt,
	}
	if err := tx.WithContext(ctx).Create(sr).Error; err != nil {
		tb.Fatalf("seed sale record: %v", err)
	}
	return sr
}

func SeedDbaDraft(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID) *types.DbaDraft {
	tb.Helper()
	d := &types.DbaDraft{
		ID:       uuid.New(),
		UserID:   userID,
		ItemKind: types.ItemKindGraded,
		ItemID:   itemID,
		Title:    "Charizard PSA 9",
		Price:    400000,
		Status:   types.DbaDraftStatusDraft,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed dba draft: %v", err)
	}
	return d
}

func SeedActivityEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string, at time.Time) *types.ActivityEvent {
	tb.Helper()
	e := &types.ActivityEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Subject:   fmt.Sprintf("%s event", kind),
		CreatedAt: at,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed activity event: %v", err)
	}
	return e
}
