package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/testutil"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
)

func TestSaleRecordRepoTotals(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewSaleRecordRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "salerecordrepo@example.com")
	g := testutil.SeedGradedCard(t, ctx, tx, u.ID, "90000002")

	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

	testutil.SeedSaleRecord(t, ctx, tx, u.ID, g.ID, jan, 300000)
	testutil.SeedSaleRecord(t, ctx, tx, u.ID, g.ID, feb, 200000)
	testutil.SeedSaleRecord(t, ctx, tx, u.ID, g.ID, feb, 100000)

	sale, fees, err := repo.TotalsByUserID(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("TotalsByUserID: %v", err)
	}
	if sale != 600000 || fees != 0 {
		t.Fatalf("unexpected totals: sale=%d fees=%d", sale, fees)
	}

	months, err := repo.MonthlyTotalsByUserID(ctx, tx, u.ID, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MonthlyTotalsByUserID: %v", err)
	}
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}
	if months[0].SalePrice != 300000 || months[0].Count != 1 {
		t.Fatalf("unexpected january totals: %+v", months[0])
	}
	if months[1].SalePrice != 300000 || months[1].Count != 2 {
		t.Fatalf("unexpected february totals: %+v", months[1])
	}

	since := feb
	rows, err := repo.ListByUserID(ctx, tx, u.ID, &since)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByUserID since feb: err=%v len=%d", err, len(rows))
	}
}

func TestDbaDraftRepoOpenByItem(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewDbaDraftRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "dbadraftrepo@example.com")
	g := testutil.SeedGradedCard(t, ctx, tx, u.ID, "90000003")
	d := testutil.SeedDbaDraft(t, ctx, tx, u.ID, g.ID)

	got, err := repo.GetOpenByItem(ctx, tx, types.ItemKindGraded, g.ID)
	if err != nil || got == nil || got.ID != d.ID {
		t.Fatalf("GetOpenByItem: err=%v got=%v", err, got)
	}

	if err := repo.MarkExported(ctx, tx, []uuid.UUID{d.ID}, time.Now().UTC()); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
	if got, err := repo.GetOpenByItem(ctx, tx, types.ItemKindGraded, g.ID); err != nil || got != nil {
		t.Fatalf("GetOpenByItem after export: err=%v got=%v", err, got)
	}

	rows, err := repo.ListByUserID(ctx, tx, u.ID, types.DbaDraftStatusExported)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUserID exported: err=%v len=%d", err, len(rows))
	}
	if rows[0].ExportedAt == nil {
		t.Fatalf("expected exported_at to be set")
	}
}
