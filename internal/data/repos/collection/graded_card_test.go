package collection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/testutil"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
)

func TestGradedCardRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewGradedCardRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "gradedcardrepo@example.com")

	g := &types.GradedCard{
		ID:             uuid.New(),
		UserID:         u.ID,
		GradingCompany: "PSA",
		Grade:          10,
		CertNumber:     "81234567",
		PurchasePrice:  1500000,
		EstimatedValue: 2200000,
		Status:         types.ItemStatusOwned,
	}
	if _, err := repo.Create(ctx, tx, []*types.GradedCard{g}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{g.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if got, err := repo.GetByCertNumber(ctx, tx, "81234567"); err != nil || got == nil || got.ID != g.ID {
		t.Fatalf("GetByCertNumber: err=%v got=%v", err, got)
	}
	if got, err := repo.GetByCertNumber(ctx, tx, "00000000"); err != nil || got != nil {
		t.Fatalf("GetByCertNumber miss: err=%v got=%v", err, got)
	}

	if rows, err := repo.ListByUserID(ctx, tx, u.ID, ListFilter{Status: types.ItemStatusOwned}); err != nil || len(rows) != 1 {
		t.Fatalf("ListByUserID owned: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByUserID(ctx, tx, u.ID, ListFilter{Status: types.ItemStatusSold}); err != nil || len(rows) != 0 {
		t.Fatalf("ListByUserID sold: err=%v len=%d", err, len(rows))
	}

	soldAt := time.Now().UTC()
	if err := repo.MarkSold(ctx, tx, g.ID, soldAt); err != nil {
		t.Fatalf("MarkSold: %v", err)
	}
	rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{g.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs after MarkSold: err=%v len=%d", err, len(rows))
	}
	if rows[0].Status != types.ItemStatusSold || rows[0].SoldAt == nil {
		t.Fatalf("expected sold item, got status=%q soldAt=%v", rows[0].Status, rows[0].SoldAt)
	}

	totals, err := repo.TotalsByUserID(ctx, tx, u.ID, "")
	if err != nil {
		t.Fatalf("TotalsByUserID: %v", err)
	}
	if totals.Count != 1 || totals.PurchasePrice != 1500000 || totals.EstimatedValue != 2200000 {
		t.Fatalf("unexpected totals: %+v", totals)
	}

	if err := repo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{g.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{g.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after SoftDeleteByIDs GetByIDs: err=%v len=%d", err, len(rows))
	}
}
