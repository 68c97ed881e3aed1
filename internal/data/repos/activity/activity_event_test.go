package activity

import (
	"context"
	"testing"
	"time"

	"github.com/sorenkv/cardvault-backend/internal/data/repos/testutil"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
)

func TestActivityEventRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewActivityEventRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "activityrepo@example.com")

	now := time.Now().UTC()
	testutil.SeedActivityEvent(t, ctx, tx, u.ID, types.ActivityItemAdded, now.Add(-48*time.Hour))
	testutil.SeedActivityEvent(t, ctx, tx, u.ID, types.ActivityItemSold, now.Add(-1*time.Hour))
	testutil.SeedActivityEvent(t, ctx, tx, u.ID, types.ActivityCatalogSynced, now)

	rows, err := repo.ListRecentByUserID(ctx, tx, u.ID, 2)
	if err != nil {
		t.Fatalf("ListRecentByUserID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Kind != types.ActivityCatalogSynced || rows[1].Kind != types.ActivityItemSold {
		t.Fatalf("unexpected order: %q, %q", rows[0].Kind, rows[1].Kind)
	}

	n, err := repo.DeleteOlderThan(ctx, tx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned event, got %d", n)
	}
}
