package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/testutil"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "usertokenrepo@example.com")

	tok := &types.UserToken{
		ID:           uuid.New(),
		UserID:       u.ID,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().UTC().Add(15 * time.Minute),
	}
	if _, err := repo.Create(ctx, tx, []*types.UserToken{tok}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByAccessToken(ctx, tx, "access-1"); err != nil || got == nil || got.ID != tok.ID {
		t.Fatalf("GetByAccessToken: err=%v got=%v", err, got)
	}
	if got, err := repo.GetByRefreshToken(ctx, tx, "refresh-1"); err != nil || got == nil || got.ID != tok.ID {
		t.Fatalf("GetByRefreshToken: err=%v got=%v", err, got)
	}
	if got, err := repo.GetByAccessToken(ctx, tx, "missing"); err != nil || got != nil {
		t.Fatalf("GetByAccessToken miss: err=%v got=%v", err, got)
	}

	expired := &types.UserToken{
		ID:           uuid.New(),
		UserID:       u.ID,
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresAt:    time.Now().UTC().Add(-1 * time.Hour),
	}
	if _, err := repo.Create(ctx, tx, []*types.UserToken{expired}); err != nil {
		t.Fatalf("Create expired: %v", err)
	}

	n, err := repo.DeleteExpired(ctx, tx, time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired token deleted, got %d", n)
	}

	if err := repo.DeleteByUserIDs(ctx, tx, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("DeleteByUserIDs: %v", err)
	}
	if rows, err := repo.GetByUserIDs(ctx, tx, []uuid.UUID{u.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after DeleteByUserIDs: err=%v len=%d", err, len(rows))
	}
}
