package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/testutil"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))

	u := &types.User{
		ID:        uuid.New(),
		Email:     "userrepo@example.com",
		Password:  "pw",
		FirstName: "Søren",
		LastName:  "K",
	}
	if _, err := repo.Create(ctx, tx, []*types.User{u}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{u.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if got, err := repo.GetByEmail(ctx, tx, "userrepo@example.com"); err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("GetByEmail: err=%v got=%v", err, got)
	}
	if got, err := repo.GetByEmail(ctx, tx, "nobody@example.com"); err != nil || got != nil {
		t.Fatalf("GetByEmail miss: err=%v got=%v", err, got)
	}
	if ok, err := repo.EmailExists(ctx, tx, "userrepo@example.com"); err != nil || !ok {
		t.Fatalf("EmailExists: err=%v ok=%v", err, ok)
	}

	if err := repo.UpdateTheme(ctx, tx, u.ID, "dark"); err != nil {
		t.Fatalf("UpdateTheme: %v", err)
	}
	if err := repo.UpdateAvatar(ctx, tx, u.ID, "avatars/u.png", "https://cdn.example.com/avatars/u.png"); err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}
	rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{u.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs after updates: err=%v len=%d", err, len(rows))
	}
	if rows[0].PreferredTheme != "dark" || rows[0].AvatarBucketKey != "avatars/u.png" {
		t.Fatalf("updates not applied: %+v", rows[0])
	}
}
