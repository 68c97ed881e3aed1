package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/testutil"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
)

func TestCardSetRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewCardSetRepo(db, testutil.Logger(t))

	s := &types.CardSet{
		SourceID: "set-base1",
		Name:     "Base Set",
		Series:   "Original",
		Language: "en",
		SyncedAt: time.Now().UTC(),
	}
	if _, err := repo.Upsert(ctx, tx, []*types.CardSet{s}); err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}

	// Second sync with changed fields must update, not duplicate.
	s2 := &types.CardSet{
		SourceID:   "set-base1",
		Name:       "Base Set",
		Series:     "Original Series",
		Language:   "en",
		TotalCards: 102,
		SyncedAt:   time.Now().UTC(),
	}
	if _, err := repo.Upsert(ctx, tx, []*types.CardSet{s2}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	rows, err := repo.GetBySourceIDs(ctx, tx, []string{"set-base1"})
	if err != nil {
		t.Fatalf("GetBySourceIDs: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after re-sync, got %d", len(rows))
	}
	if rows[0].TotalCards != 102 || rows[0].Series != "Original Series" {
		t.Fatalf("upsert did not refresh fields: %+v", rows[0])
	}

	if n, err := repo.Count(ctx, tx); err != nil || n != 1 {
		t.Fatalf("Count: err=%v n=%d", err, n)
	}
}

func TestCardDefinitionRepoSearch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewCardDefinitionRepo(db, testutil.Logger(t))

	set := testutil.SeedCardSet(t, ctx, tx, "set-search")
	defs := []*types.CardDefinition{
		{SetID: set.ID, SourceID: "card-char1", Name: "Charizard", Number: "4/102", Rarity: "Holo Rare"},
		{SetID: set.ID, SourceID: "card-chari2", Name: "Charmeleon", Number: "24/102", Rarity: "Uncommon"},
		{SetID: set.ID, SourceID: "card-pika1", Name: "Pikachu", Number: "58/102", Rarity: "Common"},
	}
	if _, err := repo.Upsert(ctx, tx, defs); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rows, err := repo.Search(ctx, tx, "char", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Search char: expected 2, got %d", len(rows))
	}

	if rows, err := repo.Search(ctx, tx, "", 10); err != nil || len(rows) != 0 {
		t.Fatalf("Search empty query: err=%v len=%d", err, len(rows))
	}

	bySet, err := repo.ListBySetIDs(ctx, tx, []uuid.UUID{set.ID})
	if err != nil {
		t.Fatalf("ListBySetIDs: %v", err)
	}
	if len(bySet) != 3 {
		t.Fatalf("ListBySetIDs: expected 3, got %d", len(bySet))
	}
}
