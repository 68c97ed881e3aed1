package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/apierr"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type stubGradedByID struct {
	repos.GradedCardRepo
	card *types.GradedCard
}

func (s *stubGradedByID) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.GradedCard, error) {
	return []*types.GradedCard{s.card}, nil
}

func TestAttachImage_FailsWithoutStorage(t *testing.T) {
	log, err := logger.New("debug")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	userID := uuid.New()
	card := &types.GradedCard{ID: uuid.New(), UserID: userID}
	cs := &collectionService{
		log:        log.With("service", "CollectionService"),
		gradedRepo: &stubGradedByID{card: card},
	}

	url, err := cs.AttachImage(context.Background(), userID, types.ItemKindGraded, card.ID, []byte("jpeg-bytes"), "front.jpg")
	if url != "" {
		t.Fatalf("expected no URL, got %q", url)
	}

	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected an api error, got %v", err)
	}
	if apiErr.Status != http.StatusServiceUnavailable || apiErr.Code != "STORAGE_NOT_CONFIGURED" {
		t.Fatalf("unexpected status/code: %d %s", apiErr.Status, apiErr.Code)
	}
}
