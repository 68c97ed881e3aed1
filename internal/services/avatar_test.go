package services

import (
	"context"
	"errors"
	"image/color"
	"net/http"
	"testing"

	"github.com/google/uuid"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/apierr"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

func newTestAvatarService(t *testing.T) *avatarService {
	t.Helper()
	log, err := logger.New("debug")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &avatarService{
		log:        log.With("service", "AvatarService"),
		bgColors:   []color.NRGBA{{R: 0x4a, G: 0x90, B: 0xd9, A: 0xff}},
		colorByHex: map[string]color.NRGBA{},
	}
}

func TestCreateAndUploadUserAvatar_SkipsUploadWithoutStorage(t *testing.T) {
	as := newTestAvatarService(t)
	user := &types.User{ID: uuid.New(), FirstName: "Ash", LastName: "Ketchum"}

	if err := as.CreateAndUploadUserAvatar(context.Background(), nil, user); err != nil {
		t.Fatalf("expected registration to proceed without storage, got %v", err)
	}
	if user.AvatarBucketKey != "" || user.AvatarURL != "" {
		t.Fatalf("expected no upload, got key=%q url=%q", user.AvatarBucketKey, user.AvatarURL)
	}
	if user.AvatarColor == "" {
		t.Fatal("expected an avatar color to be assigned")
	}
}

func TestCreateAndUploadUserAvatarFromImage_FailsWithoutStorage(t *testing.T) {
	as := newTestAvatarService(t)
	user := &types.User{ID: uuid.New()}

	err := as.CreateAndUploadUserAvatarFromImage(context.Background(), nil, user, []byte("not-a-real-image"))

	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected an api error, got %v", err)
	}
	if apiErr.Status != http.StatusServiceUnavailable || apiErr.Code != "STORAGE_NOT_CONFIGURED" {
		t.Fatalf("unexpected status/code: %d %s", apiErr.Status, apiErr.Code)
	}
}
