package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/realtime"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateTheme(ctx context.Context, userID uuid.UUID, theme string) error
	UpdateAvatarFromImage(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
	emitter       Emitter
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService, emitter Emitter) UserService {
	return &userService{
		db:            db,
		log:           log.With("service", "UserService"),
		userRepo:      userRepo,
		avatarService: avatarService,
		emitter:       emitter,
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return users[0], nil
}

func (us *userService) UpdateTheme(ctx context.Context, userID uuid.UUID, theme string) error {
	switch theme {
	case "light", "dark", "system":
	default:
		return fmt.Errorf("unknown theme %q", theme)
	}
	return us.userRepo.UpdateTheme(ctx, nil, userID, theme)
}

func (us *userService) UpdateAvatarFromImage(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error) {
	user, err := us.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return us.avatarService.CreateAndUploadUserAvatarFromImage(ctx, tx, user, raw)
	})
	if err != nil {
		return nil, err
	}

	us.emitter.Emit(ctx, realtime.Message{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.EventAvatarUpdated,
		Data:    map[string]any{"avatar_url": user.AvatarURL},
	})
	return user, nil
}
