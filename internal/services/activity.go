package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type ActivityService interface {
	Record(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind, subject string, metadata map[string]any) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ActivityEvent, error)
}

type activityService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ActivityEventRepo
}

func NewActivityService(db *gorm.DB, log *logger.Logger, repo repos.ActivityEventRepo) ActivityService {
	return &activityService{
		db:   db,
		log:  log.With("service", "ActivityService"),
		repo: repo,
	}
}

func (as *activityService) Record(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind, subject string, metadata map[string]any) error {
	var meta datatypes.JSON
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		meta = datatypes.JSON(raw)
	}
	_, err := as.repo.Create(ctx, tx, []*types.ActivityEvent{{
		ID:       uuid.New(),
		UserID:   userID,
		Kind:     kind,
		Subject:  subject,
		Metadata: meta,
	}})
	return err
}

func (as *activityService) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ActivityEvent, error) {
	return as.repo.ListRecentByUserID(ctx, nil, userID, limit)
}
