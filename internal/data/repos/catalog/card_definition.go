package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type CardDefinitionRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, defs []*types.CardDefinition) ([]*types.CardDefinition, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CardDefinition, error)
	GetBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []string) ([]*types.CardDefinition, error)
	ListBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.CardDefinition, error)
	Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.CardDefinition, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type cardDefinitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCardDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) CardDefinitionRepo {
	return &cardDefinitionRepo{db: db, log: baseLog.With("repo", "CardDefinitionRepo")}
}

func (r *cardDefinitionRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *cardDefinitionRepo) Upsert(ctx context.Context, tx *gorm.DB, defs []*types.CardDefinition) ([]*types.CardDefinition, error) {
	if len(defs) == 0 {
		return []*types.CardDefinition{}, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"set_id", "name", "number", "rarity", "variety",
				"image_url", "updated_at",
			}),
		}).
		CreateInBatches(&defs, 500).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *cardDefinitionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CardDefinition, error) {
	var results []*types.CardDefinition
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.handle(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cardDefinitionRepo) GetBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []string) ([]*types.CardDefinition, error) {
	var results []*types.CardDefinition
	if len(sourceIDs) == 0 {
		return results, nil
	}
	if err := r.handle(tx).WithContext(ctx).
		Where("source_id IN ?", sourceIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cardDefinitionRepo) ListBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.CardDefinition, error) {
	var results []*types.CardDefinition
	if len(setIDs) == 0 {
		return results, nil
	}
	if err := r.handle(tx).WithContext(ctx).
		Where("set_id IN ?", setIDs).
		Order("number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Search matches card names case-insensitively. Used by the OCR matcher
// and the catalog browse endpoint.
func (r *cardDefinitionRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.CardDefinition, error) {
	var results []*types.CardDefinition
	if query == "" {
		return results, nil
	}
	if limit <= 0 {
		limit = 25
	}
	if err := r.handle(tx).WithContext(ctx).
		Where("name ILIKE ?", "%"+query+"%").
		Order("name ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cardDefinitionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.handle(tx).WithContext(ctx).
		Model(&types.CardDefinition{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
