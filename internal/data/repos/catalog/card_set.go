package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type CardSetRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, sets []*types.CardSet) ([]*types.CardSet, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CardSet, error)
	GetBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []string) ([]*types.CardSet, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.CardSet, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type cardSetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCardSetRepo(db *gorm.DB, baseLog *logger.Logger) CardSetRepo {
	return &cardSetRepo{db: db, log: baseLog.With("repo", "CardSetRepo")}
}

func (r *cardSetRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Upsert inserts sets or refreshes previously synced ones, keyed by the
// upstream source id.
func (r *cardSetRepo) Upsert(ctx context.Context, tx *gorm.DB, sets []*types.CardSet) ([]*types.CardSet, error) {
	if len(sets) == 0 {
		return []*types.CardSet{}, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "series", "language", "release_year",
				"total_cards", "symbol_url", "synced_at", "updated_at",
			}),
		}).
		Create(&sets).Error
	if err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *cardSetRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CardSet, error) {
	var results []*types.CardSet
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

func (r *cardSetRepo) GetBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []string) ([]*types.CardSet, error) {
	var results []*types.CardSet
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

func (r *cardSetRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.CardSet, error) {
	var results []*types.CardSet
	if err := r.handle(tx).WithContext(ctx).
		Order("release_year DESC, name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cardSetRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.handle(tx).WithContext(ctx).
		Model(&types.CardSet{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
