package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type DbaDraftRepo interface {
	Create(ctx context.Context, tx *gorm.DB, drafts []*types.DbaDraft) ([]*types.DbaDraft, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.DbaDraft, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) ([]*types.DbaDraft, error)
	GetOpenByItem(ctx context.Context, tx *gorm.DB, itemKind string, itemID uuid.UUID) (*types.DbaDraft, error)
	Update(ctx context.Context, tx *gorm.DB, draft *types.DbaDraft) (*types.DbaDraft, error)
	MarkExported(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, exportedAt time.Time) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type dbaDraftRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDbaDraftRepo(db *gorm.DB, baseLog *logger.Logger) DbaDraftRepo {
	return &dbaDraftRepo{db: db, log: baseLog.With("repo", "DbaDraftRepo")}
}

func (r *dbaDraftRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *dbaDraftRepo) Create(ctx context.Context, tx *gorm.DB, drafts []*types.DbaDraft) ([]*types.DbaDraft, error) {
	if len(drafts) == 0 {
		return []*types.DbaDraft{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *dbaDraftRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.DbaDraft, error) {
	var results []*types.DbaDraft
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

func (r *dbaDraftRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) ([]*types.DbaDraft, error) {
	var results []*types.DbaDraft
	q := r.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetOpenByItem returns the unexported draft for an item, if any. Each
// item has at most one open draft at a time.
func (r *dbaDraftRepo) GetOpenByItem(ctx context.Context, tx *gorm.DB, itemKind string, itemID uuid.UUID) (*types.DbaDraft, error) {
	var result types.DbaDraft
	err := r.handle(tx).WithContext(ctx).
		Where("item_kind = ? AND item_id = ? AND status = ?", itemKind, itemID, types.DbaDraftStatusDraft).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *dbaDraftRepo) Update(ctx context.Context, tx *gorm.DB, draft *types.DbaDraft) (*types.DbaDraft, error) {
	if err := r.handle(tx).WithContext(ctx).Save(draft).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

func (r *dbaDraftRepo) MarkExported(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, exportedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Model(&types.DbaDraft{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":      types.DbaDraftStatusExported,
			"exported_at": exportedAt,
		}).Error
}

func (r *dbaDraftRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.DbaDraft{}).Error
}
