package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

// MonthlyTotal is one row of the sales-over-time aggregate.
type MonthlyTotal struct {
	Month     time.Time
	SalePrice int64
	Fees      int64
	Count     int64
}

type SaleRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.SaleRecord) ([]*types.SaleRecord, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SaleRecord, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since *time.Time) ([]*types.SaleRecord, error)
	MonthlyTotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*MonthlyTotal, error)
	TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (salePrice, fees int64, err error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type saleRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSaleRecordRepo(db *gorm.DB, baseLog *logger.Logger) SaleRecordRepo {
	return &saleRecordRepo{db: db, log: baseLog.With("repo", "SaleRecordRepo")}
}

func (r *saleRecordRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *saleRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.SaleRecord) ([]*types.SaleRecord, error) {
	if len(records) == 0 {
		return []*types.SaleRecord{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *saleRecordRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SaleRecord, error) {
	var results []*types.SaleRecord
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

func (r *saleRecordRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since *time.Time) ([]*types.SaleRecord, error) {
	var results []*types.SaleRecord
	q := r.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("sold_at >= ?", *since)
	}
	if err := q.Order("sold_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *saleRecordRepo) MonthlyTotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*MonthlyTotal, error) {
	var results []*MonthlyTotal
	err := r.handle(tx).WithContext(ctx).
		Model(&types.SaleRecord{}).
		Where("user_id = ? AND sold_at >= ?", userID, since).
		Select(
			"date_trunc('month', sold_at) AS month",
			"COALESCE(SUM(sale_price), 0) AS sale_price",
			"COALESCE(SUM(fees), 0) AS fees",
			"COUNT(*) AS count",
		).
		Group("date_trunc('month', sold_at)").
		Order("month ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *saleRecordRepo) TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, int64, error) {
	var totals struct {
		SalePrice int64
		Fees      int64
	}
	err := r.handle(tx).WithContext(ctx).
		Model(&types.SaleRecord{}).
		Where("user_id = ?", userID).
		Select(
			"COALESCE(SUM(sale_price), 0) AS sale_price",
			"COALESCE(SUM(fees), 0) AS fees",
		).
		Scan(&totals).Error
	if err != nil {
		return 0, 0, err
	}
	return totals.SalePrice, totals.Fees, nil
}

func (r *saleRecordRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.SaleRecord{}).Error
}
