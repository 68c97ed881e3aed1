package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/clients/redis"
	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

// Overview is the dashboard snapshot: holdings, invested vs estimated
// value, realized sales. All amounts in DKK øre.
type Overview struct {
	GeneratedAt time.Time `json:"generated_at"`

	GradedCount int64 `json:"graded_count"`
	RawCount    int64 `json:"raw_count"`
	SealedCount int64 `json:"sealed_count"`

	TotalInvested  int64 `json:"total_invested"`
	EstimatedValue int64 `json:"estimated_value"`

	RealizedSales int64 `json:"realized_sales"`
	RealizedFees  int64 `json:"realized_fees"`

	MonthlySales []MonthlySales `json:"monthly_sales"`
}

type MonthlySales struct {
	Month     string `json:"month"`
	SalePrice int64  `json:"sale_price"`
	Fees      int64  `json:"fees"`
	Count     int64  `json:"count"`
}

type AnalyticsService interface {
	GetOverview(ctx context.Context, userID uuid.UUID) (*Overview, error)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type analyticsService struct {
	db  *gorm.DB
	log *logger.Logger

	gradedRepo repos.GradedCardRepo
	rawRepo    repos.RawCardRepo
	sealedRepo repos.SealedProductRepo
	saleRepo   repos.SaleRecordRepo

	cache    redis.Cache
	cacheTTL time.Duration
}

func NewAnalyticsService(
	db *gorm.DB,
	log *logger.Logger,
	gradedRepo repos.GradedCardRepo,
	rawRepo repos.RawCardRepo,
	sealedRepo repos.SealedProductRepo,
	saleRepo repos.SaleRecordRepo,
	cache redis.Cache,
) AnalyticsService {
	return &analyticsService{
		db:         db,
		log:        log.With("service", "AnalyticsService"),
		gradedRepo: gradedRepo,
		rawRepo:    rawRepo,
		sealedRepo: sealedRepo,
		saleRepo:   saleRepo,
		cache:      cache,
		cacheTTL:   5 * time.Minute,
	}
}

func overviewCacheKey(userID uuid.UUID) string {
	return "analytics:overview:" + userID.String()
}

func (s *analyticsService) GetOverview(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	if s.cache != nil {
		var cached Overview
		found, err := s.cache.GetJSON(ctx, overviewCacheKey(userID), &cached)
		if err != nil {
			s.log.Warn("analytics cache read failed", "error", err)
		} else if found {
			return &cached, nil
		}
	}

	overview, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, overviewCacheKey(userID), overview, s.cacheTTL); err != nil {
			s.log.Warn("analytics cache write failed", "error", err)
		}
	}
	return overview, nil
}

func (s *analyticsService) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, overviewCacheKey(userID)); err != nil {
		s.log.Warn("analytics cache invalidation failed", "error", err)
	}
}

func (s *analyticsService) compute(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	graded, err := s.gradedRepo.TotalsByUserID(ctx, nil, userID, types.ItemStatusOwned)
	if err != nil {
		return nil, fmt.Errorf("graded totals: %w", err)
	}
	raw, err := s.rawRepo.TotalsByUserID(ctx, nil, userID, types.ItemStatusOwned)
	if err != nil {
		return nil, fmt.Errorf("raw totals: %w", err)
	}
	sealed, err := s.sealedRepo.TotalsByUserID(ctx, nil, userID, types.ItemStatusOwned)
	if err != nil {
		return nil, fmt.Errorf("sealed totals: %w", err)
	}

	salesTotal, feesTotal, err := s.saleRepo.TotalsByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}

	since := time.Now().UTC().AddDate(-1, 0, 0)
	months, err := s.saleRepo.MonthlyTotalsByUserID(ctx, nil, userID, since)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}

	overview := &Overview{
		GeneratedAt:    time.Now().UTC(),
		GradedCount:    graded.Count,
		RawCount:       raw.Count,
		SealedCount:    sealed.Count,
		TotalInvested:  graded.PurchasePrice + raw.PurchasePrice + sealed.PurchasePrice,
		EstimatedValue: graded.EstimatedValue + raw.EstimatedValue + sealed.EstimatedValue,
		RealizedSales:  salesTotal,
		RealizedFees:   feesTotal,
	}
	for _, m := range months {
		overview.MonthlySales = append(overview.MonthlySales, MonthlySales{
			Month:     m.Month.Format("2006-01"),
			SalePrice: m.SalePrice,
			Fees:      m.Fees,
			Count:     m.Count,
		})
	}
	return overview, nil
}
