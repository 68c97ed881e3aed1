package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type fakeCache struct {
	store map[string][]byte
	gets  int
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	c.gets++
	raw, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = raw
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.store, key)
	}
	return nil
}

func (c *fakeCache) Close() error { return nil }

type fakeGradedTotals struct {
	repos.GradedCardRepo
	totals repos.ValueTotals
	calls  int
}

func (f *fakeGradedTotals) TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (*repos.ValueTotals, error) {
	f.calls++
	t := f.totals
	return &t, nil
}

type fakeRawTotals struct {
	repos.RawCardRepo
	totals repos.ValueTotals
}

func (f *fakeRawTotals) TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (*repos.ValueTotals, error) {
	t := f.totals
	return &t, nil
}

type fakeSealedTotals struct {
	repos.SealedProductRepo
	totals repos.ValueTotals
}

func (f *fakeSealedTotals) TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (*repos.ValueTotals, error) {
	t := f.totals
	return &t, nil
}

type fakeSaleTotals struct {
	repos.SaleRecordRepo
	salePrice int64
	fees      int64
	months    []*repos.MonthlyTotal
}

func (f *fakeSaleTotals) TotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, int64, error) {
	return f.salePrice, f.fees, nil
}

func (f *fakeSaleTotals) MonthlyTotalsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*repos.MonthlyTotal, error) {
	return f.months, nil
}

func newTestAnalytics(t *testing.T, cache *fakeCache, graded *fakeGradedTotals) AnalyticsService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &analyticsService{
		log:        log,
		gradedRepo: graded,
		rawRepo:    &fakeRawTotals{totals: repos.ValueTotals{Count: 2, PurchasePrice: 5000, EstimatedValue: 8000}},
		sealedRepo: &fakeSealedTotals{totals: repos.ValueTotals{Count: 1, PurchasePrice: 100000, EstimatedValue: 150000}},
		saleRepo: &fakeSaleTotals{
			salePrice: 250000,
			fees:      12500,
			months: []*repos.MonthlyTotal{
				{Month: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), SalePrice: 250000, Fees: 12500, Count: 1},
			},
		},
		cache:    cache,
		cacheTTL: time.Minute,
	}
}

func TestGetOverview_ComputesAndCaches(t *testing.T) {
	cache := newFakeCache()
	graded := &fakeGradedTotals{totals: repos.ValueTotals{Count: 3, PurchasePrice: 300000, EstimatedValue: 450000}}
	svc := newTestAnalytics(t, cache, graded)
	userID := uuid.New()

	overview, err := svc.GetOverview(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	if overview.GradedCount != 3 || overview.RawCount != 2 || overview.SealedCount != 1 {
		t.Fatalf("unexpected counts: %+v", overview)
	}
	if overview.TotalInvested != 300000+5000+100000 {
		t.Fatalf("TotalInvested = %d", overview.TotalInvested)
	}
	if overview.EstimatedValue != 450000+8000+150000 {
		t.Fatalf("EstimatedValue = %d", overview.EstimatedValue)
	}
	if overview.RealizedSales != 250000 || overview.RealizedFees != 12500 {
		t.Fatalf("sales totals: %+v", overview)
	}
	if len(overview.MonthlySales) != 1 || overview.MonthlySales[0].Month != "2026-01" {
		t.Fatalf("monthly sales: %+v", overview.MonthlySales)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}

	// Second call must come from the cache, not recompute.
	if _, err := svc.GetOverview(context.Background(), userID); err != nil {
		t.Fatalf("GetOverview (cached): %v", err)
	}
	if graded.calls != 1 {
		t.Fatalf("expected one compute, repos hit %d times", graded.calls)
	}
}

func TestInvalidate_ForcesRecompute(t *testing.T) {
	cache := newFakeCache()
	graded := &fakeGradedTotals{totals: repos.ValueTotals{Count: 1}}
	svc := newTestAnalytics(t, cache, graded)
	userID := uuid.New()

	if _, err := svc.GetOverview(context.Background(), userID); err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	svc.Invalidate(context.Background(), userID)
	if _, err := svc.GetOverview(context.Background(), userID); err != nil {
		t.Fatalf("GetOverview after invalidate: %v", err)
	}
	if graded.calls != 2 {
		t.Fatalf("expected recompute after invalidation, got %d calls", graded.calls)
	}
}
