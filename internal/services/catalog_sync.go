package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/clients/cardindex"
	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/realtime"
)

// SyncResult summarizes one catalog sync run.
type SyncResult struct {
	Sets      int           `json:"sets"`
	Cards     int           `json:"cards"`
	Failed    []string      `json:"failed,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

type CatalogSyncService interface {
	SyncAll(ctx context.Context, triggeredBy uuid.UUID) (*SyncResult, error)
	ListSets(ctx context.Context) ([]*types.CardSet, error)
	ListCards(ctx context.Context, setID uuid.UUID) ([]*types.CardDefinition, error)
	SearchCards(ctx context.Context, query string, limit int) ([]*types.CardDefinition, error)
}

type catalogSyncService struct {
	db  *gorm.DB
	log *logger.Logger

	index    cardindex.Client
	setRepo  repos.CardSetRepo
	defRepo  repos.CardDefinitionRepo
	activity ActivityService
	emitter  Emitter

	// caps concurrent per-set card fetches against the upstream API
	maxConcurrent int

	mu      sync.Mutex
	running bool
}

func NewCatalogSyncService(
	db *gorm.DB,
	log *logger.Logger,
	index cardindex.Client,
	setRepo repos.CardSetRepo,
	defRepo repos.CardDefinitionRepo,
	activity ActivityService,
	emitter Emitter,
) CatalogSyncService {
	return &catalogSyncService{
		db:            db,
		log:           log.With("service", "CatalogSyncService"),
		index:         index,
		setRepo:       setRepo,
		defRepo:       defRepo,
		activity:      activity,
		emitter:       emitter,
		maxConcurrent: 4,
	}
}

func (s *catalogSyncService) SyncAll(ctx context.Context, triggeredBy uuid.UUID) (*SyncResult, error) {
	ctx, span := otel.Tracer("catalogsync").Start(ctx, "CatalogSync.SyncAll",
		trace.WithAttributes(attribute.String("triggered_by", triggeredBy.String())))
	defer span.End()

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, fmt.Errorf("catalog sync already running")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	started := time.Now().UTC()
	result := &SyncResult{StartedAt: started}

	upstreamSets, err := s.index.ListSets(ctx)
	if err != nil {
		s.emitProgress(realtime.EventSyncFailed, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("failed to list upstream sets: %w", err)
	}

	sets := make([]*types.CardSet, 0, len(upstreamSets))
	now := time.Now().UTC()
	for _, us := range upstreamSets {
		sets = append(sets, &types.CardSet{
			SourceID:    us.ID,
			Name:        us.Name,
			Series:      us.Series,
			Language:    orDefault(us.Language, "en"),
			ReleaseYear: us.ReleaseYear,
			TotalCards:  us.TotalCards,
			SymbolURL:   us.SymbolURL,
			SyncedAt:    now,
		})
	}
	if _, err := s.setRepo.Upsert(ctx, nil, sets); err != nil {
		s.emitProgress(realtime.EventSyncFailed, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("failed to upsert sets: %w", err)
	}
	result.Sets = len(sets)

	// Re-read to resolve local set ids for the foreign keys.
	sourceIDs := make([]string, 0, len(sets))
	for _, set := range sets {
		sourceIDs = append(sourceIDs, set.SourceID)
	}
	stored, err := s.setRepo.GetBySourceIDs(ctx, nil, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to reload sets: %w", err)
	}
	setIDBySource := make(map[string]uuid.UUID, len(stored))
	for _, set := range stored {
		setIDBySource[set.SourceID] = set.ID
	}

	var (
		cardsMu    sync.Mutex
		totalCards int
		failed     []string
		done       int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, set := range stored {
		set := set
		g.Go(func() error {
			cards, err := s.index.ListCardsBySet(gctx, set.SourceID)
			if err != nil {
				// One broken set should not abort the whole sync.
				s.log.Warn("failed to sync set", "set", set.SourceID, "error", err)
				cardsMu.Lock()
				failed = append(failed, set.SourceID)
				done++
				cardsMu.Unlock()
				return nil
			}

			defs := make([]*types.CardDefinition, 0, len(cards))
			for _, c := range cards {
				defs = append(defs, &types.CardDefinition{
					SetID:    set.ID,
					SourceID: c.ID,
					Name:     c.Name,
					Number:   c.Number,
					Rarity:   c.Rarity,
					Variety:  c.Variety,
					ImageURL: c.ImageURL,
				})
			}
			if _, err := s.defRepo.Upsert(gctx, nil, defs); err != nil {
				return fmt.Errorf("failed to upsert cards for set %s: %w", set.SourceID, err)
			}

			cardsMu.Lock()
			totalCards += len(defs)
			done++
			progress := done * 100 / len(stored)
			cardsMu.Unlock()

			s.emitProgress(realtime.EventSyncProgress, map[string]any{
				"set":      set.Name,
				"progress": progress,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.emitProgress(realtime.EventSyncFailed, map[string]any{"error": err.Error()})
		return nil, err
	}

	result.Cards = totalCards
	result.Failed = failed
	result.Duration = time.Since(started)

	if triggeredBy != uuid.Nil {
		if err := s.activity.Record(ctx, nil, triggeredBy, types.ActivityCatalogSynced,
			fmt.Sprintf("%d sets, %d cards", result.Sets, result.Cards),
			map[string]any{"sets": result.Sets, "cards": result.Cards, "failed": len(failed)}); err != nil {
			s.log.Warn("failed to record sync activity", "error", err)
		}
	}

	s.emitProgress(realtime.EventSyncCompleted, map[string]any{
		"sets":     result.Sets,
		"cards":    result.Cards,
		"failed":   len(failed),
		"duration": result.Duration.String(),
	})

	s.log.Info("catalog sync completed",
		"sets", result.Sets,
		"cards", result.Cards,
		"failed", len(failed),
		"duration", result.Duration.String())
	return result, nil
}

func (s *catalogSyncService) ListSets(ctx context.Context) ([]*types.CardSet, error) {
	return s.setRepo.List(ctx, nil)
}

func (s *catalogSyncService) ListCards(ctx context.Context, setID uuid.UUID) ([]*types.CardDefinition, error) {
	return s.defRepo.ListBySetIDs(ctx, nil, []uuid.UUID{setID})
}

func (s *catalogSyncService) SearchCards(ctx context.Context, query string, limit int) ([]*types.CardDefinition, error) {
	return s.defRepo.Search(ctx, nil, query, limit)
}

func (s *catalogSyncService) emitProgress(event realtime.Event, data map[string]any) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(context.Background(), realtime.Message{
		Channel: realtime.CatalogChannel,
		Event:   event,
		Data:    data,
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
