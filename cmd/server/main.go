package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sorenkv/cardvault-backend/internal/clients/cardindex"
	"github.com/sorenkv/cardvault-backend/internal/clients/gcp"
	"github.com/sorenkv/cardvault-backend/internal/clients/redis"
	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	"github.com/sorenkv/cardvault-backend/internal/db"
	apphttp "github.com/sorenkv/cardvault-backend/internal/http"
	"github.com/sorenkv/cardvault-backend/internal/http/handlers"
	"github.com/sorenkv/cardvault-backend/internal/http/middleware"
	"github.com/sorenkv/cardvault-backend/internal/observability"
	"github.com/sorenkv/cardvault-backend/internal/platform/envutil"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/realtime"
	"github.com/sorenkv/cardvault-backend/internal/services"
)

func main() {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	if shutdownTracing := observability.Init(ctx, log, observability.Config{
		ServiceName: "cardvault-backend",
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
	}); shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	jwtSecretKey := envutil.String("JWT_SECRET_KEY", "defaultsecret")
	accessTTL := time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second
	refreshTTL := time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 86400)) * time.Second

	// Postgres
	postgresService, err := db.New(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	cardSetRepo := repos.NewCardSetRepo(thePG, log)
	cardDefinitionRepo := repos.NewCardDefinitionRepo(thePG, log)
	gradedCardRepo := repos.NewGradedCardRepo(thePG, log)
	rawCardRepo := repos.NewRawCardRepo(thePG, log)
	sealedProductRepo := repos.NewSealedProductRepo(thePG, log)
	auctionRepo := repos.NewAuctionRepo(thePG, log)
	auctionItemRepo := repos.NewAuctionItemRepo(thePG, log)
	saleRecordRepo := repos.NewSaleRecordRepo(thePG, log)
	dbaDraftRepo := repos.NewDbaDraftRepo(thePG, log)
	activityEventRepo := repos.NewActivityEventRepo(thePG, log)

	// Realtime
	hub := realtime.NewHub(log)
	eventBus, err := redis.NewEventBus(log)
	if err != nil {
		log.Warn("Redis event bus unavailable, SSE stays instance-local", "error", err)
		eventBus = nil
	} else {
		if err := eventBus.StartForwarder(ctx, hub.Broadcast); err != nil {
			log.Warn("Redis forwarder failed to start", "error", err)
		}
	}
	cache, err := redis.NewCache(log)
	if err != nil {
		log.Warn("Redis cache unavailable, analytics computed per request", "error", err)
		cache = nil
	}

	// Clients
	bucketService, err := gcp.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService", "error", err)
	}
	vision, err := gcp.NewVision(log)
	if err != nil {
		log.Warn("Could not init Vision client", "error", err)
	}
	indexClient, err := cardindex.NewClient(log)
	if err != nil {
		log.Error("Could not init card index client", "error", err)
		os.Exit(1)
	}

	// Services
	emitter := services.NewEmitter(log, hub, eventBus)
	activityService := services.NewActivityService(thePG, log, activityEventRepo)
	avatarService, err := services.NewAvatarService(thePG, log, userRepo, bucketService)
	if err != nil {
		log.Error("Could not init AvatarService", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, avatarService, jwtSecretKey, accessTTL, refreshTTL)
	userService := services.NewUserService(thePG, log, userRepo, avatarService, emitter)
	analyticsService := services.NewAnalyticsService(thePG, log, gradedCardRepo, rawCardRepo, sealedProductRepo, saleRecordRepo, cache)
	collectionService := services.NewCollectionService(thePG, log, gradedCardRepo, rawCardRepo, sealedProductRepo, saleRecordRepo, auctionItemRepo, bucketService, activityService, analyticsService, emitter)
	catalogSyncService := services.NewCatalogSyncService(thePG, log, indexClient, cardSetRepo, cardDefinitionRepo, activityService, emitter)
	auctionService := services.NewAuctionService(thePG, log, auctionRepo, auctionItemRepo, gradedCardRepo, rawCardRepo, sealedProductRepo, saleRecordRepo, activityService, analyticsService, emitter)
	dbaService := services.NewDbaExportService(thePG, log, dbaDraftRepo, gradedCardRepo, rawCardRepo, sealedProductRepo, cardSetRepo, activityService, emitter)
	ocrService := services.NewOcrMatchService(thePG, log, vision, cardDefinitionRepo, gradedCardRepo, rawCardRepo, emitter)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	collectionHandler := handlers.NewCollectionHandler(collectionService, ocrService)
	catalogHandler := handlers.NewCatalogHandler(log, catalogSyncService)
	auctionHandler := handlers.NewAuctionHandler(auctionService)
	dbaHandler := handlers.NewDbaHandler(dbaService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, activityService)
	sseHandler := handlers.NewSSEHandler(hub)

	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Log:               log,
		AllowedOrigins:    allowedOrigins(),
		AuthMiddleware:    authMiddleware,
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		CollectionHandler: collectionHandler,
		CatalogHandler:    catalogHandler,
		AuctionHandler:    auctionHandler,
		DbaHandler:        dbaHandler,
		AnalyticsHandler:  analyticsHandler,
		SSEHandler:        sseHandler,
	})

	port := envutil.String("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}

func allowedOrigins() []string {
	raw := envutil.String("CORS_ALLOWED_ORIGINS", "")
	if raw == "" {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if o := strings.TrimSpace(part); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
