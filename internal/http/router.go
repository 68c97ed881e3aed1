package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/sorenkv/cardvault-backend/internal/http/handlers"
	"github.com/sorenkv/cardvault-backend/internal/http/middleware"
	"github.com/sorenkv/cardvault-backend/internal/http/response"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AllowedOrigins []string

	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	CollectionHandler *handlers.CollectionHandler
	CatalogHandler    *handlers.CatalogHandler
	AuctionHandler    *handlers.AuctionHandler
	DbaHandler        *handlers.DbaHandler
	AnalyticsHandler  *handlers.AnalyticsHandler
	SSEHandler        *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("cardvault-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		AllowCredentials: true,
	}))
	router.Use(middleware.AttachRequestContext())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(response.TrackDuration())

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.POST("/logout", cfg.AuthHandler.Logout)

		// User
		protected.GET("/user", cfg.UserHandler.GetMe)
		protected.PUT("/user/theme", cfg.UserHandler.UpdateTheme)
		protected.POST("/user/avatar", cfg.UserHandler.UploadAvatar)

		// Collection
		protected.POST("/collection/graded", cfg.CollectionHandler.AddGraded)
		protected.GET("/collection/graded", cfg.CollectionHandler.ListGraded)
		protected.PUT("/collection/graded/:id", cfg.CollectionHandler.UpdateGraded)
		protected.POST("/collection/raw", cfg.CollectionHandler.AddRaw)
		protected.GET("/collection/raw", cfg.CollectionHandler.ListRaw)
		protected.PUT("/collection/raw/:id", cfg.CollectionHandler.UpdateRaw)
		protected.POST("/collection/sealed", cfg.CollectionHandler.AddSealed)
		protected.GET("/collection/sealed", cfg.CollectionHandler.ListSealed)
		protected.PUT("/collection/sealed/:id", cfg.CollectionHandler.UpdateSealed)
		protected.DELETE("/collection/:kind/:id", cfg.CollectionHandler.Delete)
		protected.POST("/collection/:kind/:id/image", cfg.CollectionHandler.AttachImage)
		protected.POST("/collection/:kind/:id/match", cfg.CollectionHandler.MatchImage)
		protected.POST("/collection/:kind/:id/match/confirm", cfg.CollectionHandler.ConfirmMatch)

		// Sales
		protected.POST("/sales", cfg.CollectionHandler.RecordSale)
		protected.GET("/sales", cfg.CollectionHandler.ListSales)

		// Catalog
		protected.GET("/catalog/sets", cfg.CatalogHandler.ListSets)
		protected.GET("/catalog/sets/:id/cards", cfg.CatalogHandler.ListCards)
		protected.GET("/catalog/search", cfg.CatalogHandler.SearchCards)
		protected.POST("/catalog/sync", cfg.CatalogHandler.Sync)

		// Auctions
		protected.POST("/auctions", cfg.AuctionHandler.Create)
		protected.GET("/auctions", cfg.AuctionHandler.List)
		protected.GET("/auctions/:id", cfg.AuctionHandler.Get)
		protected.POST("/auctions/:id/lots", cfg.AuctionHandler.AddLots)
		protected.DELETE("/auctions/:id/lots/:lotId", cfg.AuctionHandler.RemoveLot)
		protected.GET("/auctions/:id/export", cfg.AuctionHandler.Export)
		protected.POST("/auctions/:id/close", cfg.AuctionHandler.Close)

		// DBA drafts
		protected.POST("/dba/drafts", cfg.DbaHandler.CreateDraft)
		protected.GET("/dba/drafts", cfg.DbaHandler.ListDrafts)
		protected.PUT("/dba/drafts/:id", cfg.DbaHandler.UpdateDraft)
		protected.DELETE("/dba/drafts/:id", cfg.DbaHandler.DeleteDraft)
		protected.POST("/dba/export", cfg.DbaHandler.Export)

		// Analytics
		protected.GET("/analytics/overview", cfg.AnalyticsHandler.Overview)
		protected.GET("/analytics/activity", cfg.AnalyticsHandler.RecentActivity)

		// SSE
		protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	}

	return router
}
