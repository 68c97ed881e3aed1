package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sorenkv/cardvault-backend/internal/http/response"
	"github.com/sorenkv/cardvault-backend/internal/pkg/ctxutil"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/services"
)

type CatalogHandler struct {
	log         *logger.Logger
	syncService services.CatalogSyncService
}

func NewCatalogHandler(log *logger.Logger, syncService services.CatalogSyncService) *CatalogHandler {
	return &CatalogHandler{log: log.With("handler", "CatalogHandler"), syncService: syncService}
}

func (h *CatalogHandler) ListSets(c *gin.Context) {
	sets, err := h.syncService.ListSets(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sets)
}

func (h *CatalogHandler) ListCards(c *gin.Context) {
	setID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid set id"))
		return
	}
	cards, err := h.syncService.ListCards(c.Request.Context(), setID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cards)
}

func (h *CatalogHandler) SearchCards(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Fail(c, http.StatusBadRequest, "INVALID_QUERY", fmt.Errorf("q is required"))
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	cards, err := h.syncService.SearchCards(c.Request.Context(), query, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cards)
}

// Sync kicks off a full catalog sync in the background. Progress is
// reported over the SSE catalog channel.
func (h *CatalogHandler) Sync(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	go func() {
		// Detached from the request so the sync outlives the response.
		ctx := ctxutil.WithRequestData(context.Background(), rd)
		if _, err := h.syncService.SyncAll(ctx, userID); err != nil {
			h.log.Error("catalog sync failed", "error", err, "user_id", userID)
		}
	}()
	response.JSON(c, http.StatusAccepted, gin.H{"started": true})
}
