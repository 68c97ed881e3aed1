package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sorenkv/cardvault-backend/internal/http/response"
	"github.com/sorenkv/cardvault-backend/internal/services"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
	activityService  services.ActivityService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, activityService services.ActivityService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, activityService: activityService}
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	overview, err := h.analyticsService.GetOverview(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, overview)
}

func (h *AnalyticsHandler) RecentActivity(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	events, err := h.activityService.ListRecent(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, events)
}
