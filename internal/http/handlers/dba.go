package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sorenkv/cardvault-backend/internal/http/response"
	"github.com/sorenkv/cardvault-backend/internal/services"
)

type DbaHandler struct {
	dbaService services.DbaExportService
}

func NewDbaHandler(dbaService services.DbaExportService) *DbaHandler {
	return &DbaHandler{dbaService: dbaService}
}

type draftRequest struct {
	ItemKind    string    `json:"item_kind"`
	ItemID      uuid.UUID `json:"item_id"`
	Price       int64     `json:"price"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

func (r draftRequest) toInput() services.DraftInput {
	return services.DraftInput{
		ItemKind:    r.ItemKind,
		ItemID:      r.ItemID,
		Price:       r.Price,
		Title:       r.Title,
		Description: r.Description,
	}
}

func (h *DbaHandler) CreateDraft(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	draft, err := h.dbaService.CreateDraft(c.Request.Context(), userID, req.toInput())
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "CREATE_FAILED", err)
		return
	}
	response.Created(c, draft)
}

func (h *DbaHandler) UpdateDraft(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid draft id"))
		return
	}
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	draft, err := h.dbaService.UpdateDraft(c.Request.Context(), userID, draftID, req.toInput())
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "UPDATE_FAILED", err)
		return
	}
	response.OK(c, draft)
}

func (h *DbaHandler) ListDrafts(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	drafts, err := h.dbaService.ListDrafts(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, drafts)
}

func (h *DbaHandler) DeleteDraft(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid draft id"))
		return
	}
	if err := h.dbaService.DeleteDraft(c.Request.Context(), userID, draftID); err != nil {
		response.Fail(c, http.StatusBadRequest, "DELETE_FAILED", err)
		return
	}
	response.OK(c, gin.H{"deleted": draftID})
}

// Export renders the selected drafts as a downloadable file. The format
// query parameter picks csv or json (default).
func (h *DbaHandler) Export(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	var req struct {
		DraftIDs []uuid.UUID `json:"draft_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.DraftIDs) == 0 {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("draft_ids are required"))
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "csv":
		data, err := h.dbaService.ExportCSV(c.Request.Context(), userID, req.DraftIDs)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "EXPORT_FAILED", err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=dba_listings.csv")
		c.Data(http.StatusOK, "text/csv", data)
	case "json":
		data, err := h.dbaService.ExportJSON(c.Request.Context(), userID, req.DraftIDs)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "EXPORT_FAILED", err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=dba_listings.json")
		c.Data(http.StatusOK, "application/json", data)
	default:
		response.Fail(c, http.StatusBadRequest, "INVALID_QUERY", fmt.Errorf("format must be csv or json"))
	}
}
