package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sorenkv/cardvault-backend/internal/http/response"
	"github.com/sorenkv/cardvault-backend/internal/services"
)

type AuctionHandler struct {
	auctionService services.AuctionService
}

func NewAuctionHandler(auctionService services.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionService: auctionService}
}

func (h *AuctionHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	var req struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ReservePrice int64  `json:"reserve_price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	auction, err := h.auctionService.Create(c.Request.Context(), userID, req.Title, req.Description, req.ReservePrice)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "CREATE_FAILED", err)
		return
	}
	response.Created(c, auction)
}

func (h *AuctionHandler) Get(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid auction id"))
		return
	}
	auction, err := h.auctionService.Get(c.Request.Context(), userID, auctionID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "NOT_FOUND", err)
		return
	}
	response.OK(c, auction)
}

func (h *AuctionHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	auctions, err := h.auctionService.List(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, auctions)
}

func (h *AuctionHandler) AddLots(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid auction id"))
		return
	}
	var req struct {
		Lots []struct {
			ItemKind      string    `json:"item_kind"`
			ItemID        uuid.UUID `json:"item_id"`
			StartingPrice int64     `json:"starting_price"`
			Notes         string    `json:"notes"`
		} `json:"lots"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Lots) == 0 {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("lots are required"))
		return
	}
	lots := make([]services.LotInput, 0, len(req.Lots))
	for _, lot := range req.Lots {
		lots = append(lots, services.LotInput{
			ItemKind:      lot.ItemKind,
			ItemID:        lot.ItemID,
			StartingPrice: lot.StartingPrice,
			Notes:         lot.Notes,
		})
	}
	auction, err := h.auctionService.AddLots(c.Request.Context(), userID, auctionID, lots)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "ADD_LOTS_FAILED", err)
		return
	}
	response.OK(c, auction)
}

func (h *AuctionHandler) RemoveLot(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid auction id"))
		return
	}
	lotID, err := uuid.Parse(c.Param("lotId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid lot id"))
		return
	}
	if err := h.auctionService.RemoveLot(c.Request.Context(), userID, auctionID, lotID); err != nil {
		response.Fail(c, http.StatusBadRequest, "REMOVE_LOT_FAILED", err)
		return
	}
	response.OK(c, gin.H{"removed": lotID})
}

// Export streams the lot sheet as a file download. The format query
// parameter picks csv (default) or json.
func (h *AuctionHandler) Export(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid auction id"))
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := h.auctionService.ExportCSV(c.Request.Context(), userID, auctionID)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "EXPORT_FAILED", err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=auction_%s.csv", auctionID))
		c.Data(http.StatusOK, "text/csv", data)
	case "json":
		data, err := h.auctionService.ExportJSON(c.Request.Context(), userID, auctionID)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "EXPORT_FAILED", err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=auction_%s.json", auctionID))
		c.Data(http.StatusOK, "application/json", data)
	default:
		response.Fail(c, http.StatusBadRequest, "INVALID_QUERY", fmt.Errorf("format must be csv or json"))
	}
}

func (h *AuctionHandler) Close(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid auction id"))
		return
	}
	var req struct {
		Sales []struct {
			LotNumber int    `json:"lot_number"`
			Price     int64  `json:"price"`
			Buyer     string `json:"buyer"`
		} `json:"sales"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	sales := make([]services.LotSale, 0, len(req.Sales))
	for _, sale := range req.Sales {
		sales = append(sales, services.LotSale{LotNumber: sale.LotNumber, Price: sale.Price, Buyer: sale.Buyer})
	}
	auction, err := h.auctionService.Close(c.Request.Context(), userID, auctionID, sales)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "CLOSE_FAILED", err)
		return
	}
	response.OK(c, auction)
}
