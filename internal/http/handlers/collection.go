package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/http/response"
	"github.com/sorenkv/cardvault-backend/internal/services"
)

const maxCardImageBytes = 16 << 20

type CollectionHandler struct {
	collectionService services.CollectionService
	ocrService        services.OcrMatchService
}

func NewCollectionHandler(collectionService services.CollectionService, ocrService services.OcrMatchService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService, ocrService: ocrService}
}

func listFilterFromQuery(c *gin.Context) (repos.ListFilter, error) {
	filter := repos.ListFilter{Status: c.Query("status")}
	if raw := c.Query("set_id"); raw != "" {
		setID, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid set_id")
		}
		filter.SetID = &setID
	}
	return filter, nil
}

func (ch *CollectionHandler) AddGraded(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	var card types.GradedCard
	if err := c.ShouldBindJSON(&card); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	created, err := ch.collectionService.AddGradedCard(c.Request.Context(), userID, &card)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "CREATE_FAILED", err)
		return
	}
	response.Created(c, created)
}

func (ch *CollectionHandler) AddRaw(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	var card types.RawCard
	if err := c.ShouldBindJSON(&card); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	created, err := ch.collectionService.AddRawCard(c.Request.Context(), userID, &card)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "CREATE_FAILED", err)
		return
	}
	response.Created(c, created)
}

func (ch *CollectionHandler) AddSealed(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	var product types.SealedProduct
	if err := c.ShouldBindJSON(&product); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	created, err := ch.collectionService.AddSealedProduct(c.Request.Context(), userID, &product)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "CREATE_FAILED", err)
		return
	}
	response.Created(c, created)
}

func (ch *CollectionHandler) ListGraded(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	filter, err := listFilterFromQuery(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_QUERY", err)
		return
	}
	cards, err := ch.collectionService.ListGraded(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cards)
}

func (ch *CollectionHandler) ListRaw(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	filter, err := listFilterFromQuery(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_QUERY", err)
		return
	}
	cards, err := ch.collectionService.ListRaw(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cards)
}

func (ch *CollectionHandler) ListSealed(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	filter, err := listFilterFromQuery(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_QUERY", err)
		return
	}
	products, err := ch.collectionService.ListSealed(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, products)
}

func (ch *CollectionHandler) UpdateGraded(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid item id"))
		return
	}
	var card types.GradedCard
	if err := c.ShouldBindJSON(&card); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	card.ID = itemID
	updated, err := ch.collectionService.UpdateGradedCard(c.Request.Context(), userID, &card)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "UPDATE_FAILED", err)
		return
	}
	response.OK(c, updated)
}

func (ch *CollectionHandler) UpdateRaw(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid item id"))
		return
	}
	var card types.RawCard
	if err := c.ShouldBindJSON(&card); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	card.ID = itemID
	updated, err := ch.collectionService.UpdateRawCard(c.Request.Context(), userID, &card)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "UPDATE_FAILED", err)
		return
	}
	response.OK(c, updated)
}

func (ch *CollectionHandler) UpdateSealed(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid item id"))
		return
	}
	var product types.SealedProduct
	if err := c.ShouldBindJSON(&product); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	product.ID = itemID
	updated, err := ch.collectionService.UpdateSealedProduct(c.Request.Context(), userID, &product)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "UPDATE_FAILED", err)
		return
	}
	response.OK(c, updated)
}

func (ch *CollectionHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	itemKind := c.Param("kind")
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid item id"))
		return
	}
	if err := ch.collectionService.DeleteItem(c.Request.Context(), userID, itemKind, itemID); err != nil {
		response.Fail(c, http.StatusBadRequest, "DELETE_FAILED", err)
		return
	}
	response.OK(c, gin.H{"deleted": itemID})
}

func (ch *CollectionHandler) AttachImage(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	itemKind := c.Param("kind")
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid item id"))
		return
	}
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_UPLOAD", fmt.Errorf("image file is required"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxCardImageBytes))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_UPLOAD", err)
		return
	}
	url, err := ch.collectionService.AttachImage(c.Request.Context(), userID, itemKind, itemID, raw, header.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"image_url": url})
}

func (ch *CollectionHandler) MatchImage(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	itemKind := c.Param("kind")
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid item id"))
		return
	}
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_UPLOAD", fmt.Errorf("image file is required"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxCardImageBytes))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_UPLOAD", err)
		return
	}
	mimeType := header.Header.Get("Content-Type")
	candidates, err := ch.ocrService.MatchCardImage(c.Request.Context(), userID, itemKind, itemID, raw, mimeType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, candidates)
}

func (ch *CollectionHandler) ConfirmMatch(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	itemKind := c.Param("kind")
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_ID", fmt.Errorf("invalid item id"))
		return
	}
	var req struct {
		CardDefinitionID uuid.UUID `json:"card_definition_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CardDefinitionID == uuid.Nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("card_definition_id is required"))
		return
	}
	if err := ch.ocrService.ConfirmMatch(c.Request.Context(), userID, itemKind, itemID, req.CardDefinitionID); err != nil {
		response.Fail(c, http.StatusBadRequest, "MATCH_FAILED", err)
		return
	}
	response.OK(c, gin.H{"card_definition_id": req.CardDefinitionID})
}

func (ch *CollectionHandler) RecordSale(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	var req struct {
		ItemKind  string     `json:"item_kind"`
		ItemID    uuid.UUID  `json:"item_id"`
		SalePrice int64      `json:"sale_price"`
		Fees      int64      `json:"fees"`
		Channel   string     `json:"channel"`
		Buyer     string     `json:"buyer"`
		SoldAt    *time.Time `json:"sold_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_BODY", fmt.Errorf("invalid request body"))
		return
	}
	soldAt := time.Now().UTC()
	if req.SoldAt != nil {
		soldAt = *req.SoldAt
	}
	sale, err := ch.collectionService.RecordSale(c.Request.Context(), userID, services.SaleInput{
		ItemKind:  req.ItemKind,
		ItemID:    req.ItemID,
		SalePrice: req.SalePrice,
		Fees:      req.Fees,
		Channel:   req.Channel,
		Buyer:     req.Buyer,
		SoldAt:    soldAt,
	})
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "SALE_FAILED", err)
		return
	}
	response.Created(c, sale)
}

func (ch *CollectionHandler) ListSales(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "INVALID_QUERY", fmt.Errorf("since must be RFC3339"))
			return
		}
		since = &parsed
	}
	sales, err := ch.collectionService.ListSales(c.Request.Context(), userID, since)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sales)
}
