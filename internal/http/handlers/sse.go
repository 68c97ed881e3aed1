package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sorenkv/cardvault-backend/internal/http/response"
	"github.com/sorenkv/cardvault-backend/internal/realtime"
)

type SSEHandler struct {
	hub *realtime.Hub
}

func NewSSEHandler(hub *realtime.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream opens the event stream. Every client is subscribed to its own
// user channel and the shared catalog channel.
func (h *SSEHandler) Stream(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
		return
	}
	client := h.hub.NewClient(userID)
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.hub.AddChannel(client, realtime.CatalogChannel)
	defer h.hub.CloseClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
