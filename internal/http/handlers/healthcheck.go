package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sorenkv/cardvault-backend/internal/http/response"
)

func HealthCheck(c *gin.Context) {
	response.OK(c, gin.H{"healthy": true})
}
