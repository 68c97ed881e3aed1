package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sorenkv/cardvault-backend/internal/http/response"
	"github.com/sorenkv/cardvault-backend/internal/pkg/ctxutil"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", fmt.Errorf("missing or invalid token"))
			c.Abort()
			return
		}
		userID, err := am.authService.ParseToken(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", fmt.Errorf("invalid token"))
			c.Abort()
			return
		}
		if userID == uuid.Nil {
			response.Fail(c, http.StatusForbidden, "FORBIDDEN", fmt.Errorf("forbidden"))
			c.Abort()
			return
		}

		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil {
			rd = &ctxutil.RequestData{}
		}
		rd.UserID = userID
		rd.TokenString = tokenString
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// extractToken checks the query string first so EventSource clients,
// which cannot set headers, can still authenticate the SSE stream.
func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
