package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sorenkv/cardvault-backend/internal/pkg/ctxutil"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

// AttachRequestContext seeds every request with a request ID. The auth
// middleware fills in the user identity later for protected routes.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{RequestID: requestID})
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("Middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			fields = append(fields, "request_id", rd.RequestID)
			if rd.UserID != uuid.Nil {
				fields = append(fields, "user_id", rd.UserID)
			}
		}
		if c.Writer.Status() >= 500 {
			fields = append(fields, "errors", c.Errors.String())
			reqLog.Error("request failed", fields...)
			return
		}
		reqLog.Info("request completed", fields...)
	}
}
