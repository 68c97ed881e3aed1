package response

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sorenkv/cardvault-backend/internal/platform/apierr"
)

// Version is reported in every response envelope.
const Version = "2.0"

type Meta struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Duration  string `json:"duration,omitempty"`
	Cached    bool   `json:"cached,omitempty"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Envelope is the wire shape every endpoint responds with. Exactly one
// of Data and Error is populated.
type Envelope struct {
	Success bool       `json:"success"`
	Status  string     `json:"status"`
	Data    any        `json:"data"`
	Meta    Meta       `json:"meta"`
	Error   *ErrorBody `json:"error,omitempty"`
}

const startTimeKey = "response.start_time"

// TrackDuration stamps the request start time so the envelope can
// report elapsed time. Installed as middleware ahead of all handlers.
func TrackDuration() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startTimeKey, time.Now())
		c.Next()
	}
}

func buildMeta(c *gin.Context) Meta {
	meta := Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}
	if v, ok := c.Get(startTimeKey); ok {
		if start, ok := v.(time.Time); ok {
			meta.Duration = fmt.Sprintf("%dms", time.Since(start).Milliseconds())
		}
	}
	return meta
}

func OK(c *gin.Context, data any) {
	JSON(c, http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	JSON(c, http.StatusCreated, data)
}

func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{
		Success: true,
		Status:  "success",
		Data:    data,
		Meta:    buildMeta(c),
	})
}

// Error maps an error to the envelope. apierr values keep their status
// and code; anything else is a 500 INTERNAL_ERROR.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	msg := "internal error"

	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Status
		code = apiErr.Code
		msg = apiErr.Error()
	} else if err != nil {
		msg = err.Error()
	}
	c.JSON(status, Envelope{
		Success: false,
		Status:  "error",
		Data:    nil,
		Meta:    buildMeta(c),
		Error:   &ErrorBody{Message: msg, Code: code},
	})
}

// Fail is Error with an explicit status and code for handler-level
// validation failures.
func Fail(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, Envelope{
		Success: false,
		Status:  "error",
		Data:    nil,
		Meta:    buildMeta(c),
		Error:   &ErrorBody{Message: msg, Code: code},
	})
}
