package server

import (
	"strings"
	"time"

	"vehicle-auction/services/bidding/helpers"
	"vehicle-auction/utils"

	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the caller identity asserted by the upstream identity provider
const UserIDHeader = "X-User-ID"

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"user_id": helpers.CurrentUser(c),
		"latency": time.Since(start).String(),
	})
}

// IdentityMiddleware stores the X-User-ID header in the context. Handlers
// that need a caller reject requests without one.
func IdentityMiddleware(c *gin.Context) {
	if userID := strings.TrimSpace(c.GetHeader(UserIDHeader)); userID != "" {
		c.Set(helpers.UserIDKey, userID)
	}
	c.Next()
}
