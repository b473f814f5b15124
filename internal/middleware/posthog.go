package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/freight_quoting_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// PosthogMiddleware records one "api_request" event per successful authenticated call.
// Quote workflow events are sent separately by the quote service.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || skipTracking(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, exists := GetUserIDFromContext(c)
		if !exists || c.FullPath() == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status_code": c.Writer.Status(),
		}
		if quoteID := c.Param("quoteID"); quoteID != "" {
			props["quote_id"] = quoteID
		}
		posthogClient.Enqueue(userID, "api_request", props)
	}
}

func skipTracking(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/swagger")
}
