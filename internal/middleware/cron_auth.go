package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CronAuthMiddleware creates a Gin middleware that validates the X-Cron-Key
// header against the configured cron secret. The recurring-scan endpoint is
// triggered by an external scheduler and authenticated independently of the
// rest of the API.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": gin.H{"code": "CRON_NOT_CONFIGURED", "message": "Cron endpoints are not configured"}})
			return
		}
		key := c.GetHeader("X-Cron-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": gin.H{"code": "INVALID_CRON_KEY", "message": "Invalid or missing cron key"}})
			return
		}
		c.Next()
	}
}
