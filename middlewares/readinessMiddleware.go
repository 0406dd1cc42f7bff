package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/webnovauz/paint-management-backend/config"
)

// ReadinessMiddleware answers 503 until the database is connected.
// The server starts listening before dependencies are up; redis is optional.
func ReadinessMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service is starting"})
			return
		}
		c.Next()
	}
}
