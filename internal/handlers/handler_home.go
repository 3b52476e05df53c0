package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerHomeRoutes registers the root service info route.
func registerHomeRoutes(r *gin.Engine, version string) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "currency-rates",
			"version": version,
			"endpoints": gin.H{
				"latest":     "GET /latest",
				"by_date":    "GET /{YYYY-MM-DD}",
				"range":      "GET /{start..end}",
				"currencies": "GET /currencies",
				"health":     "GET /health",
				"metrics":    "GET /metrics",
				"sync":       "POST /sync, POST /sync/{provider}",
			},
		})
	})
}
