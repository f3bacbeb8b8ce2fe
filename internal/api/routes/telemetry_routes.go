package routes

import (
	"github.com/crow2678/Digital-Twin-sub001/internal/api/handlers"
	"github.com/crow2678/Digital-Twin-sub001/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type TelemetryRoutes struct {
	handler *handlers.TelemetryHandler
}

func NewTelemetryRoutes(handler *handlers.TelemetryHandler) *TelemetryRoutes {
	return &TelemetryRoutes{handler: handler}
}

// RegisterRoutes registers the collector's ingest and stats endpoints.
// Paths are part of the agent/collector contract and must not change.
func (t *TelemetryRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	router.POST("/behavioral-data", cache.CacheInvalidate("response:user:*"), t.handler.IngestEvent)

	user := router.Group("/user")
	user.GET("/:user_id/stats", cache.CacheResponse(), t.handler.GetUserStats)
}
