package routes

import (
	"github.com/crow2678/Digital-Twin-sub001/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

type CaptureRoutes struct {
	handler *handlers.CaptureHandler
}

func NewCaptureRoutes(handler *handlers.CaptureHandler) *CaptureRoutes {
	return &CaptureRoutes{handler: handler}
}

// RegisterRoutes registers the agent's capture intake endpoints.
func (r *CaptureRoutes) RegisterRoutes(router *gin.Engine) {
	router.POST("/messages", r.handler.PostMessage)
	router.GET("/buffer", r.handler.BufferStatus)

	signals := router.Group("/signals")
	signals.POST("/tab-activated", r.handler.TabActivated)
	signals.POST("/window-focus", r.handler.WindowFocusChanged)
}
