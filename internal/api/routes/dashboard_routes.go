package routes

import (
	"github.com/crow2678/Digital-Twin-sub001/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

type DashboardRoutes struct {
	handler *handlers.DashboardHandler
}

func NewDashboardRoutes(handler *handlers.DashboardHandler) *DashboardRoutes {
	return &DashboardRoutes{handler: handler}
}

// RegisterRoutes registers the agent's local dashboard endpoints.
func (d *DashboardRoutes) RegisterRoutes(router *gin.Engine) {
	dashboard := router.Group("/dashboard")

	dashboard.GET("", d.handler.GetDashboard)
	dashboard.POST("/refresh", d.handler.Refresh)
	dashboard.POST("/visible", d.handler.Visible)
	dashboard.POST("/sync", d.handler.ForceSync)
}
