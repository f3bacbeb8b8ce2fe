package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/analytics"
	"github.com/crow2678/Digital-Twin-sub001/internal/api/dto"
	"github.com/crow2678/Digital-Twin-sub001/internal/syncqueue"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the agent's local dashboard: aggregated
// statistics, derived metrics and insights, plus the visibility hooks.
type DashboardHandler struct {
	resolver *analytics.Resolver
	syncer   *syncqueue.Syncer
}

// NewDashboardHandler creates a new DashboardHandler instance
func NewDashboardHandler(resolver *analytics.Resolver, syncer *syncqueue.Syncer) *DashboardHandler {
	return &DashboardHandler{resolver: resolver, syncer: syncer}
}

// GetDashboard resolves statistics through the fallback chain and
// returns the full dashboard view. An empty profile is a 200 with
// guidance, not an error.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	h.respondWithDashboard(c)
}

// Refresh forces an immediate recomputation, same as the periodic
// refresh the scheduler runs.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	h.respondWithDashboard(c)
}

// Visible is the tab-visibility hook: becoming visible triggers an
// immediate sync pass followed by a fresh resolution, so the view
// catches up after the machine was asleep or the dashboard hidden.
func (h *DashboardHandler) Visible(c *gin.Context) {
	delivered := h.syncer.SyncPending(c.Request.Context())

	c.Header("X-Sync-Delivered", strconv.Itoa(delivered))
	h.respondWithDashboard(c)
}

// ForceSync runs one sync pass and reports the outcome without touching
// the dashboard.
func (h *DashboardHandler) ForceSync(c *gin.Context) {
	delivered := h.syncer.SyncPending(c.Request.Context())

	c.JSON(http.StatusOK, dto.SyncStatusResponse{
		Status:       "synced",
		Delivered:    delivered,
		StillPending: h.syncer.PendingCount(),
	})
}

func (h *DashboardHandler) respondWithDashboard(c *gin.Context) {
	stats, err := h.resolver.Resolve(c.Request.Context())
	if err != nil {
		if errors.Is(err, analytics.ErrNoData) {
			c.JSON(http.StatusOK, dto.NoDataResponse{
				Status:   "no_data",
				Message:  "No behavioral data available yet.",
				Guidance: "Keep browsing — your digital twin is still building your profile.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics := analytics.ComputeDerived(stats)
	insights := analytics.GenerateInsights(stats)

	c.JSON(http.StatusOK, dto.DashboardResponse{
		Status:      "ok",
		Stats:       stats,
		Metrics:     &metrics,
		Insights:    insights,
		DataSource:  stats.DataSource,
		GeneratedAt: time.Now().UTC(),
	})
}
