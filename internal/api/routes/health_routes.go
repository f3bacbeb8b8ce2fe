package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// DependencyCheck probes one backing service. The returned error message
// is surfaced verbatim in the health payload.
type DependencyCheck func() error

// SetupHealthRoutes registers health check endpoints. Dependency checks
// degrade the status to "degraded" without failing the request; the
// agent's sync layer only needs a 200 to consider the collector up.
func SetupHealthRoutes(router *gin.Engine, checks map[string]DependencyCheck) {
	router.GET("/health", func(c *gin.Context) {
		resp := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
		}

		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
			for name, check := range checks {
				if err := check(); err != nil {
					resp.Status = "degraded"
					resp.Checks[name] = err.Error()
				} else {
					resp.Checks[name] = "ok"
				}
			}
		}

		c.JSON(http.StatusOK, resp)
	})

	router.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "ready",
			Timestamp: time.Now().UTC(),
		})
	})
}
