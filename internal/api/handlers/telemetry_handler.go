package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/api/dto"
	"github.com/crow2678/Digital-Twin-sub001/internal/domain/behavior"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsIngested = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "behavioral_events_ingested_total",
		Help: "Total number of behavioral event deliveries by outcome",
	},
	[]string{"outcome"},
)

// TelemetryHandler handles HTTP requests on the collector: event ingest
// and per-user stats.
type TelemetryHandler struct {
	service behavior.Service
}

// NewTelemetryHandler creates a new TelemetryHandler instance
func NewTelemetryHandler(service behavior.Service) *TelemetryHandler {
	return &TelemetryHandler{service: service}
}

// IngestEvent stores one delivered event. A redelivered event_id is
// acknowledged with 200 rather than rejected; the agent treats any 2xx
// as delivered and drops the event from its pending queue.
func (h *TelemetryHandler) IngestEvent(c *gin.Context) {
	var req dto.IngestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var deliveredAt time.Time
	if req.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			deliveredAt = parsed
		}
	}

	result, err := h.service.Ingest(c.Request.Context(), behavior.IngestInput{
		UserID:    req.UserID,
		Event:     req.EventData,
		Source:    req.Source,
		Timestamp: deliveredAt,
	})
	if err != nil {
		if errors.Is(err, behavior.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	outcome := "stored"
	if result.Duplicate {
		outcome = "duplicate"
	}
	eventsIngested.WithLabelValues(outcome).Inc()

	c.JSON(http.StatusOK, dto.IngestEventResponse{
		Status:    "stored",
		EventID:   result.EventID,
		Duplicate: result.Duplicate,
	})
}

// GetUserStats returns the canonical aggregated statistics for a user.
func (h *TelemetryHandler) GetUserStats(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	stats, err := h.service.UserStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.UserStatsResponse{Data: stats})
}
