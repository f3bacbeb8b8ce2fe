package handlers

import (
	"errors"
	"net/http"

	"github.com/crow2678/Digital-Twin-sub001/internal/api/dto"
	"github.com/crow2678/Digital-Twin-sub001/internal/capture"
	"github.com/gin-gonic/gin"
)

// CaptureHandler is the agent's intake surface: producer messages and
// host-platform signals.
type CaptureHandler struct {
	tracker *capture.Tracker
}

// NewCaptureHandler creates a new CaptureHandler instance
func NewCaptureHandler(tracker *capture.Tracker) *CaptureHandler {
	return &CaptureHandler{tracker: tracker}
}

// PostMessage records one producer message. Capture is local-first: the
// event is buffered and acknowledged before any delivery happens, so the
// producer is never blocked on the network.
func (h *CaptureHandler) PostMessage(c *gin.Context) {
	var req dto.ProducerMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := h.tracker.HandleMessage(capture.Message{
		Source: req.Source,
		Data:   req.Data,
	})

	c.JSON(http.StatusAccepted, dto.EventRecordedResponse{
		Status:  "recorded",
		EventID: event.ID,
	})
}

// TabActivated records a host-platform tab activation signal.
func (h *CaptureHandler) TabActivated(c *gin.Context) {
	var req dto.TabActivatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.tracker.OnTabActivated(req.TabID, req.Domain, req.URL)
	if err != nil {
		if errors.Is(err, capture.ErrSignalsUnavailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, dto.EventRecordedResponse{
		Status:  "recorded",
		EventID: event.ID,
	})
}

// WindowFocusChanged records a host-platform window focus signal.
func (h *CaptureHandler) WindowFocusChanged(c *gin.Context) {
	var req dto.WindowFocusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.tracker.OnWindowFocusChanged(req.WindowID, req.Focused)
	if err != nil {
		if errors.Is(err, capture.ErrSignalsUnavailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, dto.EventRecordedResponse{
		Status:  "recorded",
		EventID: event.ID,
	})
}

// BufferStatus reports the current buffer occupancy.
func (h *CaptureHandler) BufferStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"buffered": h.tracker.BufferLen(),
	})
}
