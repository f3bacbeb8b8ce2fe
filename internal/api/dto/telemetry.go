package dto

import (
	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
)

// IngestEventRequest is one delivered event, as posted by an agent.
// Timestamp is the delivery time in RFC 3339; the capture time rides
// inside EventData.
type IngestEventRequest struct {
	UserID    string       `json:"user_id" binding:"required"`
	EventData events.Event `json:"event_data" binding:"required"`
	Timestamp string       `json:"timestamp"`
	Source    string       `json:"source"`
}

// IngestEventResponse acknowledges a delivery. Duplicates are
// acknowledged as stored so the agent drops them from its pending queue.
type IngestEventResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

// UserStatsResponse wraps the canonical per-user aggregate.
type UserStatsResponse struct {
	Data interface{} `json:"data"`
}
