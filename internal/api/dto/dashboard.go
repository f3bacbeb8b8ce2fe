package dto

import (
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/analytics"
	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
)

// DashboardResponse is the full dashboard view: the winning statistics,
// every derived metric, and the insight list, stamped with the data
// source that produced them.
type DashboardResponse struct {
	Status      string                         `json:"status"`
	Stats       *analytics.CanonicalStatistics `json:"stats,omitempty"`
	Metrics     *analytics.DerivedMetrics      `json:"metrics,omitempty"`
	Insights    []analytics.Insight            `json:"insights,omitempty"`
	DataSource  analytics.DataSource           `json:"data_source,omitempty"`
	GeneratedAt time.Time                      `json:"generated_at"`
}

// NoDataResponse is the dashboard's empty state: not an error, but
// guidance while the profile is still empty.
type NoDataResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Guidance string `json:"guidance"`
}

// ProducerMessageRequest is one message from an in-page producer.
type ProducerMessageRequest struct {
	Source string            `json:"source" binding:"required"`
	Data   events.EventInput `json:"data"`
}

// TabActivatedRequest is the host-platform tab activation signal.
type TabActivatedRequest struct {
	TabID  string `json:"tab_id"`
	Domain string `json:"domain"`
	URL    string `json:"url"`
}

// WindowFocusRequest is the host-platform window focus signal.
type WindowFocusRequest struct {
	WindowID string `json:"window_id"`
	Focused  bool   `json:"focused"`
}

// EventRecordedResponse acknowledges a captured event.
type EventRecordedResponse struct {
	Status  string `json:"status"`
	EventID string `json:"event_id"`
}

// SyncStatusResponse reports the outcome of a forced sync pass.
type SyncStatusResponse struct {
	Status       string `json:"status"`
	Delivered    int    `json:"delivered"`
	StillPending int    `json:"still_pending"`
}
