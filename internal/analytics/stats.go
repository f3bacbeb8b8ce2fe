package analytics

import (
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
)

// DataSource identifies which candidate source produced the statistics.
type DataSource string

const (
	SourceExtensionStorage DataSource = "extension_storage"
	SourceRemoteAPI        DataSource = "remote_api"
	SourceLocalCache       DataSource = "local_cache"
)

// SessionInfo summarizes the most recent activity in the data set.
type SessionInfo struct {
	LastActivity int64 `json:"last_activity"`
	TotalEvents  int   `json:"total_events"`
}

// CanonicalStatistics is the single aggregated view of events that all
// derived metrics and insights are computed from. It is recomputed
// wholesale on every aggregation cycle and persisted as the fallback
// cache after each successful resolution.
type CanonicalStatistics struct {
	UserID      string         `json:"user_id"`
	TotalEvents int            `json:"total_events"`
	EventTypes  map[string]int `json:"event_types"`
	Domains     map[string]int `json:"domains"`
	TodayEvents int            `json:"today_events"`
	SessionInfo SessionInfo    `json:"session_info"`
	DataSource  DataSource     `json:"data_source"`
}

// ProcessEvents computes canonical statistics from a raw event buffer in
// a single pass. Every event contributes to exactly one type bucket and
// one domain bucket; untyped or undomained events land in "unknown".
func ProcessEvents(userID string, evts []events.Event, now time.Time) *CanonicalStatistics {
	stats := &CanonicalStatistics{
		UserID:     userID,
		EventTypes: make(map[string]int),
		Domains:    make(map[string]int),
		DataSource: SourceExtensionStorage,
	}

	year, month, day := now.Date()
	var lastActivity int64

	for _, e := range evts {
		stats.TotalEvents++
		stats.EventTypes[e.TypeOrUnknown()]++
		stats.Domains[e.DomainOrUnknown()]++

		captured := time.UnixMilli(e.Timestamp).In(now.Location())
		y, m, d := captured.Date()
		if y == year && m == month && d == day {
			stats.TodayEvents++
		}

		if e.Timestamp > lastActivity {
			lastActivity = e.Timestamp
		}
	}

	stats.SessionInfo = SessionInfo{
		LastActivity: lastActivity,
		TotalEvents:  stats.TotalEvents,
	}

	return stats
}
