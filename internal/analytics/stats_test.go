package analytics

import (
	"testing"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessEventsTalliesTypesAndDomains(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	evts := []events.Event{
		{ID: "1", Type: events.TypeTabSwitch, Domain: "example.com", Timestamp: now.UnixMilli()},
		{ID: "2", Type: events.TypeTabSwitch, Domain: "example.com", Timestamp: now.UnixMilli()},
		{ID: "3", Type: events.TypeFocusSession, Domain: "docs.google.com", Timestamp: now.UnixMilli()},
		{ID: "4", Domain: "", Timestamp: now.UnixMilli()},
	}

	stats := ProcessEvents("user-1", evts, now)

	assert.Equal(t, "user-1", stats.UserID)
	assert.Equal(t, 4, stats.TotalEvents)
	assert.Equal(t, 2, stats.EventTypes[events.TypeTabSwitch])
	assert.Equal(t, 1, stats.EventTypes[events.TypeFocusSession])
	assert.Equal(t, 1, stats.EventTypes["unknown"], "untyped events bucket under unknown")
	assert.Equal(t, 2, stats.Domains["example.com"])
	assert.Equal(t, 1, stats.Domains["unknown"], "undomained events bucket under unknown")
	assert.Equal(t, SourceExtensionStorage, stats.DataSource)
}

func TestProcessEventsTodayUsesLocalCalendarDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 30, 0, 0, time.UTC)
	evts := []events.Event{
		{ID: "1", Type: events.TypeTabSwitch, Timestamp: now.UnixMilli()},
		{ID: "2", Type: events.TypeTabSwitch, Timestamp: now.Add(-time.Hour).UnixMilli()},   // yesterday
		{ID: "3", Type: events.TypeTabSwitch, Timestamp: now.Add(-25 * time.Hour).UnixMilli()},
	}

	stats := ProcessEvents("user-1", evts, now)

	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 1, stats.TodayEvents, "only same-calendar-date events count as today")
}

func TestProcessEventsSessionInfoTracksLatestActivity(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	latest := now.Add(-time.Minute).UnixMilli()
	evts := []events.Event{
		{ID: "1", Timestamp: now.Add(-2 * time.Hour).UnixMilli()},
		{ID: "2", Timestamp: latest},
		{ID: "3", Timestamp: now.Add(-30 * time.Minute).UnixMilli()},
	}

	stats := ProcessEvents("user-1", evts, now)

	assert.Equal(t, latest, stats.SessionInfo.LastActivity)
	assert.Equal(t, 3, stats.SessionInfo.TotalEvents)
}

func TestProcessEventsEmpty(t *testing.T) {
	stats := ProcessEvents("user-1", nil, time.Now())

	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.TotalEvents)
	assert.Empty(t, stats.EventTypes)
	assert.Equal(t, int64(0), stats.SessionInfo.LastActivity)
}
