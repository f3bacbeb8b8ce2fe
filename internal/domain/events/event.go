package events

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Well-understood event types. Producers may emit tags outside this set;
// aggregation buckets anything untyped under TypeUnknown.
const (
	TypeTabSwitch         = "tab_switch"
	TypeWindowFocusChange = "window_focus_change"
	TypeFocusSession      = "general_focus_session"
	TypeRapidSwitching    = "general_rapid_switching"
	TypeLinkedInAction    = "linkedin_action"
	TypeResearchActivity  = "research_activity"
	TypeUnknown           = "unknown"
)

// Producer source tags accepted on the capture intake.
const (
	SourceSalesforce = "salesforce"
	SourceOutlook    = "outlook"
	SourceResearch   = "research"
	SourceGeneral    = "general"
	SourcePopup      = "popup"
)

// Event represents one captured behavioral signal.
type Event struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Domain      string                 `json:"domain,omitempty"`
	URL         string                 `json:"url,omitempty"`
	Timestamp   int64                  `json:"timestamp"`    // epoch ms, capture time
	ProcessedAt int64                  `json:"processed_at"` // epoch ms, buffer-insert time
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// EventInput is the partial event carried by producer messages. The
// capture component fills in ID and ProcessedAt.
type EventInput struct {
	Type      string                 `json:"type"`
	Domain    string                 `json:"domain,omitempty"`
	URL       string                 `json:"url,omitempty"`
	Timestamp int64                  `json:"timestamp,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// NewEventID builds a time-based id with a random suffix. Collisions are
// negligible at capture rates; the collector additionally dedupes by id.
func NewEventID(now time.Time) string {
	suffix := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return "evt_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}

// TypeOrUnknown returns the event type, or TypeUnknown for untyped events.
func (e Event) TypeOrUnknown() string {
	if e.Type == "" {
		return TypeUnknown
	}
	return e.Type
}

// DomainOrUnknown returns the event domain, or "unknown" when absent.
func (e Event) DomainOrUnknown() string {
	if e.Domain == "" {
		return TypeUnknown
	}
	return e.Domain
}

// IsKnownSource reports whether a producer tag is part of the fixed set.
func IsKnownSource(source string) bool {
	switch source {
	case SourceSalesforce, SourceOutlook, SourceResearch, SourceGeneral, SourcePopup:
		return true
	}
	return false
}
