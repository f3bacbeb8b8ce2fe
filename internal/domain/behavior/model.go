package behavior

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BehavioralEvent is one captured browser event as stored by the
// collector. EventID carries the agent-assigned identifier; the unique
// index on it is what makes redelivered events harmless.
type BehavioralEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID     string         `gorm:"size:128;not null;index" json:"user_id"`
	EventID    string         `gorm:"size:64;not null;uniqueIndex" json:"event_id"`
	EventType  string         `gorm:"size:64;not null;index" json:"event_type"`
	Domain     string         `gorm:"size:255;index" json:"domain"`
	URL        string         `gorm:"type:text" json:"url"`
	Source     string         `gorm:"size:32;not null" json:"source"`
	CapturedAt time.Time      `gorm:"not null;index" json:"captured_at"`
	Extra      datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra"`
	CreatedAt  time.Time      `gorm:"not null;default:current_timestamp" json:"created_at"`
}

// TableName overrides the GORM default pluralization.
func (BehavioralEvent) TableName() string {
	return "behavioral_events"
}

// TypeCount is one row of a grouped count query.
type TypeCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// DomainCount is one row of a grouped count query.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}
