package behavior

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/analytics"
	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	ErrInvalidInput = errors.New("invalid ingest input")
)

const statsCacheTTL = 60 * time.Second

// Service is the collector-side behavioral data API.
type Service interface {
	Ingest(ctx context.Context, input IngestInput) (*IngestResult, error)
	UserStats(ctx context.Context, userID string) (*analytics.CanonicalStatistics, error)
}

// IngestInput is one delivered event, as posted by an agent.
type IngestInput struct {
	UserID    string
	Event     events.Event
	Source    string
	Timestamp time.Time
}

// IngestResult reports what the store did with the delivery.
type IngestResult struct {
	EventID   string `json:"event_id"`
	Stored    bool   `json:"stored"`
	Duplicate bool   `json:"duplicate"`
}

type service struct {
	repo   Repository
	redis  *cache.RedisClient
	logger *zap.Logger
}

// NewService creates the behavioral data service. A nil redis client
// disables stats caching.
func NewService(repo Repository, redis *cache.RedisClient, logger *zap.Logger) Service {
	return &service{repo: repo, redis: redis, logger: logger}
}

// Ingest persists one delivered event. At-least-once delivery means the
// same event can arrive twice; the second arrival is acknowledged as a
// duplicate rather than rejected, so the agent still drops it from its
// pending queue.
func (s *service) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if input.UserID == "" || input.Event.ID == "" {
		return nil, ErrInvalidInput
	}

	capturedAt := input.Timestamp
	if capturedAt.IsZero() {
		capturedAt = time.UnixMilli(input.Event.Timestamp).UTC()
	}

	extra := datatypes.JSON([]byte("{}"))
	if len(input.Event.Extra) > 0 {
		if raw, err := json.Marshal(input.Event.Extra); err == nil {
			extra = datatypes.JSON(raw)
		}
	}

	record := &BehavioralEvent{
		ID:         uuid.New(),
		UserID:     input.UserID,
		EventID:    input.Event.ID,
		EventType:  input.Event.TypeOrUnknown(),
		Domain:     input.Event.Domain,
		URL:        input.Event.URL,
		Source:     input.Source,
		CapturedAt: capturedAt,
		Extra:      extra,
		CreatedAt:  time.Now().UTC(),
	}

	stored, err := s.repo.Insert(ctx, record)
	if err != nil {
		return nil, err
	}

	if stored {
		s.invalidateStats(ctx, input.UserID)
	} else {
		s.logger.Debug("duplicate event delivery acknowledged",
			zap.String("event_id", input.Event.ID),
			zap.String("user_id", input.UserID),
		)
	}

	return &IngestResult{
		EventID:   input.Event.ID,
		Stored:    stored,
		Duplicate: !stored,
	}, nil
}

// UserStats aggregates stored events into the canonical per-user view.
// The aggregate is cached briefly; ingest invalidates it.
func (s *service) UserStats(ctx context.Context, userID string) (*analytics.CanonicalStatistics, error) {
	if s.redis != nil {
		key := cache.GenerateCacheKey("user_stats", userID, "")
		if cached, err := s.redis.Get(ctx, key); err == nil && cached != "" {
			var stats analytics.CanonicalStatistics
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.computeStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			key := cache.GenerateCacheKey("user_stats", userID, "")
			if err := s.redis.Set(ctx, key, string(data), statsCacheTTL); err != nil {
				s.logger.Warn("failed to cache user stats", zap.Error(err))
			}
		}
	}

	return stats, nil
}

func (s *service) computeStats(ctx context.Context, userID string) (*analytics.CanonicalStatistics, error) {
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byType, err := s.repo.CountsByType(ctx, userID)
	if err != nil {
		return nil, err
	}
	byDomain, err := s.repo.CountsByDomain(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.repo.CountSince(ctx, userID, midnight)
	if err != nil {
		return nil, err
	}

	last, err := s.repo.LastActivity(ctx, userID)
	if err != nil {
		return nil, err
	}
	var lastMs int64
	if last.Unix() > 0 {
		lastMs = last.UnixMilli()
	}

	stats := &analytics.CanonicalStatistics{
		UserID:      userID,
		TotalEvents: int(total),
		EventTypes:  make(map[string]int, len(byType)),
		Domains:     make(map[string]int, len(byDomain)),
		TodayEvents: int(today),
		SessionInfo: analytics.SessionInfo{
			LastActivity: lastMs,
			TotalEvents:  int(total),
		},
		DataSource: analytics.SourceRemoteAPI,
	}
	for _, row := range byType {
		stats.EventTypes[row.EventType] = int(row.Count)
	}
	for _, row := range byDomain {
		domain := row.Domain
		if domain == "" {
			domain = "unknown"
		}
		stats.Domains[domain] += int(row.Count)
	}

	return stats, nil
}

func (s *service) invalidateStats(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateCache(ctx, "user_stats", userID); err != nil {
		s.logger.Warn("failed to invalidate stats cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
