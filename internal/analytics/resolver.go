package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/localstore"
	"github.com/crow2678/Digital-Twin-sub001/pkg/logger"
	"go.uber.org/zap"
)

// ErrNoData marks the terminal state when every candidate source is
// empty or failing. It is presentation guidance, not a pipeline error.
var ErrNoData = errors.New("analytics: no data available from any source")

// RemoteStats fetches per-user statistics from the remote collector.
type RemoteStats interface {
	FetchUserStats(ctx context.Context, userID string) (*CanonicalStatistics, error)
}

// Resolver probes candidate data sources in a fixed order and produces
// one canonical statistics object per resolution. Resolution is
// idempotent and side-effect-free except for overwriting the local
// statistics cache on success.
type Resolver struct {
	userID string
	store  localstore.Store
	remote RemoteStats
	clock  func() time.Time
	log    *logger.Logger
}

// NewResolver constructs a resolver. A nil clock defaults to time.Now;
// a nil remote skips the remote fallback entirely.
func NewResolver(userID string, store localstore.Store, remote RemoteStats, clock func() time.Time, log *logger.Logger) *Resolver {
	if clock == nil {
		clock = time.Now
	}
	return &Resolver{
		userID: userID,
		store:  store,
		remote: remote,
		clock:  clock,
		log:    log,
	}
}

// Resolve walks the fallback chain: local event buffer, remote collector
// stats, cached statistics. The first source yielding total_events > 0
// wins; exhaustion returns ErrNoData.
func (r *Resolver) Resolve(ctx context.Context) (*CanonicalStatistics, error) {
	if stats := r.fromLocalBuffer(ctx); stats != nil {
		r.cache(ctx, stats)
		return stats, nil
	}

	if stats := r.fromRemote(ctx); stats != nil {
		r.cache(ctx, stats)
		return stats, nil
	}

	if stats := r.fromCache(ctx); stats != nil {
		return stats, nil
	}

	return nil, ErrNoData
}

func (r *Resolver) fromLocalBuffer(ctx context.Context) *CanonicalStatistics {
	var buffered []events.Event
	err := r.store.Get(ctx, localstore.KeyEventBuffer, &buffered)
	if err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			r.log.Warn("failed to read local event buffer", zap.Error(err))
		}
		return nil
	}

	stats := ProcessEvents(r.userID, buffered, r.clock())
	if stats.TotalEvents == 0 {
		return nil
	}
	return stats
}

func (r *Resolver) fromRemote(ctx context.Context) *CanonicalStatistics {
	if r.remote == nil {
		return nil
	}

	stats, err := r.remote.FetchUserStats(ctx, r.userID)
	if err != nil {
		r.log.Warn("remote stats source unavailable", zap.Error(err))
		return nil
	}
	if stats == nil || stats.TotalEvents == 0 {
		return nil
	}

	stats.DataSource = SourceRemoteAPI
	if stats.UserID == "" {
		stats.UserID = r.userID
	}
	return stats
}

func (r *Resolver) fromCache(ctx context.Context) *CanonicalStatistics {
	var cached CanonicalStatistics
	err := r.store.Get(ctx, localstore.KeyCachedStats, &cached)
	if err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			r.log.Warn("failed to read cached statistics", zap.Error(err))
		}
		return nil
	}
	if cached.TotalEvents == 0 {
		return nil
	}

	cached.DataSource = SourceLocalCache
	return &cached
}

// cache overwrites the fallback cache with the winning statistics. A
// failed write degrades the fallback chain but never the resolution.
func (r *Resolver) cache(ctx context.Context, stats *CanonicalStatistics) {
	if err := r.store.Put(ctx, localstore.KeyCachedStats, stats); err != nil {
		r.log.Warn("failed to persist statistics cache", zap.Error(err))
	}
}
