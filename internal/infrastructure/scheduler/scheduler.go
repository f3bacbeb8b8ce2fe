package scheduler

import (
	"context"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/analytics"
	"github.com/crow2678/Digital-Twin-sub001/internal/syncqueue"
	"github.com/crow2678/Digital-Twin-sub001/pkg/logger"
	"go.uber.org/zap"
)

// Scheduler drives the agent's periodic work: the fixed-interval retry
// pass over the pending sync queue and the dashboard statistics refresh.
type Scheduler struct {
	syncer          *syncqueue.Syncer
	resolver        *analytics.Resolver
	syncInterval    time.Duration
	refreshInterval time.Duration
	logger          *logger.Logger
	cancel          context.CancelFunc
}

func NewScheduler(syncer *syncqueue.Syncer, resolver *analytics.Resolver, syncInterval, refreshInterval time.Duration, logger *logger.Logger) *Scheduler {
	if syncInterval <= 0 {
		syncInterval = 5 * time.Minute
	}
	if refreshInterval <= 0 {
		refreshInterval = 30 * time.Second
	}
	return &Scheduler{
		syncer:          syncer,
		resolver:        resolver,
		syncInterval:    syncInterval,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.logger.Info("Agent scheduler initialized",
		zap.Duration("sync_interval", s.syncInterval),
		zap.Duration("refresh_interval", s.refreshInterval),
	)

	go s.runSyncLoop(ctx)
	go s.runRefreshLoop(ctx)
}

// Stop halts both loops. In-flight passes finish on their own.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// runSyncLoop retries the pending queue on a fixed interval. There is no
// backoff: the cadence stays constant however long the collector is
// down.
func (s *Scheduler) runSyncLoop(ctx context.Context) {
	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSyncPass(ctx)
		}
	}
}

func (s *Scheduler) runSyncPass(ctx context.Context) {
	startTime := time.Now()
	pending := s.syncer.PendingCount()
	if pending == 0 {
		return
	}

	delivered := s.syncer.SyncPending(ctx)
	s.logger.Info("Completed sync pass",
		zap.Int("pending_before", pending),
		zap.Int("delivered", delivered),
		zap.Duration("duration", time.Since(startTime)),
	)
}

// runRefreshLoop recomputes the dashboard statistics so the view stays
// current while visible.
func (s *Scheduler) runRefreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.resolver.Resolve(ctx); err != nil {
				if err != analytics.ErrNoData {
					s.logger.Error("Failed to refresh statistics", zap.Error(err))
				}
			}
		}
	}
}
