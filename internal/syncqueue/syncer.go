package syncqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/localstore"
	"github.com/crow2678/Digital-Twin-sub001/pkg/logger"
	"go.uber.org/zap"
)

// Deliverer sends one event to the remote collector. Any error means
// the attempt failed: network error, non-2xx status, or timeout.
type Deliverer interface {
	DeliverEvent(ctx context.Context, userID string, e events.Event) error
}

// Syncer delivers every captured event to the collector at least once,
// tolerating transient unavailability with a fixed-interval retry over a
// bounded pending queue. Duplicate suppression is the collector's job;
// the queue does not guard against double delivery after a lost
// response.
type Syncer struct {
	mu        sync.Mutex
	userID    string
	queue     *Queue
	store     localstore.Store
	deliverer Deliverer
	clock     func() time.Time
	log       *logger.Logger
}

// NewSyncer constructs the delivery layer. A nil clock defaults to
// time.Now.
func NewSyncer(userID string, store localstore.Store, deliverer Deliverer, clock func() time.Time, log *logger.Logger) *Syncer {
	if clock == nil {
		clock = time.Now
	}
	return &Syncer{
		userID:    userID,
		queue:     NewQueue(),
		store:     store,
		deliverer: deliverer,
		clock:     clock,
		log:       log,
	}
}

// Restore reloads the persisted pending queue after a restart.
func (s *Syncer) Restore(ctx context.Context) error {
	var stored []PendingItem
	err := s.store.Get(ctx, localstore.KeyPendingSync, &stored)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.queue.Replace(stored)
	count := s.queue.Len()
	s.mu.Unlock()

	s.log.Info("restored pending sync queue", zap.Int("pending", count))
	return nil
}

// Forward initiates a single delivery attempt for a freshly captured
// event and returns immediately. On failure the event joins the pending
// queue with retry_count zero.
func (s *Syncer) Forward(e events.Event) {
	go s.forward(context.Background(), e)
}

func (s *Syncer) forward(ctx context.Context, e events.Event) {
	if err := s.deliverer.DeliverEvent(ctx, s.userID, e); err != nil {
		s.log.Warn("event delivery failed, queued for retry",
			zap.String("event_id", e.ID),
			zap.Error(err),
		)
		s.enqueue(e)
	}
}

func (s *Syncer) enqueue(e events.Event) {
	s.mu.Lock()
	s.queue.Enqueue(PendingItem{
		Data:       e,
		QueuedAt:   s.clock().UnixMilli(),
		RetryCount: 0,
	})
	snapshot := s.queue.Snapshot()
	s.mu.Unlock()

	s.persist(snapshot)
}

// SyncPending retries the pending queue in insertion order, removing
// exactly the items delivered in this pass. Failed items keep their
// position for the next cycle; items queued while the pass runs are not
// part of it. There is no backoff: retry is fixed-interval by design.
func (s *Syncer) SyncPending(ctx context.Context) int {
	s.mu.Lock()
	pass := s.queue.Snapshot()
	s.mu.Unlock()

	if len(pass) == 0 {
		return 0
	}

	inPass := make(map[string]struct{}, len(pass))
	for _, item := range pass {
		inPass[item.Data.ID] = struct{}{}
	}

	delivered := 0
	var remaining []PendingItem
	for _, item := range pass {
		if err := s.deliverer.DeliverEvent(ctx, s.userID, item.Data); err != nil {
			item.RetryCount++
			remaining = append(remaining, item)
			continue
		}
		delivered++
	}

	s.mu.Lock()
	// Anything enqueued during the pass sits behind the pass snapshot;
	// keep it queued, in order, for the next cycle.
	var arrived []PendingItem
	for _, item := range s.queue.Snapshot() {
		if _, ok := inPass[item.Data.ID]; !ok {
			arrived = append(arrived, item)
		}
	}
	s.queue.Replace(append(remaining, arrived...))
	snapshot := s.queue.Snapshot()
	s.mu.Unlock()

	s.persist(snapshot)

	if delivered > 0 || len(remaining) > 0 {
		s.log.Info("sync cycle finished",
			zap.Int("delivered", delivered),
			zap.Int("still_pending", len(remaining)+len(arrived)),
		)
	}
	return delivered
}

// PendingCount returns the number of queued items.
func (s *Syncer) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// persist writes the queue snapshot through to durable storage. As with
// the event buffer, a failed write is logged and swallowed.
func (s *Syncer) persist(snapshot []PendingItem) {
	if err := s.store.Put(context.Background(), localstore.KeyPendingSync, snapshot); err != nil {
		s.log.Warn("failed to persist pending queue", zap.Error(err))
	}
}
