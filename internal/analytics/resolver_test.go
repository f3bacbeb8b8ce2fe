package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/localstore"
	"github.com/crow2678/Digital-Twin-sub001/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key string, out interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return fmt.Errorf("%w: %s", localstore.ErrNotFound, key)
	}
	return json.Unmarshal(raw, out)
}

func (m *memStore) Put(ctx context.Context, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

type fakeRemote struct {
	stats *CanonicalStatistics
	err   error
	calls int
}

func (r *fakeRemote) FetchUserStats(ctx context.Context, userID string) (*CanonicalStatistics, error) {
	r.calls++
	return r.stats, r.err
}

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func bufferEvents(store *memStore, evts ...events.Event) {
	_ = store.Put(context.Background(), localstore.KeyEventBuffer, evts)
}

func TestResolveLocalBufferWins(t *testing.T) {
	store := newMemStore()
	bufferEvents(store, events.Event{ID: "1", Type: events.TypeTabSwitch, Timestamp: time.Now().UnixMilli()})
	remote := &fakeRemote{stats: &CanonicalStatistics{TotalEvents: 42}}

	r := NewResolver("user-1", store, remote, nil, testLogger())

	stats, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceExtensionStorage, stats.DataSource)
	assert.Equal(t, 1, stats.TotalEvents)
	assert.Equal(t, 0, remote.calls, "remote is not consulted when the buffer has data")
}

func TestResolveFallsBackToRemoteWhenBufferEmpty(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{stats: &CanonicalStatistics{TotalEvents: 42, EventTypes: map[string]int{}, Domains: map[string]int{}}}

	r := NewResolver("user-1", store, remote, nil, testLogger())

	stats, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceRemoteAPI, stats.DataSource)
	assert.Equal(t, 42, stats.TotalEvents)
	assert.Equal(t, "user-1", stats.UserID, "missing user id is backfilled")
}

func TestResolveFallsBackToCacheWhenRemoteFails(t *testing.T) {
	store := newMemStore()
	cached := &CanonicalStatistics{UserID: "user-1", TotalEvents: 7, DataSource: SourceRemoteAPI}
	require.NoError(t, store.Put(context.Background(), localstore.KeyCachedStats, cached))

	remote := &fakeRemote{err: errors.New("collector unreachable")}
	r := NewResolver("user-1", store, remote, nil, testLogger())

	stats, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceLocalCache, stats.DataSource, "cached stats are restamped with the cache source")
	assert.Equal(t, 7, stats.TotalEvents)
}

func TestResolveExhaustionReturnsErrNoData(t *testing.T) {
	r := NewResolver("user-1", newMemStore(), &fakeRemote{err: errors.New("down")}, nil, testLogger())

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestResolveNilRemoteSkipsRemoteSource(t *testing.T) {
	r := NewResolver("user-1", newMemStore(), nil, nil, testLogger())

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestResolveZeroTotalSourcesAreSkipped(t *testing.T) {
	store := newMemStore()
	bufferEvents(store) // present but empty
	remote := &fakeRemote{stats: &CanonicalStatistics{TotalEvents: 0}}
	require.NoError(t, store.Put(context.Background(), localstore.KeyCachedStats, &CanonicalStatistics{TotalEvents: 0}))

	r := NewResolver("user-1", store, remote, nil, testLogger())

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestResolveCachesWinningStatistics(t *testing.T) {
	store := newMemStore()
	bufferEvents(store, events.Event{ID: "1", Type: events.TypeTabSwitch, Timestamp: time.Now().UnixMilli()})

	r := NewResolver("user-1", store, nil, nil, testLogger())

	_, err := r.Resolve(context.Background())
	require.NoError(t, err)

	var cached CanonicalStatistics
	require.NoError(t, store.Get(context.Background(), localstore.KeyCachedStats, &cached))
	assert.Equal(t, 1, cached.TotalEvents)
}

func TestResolveCacheReadDoesNotRewriteCache(t *testing.T) {
	store := newMemStore()
	cached := &CanonicalStatistics{UserID: "user-1", TotalEvents: 7, DataSource: SourceRemoteAPI}
	require.NoError(t, store.Put(context.Background(), localstore.KeyCachedStats, cached))

	r := NewResolver("user-1", store, nil, nil, testLogger())

	_, err := r.Resolve(context.Background())
	require.NoError(t, err)

	// The stored copy keeps its original data source; the restamp is
	// response-only.
	var stored CanonicalStatistics
	require.NoError(t, store.Get(context.Background(), localstore.KeyCachedStats, &stored))
	assert.Equal(t, SourceRemoteAPI, stored.DataSource)
}

func TestResolveIsIdempotentWithFixedClock(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	store := newMemStore()
	bufferEvents(store,
		events.Event{ID: "1", Type: events.TypeTabSwitch, Domain: "example.com", Timestamp: now.Add(-time.Minute).UnixMilli()},
		events.Event{ID: "2", Type: events.TypeFocusSession, Domain: "docs.google.com", Timestamp: now.Add(-2 * time.Minute).UnixMilli()},
	)

	r := NewResolver("user-1", store, nil, func() time.Time { return now }, testLogger())

	first, err := r.Resolve(context.Background())
	require.NoError(t, err)
	second, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
