package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
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

// memStore is an in-memory localstore.Store for tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key string, out interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("store unavailable")
	}
	raw, ok := m.data[key]
	if !ok {
		return fmt.Errorf("%w: %s", localstore.ErrNotFound, key)
	}
	return json.Unmarshal(raw, out)
}

func (m *memStore) Put(ctx context.Context, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("store unavailable")
	}
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

type recordingForwarder struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *recordingForwarder) Forward(e events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *recordingForwarder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordEventAssignsIdentityAndProcessingTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	tracker := NewTracker("user-1", ContextPlainPage, newMemStore(), nil, fixedClock(now), testLogger())

	event := tracker.RecordEvent(events.EventInput{Type: events.TypeTabSwitch, Domain: "example.com"})

	assert.True(t, strings.HasPrefix(event.ID, "evt_"), "event id %q should carry the evt_ prefix", event.ID)
	assert.Equal(t, now.UnixMilli(), event.ProcessedAt)
	assert.Equal(t, now.UnixMilli(), event.Timestamp, "missing capture timestamp defaults to now")
	assert.Equal(t, 1, tracker.BufferLen())
}

func TestRecordEventClampsFutureTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	tracker := NewTracker("user-1", ContextPlainPage, newMemStore(), nil, fixedClock(now), testLogger())

	event := tracker.RecordEvent(events.EventInput{
		Type:      events.TypeTabSwitch,
		Timestamp: now.Add(time.Hour).UnixMilli(),
	})

	assert.Equal(t, now.UnixMilli(), event.Timestamp)
}

func TestRecordEventPreservesPastTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	captured := now.Add(-2 * time.Minute).UnixMilli()
	tracker := NewTracker("user-1", ContextPlainPage, newMemStore(), nil, fixedClock(now), testLogger())

	event := tracker.RecordEvent(events.EventInput{Type: events.TypeFocusSession, Timestamp: captured})

	assert.Equal(t, captured, event.Timestamp)
}

func TestRecordEventPersistsWholeBuffer(t *testing.T) {
	store := newMemStore()
	tracker := NewTracker("user-1", ContextPlainPage, store, nil, nil, testLogger())

	tracker.RecordEvent(events.EventInput{Type: events.TypeTabSwitch})
	tracker.RecordEvent(events.EventInput{Type: events.TypeFocusSession})

	var persisted []events.Event
	require.NoError(t, store.Get(context.Background(), localstore.KeyEventBuffer, &persisted))
	require.Len(t, persisted, 2)
	assert.Equal(t, events.TypeTabSwitch, persisted[0].Type)
	assert.Equal(t, events.TypeFocusSession, persisted[1].Type)
}

func TestRecordEventSurvivesStoreFailure(t *testing.T) {
	store := newMemStore()
	store.fail = true
	tracker := NewTracker("user-1", ContextPlainPage, store, nil, nil, testLogger())

	event := tracker.RecordEvent(events.EventInput{Type: events.TypeTabSwitch})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 1, tracker.BufferLen(), "buffer stays authoritative when persistence fails")
}

func TestRecordEventForwardsToDelivery(t *testing.T) {
	forwarder := &recordingForwarder{}
	tracker := NewTracker("user-1", ContextPlainPage, newMemStore(), forwarder, nil, testLogger())

	tracker.RecordEvent(events.EventInput{Type: events.TypeTabSwitch})

	assert.Equal(t, 1, forwarder.count())
}

func TestHostSignalsUnavailableInPlainPageContext(t *testing.T) {
	tracker := NewTracker("user-1", ContextPlainPage, newMemStore(), nil, nil, testLogger())

	_, err := tracker.OnTabActivated("42", "example.com", "https://example.com")
	assert.ErrorIs(t, err, ErrSignalsUnavailable)

	_, err = tracker.OnWindowFocusChanged("7", true)
	assert.ErrorIs(t, err, ErrSignalsUnavailable)

	assert.Equal(t, 0, tracker.BufferLen())
}

func TestOnTabActivatedRecordsTabSwitch(t *testing.T) {
	tracker := NewTracker("user-1", ContextHostExtension, newMemStore(), nil, nil, testLogger())

	event, err := tracker.OnTabActivated("42", "example.com", "https://example.com/page")
	require.NoError(t, err)

	assert.Equal(t, events.TypeTabSwitch, event.Type)
	assert.Equal(t, "example.com", event.Domain)
	assert.Equal(t, "42", event.Extra["tab_id"])
}

func TestOnWindowFocusChangedRecordsFocusEvent(t *testing.T) {
	tracker := NewTracker("user-1", ContextHostExtension, newMemStore(), nil, nil, testLogger())

	event, err := tracker.OnWindowFocusChanged("7", false)
	require.NoError(t, err)

	assert.Equal(t, events.TypeWindowFocusChange, event.Type)
	assert.Equal(t, false, event.Extra["focused"])
}

func TestRestoreReloadsPersistedBuffer(t *testing.T) {
	store := newMemStore()
	first := NewTracker("user-1", ContextPlainPage, store, nil, nil, testLogger())
	first.RecordEvent(events.EventInput{Type: events.TypeTabSwitch, Domain: "example.com"})
	first.RecordEvent(events.EventInput{Type: events.TypeFocusSession})

	second := NewTracker("user-1", ContextPlainPage, store, nil, nil, testLogger())
	require.NoError(t, second.Restore(context.Background()))

	restored := second.BufferedEvents()
	require.Len(t, restored, 2)
	assert.Equal(t, "example.com", restored[0].Domain)
}

func TestRestoreWithEmptyStoreIsNoop(t *testing.T) {
	tracker := NewTracker("user-1", ContextPlainPage, newMemStore(), nil, nil, testLogger())
	require.NoError(t, tracker.Restore(context.Background()))
	assert.Equal(t, 0, tracker.BufferLen())
}

func TestHandleMessageRecordsRegardlessOfSource(t *testing.T) {
	tracker := NewTracker("user-1", ContextPlainPage, newMemStore(), nil, nil, testLogger())

	tests := []struct {
		name   string
		source string
	}{
		{"declared salesforce producer", events.SourceSalesforce},
		{"declared research producer", events.SourceResearch},
		{"undeclared producer", "mystery-extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tracker.BufferLen()
			event := tracker.HandleMessage(Message{
				Source: tt.source,
				Data:   events.EventInput{Type: events.TypeResearchActivity},
			})
			assert.NotEmpty(t, event.ID)
			assert.Equal(t, before+1, tracker.BufferLen())
		})
	}
}
