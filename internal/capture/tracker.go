package capture

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

// RuntimeContext describes the capabilities of the hosting context,
// selected once at startup.
type RuntimeContext string

const (
	// ContextHostExtension has host-platform signals (tab activation,
	// window focus) wired in addition to producer messages.
	ContextHostExtension RuntimeContext = "host-extension-context"
	// ContextPlainPage only receives producer messages.
	ContextPlainPage RuntimeContext = "plain-page-context"
)

// ErrSignalsUnavailable is returned when a host-platform signal is fed
// to a tracker running in a plain-page context.
var ErrSignalsUnavailable = errors.New("capture: host signals unavailable in this context")

// Forwarder hands a captured event to the delivery layer. The call must
// return promptly; delivery runs in the background.
type Forwarder interface {
	Forward(e events.Event)
}

// Tracker normalizes heterogeneous signals into events and maintains the
// bounded local buffer. One tracker owns the buffer exclusively; other
// components read it only through the durable store.
type Tracker struct {
	mu        sync.Mutex
	userID    string
	runtime   RuntimeContext
	buffer    *events.Buffer
	store     localstore.Store
	forwarder Forwarder
	clock     func() time.Time
	log       *logger.Logger
}

// NewTracker constructs the capture service. A nil clock defaults to
// time.Now; a nil forwarder disables delivery (capture-only mode).
func NewTracker(userID string, runtime RuntimeContext, store localstore.Store, forwarder Forwarder, clock func() time.Time, log *logger.Logger) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		userID:    userID,
		runtime:   runtime,
		buffer:    events.NewBuffer(),
		store:     store,
		forwarder: forwarder,
		clock:     clock,
		log:       log,
	}
}

// Restore reloads the persisted buffer so capture survives restarts.
func (t *Tracker) Restore(ctx context.Context) error {
	var stored []events.Event
	err := t.store.Get(ctx, localstore.KeyEventBuffer, &stored)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.buffer.Replace(stored)
	count := t.buffer.Len()
	t.mu.Unlock()

	t.log.Info("restored event buffer", zap.Int("events", count))
	return nil
}

// RecordEvent assigns identity and processing time to a partial event,
// appends it to the bounded buffer, persists the buffer write-through,
// and initiates forwarding without awaiting it. The caller is never
// blocked past the local-buffer mutation, and a failed persistence
// write is logged rather than raised.
func (t *Tracker) RecordEvent(input events.EventInput) events.Event {
	now := t.clock()
	nowMs := now.UnixMilli()

	captured := input.Timestamp
	if captured == 0 || captured > nowMs {
		captured = nowMs
	}

	event := events.Event{
		ID:          events.NewEventID(now),
		Type:        input.Type,
		Domain:      input.Domain,
		URL:         input.URL,
		Timestamp:   captured,
		ProcessedAt: nowMs,
		Extra:       input.Extra,
	}

	t.mu.Lock()
	t.buffer.Append(event)
	snapshot := t.buffer.Snapshot()
	t.mu.Unlock()

	// The in-memory buffer stays authoritative for this process even
	// when the durable write fails; capture must not crash on quota or
	// permission errors.
	if err := t.store.Put(context.Background(), localstore.KeyEventBuffer, snapshot); err != nil {
		t.log.Warn("failed to persist event buffer",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
	}

	if t.forwarder != nil {
		t.forwarder.Forward(event)
	}

	return event
}

// OnTabActivated handles the host-platform tab activation signal.
func (t *Tracker) OnTabActivated(tabID, domain, url string) (events.Event, error) {
	if t.runtime != ContextHostExtension {
		return events.Event{}, ErrSignalsUnavailable
	}

	return t.RecordEvent(events.EventInput{
		Type:   events.TypeTabSwitch,
		Domain: domain,
		URL:    url,
		Extra:  map[string]interface{}{"tab_id": tabID},
	}), nil
}

// OnWindowFocusChanged handles the host-platform window focus signal.
func (t *Tracker) OnWindowFocusChanged(windowID string, focused bool) (events.Event, error) {
	if t.runtime != ContextHostExtension {
		return events.Event{}, ErrSignalsUnavailable
	}

	return t.RecordEvent(events.EventInput{
		Type: events.TypeWindowFocusChange,
		Extra: map[string]interface{}{
			"window_id": windowID,
			"focused":   focused,
		},
	}), nil
}

// BufferLen returns the current number of buffered events.
func (t *Tracker) BufferLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buffer.Len()
}

// BufferedEvents returns a snapshot of the buffer in capture order.
func (t *Tracker) BufferedEvents() []events.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buffer.Snapshot()
}
