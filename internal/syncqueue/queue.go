package syncqueue

import (
	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
)

// QueueCapacity bounds the pending-sync queue. Under a sustained outage
// the oldest pending events are dropped; that loss is bounded and
// accepted.
const QueueCapacity = 500

// PendingItem is one event awaiting delivery to the collector.
type PendingItem struct {
	Data       events.Event `json:"data"`
	QueuedAt   int64        `json:"queued_at"`
	RetryCount int          `json:"retry_count"`
}

// Queue is a FIFO-bounded sequence of pending items, oldest first. It is
// not safe for concurrent use; the owning syncer serializes access.
type Queue struct {
	items    []PendingItem
	capacity int
}

// NewQueue creates a queue with the standard capacity.
func NewQueue() *Queue {
	return NewQueueWithCapacity(QueueCapacity)
}

// NewQueueWithCapacity creates a queue with a custom capacity.
func NewQueueWithCapacity(capacity int) *Queue {
	if capacity <= 0 {
		capacity = QueueCapacity
	}
	return &Queue{capacity: capacity}
}

// Enqueue appends an item at the tail and FIFO-truncates to capacity.
func (q *Queue) Enqueue(item PendingItem) {
	q.items = append(q.items, item)
	if excess := len(q.items) - q.capacity; excess > 0 {
		q.items = append([]PendingItem(nil), q.items[excess:]...)
	}
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	return len(q.items)
}

// Snapshot returns a copy of the pending items in insertion order.
func (q *Queue) Snapshot() []PendingItem {
	out := make([]PendingItem, len(q.items))
	copy(out, q.items)
	return out
}

// Replace swaps in a new item sequence, truncating to capacity from the
// front if needed.
func (q *Queue) Replace(items []PendingItem) {
	if excess := len(items) - q.capacity; excess > 0 {
		items = items[excess:]
	}
	q.items = append([]PendingItem(nil), items...)
}
