package events

// BufferCapacity bounds the local event buffer. Insertions past the cap
// evict from the front, oldest first.
const BufferCapacity = 1000

// Buffer is an ordered, capacity-bounded sequence of events, oldest first.
// It is not safe for concurrent use; the owning service serializes access.
type Buffer struct {
	events   []Event
	capacity int
}

// NewBuffer creates a buffer with the standard capacity.
func NewBuffer() *Buffer {
	return NewBufferWithCapacity(BufferCapacity)
}

// NewBufferWithCapacity creates a buffer with a custom capacity.
func NewBufferWithCapacity(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = BufferCapacity
	}
	return &Buffer{capacity: capacity}
}

// Append inserts an event at the tail and FIFO-truncates to capacity.
func (b *Buffer) Append(e Event) {
	b.events = append(b.events, e)
	if excess := len(b.events) - b.capacity; excess > 0 {
		b.events = append([]Event(nil), b.events[excess:]...)
	}
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Snapshot returns a copy of the buffered events in capture order.
func (b *Buffer) Snapshot() []Event {
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Replace swaps in a previously persisted event sequence, truncating to
// capacity from the front if the stored copy exceeds it.
func (b *Buffer) Replace(evts []Event) {
	if excess := len(evts) - b.capacity; excess > 0 {
		evts = evts[excess:]
	}
	b.events = append([]Event(nil), evts...)
}
