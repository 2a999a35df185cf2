package cache

import (
	"context"

	"github.com/smallnest/chanx"
)

// Reason describes why an entry left the cache
type Reason string

const (
	// ReasonExpired means the entry aged out, via a lazy read check or a sweep
	ReasonExpired Reason = "expired"
	// ReasonRemoved means the entry was removed explicitly
	ReasonRemoved Reason = "removed"
	// ReasonCleared means the entry left as part of a Clear
	ReasonCleared Reason = "cleared"
	// ReasonReplaced means the entry's value was overwritten by a Put
	ReasonReplaced Reason = "replaced"
)

// Event records an entry leaving the cache (or being replaced), together
// with the value it held at that moment.
type Event[K comparable, V any] struct {
	Key    K
	Value  V
	Reason Reason
}

// newEventChan creates the unbounded channel backing the event stream.
// Unbounded so eviction paths never block behind a slow listener.
func newEventChan[K comparable, V any](initCapacity int) *chanx.UnboundedChan[Event[K, V]] {
	return chanx.NewUnboundedChan[Event[K, V]](context.Background(), initCapacity)
}

// Events returns the eviction event stream, or nil when the cache was
// not configured with EmitEvents. The caller must keep draining the
// channel; events accumulate without bound otherwise.
func (c *Cache[K, V]) Events() <-chan Event[K, V] {
	if c.events == nil {
		return nil
	}
	return c.events.Out
}

// emit publishes an event if the stream is enabled
func (c *Cache[K, V]) emit(ev Event[K, V]) {
	if c.events == nil {
		return
	}
	c.events.In <- ev
}
