package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Entry is a single cached value together with the bookkeeping the
// expiry machinery needs: an immutable key, a mutable value, and the
// time the entry was last touched.
//
// The timestamp is stored as UnixNano in an atomic so refreshes from
// readers never race with the sweep goroutine inspecting entry ages.
type Entry[K comparable, V any] struct {
	key K

	mu    sync.Mutex
	value V

	touched atomic.Int64
}

// newEntry creates an entry with a fresh timestamp
func newEntry[K comparable, V any](key K, value V) *Entry[K, V] {
	e := &Entry[K, V]{key: key, value: value}
	e.touch()
	return e
}

// Key returns the entry's key
func (e *Entry[K, V]) Key() K {
	return e.key
}

// Value returns the entry's current value
func (e *Entry[K, V]) Value() V {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// SetValue replaces the entry's value and returns the previous one
// It does not refresh the entry's timestamp
func (e *Entry[K, V]) SetValue(value V) V {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.value
	e.value = value
	return prev
}

// LastTouched returns the time the entry was last written or, for a
// refresh-on-read cache, last read
func (e *Entry[K, V]) LastTouched() time.Time {
	return time.Unix(0, e.touched.Load())
}

// Age returns how long ago the entry was last touched
func (e *Entry[K, V]) Age() time.Duration {
	return time.Since(e.LastTouched())
}

// touch resets the entry's timestamp to now
func (e *Entry[K, V]) touch() {
	e.touched.Store(time.Now().UnixNano())
}
