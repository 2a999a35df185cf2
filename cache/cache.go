// Package cache provides an in-process, time-expiring key-value store.
//
// The cache package follows go-kit conventions:
// - Uses logger.Logger interface for unified logging
// - Uses routine package for safe goroutine execution
// - Configuration with validation and defaults
// - Structured error handling
//
// A Cache works much like a map, except that entries age out after a
// configurable period of inactivity. Expiry happens two ways: lazily,
// where every read first evicts its own key if it has gone stale, and
// actively, where a shared Manager sweeps each non-empty cache on its
// configured interval. One manager goroutine serves every cache in the
// process; caches register with it when they gain their first entry and
// unregister when they empty out, so an idle process does no sweep work
// at all.
package cache

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dailyyoga/ttlcache/logger"
	"github.com/smallnest/chanx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache is a concurrency-safe key-value store whose entries expire
// after Timeout of inactivity. All methods may be called from any
// goroutine, concurrently with the manager sweeping the cache.
type Cache[K comparable, V any] struct {
	log logger.Logger
	mgr *Manager

	name          string
	sweepInterval time.Duration
	timeout       time.Duration
	refreshOnRead atomic.Bool

	mu      sync.RWMutex
	entries map[K]*Entry[K, V]

	stats  counters
	loads  singleflight.Group
	events *chanx.UnboundedChan[Event[K, V]]
}

// New creates a cache registered against the process-wide default
// manager. A nil configuration uses defaults; zero-valued fields are
// filled from DefaultConfig before validation.
func New[K comparable, V any](log logger.Logger, cfg *Config) (*Cache[K, V], error) {
	return NewWithManager[K, V](log, cfg, DefaultManager())
}

// NewWithManager creates a cache swept by the given manager instead of
// the process-wide default. Useful for embedders that want sweep
// isolation or a controllable manager in tests.
func NewWithManager[K comparable, V any](log logger.Logger, cfg *Config, mgr *Manager) (*Cache[K, V], error) {
	if mgr == nil {
		return nil, ErrNilManager
	}

	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		defaults := DefaultConfig()
		if cfg.Name == "" {
			cfg.Name = defaults.Name
		}
		if cfg.SweepInterval == 0 {
			cfg.SweepInterval = defaults.SweepInterval
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = defaults.Timeout
		}
		if cfg.EventBuffer == 0 {
			cfg.EventBuffer = defaults.EventBuffer
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Cache[K, V]{
		log:           log,
		mgr:           mgr,
		name:          cfg.Name,
		sweepInterval: cfg.SweepInterval,
		timeout:       cfg.Timeout,
		entries:       make(map[K]*Entry[K, V], cfg.InitialCapacity),
	}
	c.refreshOnRead.Store(cfg.RefreshOnRead)

	if cfg.EmitEvents {
		c.events = newEventChan[K, V](cfg.EventBuffer)
	}

	return c, nil
}

// Put caches value under key with a fresh timestamp, returning the
// previous value if one was present. A nil key (for nil-able key kinds)
// is tolerated as a no-op rather than raised as an error, preserving
// permissive map-like ergonomics.
//
// Inserting into an empty cache registers it with the manager as a side
// effect, so sweeping starts on the 0 to 1 size transition.
func (c *Cache[K, V]) Put(key K, value V) (V, bool) {
	var zero V
	if isNilKey(key) {
		return zero, false
	}

	ent := newEntry(key, value)

	c.mu.Lock()
	prev, had := c.entries[key]
	c.entries[key] = ent
	if !had && len(c.entries) == 1 {
		// Registration must happen inside the same critical section as
		// the size transition, or a racing Remove could leave a
		// non-empty cache unregistered.
		c.mgr.register(c)
	}
	c.mu.Unlock()

	if had {
		prevVal := prev.Value()
		c.emit(Event[K, V]{Key: key, Value: prevVal, Reason: ReasonReplaced})
		return prevVal, true
	}
	return zero, false
}

// Get returns the value cached under key. The key is lazily expired
// first, so a stale entry is evicted and reported as absent rather than
// returned. When RefreshOnRead is enabled a hit resets the entry's
// timestamp.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	ent, ok := c.GetEntry(key)
	if !ok {
		var zero V
		return zero, false
	}
	return ent.Value(), true
}

// GetEntry is Get for callers that want the entry itself, e.g. to
// inspect its age or swap its value in place.
func (c *Cache[K, V]) GetEntry(key K) (*Entry[K, V], bool) {
	if isNilKey(key) {
		return nil, false
	}

	c.expireKey(key)

	c.mu.RLock()
	ent, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.stats.misses.Add(1)
		return nil, false
	}

	if c.refreshOnRead.Load() {
		ent.touch()
	}
	c.stats.hits.Add(1)
	return ent, true
}

// Remove deletes the entry under key unconditionally, returning the
// removed value if one was present. Removing the last entry unregisters
// the cache from the manager.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	var zero V
	if isNilKey(key) {
		return zero, false
	}

	c.mu.Lock()
	ent, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
		if len(c.entries) == 0 {
			c.mgr.unregister(c)
		}
	}
	c.mu.Unlock()

	if !ok {
		return zero, false
	}
	val := ent.Value()
	c.emit(Event[K, V]{Key: key, Value: val, Reason: ReasonRemoved})
	return val, true
}

// Flush sweeps the whole cache, evicting every entry whose age has
// reached the timeout. The manager calls it on the sweep interval while
// the cache is non-empty; callers may also invoke it directly.
func (c *Cache[K, V]) Flush() {
	c.mu.RLock()
	keys := make([]K, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.mu.RUnlock()

	for _, key := range keys {
		c.expireKey(key)
	}
}

// Clear removes every entry and unregisters from the manager
// unconditionally.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	cleared := c.entries
	c.entries = make(map[K]*Entry[K, V])
	c.mgr.unregister(c)
	c.mu.Unlock()

	c.log.Debug("cache cleared",
		zap.String("cache", c.name),
		zap.Int("entries", len(cleared)),
	)

	for key, ent := range cleared {
		c.emit(Event[K, V]{Key: key, Value: ent.Value(), Reason: ReasonCleared})
	}
}

// Len returns the number of entries currently cached, counting entries
// that are stale but not yet swept.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ContainsKey reports whether key is present, expiring it lazily first.
func (c *Cache[K, V]) ContainsKey(key K) bool {
	if isNilKey(key) {
		return false
	}

	c.expireKey(key)

	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// ContainsValue reports whether any entry holds a value deeply equal to
// value. It is O(size); value comparison is a caller concern, not part
// of entry identity.
func (c *Cache[K, V]) ContainsValue(value V) bool {
	for _, v := range c.Values() {
		if reflect.DeepEqual(v, value) {
			return true
		}
	}
	return false
}

// Keys returns a point-in-time snapshot of the cached keys.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// Values returns a point-in-time snapshot of the cached values.
func (c *Cache[K, V]) Values() []V {
	c.mu.RLock()
	entries := make([]*Entry[K, V], 0, len(c.entries))
	for _, ent := range c.entries {
		entries = append(entries, ent)
	}
	c.mu.RUnlock()

	values := make([]V, 0, len(entries))
	for _, ent := range entries {
		values = append(values, ent.Value())
	}
	return values
}

// Items returns a point-in-time snapshot of the cache contents.
func (c *Cache[K, V]) Items() map[K]V {
	c.mu.RLock()
	entries := make(map[K]*Entry[K, V], len(c.entries))
	for key, ent := range c.entries {
		entries[key] = ent
	}
	c.mu.RUnlock()

	items := make(map[K]V, len(entries))
	for key, ent := range entries {
		items[key] = ent.Value()
	}
	return items
}

// Name returns the cache's configured name.
func (c *Cache[K, V]) Name() string {
	return c.name
}

// Timeout returns how long an entry may go untouched before expiring.
func (c *Cache[K, V]) Timeout() time.Duration {
	return c.timeout
}

// SweepInterval returns how often the manager sweeps this cache.
func (c *Cache[K, V]) SweepInterval() time.Duration {
	return c.sweepInterval
}

// RefreshOnRead reports whether reads reset entry timestamps.
func (c *Cache[K, V]) RefreshOnRead() bool {
	return c.refreshOnRead.Load()
}

// SetRefreshOnRead switches between sliding (true) and fixed (false)
// expiration at runtime.
func (c *Cache[K, V]) SetRefreshOnRead(refresh bool) {
	c.refreshOnRead.Store(refresh)
}

// expireKey evicts key if its entry has gone stale. This is the single
// expiry path shared by reads and sweeps.
func (c *Cache[K, V]) expireKey(key K) {
	c.mu.RLock()
	ent, ok := c.entries[key]
	stale := ok && ent.Age() >= c.timeout
	c.mu.RUnlock()

	if !stale {
		return
	}

	expired := false
	c.mu.Lock()
	// Re-check under the write lock: the entry may have been refreshed,
	// replaced, or removed since the read-locked peek.
	if cur, ok := c.entries[key]; ok && cur == ent && cur.Age() >= c.timeout {
		delete(c.entries, key)
		if len(c.entries) == 0 {
			c.mgr.unregister(c)
		}
		expired = true
	}
	c.mu.Unlock()

	if expired {
		c.stats.expired.Add(1)
		c.log.Debug("entry expired",
			zap.String("cache", c.name),
			zap.Any("key", key),
		)
		c.emit(Event[K, V]{Key: key, Value: ent.Value(), Reason: ReasonExpired})
	}
}

// isNilKey reports whether key is a nil pointer, channel, or interface.
// Such keys are tolerated as harmless no-ops on every operation.
func isNilKey(key any) bool {
	if key == nil {
		return true
	}
	switch v := reflect.ValueOf(key); v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}
