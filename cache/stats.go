package cache

import "sync/atomic"

// Stats is a point-in-time snapshot of a cache's counters
type Stats struct {
	// Hits counts reads that found a live entry
	Hits uint64
	// Misses counts reads that found nothing, including entries evicted
	// by the read's own lazy expiry check
	Misses uint64
	// Expired counts entries evicted for age, by lazy checks and sweeps alike
	Expired uint64
	// Loads counts loader invocations performed by GetOrLoad
	Loads uint64
}

// counters is the internal atomic backing for Stats
type counters struct {
	hits    atomic.Uint64
	misses  atomic.Uint64
	expired atomic.Uint64
	loads   atomic.Uint64
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:    c.stats.hits.Load(),
		Misses:  c.stats.misses.Load(),
		Expired: c.stats.expired.Load(),
		Loads:   c.stats.loads.Load(),
	}
}
