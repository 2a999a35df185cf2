package cache

import (
	"context"
	"fmt"
)

// LoaderFunc produces the value for a key on a cache miss.
// The context should be respected for cancellation and timeout.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// GetOrLoad returns the cached value for key, invoking load on a miss
// and caching the result. Concurrent misses for the same key are
// deduplicated: one caller runs the loader while the rest wait for and
// share its result. Loader failures are returned wrapped and nothing is
// cached, so a later call retries.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load LoaderFunc[K, V]) (V, error) {
	var zero V
	if load == nil {
		return zero, ErrNilLoader
	}
	if isNilKey(key) {
		return zero, nil
	}

	if v, ok := c.Get(key); ok {
		return v, nil
	}

	// singleflight keys on strings, so the key is rendered with %v.
	// Distinct keys with identical renderings share a flight, which is
	// harmless for correctness but worth knowing for exotic key types.
	res, err, _ := c.loads.Do(fmt.Sprintf("%v", key), func() (any, error) {
		// Another flight may have populated the key while this caller
		// was queueing up.
		if v, ok := c.Get(key); ok {
			return v, nil
		}

		v, err := load(ctx, key)
		if err != nil {
			return nil, err
		}

		c.stats.loads.Add(1)
		c.Put(key, v)
		return v, nil
	})
	if err != nil {
		return zero, ErrLoad(err)
	}
	return res.(V), nil
}
