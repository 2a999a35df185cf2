package cache

import (
	"context"

	"github.com/dailyyoga/ttlcache/cron"
)

// FlushTask adapts a cache's Flush to a cron.Task, for deployments that
// want an extra sweep on a cron spec on top of the manager's cadence.
func FlushTask[K comparable, V any](name string, c *Cache[K, V]) cron.Task {
	return cron.TaskFunc(name, func(ctx context.Context) error {
		c.Flush()
		return nil
	})
}

// ClearTask adapts a cache's Clear to a cron.Task, e.g. for a scheduled
// nightly reset.
func ClearTask[K comparable, V any](name string, c *Cache[K, V]) cron.Task {
	return cron.TaskFunc(name, func(ctx context.Context) error {
		c.Clear()
		return nil
	})
}
