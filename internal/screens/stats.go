package screens

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

const statsKey = "stats"

// statsCache holds the stats banner of a screen. Concurrent refreshes share
// one request; a refresh after a mutation always starts a new one.
type statsCache[S any] struct {
	load   func(ctx context.Context) (S, error)
	onLoad func(S)
	logger *slog.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	value  S
	loaded bool
	issued uint64
	stored uint64
}

func (c *statsCache[S]) Get() (S, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.loaded
}

func (c *statsCache[S]) Refresh(ctx context.Context) (S, error) {
	v, err, _ := c.group.Do(statsKey, func() (any, error) {
		c.mu.Lock()
		c.issued++
		seq := c.issued
		c.mu.Unlock()

		s, err := c.load(ctx)
		if err != nil {
			return s, err
		}
		c.mu.Lock()
		if seq < c.stored {
			current := c.value
			c.mu.Unlock()
			return current, nil
		}
		c.value, c.loaded, c.stored = s, true, seq
		c.mu.Unlock()
		if c.onLoad != nil {
			c.onLoad(s)
		}
		return s, nil
	})
	if err != nil {
		var zero S
		return zero, err
	}
	return v.(S), nil
}

// Invalidate drops any in-flight request and loads fresh stats.
func (c *statsCache[S]) Invalidate(ctx context.Context) {
	c.group.Forget(statsKey)
	if _, err := c.Refresh(ctx); err != nil {
		c.logger.WarnContext(ctx, "stats refresh failed", "error", err)
	}
}
