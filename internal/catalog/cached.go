// Package catalog holds the category catalog sources and the refresh cache
// that sits in front of the remote ones.
package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/ports"
)

var _ ports.CategoryReader = (*Cached)(nil)

// Cached keeps the last catalog read from source for ttl. Concurrent
// refreshes collapse into a single source call. When a refresh fails the
// previous catalog keeps being served.
type Cached struct {
	source ports.CategoryReader
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	catalog   core.Catalog
	loaded    bool
	expiresAt time.Time
}

func NewCached(source ports.CategoryReader, ttl time.Duration, logger *log.Logger) *Cached {
	return &Cached{
		source: source,
		ttl:    ttl,
		logger: logger.WithComponent(log.ComponentCatalog),
		now:    time.Now,
	}
}

// Categories implements ports.CategoryReader.
func (c *Cached) Categories(ctx context.Context) (core.Catalog, error) {
	c.mu.RLock()
	if c.loaded && c.now().Before(c.expiresAt) {
		cat := c.catalog
		c.mu.RUnlock()
		return cat, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("categories", func() (interface{}, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return core.Catalog{}, err
	}
	return v.(core.Catalog), nil
}

func (c *Cached) refresh(ctx context.Context) (core.Catalog, error) {
	cat, err := c.source.Categories(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.loaded {
			c.logger.WarnContext(ctx, "Catalog refresh failed, serving previous catalog", log.FieldError, err.Error())
			c.expiresAt = c.now().Add(c.ttl)
			return c.catalog, nil
		}
		return core.Catalog{}, err
	}
	c.catalog = cat
	c.loaded = true
	c.expiresAt = c.now().Add(c.ttl)
	c.logger.DebugContext(ctx, "Catalog refreshed", "count", cat.Len())
	return cat, nil
}

// Invalidate forces the next call to read from source.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}
