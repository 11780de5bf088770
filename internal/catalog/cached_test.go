package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gastos/internal/core"
	"gastos/internal/log"
)

type fakeSource struct {
	calls atomic.Int32
	delay time.Duration
	err   error
	cat   core.Catalog
}

func (f *fakeSource) Categories(context.Context) (core.Catalog, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return core.Catalog{}, f.err
	}
	return f.cat, nil
}

func TestCached_ServesWithinTTL(t *testing.T) {
	src := &fakeSource{cat: core.DefaultCatalog()}
	c := NewCached(src, time.Minute, log.Discard())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		cat, err := c.Categories(context.Background())
		if err != nil || cat.Len() != core.DefaultCatalog().Len() {
			t.Fatalf("Categories() = %d, %v", cat.Len(), err)
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Fatalf("expected 1 source call, got %d", got)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Categories(context.Background()); err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("expected refresh after ttl, got %d calls", got)
	}

	c.Invalidate()
	_, _ = c.Categories(context.Background())
	if got := src.calls.Load(); got != 3 {
		t.Fatalf("expected refresh after Invalidate, got %d calls", got)
	}
}

func TestCached_ConcurrentCallsCollapse(t *testing.T) {
	src := &fakeSource{cat: core.DefaultCatalog(), delay: 50 * time.Millisecond}
	c := NewCached(src, time.Minute, log.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Categories(context.Background()); err != nil {
				t.Errorf("Categories() error = %v", err)
			}
		}()
	}
	wg.Wait()
	if got := src.calls.Load(); got != 1 {
		t.Fatalf("expected a single source call, got %d", got)
	}
}

func TestCached_ErrorHandling(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{err: boom}
	c := NewCached(src, time.Minute, log.Discard())
	now := time.Now()
	c.now = func() time.Time { return now }

	if _, err := c.Categories(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error on cold cache, got %v", err)
	}

	src.err = nil
	src.cat = core.DefaultCatalog()
	if _, err := c.Categories(context.Background()); err != nil {
		t.Fatalf("Categories() error = %v", err)
	}

	src.err = boom
	now = now.Add(time.Hour)
	cat, err := c.Categories(context.Background())
	if err != nil || cat.Len() != core.DefaultCatalog().Len() {
		t.Fatalf("stale catalog should be served, got %d, %v", cat.Len(), err)
	}
}
