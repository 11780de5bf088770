package cache

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"gastos/internal/log"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache[T any](size int, ttl time.Duration, opts ...Option[T]) (*LRUCache[T], *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[T](size, ttl, opts...)
	c.now = clock.Now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache[int](2, time.Minute)
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss")
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c, _ := newTestCache[int](2, time.Minute, WithEvictCallback(func(k string, _ int) {
		evicted = append(evicted, k)
	}))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("unexpected evictions %v", evicted)
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache[int](10, time.Minute)
	c.Set("a", 1)
	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected expired entry")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed on read")
	}
}

func TestLRUCache_SlidingExpiration(t *testing.T) {
	c, clock := newTestCache[int](10, time.Minute, WithSlidingExpiration[int]())
	c.Set("a", 1)
	for i := 0; i < 5; i++ {
		clock.Advance(40 * time.Second)
		if _, ok := c.Get("a"); !ok {
			t.Fatalf("read %d should keep entry alive", i)
		}
	}
	clock.Advance(61 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should expire after idle ttl")
	}
}

func TestLRUCache_Touch(t *testing.T) {
	c, clock := newTestCache[int](10, time.Minute)
	c.Set("a", 1)
	clock.Advance(50 * time.Second)
	if !c.Touch("a") {
		t.Fatalf("Touch should find a")
	}
	clock.Advance(50 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("touched entry should still be alive")
	}
	if c.Touch("missing") {
		t.Fatalf("Touch should miss")
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	var evicted int
	c, clock := newTestCache[int](10, time.Minute, WithEvictCallback(func(string, int) { evicted++ }))
	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(30 * time.Second)
	c.Set("c", 3)
	clock.Advance(45 * time.Second)

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if c.Size() != 1 || evicted != 2 {
		t.Fatalf("size=%d evicted=%d", c.Size(), evicted)
	}
}

func TestManager_CleanAll(t *testing.T) {
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	m := NewManager(logger)

	c, clock := newTestCache[int](10, time.Minute)
	c.Set("a", 1)
	m.Register("test", c)

	clock.Advance(2 * time.Minute)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
