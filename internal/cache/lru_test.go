package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache[T any](size int, ttl time.Duration) (*LRUCache[T], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[T](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCacheExpiry(t *testing.T) {
	c, clock := newTestCache[string](4, time.Minute)
	c.Set("a", "1")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}
	clock.advance(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected entry to expire")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed, size=%d", c.Size())
	}
}

func TestLRUCacheNoTTL(t *testing.T) {
	c, clock := newTestCache[int](2, 0)
	c.Set("a", 1)
	clock.advance(24 * time.Hour)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entries without TTL must not expire")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Fatalf("CleanExpired removed %d entries", n)
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c, _ := newTestCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry should be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently used entry should survive")
	}
}

func TestLRUCachePurgeAndDelete(t *testing.T) {
	c, _ := newTestCache[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if c.Size() != 1 {
		t.Fatalf("size after delete = %d", c.Size())
	}
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("size after purge = %d", c.Size())
	}
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatal("cache unusable after purge")
	}
}

func TestManagerSweep(t *testing.T) {
	c, clock := newTestCache[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	clock.advance(time.Hour)

	m := NewManager(nil)
	m.Register(c)
	if n := m.Sweep(); n != 2 {
		t.Fatalf("Sweep removed %d, want 2", n)
	}
}

func TestManagerRunStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewManager(nil).Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
