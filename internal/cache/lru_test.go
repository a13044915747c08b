package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should be cached")
	}
	c.Set("c", 3) // evicts b, a was touched last

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Fatalf("overwrite: a = %d", v)
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should be deleted")
	}
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("purge left %d entries", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute).WithClock(func() time.Time { return now })

	c.Set("x", "old")
	now = now.Add(30 * time.Second)
	c.Set("y", "new")

	if v, ok := c.Get("x"); !ok || v != "old" {
		t.Fatalf("x should still be fresh")
	}

	now = now.Add(45 * time.Second)
	if _, ok := c.Get("x"); ok {
		t.Fatalf("x should have expired")
	}

	now = now.Add(time.Minute)
	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("cleaned %d entries, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size after clean = %d", c.Size())
	}
}

func TestManagerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	m := NewManager(nil)
	m.Register(NewLRUCache[int](1, time.Millisecond))
	go func() { done <- m.Run(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("manager did not stop")
	}
}
