package cache

import (
	"testing"
	"time"
)

// testClock is a manually advanced time source.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1000, 0)}
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestStoreAndGet(t *testing.T) {
	clk := newTestClock()
	c := New[string](4, 5*time.Second, WithClock(clk.Now))

	c.Store("k", "value")
	got, ok := c.Get("k")
	if !ok || got != "value" {
		t.Fatalf("Get = (%q, %v), want (value, true)", got, ok)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 0 {
		t.Errorf("stats = %+v, want 1 hit", stats)
	}
}

func TestGetMissingIsMiss(t *testing.T) {
	c := New[int](4, time.Minute)
	if _, ok := c.Get("absent"); ok {
		t.Fatal("Get on absent key returned ok")
	}
	if stats := c.Stats(); stats.Misses != 1 {
		t.Errorf("misses = %d, want 1", stats.Misses)
	}
}

func TestExpiredReadIsMissAndPurges(t *testing.T) {
	clk := newTestClock()
	c := New[int](4, 5*time.Second, WithClock(clk.Now))

	c.Store("k", 1)
	clk.Advance(6 * time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned ok")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after expired read, want 0", c.Len())
	}
	if stats := c.Stats(); stats.Expirations != 1 {
		t.Errorf("expirations = %d, want 1", stats.Expirations)
	}
}

func TestHitDoesNotRefreshCreation(t *testing.T) {
	clk := newTestClock()
	c := New[int](4, 5*time.Second, WithClock(clk.Now))

	c.Store("k", 1)
	clk.Advance(3 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry missing before TTL")
	}
	// Entries age from creation: the hit above must not extend the
	// lifetime past the original deadline.
	clk.Advance(3 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("hit refreshed entry lifetime")
	}
}

func TestEvictsLowestScored(t *testing.T) {
	clk := newTestClock()
	c := New[int](2, time.Minute, WithClock(clk.Now))

	c.Store("popular", 1)
	c.Store("idle", 2)
	for i := 0; i < 3; i++ {
		if _, ok := c.Get("popular"); !ok {
			t.Fatal("popular missing")
		}
	}
	clk.Advance(time.Second)

	// Same age, different hit counts: score = hitCount - 10*age, so
	// "idle" holds the lowest score and must be the one evicted.
	c.Store("new", 3)

	if _, ok := c.Get("idle"); ok {
		t.Error("idle survived eviction")
	}
	if _, ok := c.Get("popular"); !ok {
		t.Error("popular was evicted")
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("new entry missing")
	}
	if stats := c.Stats(); stats.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", stats.Evictions)
	}
}

func TestEvictionPrefersExpired(t *testing.T) {
	clk := newTestClock()
	c := New[int](2, 5*time.Second, WithClock(clk.Now))

	c.Store("old", 1)
	clk.Advance(6 * time.Second)
	c.Store("fresh", 2)
	// "old" is expired; capacity pressure removes it first and "fresh"
	// survives untouched.
	c.Store("extra", 3)

	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry evicted while an expired one existed")
	}
	if _, ok := c.Get("extra"); !ok {
		t.Error("extra entry missing")
	}
}

func TestStoreReplaces(t *testing.T) {
	clk := newTestClock()
	c := New[int](2, 5*time.Second, WithClock(clk.Now))

	c.Store("k", 1)
	clk.Advance(4 * time.Second)
	c.Store("k", 2)
	clk.Advance(4 * time.Second)

	// The second store reset the creation time, so the entry is still
	// live and carries the new value.
	got, ok := c.Get("k")
	if !ok || got != 2 {
		t.Errorf("Get = (%d, %v), want (2, true)", got, ok)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New[int](4, time.Minute)
	c.Store("a", 1)
	c.Store("b", 2)

	if !c.Delete("a") {
		t.Error("Delete(a) = false")
	}
	if c.Delete("a") {
		t.Error("second Delete(a) = true")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func BenchmarkGetHit(b *testing.B) {
	c := New[int](DefaultCapacity, time.Minute)
	c.Store("k", 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("k")
	}
}

func TestDefaults(t *testing.T) {
	c := New[int](0, 0)
	if c.Capacity() != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", c.Capacity(), DefaultCapacity)
	}
	if c.TTL() != DefaultTTL {
		t.Errorf("TTL = %v, want %v", c.TTL(), DefaultTTL)
	}
}
