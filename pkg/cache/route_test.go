package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRouteCacheRoundTripAndReverse(t *testing.T) {
	ctx := context.Background()
	rc := NewRouteCache(nil)
	defer rc.Close()

	nodes := []string{"E1", "N1", "N2", "N3", "E2"}
	rc.Set(ctx, "L1", "lobby", "cafe", nodes)

	got, ok := rc.Get(ctx, "L1", "lobby", "cafe")
	require.True(t, ok)
	assert.Equal(t, nodes, got)

	rev, ok := rc.Get(ctx, "L1", "cafe", "lobby")
	require.True(t, ok)
	assert.Equal(t, []string{"E2", "N3", "N2", "N1", "E1"}, rev)

	// Returned slices are copies.
	got[0] = "mutated"
	again, _ := rc.Get(ctx, "L1", "lobby", "cafe")
	assert.Equal(t, "E1", again[0])

	_, ok = rc.Get(ctx, "L2", "lobby", "cafe")
	assert.False(t, ok, "floor is part of the key")
}

func TestRouteCacheTTL(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	rc := NewRouteCache(nil, WithClock(clk.Now))
	defer rc.Close()

	rc.Set(ctx, "L1", "a", "b", []string{"a", "b"})

	clk.Advance(DefaultTTL)
	_, ok := rc.Get(ctx, "L1", "a", "b")
	assert.True(t, ok, "entry at exactly the TTL is still fresh")

	clk.Advance(time.Millisecond)
	_, ok = rc.Get(ctx, "L1", "a", "b")
	assert.False(t, ok)
	_, ok = rc.Get(ctx, "L1", "b", "a")
	assert.False(t, ok)
	assert.Zero(t, rc.Len(), "expired entries are removed on lookup")
}

func TestRouteCacheEvictsOldest(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	rc := NewRouteCache(nil, WithClock(clk.Now))
	defer rc.Close()

	for i := 0; i < DefaultMaxEntries+5; i++ {
		rc.Set(ctx, "L1", fmt.Sprintf("p%d", i), "x", []string{"n"})
		clk.Advance(time.Millisecond)
	}
	assert.Equal(t, DefaultMaxEntries, rc.Len())

	for i := 0; i < 5; i++ {
		_, ok := rc.Get(ctx, "L1", fmt.Sprintf("p%d", i), "x")
		assert.False(t, ok, "p%d should have been evicted", i)
	}
	_, ok := rc.Get(ctx, "L1", fmt.Sprintf("p%d", DefaultMaxEntries+4), "x")
	assert.True(t, ok)
}

func TestRouteCacheLastWriterWins(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	rc := NewRouteCache(nil, WithClock(clk.Now))
	defer rc.Close()

	rc.Set(ctx, "L1", "a", "b", []string{"new"})
	newer := clk.Now()

	rc.mu.Lock()
	rc.put(routeKey{"L1", "a", "b"}, []string{"old"}, newer.Add(-time.Second))
	rc.mu.Unlock()

	got, ok := rc.Get(ctx, "L1", "a", "b")
	require.True(t, ok)
	assert.Equal(t, []string{"new"}, got)
}

func TestRouteCachePersistedTier(t *testing.T) {
	ctx := context.Background()
	store, err := NewBadgerCache("")
	require.NoError(t, err)

	clk := newClock()
	rc := NewRouteCache(store, WithClock(clk.Now))
	defer rc.Close()

	nodes := []string{"E-a b", "N1", "E/c"}
	rc.Set(ctx, "L3", "a b", "c/d", nodes)
	require.NoError(t, rc.Flush(ctx))

	// Forward and precomputed reverse entries are both persisted.
	raw, ok, err := store.Get(ctx, "route-cache-L3-a+b-c%2Fd")
	require.NoError(t, err)
	require.True(t, ok)
	var entry RouteEntry
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, nodes, entry.Nodes)
	assert.Equal(t, clk.Now().UnixMilli(), entry.Timestamp)

	raw, ok, _ = store.Get(ctx, "route-cache-L3-c%2Fd-a+b")
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(raw, &entry))
	want := slices.Clone(nodes)
	slices.Reverse(want)
	assert.Equal(t, want, entry.Nodes)

	// A cold memory tier is refilled from the persisted tier.
	rc.Reset()
	got, ok := rc.Get(ctx, "L3", "c/d", "a b")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, rc.Len(), "persisted hit is promoted")

	// Aged beyond the TTL, persisted entries are misses.
	rc.Reset()
	clk.Advance(DefaultTTL + time.Second)
	_, ok = rc.Get(ctx, "L3", "a b", "c/d")
	assert.False(t, ok)
}

func TestRouteCacheCollidingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewBadgerCache("")
	require.NoError(t, err)
	rc := NewRouteCache(store)
	defer rc.Close()

	// Both pairs flatten to route-cache-L1-room-1-lobby.
	require.Equal(t, rc.Key("L1", "room-1", "lobby"), rc.Key("L1", "room", "1-lobby"))

	rc.Set(ctx, "L1", "room-1", "lobby", []string{"E-room1", "N1", "E-lobby"})
	require.NoError(t, rc.Flush(ctx))

	_, ok := rc.Get(ctx, "L1", "room", "1-lobby")
	assert.False(t, ok, "memory and persisted tiers must not hand out another pair's route")

	rc.Set(ctx, "L1", "room", "1-lobby", []string{"E-room", "N2", "E-1lobby"})
	require.NoError(t, rc.Flush(ctx))

	got, ok := rc.Get(ctx, "L1", "room-1", "lobby")
	require.True(t, ok)
	assert.Equal(t, []string{"E-room1", "N1", "E-lobby"}, got)

	// The shared persisted slot now holds the second pair.
	rc.Reset()
	_, ok = rc.Get(ctx, "L1", "room-1", "lobby")
	assert.False(t, ok)
	got, ok = rc.Get(ctx, "L1", "room", "1-lobby")
	require.True(t, ok)
	assert.Equal(t, []string{"E-room", "N2", "E-1lobby"}, got)
}

func TestRouteCacheAcceptsEntriesWithoutPair(t *testing.T) {
	ctx := context.Background()
	store, err := NewBadgerCache("")
	require.NoError(t, err)
	rc := NewRouteCache(store)
	defer rc.Close()

	raw, err := json.Marshal(map[string]any{"nodes": []string{"a", "b"}, "timestamp": time.Now().UnixMilli()})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, rc.Key("L1", "a", "b"), raw, 0))

	got, ok := rc.Get(ctx, "L1", "a", "b")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRouteCacheFileBackendAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewFileCache(dir)
	require.NoError(t, err)
	first := NewRouteCache(store)
	first.Set(ctx, "L1", "a", "b", []string{"a", "m", "b"})
	require.NoError(t, first.Close(), "close drains pending writes")

	store, err = NewFileCache(dir)
	require.NoError(t, err)
	second := NewRouteCache(store)
	defer second.Close()

	got, ok := second.Get(ctx, "L1", "b", "a")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "m", "a"}, got)
}

func TestRouteCacheMalformedPersistedEntry(t *testing.T) {
	ctx := context.Background()
	store, err := NewBadgerCache("")
	require.NoError(t, err)
	rc := NewRouteCache(store)
	defer rc.Close()

	require.NoError(t, store.Set(ctx, rc.Key("L1", "a", "b"), []byte("{not json"), 0))
	_, ok := rc.Get(ctx, "L1", "a", "b")
	assert.False(t, ok)
}

func TestRouteCacheConcurrentUse(t *testing.T) {
	ctx := context.Background()
	rc := NewRouteCache(nil)
	defer rc.Close()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				from := fmt.Sprintf("p%d", i%10)
				rc.Set(ctx, "L1", from, "x", []string{from, "x"})
				rc.Get(ctx, "L1", "x", from)
			}
		}(w)
	}
	wg.Wait()
	assert.LessOrEqual(t, rc.Len(), DefaultMaxEntries)
	require.NoError(t, rc.Flush(ctx))
}

func TestRouteCacheFlushAfterClose(t *testing.T) {
	rc := NewRouteCache(nil)
	require.NoError(t, rc.Close())
	require.NoError(t, rc.Close(), "close is idempotent")

	err := rc.Flush(context.Background())
	if err != nil {
		assert.ErrorIs(t, err, ErrClosed)
	}
}
