package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	tests := []struct {
		floor, from, to string
		want            string
	}{
		{"L1", "lobby", "cafe", "route-cache-L1-lobby-cafe"},
		{"L2", "Main Lobby", "Café & Bar", "route-cache-L2-Main+Lobby-Caf%C3%A9+%26+Bar"},
		{"B1", "a-b", "c/d", "route-cache-B1-a-b-c%2Fd"},
	}
	for _, tt := range tests {
		if got := k.RouteKey(tt.floor, tt.from, tt.to); got != tt.want {
			t.Errorf("RouteKey(%q, %q, %q) = %q, want %q", tt.floor, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	k := NewScopedKeyer(nil, "north:")
	if got := k.RouteKey("L1", "a", "b"); got != "north:route-cache-L1-a-b" {
		t.Errorf("RouteKey = %q", got)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	// Expiry
	now := time.Now()
	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	c.now = time.Now

	// Delete and Clear
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("Clear should remove all entries")
	}
}

func TestBadgerCacheInMemory(t *testing.T) {
	ctx := context.Background()
	c, err := NewBadgerCache("")
	if err != nil {
		t.Fatalf("NewBadgerCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("empty Get = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}

	_ = c.Set(ctx, "x", []byte("1"), 0)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "x"); hit {
		t.Error("Clear should drop all keys")
	}
}

func TestRedisCacheUnreachableIsRetryable(t *testing.T) {
	c := NewRedisCache(RedisOptions{Addr: "127.0.0.1:1"})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, _, err := c.Get(ctx, "k")
	if err == nil {
		t.Fatal("expected error from unreachable redis")
	}
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("error should be a retryable network error, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		opts    BackendOptions
		wantErr bool
	}{
		{"default is file", BackendOptions{Dir: t.TempDir()}, false},
		{"none", BackendOptions{Backend: BackendNone}, false},
		{"badger without dir", BackendOptions{Backend: BackendBadger}, true},
		{"redis without addr", BackendOptions{Backend: BackendRedis}, true},
		{"unknown", BackendOptions{Backend: "memcached"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open err = %v, wantErr %v", err, tt.wantErr)
			}
			if c != nil {
				c.Close()
			}
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryBaseDelay
	retryBaseDelay = time.Millisecond
	defer func() { retryBaseDelay = old }()

	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("flaky"))
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("got err=%v calls=%d, want nil and 3", err, calls)
	}

	calls = 0
	permanent := errors.New("permanent")
	if err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return permanent
	}); !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("non-retryable error should not retry: err=%v calls=%d", err, calls)
	}
}
