package cache

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/indoorroute/pkg/observability"
)

const (
	// DefaultTTL is how long a cached route stays fresh.
	DefaultTTL = 5 * time.Minute

	// DefaultMaxEntries bounds the memory tier.
	DefaultMaxEntries = 50

	// writeQueueSize bounds pending persisted writes.
	writeQueueSize = 256

	tierMemory    = "memory"
	tierPersisted = "persisted"
)

// RouteEntry is the persisted value format. From and To record the pair the
// entry was written for; entries without them are accepted as-is.
type RouteEntry struct {
	Nodes     []string `json:"nodes"`
	Timestamp int64    `json:"timestamp"` // unix milliseconds
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
}

// belongsTo reports whether the entry was written for from -> to. Escaped
// persisted keys collide for pairs like ("a-b", "c") and ("a", "b-c").
func (e RouteEntry) belongsTo(from, to string) bool {
	if e.From == "" && e.To == "" {
		return true
	}
	return e.From == from && e.To == to
}

// routeKey identifies a memory entry. Persisted keys are flattened strings
// in which distinct pairs can collide, so the memory tier keeps the parts.
type routeKey struct {
	floor, from, to string
}

func (k routeKey) less(o routeKey) bool {
	if k.floor != o.floor {
		return k.floor < o.floor
	}
	if k.from != o.from {
		return k.from < o.from
	}
	return k.to < o.to
}

type memEntry struct {
	nodes []string
	at    time.Time
}

type writeJob struct {
	key   string
	entry RouteEntry
	ack   chan struct{} // flush marker when non-nil
}

// RouteCache is the two-tier route cache. It is safe for concurrent use.
// Call Close to stop the background writer.
type RouteCache struct {
	store  Cache
	keyer  Keyer
	ttl    time.Duration
	max    int
	now    func() time.Time
	logger *log.Logger

	mu  sync.Mutex
	mem map[routeKey]memEntry

	writes    chan writeJob
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// RouteOption configures a RouteCache.
type RouteOption func(*RouteCache)

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) RouteOption {
	return func(c *RouteCache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithMaxEntries overrides DefaultMaxEntries.
func WithMaxEntries(n int) RouteOption {
	return func(c *RouteCache) {
		if n > 0 {
			c.max = n
		}
	}
}

// WithKeyer overrides the default key format.
func WithKeyer(k Keyer) RouteOption {
	return func(c *RouteCache) {
		if k != nil {
			c.keyer = k
		}
	}
}

// WithClock replaces time.Now, which lets tests age entries.
func WithClock(now func() time.Time) RouteOption {
	return func(c *RouteCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) RouteOption {
	return func(c *RouteCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewRouteCache creates a route cache over store and starts its writer.
// A nil store keeps routes in memory only.
func NewRouteCache(store Cache, opts ...RouteOption) *RouteCache {
	if store == nil {
		store = NewNullCache()
	}
	c := &RouteCache{
		store:   store,
		keyer:   NewDefaultKeyer(),
		ttl:     DefaultTTL,
		max:     DefaultMaxEntries,
		now:     time.Now,
		logger:  log.Default(),
		mem:     make(map[routeKey]memEntry),
		writes:  make(chan writeJob, writeQueueSize),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.writer()
	return c
}

// TTL returns the freshness window.
func (c *RouteCache) TTL() time.Duration { return c.ttl }

// Key returns the persisted key for a route.
func (c *RouteCache) Key(floor, from, to string) string {
	return c.keyer.RouteKey(floor, from, to)
}

// Get returns the cached node path from -> to on floor. Lookup order is
// memory exact, memory reverse, persisted. Expired entries are misses.
func (c *RouteCache) Get(ctx context.Context, floor, from, to string) ([]string, bool) {
	fwdKey := routeKey{floor, from, to}
	now := c.now()

	c.mu.Lock()
	if nodes, ok := c.lookup(fwdKey, now); ok {
		c.mu.Unlock()
		observability.Cache().OnCacheHit(ctx, tierMemory)
		return nodes, true
	}
	if nodes, ok := c.lookup(routeKey{floor, to, from}, now); ok {
		c.mu.Unlock()
		slices.Reverse(nodes)
		observability.Cache().OnCacheHit(ctx, tierMemory)
		return nodes, true
	}
	c.mu.Unlock()
	observability.Cache().OnCacheMiss(ctx, tierMemory)

	key := c.Key(floor, from, to)
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Debug("persisted route cache read failed", "key", key, "error", err)
		observability.Cache().OnCacheMiss(ctx, tierPersisted)
		return nil, false
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, tierPersisted)
		return nil, false
	}

	var entry RouteEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Nodes == nil {
		c.logger.Debug("discarding malformed route cache entry", "key", key)
		observability.Cache().OnCacheMiss(ctx, tierPersisted)
		return nil, false
	}
	if !entry.belongsTo(from, to) {
		c.logger.Debug("route cache key collision", "key", key, "from", from, "to", to)
		observability.Cache().OnCacheMiss(ctx, tierPersisted)
		return nil, false
	}
	at := time.UnixMilli(entry.Timestamp)
	if !c.fresh(at, now) {
		c.logger.Debug("stale route cache entry", "key", key, "age", now.Sub(at))
		observability.Cache().OnCacheMiss(ctx, tierPersisted)
		return nil, false
	}

	observability.Cache().OnCacheHit(ctx, tierPersisted)
	c.mu.Lock()
	c.put(fwdKey, entry.Nodes, at)
	c.mu.Unlock()
	return slices.Clone(entry.Nodes), true
}

// Set stores nodes for from -> to on floor. The memory tier is updated
// before Set returns; the persisted forward and reverse entries are queued
// for the background writer. If the queue is full the persisted write is
// dropped.
func (c *RouteCache) Set(ctx context.Context, floor, from, to string, nodes []string) {
	at := c.now()
	fwd := slices.Clone(nodes)

	c.mu.Lock()
	c.put(routeKey{floor, from, to}, fwd, at)
	c.mu.Unlock()
	observability.Cache().OnCacheSet(ctx, tierMemory, len(fwd))

	rev := slices.Clone(nodes)
	slices.Reverse(rev)
	ts := at.UnixMilli()
	c.enqueue(writeJob{key: c.Key(floor, from, to), entry: RouteEntry{Nodes: fwd, Timestamp: ts, From: from, To: to}})
	c.enqueue(writeJob{key: c.Key(floor, to, from), entry: RouteEntry{Nodes: rev, Timestamp: ts, From: to, To: from}})
}

// Len returns the number of memory entries, fresh or not.
func (c *RouteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mem)
}

// Reset empties the memory tier. Persisted entries are untouched.
func (c *RouteCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem = make(map[routeKey]memEntry)
}

// Flush blocks until every write queued before the call has been
// persisted, or ctx is done.
func (c *RouteCache) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case c.writes <- writeJob{ack: ack}:
	case <-c.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-c.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains queued writes, stops the writer and closes the persisted
// store.
func (c *RouteCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.quit)
		<-c.stopped
		err = c.store.Close()
	})
	return err
}

// lookup returns a copy of a fresh memory entry. Expired entries are
// removed. Callers hold c.mu.
func (c *RouteCache) lookup(key routeKey, now time.Time) ([]string, bool) {
	e, ok := c.mem[key]
	if !ok {
		return nil, false
	}
	if !c.fresh(e.at, now) {
		delete(c.mem, key)
		return nil, false
	}
	return slices.Clone(e.nodes), true
}

// put writes a memory entry unless a newer one is already present, then
// evicts the oldest entries while above capacity. Callers hold c.mu.
func (c *RouteCache) put(key routeKey, nodes []string, at time.Time) {
	if cur, ok := c.mem[key]; ok && cur.at.After(at) {
		return
	}
	c.mem[key] = memEntry{nodes: nodes, at: at}
	for len(c.mem) > c.max {
		var (
			oldest   routeKey
			oldestAt time.Time
			first    = true
		)
		for k, e := range c.mem {
			if first || e.at.Before(oldestAt) || (e.at.Equal(oldestAt) && k.less(oldest)) {
				oldest, oldestAt, first = k, e.at, false
			}
		}
		delete(c.mem, oldest)
	}
}

func (c *RouteCache) fresh(at, now time.Time) bool {
	return now.Sub(at) <= c.ttl
}

func (c *RouteCache) enqueue(job writeJob) {
	select {
	case <-c.quit:
		return
	default:
	}
	select {
	case c.writes <- job:
	default:
		c.logger.Debug("route cache write queue full, dropping persisted write", "key", job.key)
	}
}

// writer persists queued entries until Close, then drains what is left.
func (c *RouteCache) writer() {
	defer close(c.stopped)
	for {
		select {
		case job := <-c.writes:
			c.persist(job)
		case <-c.quit:
			for {
				select {
				case job := <-c.writes:
					c.persist(job)
				default:
					return
				}
			}
		}
	}
}

func (c *RouteCache) persist(job writeJob) {
	if job.ack != nil {
		close(job.ack)
		return
	}
	data, err := json.Marshal(job.entry)
	if err != nil {
		c.logger.Debug("encode route cache entry", "key", job.key, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = RetryWithBackoff(ctx, func() error {
		return c.store.Set(ctx, job.key, data, c.ttl)
	})
	if err != nil {
		c.logger.Debug("persist route cache entry", "key", job.key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, tierPersisted, len(data))
}
