package engine

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/indoorroute/pkg/cache"
	"github.com/matzehuels/indoorroute/pkg/connector"
	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
	"github.com/matzehuels/indoorroute/pkg/journey"
	"github.com/matzehuels/indoorroute/pkg/observability"
	"github.com/matzehuels/indoorroute/pkg/router"
)

const connectorsFlight = "\x00connectors"

// Engine is the routing engine. It is safe for concurrent use.
type Engine struct {
	opts    Options
	logger  *log.Logger
	routes  *cache.RouteCache
	machine *journey.Machine

	mu         sync.RWMutex
	floors     map[string]*router.Router
	connectors []connector.Connector
	loadedCons bool
	viaGraphs  map[connector.Type]*connector.Graph

	loads singleflight.Group
}

// New creates an engine.
func New(opts Options) (*Engine, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		opts:      opts,
		logger:    opts.Logger,
		floors:    make(map[string]*router.Router),
		viaGraphs: make(map[connector.Type]*connector.Graph),
	}
	e.routes = cache.NewRouteCache(opts.Cache,
		cache.WithKeyer(opts.Keyer),
		cache.WithTTL(opts.CacheTTL),
		cache.WithMaxEntries(opts.CacheMaxEntries),
		cache.WithClock(opts.Clock),
		cache.WithLogger(opts.Logger),
	)
	e.machine = e.NewMachine(opts.Publish)
	return e, nil
}

// Close flushes pending cache writes and closes the persisted tier.
func (e *Engine) Close() error {
	return e.routes.Close()
}

// Reset drops loaded floors, connectors, the memory cache tier and the
// active journey. Persisted cache entries survive.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.floors = make(map[string]*router.Router)
	e.connectors = nil
	e.loadedCons = false
	e.viaGraphs = make(map[connector.Type]*connector.Graph)
	e.mu.Unlock()

	e.routes.Reset()
	e.machine.Clear()
}

// RouteCache exposes the route cache, mainly for flushing in tests and
// commands.
func (e *Engine) RouteCache() *cache.RouteCache { return e.routes }

// Floors lists the floors available from the source.
func (e *Engine) Floors(ctx context.Context) ([]string, error) {
	return e.opts.Source.Floors(ctx)
}

// LoadFloor returns the router for floor, loading and building its graph
// on first use. Concurrent loads of the same floor share one source read.
func (e *Engine) LoadFloor(ctx context.Context, floor string) (*router.Router, error) {
	if err := errs.ValidateFloorKey(floor); err != nil {
		return nil, err
	}

	e.mu.RLock()
	r, ok := e.floors[floor]
	e.mu.RUnlock()
	if ok {
		return r, nil
	}

	v, err, _ := e.loads.Do(floor, func() (any, error) {
		start := time.Now()
		data, err := e.opts.Source.Floor(ctx, floor)
		if err != nil {
			observability.Routing().OnFloorLoad(ctx, floor, 0, time.Since(start), err)
			return nil, err
		}

		g := floorplan.NewGraph(data)
		opts := []router.Option{router.WithLogger(e.logger)}
		if len(e.opts.Precedence) > 0 {
			opts = append(opts, router.WithPrecedence(e.opts.Precedence...))
		}
		r := router.New(g, opts...)

		if n := g.DanglingRefs(); n > 0 {
			e.logger.Warn("floor has dangling neighbor references", "floor", floor, "count", n)
		}
		e.logger.Debug("loaded floor", "floor", floor,
			"nodes", g.Len(), "edges", g.EdgeCount(), "entrances", len(g.Entrances()), "places", len(g.Places()))
		observability.Routing().OnFloorLoad(ctx, floor, g.Len(), time.Since(start), nil)

		e.mu.Lock()
		e.floors[floor] = r
		e.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*router.Router), nil
}

// Connectors returns the building's connector table, loading it once.
func (e *Engine) Connectors(ctx context.Context) ([]connector.Connector, error) {
	e.mu.RLock()
	cs, ok := e.connectors, e.loadedCons
	e.mu.RUnlock()
	if ok {
		return cs, nil
	}

	v, err, _ := e.loads.Do(connectorsFlight, func() (any, error) {
		cs, err := e.opts.Source.Connectors(ctx)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.connectors, e.loadedCons = cs, true
		e.mu.Unlock()
		e.logger.Debug("loaded connectors", "count", len(cs))
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]connector.Connector), nil
}

// connectorGraph returns the floor graph for one via-type.
func (e *Engine) connectorGraph(ctx context.Context, via connector.Type) (*connector.Graph, error) {
	e.mu.RLock()
	g, ok := e.viaGraphs[via]
	e.mu.RUnlock()
	if ok {
		return g, nil
	}

	cs, err := e.Connectors(ctx)
	if err != nil {
		return nil, err
	}
	g = connector.NewGraph(cs, via)

	e.mu.Lock()
	e.viaGraphs[via] = g
	e.mu.Unlock()
	return g, nil
}

// GetCachedRoute returns a cached node path.
func (e *Engine) GetCachedRoute(ctx context.Context, floor, from, to string) ([]string, bool) {
	return e.routes.Get(ctx, floor, from, to)
}

// SetCachedRoute stores a node path.
func (e *Engine) SetCachedRoute(ctx context.Context, floor, from, to string, nodes []string) {
	e.routes.Set(ctx, floor, from, to, nodes)
}

// yield waits YieldDelay unless ctx ends first.
func (e *Engine) yield(ctx context.Context) error {
	if e.opts.YieldDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.opts.YieldDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) publish(floor string, nodes []string) {
	if e.opts.Publish != nil {
		e.opts.Publish(floor, nodes)
	}
}
