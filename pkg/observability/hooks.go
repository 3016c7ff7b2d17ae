// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends to the routing core. Consumers register
// hooks at startup to receive events about route computations, cache
// operations, and API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Two implementations ship with the package: [PrometheusHooks] records
// counters and histograms, and [TracingHooks] opens OpenTelemetry spans
// around route computations. [CombineRouting] fans routing events out to
// several implementations.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    prom := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	    observability.SetRoutingHooks(observability.CombineRouting(prom, observability.NewTracingHooks()))
//	    observability.SetCacheHooks(prom)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	ctx = observability.Routing().OnRouteStart(ctx, floor, from, to)
//	// ... route ...
//	observability.Routing().OnRouteComplete(ctx, floor, len(nodes), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Routing Hooks
// =============================================================================

// RoutingHooks receives events from the routing engine.
//
// Start methods return the context to use for the remainder of the
// operation so that tracing implementations can attach spans.
type RoutingHooks interface {
	// Same-floor route events
	OnRouteStart(ctx context.Context, floor, from, to string) context.Context
	OnRouteComplete(ctx context.Context, floor string, nodeCount int, duration time.Duration, err error)

	// Multi-floor journey events
	OnJourneyStart(ctx context.Context, fromFloor, toFloor, via string) context.Context
	OnJourneyComplete(ctx context.Context, via string, stepCount int, duration time.Duration, err error)

	// OnFloorLoad records loading and building one floor graph.
	OnFloorLoad(ctx context.Context, floor string, nodeCount int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. Tier is "memory" or
// "persisted".
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, tier string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, tier string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, tier string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request. Route is the matched pattern.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRoutingHooks is a no-op implementation of RoutingHooks.
type NoopRoutingHooks struct{}

func (NoopRoutingHooks) OnRouteStart(ctx context.Context, _, _, _ string) context.Context {
	return ctx
}
func (NoopRoutingHooks) OnRouteComplete(context.Context, string, int, time.Duration, error) {}
func (NoopRoutingHooks) OnJourneyStart(ctx context.Context, _, _, _ string) context.Context {
	return ctx
}
func (NoopRoutingHooks) OnJourneyComplete(context.Context, string, int, time.Duration, error) {}
func (NoopRoutingHooks) OnFloorLoad(context.Context, string, int, time.Duration, error)       {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Fan-out
// =============================================================================

type multiRouting []RoutingHooks

// CombineRouting returns RoutingHooks that forward every event to each of
// hooks in order. Nil entries are skipped.
func CombineRouting(hooks ...RoutingHooks) RoutingHooks {
	var m multiRouting
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

func (m multiRouting) OnRouteStart(ctx context.Context, floor, from, to string) context.Context {
	for _, h := range m {
		ctx = h.OnRouteStart(ctx, floor, from, to)
	}
	return ctx
}

func (m multiRouting) OnRouteComplete(ctx context.Context, floor string, n int, d time.Duration, err error) {
	for _, h := range m {
		h.OnRouteComplete(ctx, floor, n, d, err)
	}
}

func (m multiRouting) OnJourneyStart(ctx context.Context, fromFloor, toFloor, via string) context.Context {
	for _, h := range m {
		ctx = h.OnJourneyStart(ctx, fromFloor, toFloor, via)
	}
	return ctx
}

func (m multiRouting) OnJourneyComplete(ctx context.Context, via string, n int, d time.Duration, err error) {
	for _, h := range m {
		h.OnJourneyComplete(ctx, via, n, d, err)
	}
}

func (m multiRouting) OnFloorLoad(ctx context.Context, floor string, n int, d time.Duration, err error) {
	for _, h := range m {
		h.OnFloorLoad(ctx, floor, n, d, err)
	}
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	routingHooks RoutingHooks = NoopRoutingHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetRoutingHooks registers custom routing hooks.
// This should be called once at application startup before any routing.
func SetRoutingHooks(h RoutingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		routingHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Routing returns the registered routing hooks.
func Routing() RoutingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return routingHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	routingHooks = NoopRoutingHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
