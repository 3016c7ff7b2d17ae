package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
)

// PrometheusHooks records routing, cache and HTTP events as Prometheus
// metrics. It implements RoutingHooks, CacheHooks and HTTPHooks.
type PrometheusHooks struct {
	NoopRoutingHooks

	routes        *prometheus.CounterVec
	routeDuration *prometheus.HistogramVec
	routeNodes    prometheus.Histogram
	journeys      *prometheus.CounterVec
	journeySteps  prometheus.Histogram
	floorLoads    *prometheus.CounterVec
	floorLoadTime prometheus.Histogram
	cacheEvents   *prometheus.CounterVec
	cacheBytes    prometheus.Counter
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
}

// NewPrometheusHooks registers the indoorroute metrics with reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		routes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indoorroute_routes_total",
			Help: "Same-floor route computations by outcome.",
		}, []string{"floor", "outcome"}),
		routeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "indoorroute_route_duration_seconds",
			Help:    "Same-floor route computation latency.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"floor"}),
		routeNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "indoorroute_route_nodes",
			Help:    "Number of node ids in computed routes.",
			Buckets: prometheus.ExponentialBuckets(2, 2, 8),
		}),
		journeys: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indoorroute_journeys_total",
			Help: "Multi-floor journey computations by via-type and outcome.",
		}, []string{"via", "outcome"}),
		journeySteps: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "indoorroute_journey_steps",
			Help:    "Number of walking steps per multi-floor journey.",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		}),
		floorLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indoorroute_floor_loads_total",
			Help: "Floor graph loads by outcome.",
		}, []string{"outcome"}),
		floorLoadTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "indoorroute_floor_load_duration_seconds",
			Help:    "Floor graph load and build latency.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indoorroute_route_cache_events_total",
			Help: "Route cache hits, misses and sets by tier.",
		}, []string{"tier", "event"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "indoorroute_route_cache_written_bytes_total",
			Help: "Bytes written to the route cache.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indoorroute_http_requests_total",
			Help: "HTTP API requests by route and status.",
		}, []string{"method", "route", "status"}),
		reqDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "indoorroute_http_request_duration_seconds",
			Help:    "HTTP API latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// outcome maps an error onto a low-cardinality label.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errs.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

func (p *PrometheusHooks) OnRouteComplete(_ context.Context, floor string, nodeCount int, d time.Duration, err error) {
	o := outcome(err)
	if err == nil && nodeCount == 0 {
		o = string(errs.ErrCodeUnreachable)
	}
	p.routes.WithLabelValues(floor, o).Inc()
	p.routeDuration.WithLabelValues(floor).Observe(d.Seconds())
	if nodeCount > 0 {
		p.routeNodes.Observe(float64(nodeCount))
	}
}

func (p *PrometheusHooks) OnJourneyComplete(_ context.Context, via string, stepCount int, _ time.Duration, err error) {
	o := outcome(err)
	if err == nil && stepCount == 0 {
		o = string(errs.ErrCodeConnectorNotFound)
	}
	p.journeys.WithLabelValues(via, o).Inc()
	if stepCount > 0 {
		p.journeySteps.Observe(float64(stepCount))
	}
}

func (p *PrometheusHooks) OnFloorLoad(_ context.Context, _ string, _ int, d time.Duration, err error) {
	p.floorLoads.WithLabelValues(outcome(err)).Inc()
	p.floorLoadTime.Observe(d.Seconds())
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, tier string) {
	p.cacheEvents.WithLabelValues(tier, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, tier string) {
	p.cacheEvents.WithLabelValues(tier, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, tier string, size int) {
	p.cacheEvents.WithLabelValues(tier, "set").Inc()
	p.cacheBytes.Add(float64(size))
}

func (p *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ RoutingHooks = (*PrometheusHooks)(nil)
	_ CacheHooks   = (*PrometheusHooks)(nil)
	_ HTTPHooks    = (*PrometheusHooks)(nil)
)
