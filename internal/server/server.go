// Package server exposes the routing engine over HTTP.
//
// Single-floor routes and the route cache map straight onto the shared
// engine. Multi-floor journeys get one state machine per client: the
// machine's state lives in a session.Session and is restored into a fresh
// journey.Machine for every request, so concurrent clients never share
// route-continuation state.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/indoorroute/pkg/connector"
	"github.com/matzehuels/indoorroute/pkg/engine"
	"github.com/matzehuels/indoorroute/pkg/session"
)

// Options configures a Server.
type Options struct {
	// Engine answers routing queries. Required.
	Engine *engine.Engine

	// Sessions stores journeys. Defaults to an in-memory store.
	Sessions session.Store

	// SessionTTL is how long an idle journey lives.
	SessionTTL time.Duration

	// DefaultVia is used when a journey request names no connector type.
	DefaultVia connector.Type

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	engine   *engine.Engine
	sessions session.Store
	ttl      time.Duration
	via      connector.Type
	gatherer prometheus.Gatherer
	logger   *log.Logger

	// locks serializes read-modify-write cycles per journey id.
	locks sync.Map
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, errors.New("server requires an engine")
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.DefaultVia == "" {
		opts.DefaultVia = connector.Stairs
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		engine:   opts.Engine,
		sessions: opts.Sessions,
		ttl:      opts.SessionTTL,
		via:      opts.DefaultVia,
		gatherer: opts.Gatherer,
		logger:   opts.Logger,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/floors", s.handleFloors)
	r.Get("/floors/{floor}/routes", s.handleRoute)

	r.Route("/journeys", func(r chi.Router) {
		r.Post("/", s.handleStartJourney)
		r.Get("/{id}", s.handleGetJourney)
		r.Delete("/{id}", s.handleDeleteJourney)
		r.Post("/{id}/floor", s.handleJourneyFloor)
		r.Post("/{id}/advance", s.handleAdvanceJourney)
	})

	r.Get("/cache/{floor}", s.handleGetCache)
	r.Put("/cache/{floor}", s.handlePutCache)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Expired sessions are swept once per TTL while running.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweep(ctx context.Context) {
	t := time.NewTicker(s.ttl)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.sessions.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

func (s *Server) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
