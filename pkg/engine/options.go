package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/indoorroute/pkg/cache"
	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorstore"
	"github.com/matzehuels/indoorroute/pkg/journey"
	"github.com/matzehuels/indoorroute/pkg/router"
)

// DefaultWorkers bounds parallel step pre-calculation.
const DefaultWorkers = 4

// Options configures an Engine.
type Options struct {
	// Source supplies floor documents and the connector table. Required.
	Source floorstore.Source

	// Cache is the persisted route tier. Nil keeps routes in memory only.
	Cache cache.Cache

	// Keyer formats persisted keys. Nil uses cache.DefaultKeyer.
	Keyer cache.Keyer

	// CacheTTL and CacheMaxEntries override the route cache defaults.
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Workers bounds concurrent step pre-calculations.
	Workers int

	// YieldDelay is waited before each route computation so a UI can
	// finish its transition. Zero disables it.
	YieldDelay time.Duration

	// Precedence overrides the place lookup order.
	Precedence []router.Strategy

	// Publish receives every path the engine wants displayed. Nil clears.
	Publish journey.PublishFunc

	// Logger defaults to log.Default().
	Logger *log.Logger

	// Clock defaults to time.Now. Used by the route cache.
	Clock func() time.Time
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = cache.DefaultTTL
	}
	if o.CacheMaxEntries <= 0 {
		o.CacheMaxEntries = cache.DefaultMaxEntries
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

// Validate checks the options after defaults are applied.
func (o *Options) Validate() error {
	if o.Source == nil {
		return errs.New(errs.ErrCodeInvalidConfig, "engine requires a floor data source")
	}
	if o.YieldDelay < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "yield delay must not be negative")
	}
	return nil
}
