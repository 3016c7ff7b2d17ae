// Package cli implements the indoorroute command-line interface.
//
// # Commands
//
//   - route: shortest path between two places on one floor
//   - journey: multi-floor directions, optionally walked interactively
//   - connectors: floor connectivity as DOT or SVG
//   - floors: list the floors of a building
//   - serve: run the HTTP API
//   - cache: manage the persisted route cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels through context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/indoorroute/pkg/buildinfo"
	"github.com/matzehuels/indoorroute/pkg/cache"
	"github.com/matzehuels/indoorroute/pkg/config"
	"github.com/matzehuels/indoorroute/pkg/engine"
	"github.com/matzehuels/indoorroute/pkg/floorstore"
	"github.com/matzehuels/indoorroute/pkg/journey"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "indoorroute"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	dataDir    string
	noCache    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "indoorroute finds walking routes inside multi-floor buildings",
		Long:         `indoorroute computes shortest walking routes between places on a floor and step-by-step directions across floors via stairs, elevators or escalators.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if c.dataDir != "" {
				cfg.Data.Dir = c.dataDir
				cfg.Data.MongoURI = ""
			}
			if c.noCache {
				cfg.Cache.Backend = string(cache.BackendNone)
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml)")
	root.PersistentFlags().StringVarP(&c.dataDir, "data", "d", "", "building data directory (overrides config)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the persisted route cache")

	root.AddCommand(c.routeCommand())
	root.AddCommand(c.journeyCommand())
	root.AddCommand(c.connectorsCommand())
	root.AddCommand(c.floorsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine Factory
// =============================================================================

// openSource connects the configured floor data source. The returned
// closer releases it.
func (c *CLI) openSource(ctx context.Context) (floorstore.Source, func(), error) {
	if c.cfg.Data.MongoURI != "" {
		src, err := floorstore.NewMongoSource(ctx, c.cfg.Data.MongoURI, c.cfg.Data.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { src.Close(context.Background()) }, nil
	}
	return floorstore.NewDirSource(c.cfg.Data.Dir), func() {}, nil
}

// newEngine builds an engine from the loaded configuration. The returned
// release func flushes the cache and disconnects the data source.
func (c *CLI) newEngine(ctx context.Context, publish journey.PublishFunc) (*engine.Engine, func(), error) {
	logger := loggerFromContext(ctx)

	src, closeSrc, err := c.openSource(ctx)
	if err != nil {
		return nil, nil, err
	}

	store, err := cache.Open(c.cfg.CacheBackend())
	if err != nil {
		logger.Warn("persisted route cache unavailable, continuing in memory", "backend", c.cfg.Cache.Backend, "error", err)
		store = cache.NewNullCache()
	}

	precedence, err := c.cfg.PlacePrecedence()
	if err != nil {
		closeSrc()
		store.Close()
		return nil, nil, err
	}

	e, err := engine.New(engine.Options{
		Source:          src,
		Cache:           store,
		Keyer:           c.cfg.CacheKeyer(),
		CacheTTL:        c.cfg.Cache.TTL,
		CacheMaxEntries: c.cfg.Cache.MaxEntries,
		Workers:         c.cfg.Precalc.Workers,
		YieldDelay:      c.cfg.Routing.YieldDelay,
		Precedence:      precedence,
		Publish:         publish,
		Logger:          logger,
	})
	if err != nil {
		closeSrc()
		store.Close()
		return nil, nil, err
	}
	release := func() {
		if err := e.Close(); err != nil {
			logger.Warn("route cache flush failed", "error", err)
		}
		closeSrc()
	}
	return e, release, nil
}
