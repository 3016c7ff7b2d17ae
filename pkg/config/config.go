// Package config loads indoorroute settings from TOML or YAML files.
//
// A config file is optional. Every field has a default, and [Load] with an
// empty path returns [Default]. The file format follows the extension:
// ".toml" is decoded with BurntSushi/toml, ".yaml" and ".yml" with yaml.v3.
//
// Example (TOML):
//
//	[data]
//	dir = "./building"
//
//	[cache]
//	backend = "badger"
//	dir = "/var/cache/indoorroute"
//	ttl = "5m"
//
//	[routing]
//	default_via = "elevator"
//	yield_delay = "30ms"
//	precedence = ["id", "name", "entrance"]
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/indoorroute/pkg/cache"
	"github.com/matzehuels/indoorroute/pkg/connector"
	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/router"
)

const appName = "indoorroute"

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultVia is the connector type used when none is requested.
	DefaultVia = "elevator"

	// DefaultServerAddr is the HTTP API listen address.
	DefaultServerAddr = ":8080"

	// DefaultSessionTTL is how long an idle API journey lives.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultMongoDatabase is used when data.mongo_uri is set without a
	// database name.
	DefaultMongoDatabase = "indoorroute"
)

// Config is the complete configuration.
type Config struct {
	Data    Data    `toml:"data" yaml:"data"`
	Cache   Cache   `toml:"cache" yaml:"cache"`
	Routing Routing `toml:"routing" yaml:"routing"`
	Precalc Precalc `toml:"precalc" yaml:"precalc"`
	Server  Server  `toml:"server" yaml:"server"`
}

// Data selects the floor data source. MongoURI takes precedence over Dir.
type Data struct {
	Dir      string `toml:"dir" yaml:"dir"`
	MongoURI string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db" yaml:"mongo_db"`
}

// Cache configures the route cache.
type Cache struct {
	Backend       string        `toml:"backend" yaml:"backend"`
	Dir           string        `toml:"dir" yaml:"dir"`
	RedisAddr     string        `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int           `toml:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `toml:"ttl" yaml:"ttl"`
	MaxEntries    int           `toml:"max_entries" yaml:"max_entries"`
	Scope         string        `toml:"scope" yaml:"scope"`
}

// Routing configures route computation.
type Routing struct {
	DefaultVia string        `toml:"default_via" yaml:"default_via"`
	YieldDelay time.Duration `toml:"yield_delay" yaml:"yield_delay"`
	Precedence []string      `toml:"precedence" yaml:"precedence"`
}

// Precalc configures journey step pre-calculation.
type Precalc struct {
	Workers int `toml:"workers" yaml:"workers"`
}

// Server configures the HTTP API. An empty SessionDir keeps journeys in
// memory.
type Server struct {
	Addr       string        `toml:"addr" yaml:"addr"`
	SessionTTL time.Duration `toml:"session_ttl" yaml:"session_ttl"`
	SessionDir string        `toml:"session_dir" yaml:"session_dir"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// Load reads path and applies defaults. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config")
	}

	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &c); err != nil {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Data.Dir == "" && c.Data.MongoURI == "" {
		c.Data.Dir = "."
	}
	if c.Data.MongoURI != "" && c.Data.MongoDB == "" {
		c.Data.MongoDB = DefaultMongoDatabase
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = string(cache.BackendFile)
	}
	if c.Cache.Dir == "" {
		if dir, err := DefaultCacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = cache.DefaultTTL
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = cache.DefaultMaxEntries
	}
	if c.Routing.DefaultVia == "" {
		c.Routing.DefaultVia = DefaultVia
	}
	if c.Precalc.Workers <= 0 {
		c.Precalc.Workers = 4
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = DefaultSessionTTL
	}
}

// Validate checks a configuration after defaults.
func (c *Config) Validate() error {
	switch cache.Backend(c.Cache.Backend) {
	case cache.BackendFile, cache.BackendBadger, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if _, err := connector.ParseType(c.Routing.DefaultVia); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "routing.default_via")
	}
	if _, err := c.PlacePrecedence(); err != nil {
		return err
	}
	if c.Routing.YieldDelay < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "routing.yield_delay must not be negative")
	}
	return nil
}

// Via returns the default connector type.
func (c *Config) Via() connector.Type {
	t, err := connector.ParseType(c.Routing.DefaultVia)
	if err != nil {
		return connector.Elevator
	}
	return t
}

// PlacePrecedence parses routing.precedence. Empty means the router default.
func (c *Config) PlacePrecedence() ([]router.Strategy, error) {
	var out []router.Strategy
	for _, s := range c.Routing.Precedence {
		st, err := router.ParseStrategy(s)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// CacheBackend converts the cache section for cache.Open.
func (c *Config) CacheBackend() cache.BackendOptions {
	return cache.BackendOptions{
		Backend: cache.Backend(c.Cache.Backend),
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
	}
}

// CacheKeyer returns the persisted key format, scoped when cache.scope is set.
func (c *Config) CacheKeyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Scope+":")
}

// DefaultCacheDir returns $XDG_CACHE_HOME/indoorroute or ~/.cache/indoorroute.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
