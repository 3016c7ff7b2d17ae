package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/indoorroute/pkg/cache"
	"github.com/matzehuels/indoorroute/pkg/connector"
	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/router"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	c := Default()

	assert.Equal(t, ".", c.Data.Dir)
	assert.Equal(t, "file", c.Cache.Backend)
	assert.Equal(t, filepath.Join("/tmp/xdg", "indoorroute"), c.Cache.Dir)
	assert.Equal(t, cache.DefaultTTL, c.Cache.TTL)
	assert.Equal(t, cache.DefaultMaxEntries, c.Cache.MaxEntries)
	assert.Equal(t, connector.Elevator, c.Via())
	assert.Equal(t, 4, c.Precalc.Workers)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.NoError(t, c.Validate())

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "indoorroute.toml", `
[data]
dir = "/srv/building"

[cache]
backend = "badger"
dir = "/var/cache/ir"
ttl = "2m"
scope = "north"

[routing]
default_via = "Stairs"
yield_delay = "30ms"
precedence = ["name", "id"]

[precalc]
workers = 8
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/building", c.Data.Dir)
	assert.Equal(t, cache.BackendOptions{Backend: cache.BackendBadger, Dir: "/var/cache/ir"}, c.CacheBackend())
	assert.Equal(t, 2*time.Minute, c.Cache.TTL)
	assert.Equal(t, connector.Stairs, c.Via())
	assert.Equal(t, 30*time.Millisecond, c.Routing.YieldDelay)
	assert.Equal(t, 8, c.Precalc.Workers)

	prec, err := c.PlacePrecedence()
	require.NoError(t, err)
	assert.Equal(t, []router.Strategy{router.ByName, router.ByID}, prec)

	assert.Equal(t, "north:route-cache-L1-a-b", c.CacheKeyer().RouteKey("L1", "a", "b"))
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "indoorroute.yaml", `
data:
  mongo_uri: mongodb://localhost:27017
cache:
  backend: redis
  redis_addr: localhost:6379
  max_entries: 10
server:
  addr: 127.0.0.1:9000
  session_ttl: 1h
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, c.Data.Dir)
	assert.Equal(t, DefaultMongoDatabase, c.Data.MongoDB)
	assert.Equal(t, "localhost:6379", c.CacheBackend().Redis.Addr)
	assert.Equal(t, 10, c.Cache.MaxEntries)
	assert.Equal(t, "127.0.0.1:9000", c.Server.Addr)
	assert.Equal(t, time.Hour, c.Server.SessionTTL)
	assert.Equal(t, "route-cache-L1-a-b", c.CacheKeyer().RouteKey("L1", "a", "b"))
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, file, body string
	}{
		{"unknown backend", "c.toml", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without addr", "c.yaml", "cache:\n  backend: redis\n"},
		{"bad via", "c.toml", "[routing]\ndefault_via = \"ladder\"\n"},
		{"bad precedence", "c.yml", "routing:\n  precedence: [centroid]\n"},
		{"negative yield", "c.toml", "[routing]\nyield_delay = \"-1s\"\n"},
		{"malformed toml", "c.toml", "[cache\n"},
		{"unsupported ext", "c.json", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.body))
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "got %v", err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
}
