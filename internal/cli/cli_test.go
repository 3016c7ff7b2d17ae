package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/indoorroute/pkg/cache"
	"github.com/matzehuels/indoorroute/pkg/connector"
	"github.com/matzehuels/indoorroute/pkg/floorstore"
)

func floorDoc(f string) string {
	return fmt.Sprintf(`{
  "nodes": [
    {"id": "%[1]s_N1", "x": 0,  "y": 0, "neighbors": ["%[1]s_N2"]},
    {"id": "%[1]s_N2", "x": 10, "y": 0}
  ],
  "entrances": [
    {"id": "%[1]s_E1", "x": -1, "y": 0, "neighbors": ["%[1]s_N1"]},
    {"id": "%[1]s_E2", "x": 11, "y": 0, "neighbors": ["%[1]s_N2"]},
    {"id": "%[1]s_S",  "x": 10, "y": 1, "neighbors": ["%[1]s_N2"]}
  ],
  "places": [
    {"id": "lobby",  "name": "Lobby",  "entranceNodes": ["%[1]s_E1"]},
    {"id": "office", "name": "Office", "entranceNodes": ["%[1]s_E2"]}
  ]
}`, f)
}

func building(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	for _, f := range []string{"L1", "L2"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f+".json"), []byte(floorDoc(f)), 0o644))
	}
	verticals := `{"verticals": [{"id": "S12", "type": "stairs", "from": "L1_S", "to": "L2_S"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, floorstore.ConnectorsFile), []byte(verticals), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (*CLI, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return c, root.Execute()
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"route", "journey", "connectors", "floors", "serve", "cache", "completion"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRouteCommand(t *testing.T) {
	dir := building(t)
	_, err := execute(t, "route", "-d", dir, "--no-cache", "L1", "lobby", "Office")
	assert.NoError(t, err)

	_, err = execute(t, "route", "-d", dir, "--no-cache", "L1", "lobby", "Gym", "--json")
	assert.NoError(t, err, "an unresolvable place is reported, not failed")

	_, err = execute(t, "route", "-d", dir, "--no-cache", "L1", "lobby")
	assert.Error(t, err)
}

func TestJourneyCommand(t *testing.T) {
	dir := building(t)
	_, err := execute(t, "journey", "-d", dir, "--no-cache", "L1", "lobby", "L2", "office", "--via", "stairs")
	assert.NoError(t, err)

	_, err = execute(t, "journey", "-d", dir, "--no-cache", "L1", "lobby", "L2", "office", "--via", "rope")
	assert.Error(t, err)
}

func TestConnectorsCommand(t *testing.T) {
	dir := building(t)
	out := filepath.Join(t.TempDir(), "floors.dot")
	_, err := execute(t, "connectors", "-d", dir, "--no-cache", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "graph floors {"))
	assert.Contains(t, string(data), `"L1" -- "L2"`)
}

func TestFloorsCommand(t *testing.T) {
	dir := building(t)
	_, err := execute(t, "floors", "-d", dir, "--no-cache")
	assert.NoError(t, err)
}

func TestConfigFlag(t *testing.T) {
	dir := building(t)
	cacheDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "indoorroute.toml")
	cfg := fmt.Sprintf(`
[data]
dir = %q

[cache]
backend = "badger"
dir = %q

[routing]
default_via = "stairs"
`, dir, cacheDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	c, err := execute(t, "--config", cfgPath, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, cacheDir, c.cfg.Cache.Dir)
	assert.Equal(t, string(cache.BackendBadger), c.cfg.Cache.Backend)
	assert.Equal(t, connector.Stairs, c.cfg.Via())

	_, err = execute(t, "--config", cfgPath, "route", "L1", "lobby", "office")
	require.NoError(t, err)
	_, err = execute(t, "--config", cfgPath, "cache", "clear")
	assert.NoError(t, err)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "floors")
	assert.Error(t, err)
}

func TestNoCacheOverridesBackend(t *testing.T) {
	dir := building(t)
	c, err := execute(t, "-d", dir, "--no-cache", "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, string(cache.BackendNone), c.cfg.Cache.Backend)
	assert.Equal(t, dir, c.cfg.Data.Dir)
}
