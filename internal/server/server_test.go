package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/indoorroute/pkg/buildinfo"
	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/engine"
	"github.com/matzehuels/indoorroute/pkg/floorstore"
	"github.com/matzehuels/indoorroute/pkg/httputil"
	"github.com/matzehuels/indoorroute/pkg/journey"
	"github.com/matzehuels/indoorroute/pkg/observability"
)

// Every floor: E1 - N1 - N2 - E2, stairs entrance S on N2.
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

const verticals = `{"verticals": [{"id": "S12", "type": "stairs", "from": "L1_S", "to": "L2_S"}]}`

type fixture struct {
	srv *httptest.Server
	reg *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	for _, f := range []string{"L1", "L2"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f+".json"), []byte(floorDoc(f)), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, floorstore.ConnectorsFile), []byte(verticals), 0o644))

	logger := log.New(io.Discard)
	eng, err := engine.New(engine.Options{Source: floorstore.NewDirSource(dir), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	reg := prometheus.NewRegistry()
	s, err := New(Options{Engine: eng, Gatherer: reg, Logger: logger})
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, reg: reg}
}

func (f *fixture) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestNewRequiresEngine(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHealthAndFloors(t *testing.T) {
	f := newFixture(t)

	var health healthResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", nil, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, buildinfo.Version, health.Build.Version)

	var floors map[string][]string
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/floors", nil, &floors))
	assert.Equal(t, []string{"L1", "L2"}, floors["floors"])
}

func TestRoute(t *testing.T) {
	f := newFixture(t)

	var route routeResponse
	status := f.do(t, http.MethodGet, "/floors/L1/routes?from=lobby&to=Office", nil, &route)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"L1_E1", "L1_N1", "L1_N2", "L1_E2"}, route.Nodes)
	assert.InDelta(t, 10, route.Distance, 1e-9)
	assert.Equal(t, "office", route.ChosenDestination.ID)

	t.Run("unknown place", func(t *testing.T) {
		var body httputil.ErrorBody
		status := f.do(t, http.MethodGet, "/floors/L1/routes?from=lobby&to=Gym", nil, &body)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, errs.ErrCodeUnreachable, body.Code)
	})

	t.Run("missing query", func(t *testing.T) {
		var body httputil.ErrorBody
		status := f.do(t, http.MethodGet, "/floors/L1/routes?from=lobby", nil, &body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, errs.ErrCodeInvalidInput, body.Code)
	})

	t.Run("missing floor", func(t *testing.T) {
		var body httputil.ErrorBody
		status := f.do(t, http.MethodGet, "/floors/L9/routes?from=lobby&to=office", nil, &body)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, errs.ErrCodeNotFound, body.Code)
	})
}

func TestJourneyLifecycle(t *testing.T) {
	f := newFixture(t)

	req := journeyRequest{
		From: journey.Endpoint{Floor: "L1", Place: "lobby"},
		To:   journey.Endpoint{Floor: "L2", Place: "office"},
		Via:  "Stairs",
	}
	var started journeyResponse
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/journeys", req, &started))
	require.NotEmpty(t, started.ID)
	require.Len(t, started.Steps, 2)
	assert.Equal(t, "L1_S", started.Steps[0].ToID)
	assert.False(t, started.Steps[1].IsVerticalTransition)

	base := "/journeys/" + started.ID

	// Wrong floor: nothing published.
	var fr floorResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/floor", floorRequest{Floor: "L2"}, &fr))
	assert.False(t, fr.Published)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/floor", floorRequest{Floor: "L1"}, &fr))
	assert.True(t, fr.Published)
	assert.Equal(t, []string{"L1_E1", "L1_N1", "L1_N2", "L1_S"}, fr.Nodes)

	var adv advanceResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/advance", nil, &adv))
	assert.True(t, adv.Active)
	assert.Equal(t, 1, adv.Route.CurrentStep)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/floor", floorRequest{Floor: "L2"}, &fr))
	assert.True(t, fr.Published)
	assert.Equal(t, []string{"L2_S", "L2_N2", "L2_E2"}, fr.Nodes)

	var snap map[string]any
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, base, nil, &snap))
	assert.Equal(t, "L2", snap["floor"])

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/advance", nil, &adv))
	assert.False(t, adv.Active)
	assert.Empty(t, adv.Route.Steps)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, base, nil, nil))
	var body httputil.ErrorBody
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, base, nil, &body))
	assert.Equal(t, errs.ErrCodeNotFound, body.Code)
}

func TestJourneyErrors(t *testing.T) {
	f := newFixture(t)

	t.Run("no connector", func(t *testing.T) {
		req := journeyRequest{
			From: journey.Endpoint{Floor: "L1", Place: "lobby"},
			To:   journey.Endpoint{Floor: "L2", Place: "office"},
			Via:  "elevator",
		}
		var body httputil.ErrorBody
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/journeys", req, &body))
		assert.Equal(t, errs.ErrCodeConnectorNotFound, body.Code)
	})

	t.Run("bad via", func(t *testing.T) {
		resp, err := http.Post(f.srv.URL+"/journeys", "application/json",
			strings.NewReader(`{"from":{"floor":"L1","place":"lobby"},"to":{"floor":"L2","place":"office"},"via":"rope"}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown journey", func(t *testing.T) {
		var body httputil.ErrorBody
		status := f.do(t, http.MethodPost, "/journeys/00000000-0000-0000-0000-000000000000/advance", nil, &body)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("bad floor key", func(t *testing.T) {
		var body httputil.ErrorBody
		status := f.do(t, http.MethodPost, "/journeys/00000000-0000-0000-0000-000000000000/floor", floorRequest{Floor: "../x"}, &body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, errs.ErrCodeInvalidFloor, body.Code)
	})
}

func TestJourneysAreIndependent(t *testing.T) {
	f := newFixture(t)
	req := journeyRequest{
		From: journey.Endpoint{Floor: "L1", Place: "lobby"},
		To:   journey.Endpoint{Floor: "L2", Place: "office"},
	}
	var a, b journeyResponse
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/journeys", req, &a))
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/journeys", req, &b))
	require.NotEqual(t, a.ID, b.ID)

	var adv advanceResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/journeys/"+a.ID+"/advance", nil, &adv))
	assert.Equal(t, 1, adv.Route.CurrentStep)

	var snap struct {
		Route journey.MultiFloorRoute `json:"route"`
	}
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/journeys/"+b.ID, nil, &snap))
	assert.Equal(t, 0, snap.Route.CurrentStep)
}

func TestCacheEndpoints(t *testing.T) {
	f := newFixture(t)

	var body httputil.ErrorBody
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/cache/L1?from=a&to=b", nil, &body))

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPut, "/cache/L1?from=a&to=b", cacheBody{Nodes: []string{"a", "x", "b"}}, nil))

	var got cacheBody
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/cache/L1?from=b&to=a", nil, &got))
	assert.Equal(t, []string{"b", "x", "a"}, got.Nodes)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/cache/L1?from=a&to=b", cacheBody{}, &body))
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/cache/L1?from=a", nil, &body))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	observability.SetHTTPHooks(observability.NewPrometheusHooks(f.reg))
	t.Cleanup(observability.Reset)

	f.do(t, http.MethodGet, "/healthz", nil, &healthResponse{})

	resp, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `route="/healthz"`)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	eng, err := engine.New(engine.Options{Source: floorstore.NewDirSource(dir), Logger: log.New(io.Discard)})
	require.NoError(t, err)
	defer eng.Close()
	s, err := New(Options{Engine: eng, Logger: log.New(io.Discard)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
