package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/indoorroute/pkg/buildinfo"
	"github.com/matzehuels/indoorroute/pkg/connector"
	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
	"github.com/matzehuels/indoorroute/pkg/httputil"
	"github.com/matzehuels/indoorroute/pkg/journey"
	"github.com/matzehuels/indoorroute/pkg/session"
)

// =============================================================================
// Floors and routes
// =============================================================================

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Current()})
}

func (s *Server) handleFloors(w http.ResponseWriter, r *http.Request) {
	floors, err := s.engine.Floors(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if floors == nil {
		floors = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"floors": floors})
}

type routeResponse struct {
	Nodes             []string        `json:"nodes"`
	Distance          float64         `json:"distance"`
	ChosenDestination floorplan.Place `json:"chosenDestination"`
	Candidates        int             `json:"candidates,omitempty"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	floor := chi.URLParam(r, "floor")
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")

	route, err := s.engine.ComputeRoute(r.Context(), floor, from, to)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if route == nil {
		s.fail(w, r, errs.New(errs.ErrCodeUnreachable, "no route from %q to %q on floor %s", from, to, floor))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, routeResponse{
		Nodes:             route.Nodes,
		Distance:          route.Distance,
		ChosenDestination: route.ChosenDestination,
		Candidates:        route.Candidates,
	})
}

// =============================================================================
// Journeys
// =============================================================================

type journeyRequest struct {
	From journey.Endpoint `json:"from"`
	To   journey.Endpoint `json:"to"`
	Via  connector.Type   `json:"via,omitempty"`
}

type journeyResponse struct {
	ID    string              `json:"id"`
	Steps []journey.RouteStep `json:"steps"`
}

func (s *Server) handleStartJourney(w http.ResponseWriter, r *http.Request) {
	var req journeyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	via := req.Via
	if via == "" {
		via = s.via
	}

	plan, err := s.engine.PlanJourney(r.Context(), req.From, req.To, via)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if plan == nil {
		s.fail(w, r, errs.New(errs.ErrCodeConnectorNotFound,
			"no %s connection from floor %s to floor %s", via, req.From.Floor, req.To.Floor))
		return
	}

	m := s.engine.NewMachine(nil)
	m.Start(plan.Steps, plan.Destination, plan.Precalculated)
	sess := session.New(via, m.Snapshot(), s.ttl)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeStorage, err, "save journey"))
		return
	}

	s.logger.Info("journey started", "id", sess.ID, "from", req.From.Floor, "to", req.To.Floor, "via", via, "steps", len(plan.Steps))
	w.Header().Set("Location", "/journeys/"+sess.ID)
	httputil.WriteJSON(w, http.StatusCreated, journeyResponse{ID: sess.ID, Steps: plan.Steps})
}

func (s *Server) handleGetJourney(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteJourney(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.lock(id)
	err := s.sessions.Delete(r.Context(), id)
	unlock()
	s.locks.Delete(id)
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeStorage, err, "delete journey"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type floorRequest struct {
	Floor string `json:"floor"`
}

type floorResponse struct {
	Floor     string                  `json:"floor"`
	Published bool                    `json:"published"`
	Nodes     []string                `json:"nodes"`
	Route     journey.MultiFloorRoute `json:"route"`
}

// handleJourneyFloor reports that the client now shows floor. When floor
// matches the current step, the step's path is returned with published
// set; a published null path means the step is unreachable.
func (s *Server) handleJourneyFloor(w http.ResponseWriter, r *http.Request) {
	var req floorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := errs.ValidateFloorKey(req.Floor); err != nil {
		s.fail(w, r, err)
		return
	}

	unlock := s.lock(chi.URLParam(r, "id"))
	defer unlock()

	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	m := s.engine.NewMachine(nil)
	m.Restore(sess.Route)
	nodes, published, err := m.OnFloor(r.Context(), req.Floor)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess.Route = m.Snapshot()
	sess.Floor = req.Floor
	if published {
		sess.Published = nodes
	}
	if !s.save(w, r, sess) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, floorResponse{
		Floor:     req.Floor,
		Published: published,
		Nodes:     nodes,
		Route:     sess.Route,
	})
}

type advanceResponse struct {
	Active bool                    `json:"active"`
	Route  journey.MultiFloorRoute `json:"route"`
}

func (s *Server) handleAdvanceJourney(w http.ResponseWriter, r *http.Request) {
	unlock := s.lock(chi.URLParam(r, "id"))
	defer unlock()

	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	m := s.engine.NewMachine(nil)
	m.Restore(sess.Route)
	active := m.Advance()

	sess.Route = m.Snapshot()
	sess.Published = nil
	if !s.save(w, r, sess) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, advanceResponse{Active: active, Route: sess.Route})
}

func (s *Server) loadSession(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, session.ErrNotFound):
		return nil, errs.New(errs.ErrCodeNotFound, "journey %q not found", id)
	default:
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "load journey")
	}
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	sess.Touch(s.ttl)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeStorage, err, "save journey"))
		return false
	}
	return true
}

// =============================================================================
// Route cache
// =============================================================================

type cacheBody struct {
	Nodes []string `json:"nodes"`
}

func (s *Server) handleGetCache(w http.ResponseWriter, r *http.Request) {
	floor, from, to, err := cacheQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	nodes, ok := s.engine.GetCachedRoute(r.Context(), floor, from, to)
	if !ok {
		s.fail(w, r, errs.New(errs.ErrCodeNotFound, "no cached route from %q to %q on floor %s", from, to, floor))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cacheBody{Nodes: nodes})
}

func (s *Server) handlePutCache(w http.ResponseWriter, r *http.Request) {
	floor, from, to, err := cacheQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body cacheBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(body.Nodes) == 0 {
		s.fail(w, r, errs.New(errs.ErrCodeInvalidInput, "nodes must not be empty"))
		return
	}
	s.engine.SetCachedRoute(r.Context(), floor, from, to, body.Nodes)
	w.WriteHeader(http.StatusNoContent)
}

func cacheQuery(r *http.Request) (floor, from, to string, err error) {
	floor = chi.URLParam(r, "floor")
	q := r.URL.Query()
	from, to = q.Get("from"), q.Get("to")
	if err = errs.ValidateFloorKey(floor); err != nil {
		return
	}
	if err = errs.ValidateIdentifier(from); err != nil {
		return
	}
	err = errs.ValidateIdentifier(to)
	return
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.Status(errs.GetCode(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	httputil.WriteError(w, err)
}
