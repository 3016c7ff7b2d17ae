package engine

import (
	"context"
	"slices"
	"time"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
	"github.com/matzehuels/indoorroute/pkg/observability"
	"github.com/matzehuels/indoorroute/pkg/router"
)

// ComputeRoute finds the route from one place to another on floor and
// publishes its nodes. from and to may be place ids, place names or
// entrance ids.
//
// When no route exists, or either identifier cannot be resolved, the
// outcome is logged, nil is published to clear any previous path, and
// (nil, nil) is returned. Errors mean invalid input or a failed load.
func (e *Engine) ComputeRoute(ctx context.Context, floor, from, to string) (*router.Route, error) {
	if err := validateQuery(floor, from, to); err != nil {
		return nil, err
	}
	if err := e.yield(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx = observability.Routing().OnRouteStart(ctx, floor, from, to)
	route, err := e.computeRoute(ctx, floor, from, to)
	nodes := 0
	if route != nil {
		nodes = len(route.Nodes)
	}
	observability.Routing().OnRouteComplete(ctx, floor, nodes, time.Since(start), err)

	if err != nil || route == nil {
		e.publish(floor, nil)
		return nil, err
	}
	e.publish(floor, route.Nodes)
	return route, nil
}

// routeNodes computes a same-floor node path without publishing it. It
// backs the journey state machine and step pre-calculation.
func (e *Engine) routeNodes(ctx context.Context, floor, from, to string) ([]string, error) {
	route, err := e.computeRoute(ctx, floor, from, to)
	if err != nil || route == nil {
		return nil, err
	}
	return route.Nodes, nil
}

func (e *Engine) computeRoute(ctx context.Context, floor, from, to string) (*router.Route, error) {
	r, err := e.LoadFloor(ctx, floor)
	if err != nil {
		return nil, err
	}

	if nodes, ok := e.routes.Get(ctx, floor, from, to); ok {
		if route, ok := routeFromNodes(r, from, to, nodes); ok {
			e.logger.Debug("route cache hit", "floor", floor, "from", from, "to", to)
			return route, nil
		}
	}

	route, err := r.FindPathBetweenPlaces(r.ResolveIdentifier(from), r.ResolveIdentifier(to))
	if err != nil {
		if errs.Recoverable(err) || errs.Is(err, errs.ErrCodeNotFound) {
			e.logger.Warn("no route", "floor", floor, "from", from, "to", to, "reason", errs.UserMessage(err))
			return nil, nil
		}
		return nil, err
	}
	if route.Ambiguous() {
		e.logger.Debug("destination matched several places",
			"floor", floor, "to", to, "candidates", route.Candidates, "chosen", route.ChosenDestination.ID)
	}

	e.routes.Set(ctx, floor, from, to, route.Nodes)
	return route, nil
}

// routeFromNodes rebuilds a Route from a cached node path. It fails if the
// path names nodes the floor no longer has, or if its ends do not belong to
// the places from and to resolve to now. The start must be an entrance of
// the origin's first match; a reverse hit whose origin name is shared may
// start elsewhere and is recomputed.
func routeFromNodes(r *router.Router, from, to string, nodes []string) (*router.Route, bool) {
	if len(nodes) < 2 {
		return nil, false
	}
	g := r.Graph()
	for _, id := range nodes {
		if _, ok := g.Node(id); !ok {
			return nil, false
		}
	}

	src, _, ok := r.Places().FindPlace(r.ResolveIdentifier(from))
	if !ok || !slices.Contains(r.Entrances().EntranceIDsOf(src), nodes[0]) {
		return nil, false
	}
	last := nodes[len(nodes)-1]
	candidates := r.Places().FindCandidates(r.ResolveIdentifier(to))
	i := slices.IndexFunc(candidates, func(p floorplan.Place) bool {
		return slices.Contains(r.Entrances().EntranceIDsOf(p), last)
	})
	if i < 0 {
		return nil, false
	}

	var dist float64
	for k := 2; k < len(nodes)-1; k++ {
		dist += g.Distance(nodes[k-1], nodes[k])
	}
	return &router.Route{
		Nodes:             nodes,
		Distance:          dist,
		ChosenDestination: candidates[i],
		Candidates:        len(candidates),
	}, true
}

func validateQuery(floor, from, to string) error {
	if err := errs.ValidateFloorKey(floor); err != nil {
		return err
	}
	if err := errs.ValidateIdentifier(from); err != nil {
		return err
	}
	return errs.ValidateIdentifier(to)
}
