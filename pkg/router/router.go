package router

import (
	"math"
	"slices"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
	"github.com/matzehuels/indoorroute/pkg/pathfind"
)

// Route is a resolved single-floor route.
//
// Nodes is always [startEntrance, ...interior path nodes, endEntrance].
// Distance covers the walked path nodes; entrances are attachment points and
// add no cost.
type Route struct {
	Nodes             []string        `json:"nodes"`
	Distance          float64         `json:"distance"`
	ChosenDestination floorplan.Place `json:"chosenDestination"`

	// Candidates is how many places matched the destination identifier.
	Candidates int `json:"candidates,omitempty"`
}

// Ambiguous reports whether the destination identifier matched more than
// one place.
func (r *Route) Ambiguous() bool { return r.Candidates > 1 }

// Router is the single-floor routing facade.
type Router struct {
	g         *floorplan.Graph
	places    *PlaceFinder
	entrances *EntranceResolver
	logger    *log.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPrecedence overrides the place lookup strategy order.
func WithPrecedence(order ...Strategy) Option {
	return func(r *Router) {
		r.places = NewPlaceFinder(r.g, order...)
	}
}

// New creates a router for one floor graph.
func New(g *floorplan.Graph, opts ...Option) *Router {
	r := &Router{
		g:         g,
		places:    NewPlaceFinder(g),
		entrances: NewEntranceResolver(g),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Graph returns the floor graph.
func (r *Router) Graph() *floorplan.Graph { return r.g }

// Places returns the router's place finder.
func (r *Router) Places() *PlaceFinder { return r.places }

// Entrances returns the router's entrance resolver.
func (r *Router) Entrances() *EntranceResolver { return r.entrances }

// target is one destination candidate with its resolved nodes.
type target struct {
	place     floorplan.Place
	entrances []string
	endNodes  []string
}

// FindPathBetweenPlaces routes from place a to place b.
//
// The origin resolves through FindPlace (first match wins). The destination
// resolves through FindCandidates, and the cheapest candidate is chosen.
//
// Errors:
//   - NOT_FOUND if a or b matches no place or entrance.
//   - UNREACHABLE if either side has no usable path nodes, or no candidate
//     can be reached.
func (r *Router) FindPathBetweenPlaces(a, b string) (*Route, error) {
	src, strategy, ok := r.places.FindPlace(a)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "origin %q not found on floor %s", a, r.g.Floor())
	}
	r.logger.Debug("resolved origin", "floor", r.g.Floor(), "identifier", a, "place", src.ID, "strategy", strategy)

	candidates := r.places.FindCandidates(b)
	if len(candidates) == 0 {
		return nil, errs.New(errs.ErrCodeNotFound, "destination %q not found on floor %s", b, r.g.Floor())
	}
	if len(candidates) > 1 {
		r.logger.Debug("ambiguous destination", "floor", r.g.Floor(), "identifier", b, "candidates", len(candidates))
	}

	srcEntrances := r.entrances.EntranceIDsOf(src)
	startNodes := r.entrances.ResolveToPathNodes(srcEntrances)
	if len(startNodes) == 0 {
		return nil, errs.New(errs.ErrCodeUnreachable, "origin %q has no routable entrances", a)
	}

	targets := make([]target, 0, len(candidates))
	for _, c := range candidates {
		ents := r.entrances.EntranceIDsOf(c)
		ends := r.entrances.ResolveToPathNodes(ents)
		if len(ends) == 0 {
			continue
		}
		targets = append(targets, target{place: c, entrances: ents, endNodes: ends})
	}
	if len(targets) == 0 {
		return nil, errs.New(errs.ErrCodeUnreachable, "destination %q has no routable entrances", b)
	}

	var (
		best      = math.Inf(1)
		bestStart string
		bestEnd   string
		bestIdx   int
		bestTree  *pathfind.Tree
	)
	for _, s := range startNodes {
		tree, err := pathfind.Dijkstra(r.g, s)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "resolved start node")
		}
		for i, t := range targets {
			for _, e := range t.endNodes {
				if d := tree.Dist(e); d < best {
					best, bestStart, bestEnd, bestIdx, bestTree = d, s, e, i, tree
				}
			}
		}
	}
	if bestTree == nil {
		return nil, errs.New(errs.ErrCodeUnreachable, "no path from %q to %q on floor %s", a, b, r.g.Floor())
	}

	chosen := targets[bestIdx]
	startEntrance, _ := r.entrances.EntranceForNode(srcEntrances, bestStart)
	endEntrance, _ := r.entrances.EntranceForNode(chosen.entrances, bestEnd)

	interior := bestTree.PathTo(bestEnd)
	nodes := make([]string, 0, len(interior)+2)
	nodes = append(nodes, startEntrance)
	nodes = append(nodes, interior...)
	nodes = append(nodes, endEntrance)

	return &Route{
		Nodes:             nodes,
		Distance:          best,
		ChosenDestination: chosen.place,
		Candidates:        len(candidates),
	}, nil
}

// ShortestPath runs A* between two path nodes.
func (r *Router) ShortestPath(from, to string) (pathfind.Path, error) {
	return pathfind.AStar(r.g, from, to)
}

// ResolveIdentifier maps an arbitrary identifier to the form the router
// should be asked with: a place id, a place name, the id of the place that
// owns an entrance, or the identifier unchanged.
func (r *Router) ResolveIdentifier(identifier string) string {
	places := r.g.Places()
	if slices.ContainsFunc(places, func(p floorplan.Place) bool { return p.ID == identifier }) {
		return identifier
	}
	if slices.ContainsFunc(places, func(p floorplan.Place) bool { return p.Name == identifier }) {
		return identifier
	}
	if p, ok := r.places.PlaceWithEntrance(identifier); ok {
		return p.ID
	}
	return identifier
}
