package router

import (
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/indoorroute/pkg/floorplan"
)

// EntranceResolver maps entrances to the walkable path nodes they attach to.
// Results are cached for the lifetime of the resolver, which matches the
// lifetime of its floor graph. It is safe for concurrent use.
type EntranceResolver struct {
	g *floorplan.Graph

	mu        sync.Mutex
	pathNodes map[string][]string // entrance id -> attached path nodes
	owners    map[string]string   // node id + entrance set -> entrance id
}

// NewEntranceResolver creates a resolver over g.
func NewEntranceResolver(g *floorplan.Graph) *EntranceResolver {
	return &EntranceResolver{
		g:         g,
		pathNodes: make(map[string][]string),
		owners:    make(map[string]string),
	}
}

// EntranceIDsOf returns the place's entrance ids that still exist on the
// floor. Stale references are dropped.
func (r *EntranceResolver) EntranceIDsOf(p floorplan.Place) []string {
	ids := make([]string, 0, len(p.EntranceNodes))
	for _, id := range p.EntranceNodes {
		if r.g.IsEntrance(id) && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ResolveToPathNodes returns the union of path nodes attached to the given
// entrances, de-duplicated in first-seen order.
func (r *EntranceResolver) ResolveToPathNodes(entranceIDs []string) []string {
	var out []string
	for _, id := range entranceIDs {
		for _, n := range r.attached(id) {
			if !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// EntranceForNode returns which of entranceIDs attaches to nodeID, using the
// same fallback rule as [EntranceResolver.ResolveToPathNodes]. The first
// matching entrance in argument order wins.
func (r *EntranceResolver) EntranceForNode(entranceIDs []string, nodeID string) (string, bool) {
	key := nodeID + "\x00" + strings.Join(entranceIDs, "\x00")

	r.mu.Lock()
	if id, ok := r.owners[key]; ok {
		r.mu.Unlock()
		return id, true
	}
	r.mu.Unlock()

	for _, id := range entranceIDs {
		if slices.Contains(r.attached(id), nodeID) {
			r.mu.Lock()
			r.owners[key] = id
			r.mu.Unlock()
			return id, true
		}
	}
	return "", false
}

// attached returns the cached path nodes for one entrance: the path nodes
// linked to it from either side, or else the single nearest path node.
func (r *EntranceResolver) attached(entranceID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if nodes, ok := r.pathNodes[entranceID]; ok {
		return nodes
	}

	e, ok := r.g.Node(entranceID)
	if !ok {
		return nil
	}

	nodes := slices.Clone(r.g.EntranceNeighbors(entranceID))
	if len(nodes) == 0 {
		if nearest, ok := r.nearestPathNode(e.Point()); ok {
			nodes = []string{nearest}
		}
	}

	r.pathNodes[entranceID] = nodes
	return nodes
}

// nearestPathNode scans every path node. Ties keep the first in authored
// order.
func (r *EntranceResolver) nearestPathNode(p floorplan.Point) (string, bool) {
	best, bestDist := "", math.Inf(1)
	for _, id := range r.g.PathNodes() {
		if d := r.g.Position(id).DistanceTo(p); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != ""
}
