package floorplan

import (
	"slices"
)

// Edge is a weighted adjacency entry. Weight is the Euclidean length of the
// segment between the two nodes.
type Edge struct {
	To     string
	Weight float64
}

// Graph is the routable form of one floor.
//
// Path nodes form the walkable network searched by pathfinding. Entrances
// are indexed for lookup but are not part of the adjacency: routes enter and
// leave the network through them, they never pass through one.
//
// A Graph is immutable after construction and safe for concurrent reads.
type Graph struct {
	floor     string
	nodes     map[string]Node
	paths     []string
	entrances []string
	places    []Place
	adj       map[string][]Edge
	attach    map[string][]string // entrance id -> path nodes, declared or listing it
	dangling  int
}

// NewGraph builds the adjacency for data in O(N·avgDegree).
//
// Traversal is made symmetric: if A lists B but B does not list A, the
// reverse edge is inserted. Duplicate neighbor entries and self-loops
// collapse. References to unknown ids are dropped and counted. Entrances sit
// outside the walkable network, so a link between a path node and an
// entrance goes into the attachment index instead of the adjacency; it is
// recorded from whichever side authored it.
func NewGraph(data *FloorData) *Graph {
	g := &Graph{
		floor:  data.Floor,
		nodes:  make(map[string]Node, len(data.Nodes)+len(data.Entrances)),
		paths:  make([]string, 0, len(data.Nodes)),
		places: slices.Clone(data.Places),
		adj:    make(map[string][]Edge, len(data.Nodes)),
		attach: make(map[string][]string, len(data.Entrances)),
	}

	for _, n := range data.Nodes {
		g.nodes[n.ID] = n
		g.paths = append(g.paths, n.ID)
		g.adj[n.ID] = nil
	}
	for _, e := range data.Entrances {
		g.nodes[e.ID] = e
		g.entrances = append(g.entrances, e.ID)
	}

	attachTo := func(entrance, node string) {
		if !slices.Contains(g.attach[entrance], node) {
			g.attach[entrance] = append(g.attach[entrance], node)
		}
	}

	linked := make(map[[2]string]struct{})
	link := func(a, b string) {
		key := [2]string{a, b}
		if _, ok := linked[key]; ok {
			return
		}
		linked[key] = struct{}{}
		w := g.nodes[a].Point().DistanceTo(g.nodes[b].Point())
		g.adj[a] = append(g.adj[a], Edge{To: b, Weight: w})
	}

	for _, id := range g.paths {
		for _, nb := range g.nodes[id].Neighbors {
			if nb == id {
				continue
			}
			target, ok := g.nodes[nb]
			if !ok {
				g.dangling++
				continue
			}
			if target.IsEntrance() {
				continue // attachment, indexed below
			}
			link(id, nb)
			link(nb, id)
		}
	}

	// Declared entrance neighbors come first so they keep authored order.
	for _, id := range g.entrances {
		for _, nb := range g.nodes[id].Neighbors {
			target, ok := g.nodes[nb]
			if !ok {
				g.dangling++
				continue
			}
			if !target.IsEntrance() {
				attachTo(id, nb)
			}
		}
	}
	for _, id := range g.paths {
		for _, nb := range g.nodes[id].Neighbors {
			if g.IsEntrance(nb) {
				attachTo(nb, id)
			}
		}
	}

	return g
}

// Floor returns the floor key the graph was built for.
func (g *Graph) Floor() string { return g.floor }

// Has reports whether id is a walkable path node.
func (g *Graph) Has(id string) bool {
	_, ok := g.adj[id]
	return ok
}

// Node returns the path node or entrance with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// IsEntrance reports whether id names an entrance on this floor.
func (g *Graph) IsEntrance(id string) bool {
	n, ok := g.nodes[id]
	return ok && n.IsEntrance()
}

// Position returns the coordinates of a path node or entrance.
// Unknown ids return the zero point.
func (g *Graph) Position(id string) Point {
	return g.nodes[id].Point()
}

// Neighbors returns the weighted adjacency of a path node.
// The returned slice must not be modified.
func (g *Graph) Neighbors(id string) []Edge {
	return g.adj[id]
}

// EntranceNeighbors returns the path nodes linked to an entrance: its own
// declared neighbors followed by path nodes that list it. The returned slice
// must not be modified.
func (g *Graph) EntranceNeighbors(id string) []string {
	return g.attach[id]
}

// Distance returns the straight-line distance between two known nodes.
func (g *Graph) Distance(a, b string) float64 {
	return g.Position(a).DistanceTo(g.Position(b))
}

// Len returns the number of walkable path nodes.
func (g *Graph) Len() int { return len(g.paths) }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.adj {
		n += len(edges)
	}
	return n / 2
}

// IDs returns all path node ids sorted lexicographically.
func (g *Graph) IDs() []string {
	ids := slices.Clone(g.paths)
	slices.Sort(ids)
	return ids
}

// PathNodes returns the path node ids in authored order.
func (g *Graph) PathNodes() []string { return g.paths }

// Entrances returns the entrance ids in authored order.
func (g *Graph) Entrances() []string { return g.entrances }

// Places returns the floor's places in authored order.
func (g *Graph) Places() []Place { return g.places }

// DanglingRefs returns how many neighbor references named ids absent from
// the floor.
func (g *Graph) DanglingRefs() int { return g.dangling }
