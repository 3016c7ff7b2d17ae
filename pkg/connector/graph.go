package connector

import (
	"slices"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
)

// Edge is a directed hop between two floors. Connector is already oriented
// so that Connector.FromFloor is the floor the edge leaves.
type Edge struct {
	Connector Connector
	To        string
}

// Graph is the floor-level adjacency for one connector type.
type Graph struct {
	via    Type
	adj    map[string][]Edge
	floors []string
}

// NewGraph keeps the connectors of type via and records both travel
// directions for each. Connectors joining a floor to itself are ignored.
// Adjacency order follows the input order, which makes search results
// deterministic.
func NewGraph(connectors []Connector, via Type) *Graph {
	g := &Graph{via: via, adj: make(map[string][]Edge)}
	addFloor := func(f string) {
		if !slices.Contains(g.floors, f) {
			g.floors = append(g.floors, f)
		}
	}
	for _, c := range connectors {
		if c.Type != via || c.FromFloor == "" || c.ToFloor == "" || c.FromFloor == c.ToFloor {
			continue
		}
		addFloor(c.FromFloor)
		addFloor(c.ToFloor)
		g.adj[c.FromFloor] = append(g.adj[c.FromFloor], Edge{Connector: c, To: c.ToFloor})
		r := c.Reversed()
		g.adj[r.FromFloor] = append(g.adj[r.FromFloor], Edge{Connector: r, To: r.ToFloor})
	}
	return g
}

// Via returns the connector type the graph was built for.
func (g *Graph) Via() Type { return g.via }

// Floors returns every floor touched by a connector, in first-seen order.
func (g *Graph) Floors() []string { return g.floors }

// Edges returns the outgoing hops from floor.
func (g *Graph) Edges(floor string) []Edge { return g.adj[floor] }

// FindPath returns the connectors to take from floor from to floor to, each
// oriented in the direction of travel, using the fewest hops.
//
// Equal floors yield an empty path. If no chain of this connector type
// joins the floors, a CONNECTOR_NOT_FOUND error is returned.
func (g *Graph) FindPath(from, to string) ([]Connector, error) {
	if from == to {
		return []Connector{}, nil
	}

	prev := map[string]Edge{}
	visited := map[string]bool{from: true}
	queue := []string{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range g.adj[cur] {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			prev[e.To] = e
			if e.To == to {
				return g.reconstruct(prev, from, to), nil
			}
			queue = append(queue, e.To)
		}
	}

	return nil, errs.New(errs.ErrCodeConnectorNotFound, "no %s path from floor %s to floor %s", g.via, from, to)
}

func (g *Graph) reconstruct(prev map[string]Edge, from, to string) []Connector {
	var path []Connector
	for cur := to; cur != from; {
		e := prev[cur]
		path = append(path, e.Connector)
		cur = e.Connector.FromFloor
	}
	slices.Reverse(path)
	return path
}
