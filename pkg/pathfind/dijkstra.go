package pathfind

import (
	"container/heap"
	"math"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
)

// Tree holds single-source shortest-path results: the distance to every
// reachable node and the predecessor on its shortest path.
type Tree struct {
	source string
	dist   map[string]float64
	prev   map[string]string
}

// Dijkstra computes shortest distances from source to every node reachable
// in g. It returns a NOT_FOUND error if source is absent from g.
func Dijkstra(g Graph, source string) (*Tree, error) {
	if !g.Has(source) {
		return nil, errs.New(errs.ErrCodeNotFound, "source node %q not in graph", source)
	}

	t := &Tree{
		source: source,
		dist:   map[string]float64{source: 0},
		prev:   make(map[string]string),
	}
	visited := make(map[string]bool)

	seq := 0
	pq := &minQueue{{id: source, priority: 0, seq: seq}}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		for _, e := range g.Neighbors(cur.id) {
			if visited[e.To] {
				continue
			}
			nd := t.dist[cur.id] + e.Weight
			if old, ok := t.dist[e.To]; ok && nd >= old {
				continue
			}
			t.dist[e.To] = nd
			t.prev[e.To] = cur.id
			seq++
			heap.Push(pq, item{id: e.To, priority: nd, seq: seq})
		}
	}

	return t, nil
}

// Source returns the node the tree was grown from.
func (t *Tree) Source() string { return t.source }

// Dist returns the shortest distance to id, or +Inf if unreachable.
func (t *Tree) Dist(id string) float64 {
	if d, ok := t.dist[id]; ok {
		return d
	}
	return math.Inf(1)
}

// Reachable reports whether id was reached from the source.
func (t *Tree) Reachable(id string) bool {
	_, ok := t.dist[id]
	return ok
}

// PathTo reconstructs the node sequence from the source to id.
// It returns nil if id is unreachable.
func (t *Tree) PathTo(id string) []string {
	if !t.Reachable(id) {
		return nil
	}
	return reconstruct(t.prev, t.source, id)
}

// Len returns the number of reachable nodes, including the source.
func (t *Tree) Len() int { return len(t.dist) }
