package pathfind

import (
	"container/heap"
	"math"
	"slices"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
)

// Graph is the read-only view the algorithms need. *floorplan.Graph
// satisfies it.
type Graph interface {
	Has(id string) bool
	Position(id string) floorplan.Point
	Neighbors(id string) []floorplan.Edge
}

// Path is the result of a point-to-point search.
// An unreachable goal yields no nodes and infinite distance.
type Path struct {
	Nodes    []string
	Distance float64
}

// Found reports whether the search reached the goal.
func (p Path) Found() bool { return len(p.Nodes) > 0 }

// noPath is returned when the goal cannot be reached.
func noPath() Path { return Path{Distance: math.Inf(1)} }

// AStar finds the cheapest path from start to goal.
//
// It returns a NOT_FOUND error if either id is absent from g.
func AStar(g Graph, start, goal string) (Path, error) {
	if !g.Has(start) {
		return Path{}, errs.New(errs.ErrCodeNotFound, "start node %q not in graph", start)
	}
	if !g.Has(goal) {
		return Path{}, errs.New(errs.ErrCodeNotFound, "end node %q not in graph", goal)
	}
	if start == goal {
		return Path{Nodes: []string{start}}, nil
	}

	target := g.Position(goal)
	h := func(id string) float64 { return g.Position(id).DistanceTo(target) }

	gScore := map[string]float64{start: 0}
	cameFrom := make(map[string]string)
	closed := make(map[string]bool)

	seq := 0
	open := &minQueue{{id: start, priority: h(start), seq: seq}}

	for open.Len() > 0 {
		cur := heap.Pop(open).(item)
		if closed[cur.id] {
			continue
		}
		if cur.id == goal {
			return Path{Nodes: reconstruct(cameFrom, start, goal), Distance: gScore[goal]}, nil
		}
		closed[cur.id] = true

		for _, e := range g.Neighbors(cur.id) {
			if closed[e.To] {
				continue
			}
			tentative := gScore[cur.id] + e.Weight
			if old, ok := gScore[e.To]; ok && tentative >= old {
				continue
			}
			gScore[e.To] = tentative
			cameFrom[e.To] = cur.id
			seq++
			heap.Push(open, item{id: e.To, priority: tentative + h(e.To), seq: seq})
		}
	}

	return noPath(), nil
}

// reconstruct follows prev links from goal back to start and reverses.
func reconstruct(prev map[string]string, start, goal string) []string {
	path := []string{goal}
	for cur := goal; cur != start; {
		p, ok := prev[cur]
		if !ok {
			return nil
		}
		path = append(path, p)
		cur = p
	}
	slices.Reverse(path)
	return path
}
