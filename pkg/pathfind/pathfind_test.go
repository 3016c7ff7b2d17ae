package pathfind

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
)

const eps = 1e-9

// chain builds N1(0,0)-N2(10,0)-N3(10,10) plus an isolated node N4.
func chain() *floorplan.Graph {
	return floorplan.NewGraph(&floorplan.FloorData{
		Floor: "L1",
		Nodes: []floorplan.Node{
			{ID: "N1", X: 0, Y: 0, Neighbors: []string{"N2"}},
			{ID: "N2", X: 10, Y: 0, Neighbors: []string{"N3"}},
			{ID: "N3", X: 10, Y: 10},
			{ID: "N4", X: 50, Y: 50},
		},
	})
}

// randomGraph places n nodes at random integer coordinates and connects each
// pair with probability p.
func randomGraph(r *rand.Rand, n int, p float64) *floorplan.Graph {
	nodes := make([]floorplan.Node, n)
	for i := range nodes {
		nodes[i] = floorplan.Node{
			ID: fmt.Sprintf("V%d", i),
			X:  float64(r.IntN(100)),
			Y:  float64(r.IntN(100)),
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r.Float64() < p {
				nodes[i].Neighbors = append(nodes[i].Neighbors, nodes[j].ID)
			}
		}
	}
	return floorplan.NewGraph(&floorplan.FloorData{Floor: "R", Nodes: nodes})
}

// bruteForce enumerates every simple path from a to b and returns the
// cheapest cost, or +Inf if none exists.
func bruteForce(g *floorplan.Graph, a, b string) float64 {
	best := math.Inf(1)
	seen := map[string]bool{a: true}
	var walk func(cur string, cost float64)
	walk = func(cur string, cost float64) {
		if cur == b {
			best = math.Min(best, cost)
			return
		}
		for _, e := range g.Neighbors(cur) {
			if seen[e.To] {
				continue
			}
			seen[e.To] = true
			walk(e.To, cost+e.Weight)
			seen[e.To] = false
		}
	}
	walk(a, 0)
	return best
}

func pathCost(g *floorplan.Graph, nodes []string) float64 {
	total := 0.0
	for i := 1; i < len(nodes); i++ {
		total += g.Distance(nodes[i-1], nodes[i])
	}
	return total
}

func TestAStarChain(t *testing.T) {
	p, err := AStar(chain(), "N1", "N3")
	require.NoError(t, err)
	assert.Equal(t, []string{"N1", "N2", "N3"}, p.Nodes)
	assert.InDelta(t, 20, p.Distance, eps)
	assert.True(t, p.Found())
}

func TestAStarSameNode(t *testing.T) {
	p, err := AStar(chain(), "N2", "N2")
	require.NoError(t, err)
	assert.Equal(t, []string{"N2"}, p.Nodes)
	assert.Zero(t, p.Distance)
}

func TestAStarUnreachable(t *testing.T) {
	p, err := AStar(chain(), "N1", "N4")
	require.NoError(t, err)
	assert.False(t, p.Found())
	assert.Empty(t, p.Nodes)
	assert.True(t, math.IsInf(p.Distance, 1))
}

func TestAStarMissingNode(t *testing.T) {
	_, err := AStar(chain(), "N1", "NOPE")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeNotFound))

	_, err = AStar(chain(), "NOPE", "N1")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeNotFound))
}

func TestDijkstraChain(t *testing.T) {
	tree, err := Dijkstra(chain(), "N1")
	require.NoError(t, err)

	assert.Equal(t, "N1", tree.Source())
	assert.InDelta(t, 0, tree.Dist("N1"), eps)
	assert.InDelta(t, 10, tree.Dist("N2"), eps)
	assert.InDelta(t, 20, tree.Dist("N3"), eps)
	assert.True(t, math.IsInf(tree.Dist("N4"), 1))
	assert.False(t, tree.Reachable("N4"))
	assert.Equal(t, 3, tree.Len())

	assert.Equal(t, []string{"N1", "N2", "N3"}, tree.PathTo("N3"))
	assert.Equal(t, []string{"N1"}, tree.PathTo("N1"))
	assert.Nil(t, tree.PathTo("N4"))
}

func TestDijkstraMissingSource(t *testing.T) {
	_, err := Dijkstra(chain(), "NOPE")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeNotFound))
}

func TestDijkstraPrefersShorterDetour(t *testing.T) {
	// A-B direct is long; A-C-B is shorter in total.
	g := floorplan.NewGraph(&floorplan.FloorData{Nodes: []floorplan.Node{
		{ID: "A", X: 0, Y: 0, Neighbors: []string{"C"}},
		{ID: "B", X: 10, Y: 0, Neighbors: []string{"C"}},
		{ID: "C", X: 5, Y: 1},
	}})
	tree, err := Dijkstra(g, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, tree.PathTo("B"))
}

// A* and Dijkstra agree on every connected pair.
func TestAStarMatchesDijkstra(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 20; trial++ {
		g := randomGraph(r, 12, 0.25)
		for _, u := range g.IDs() {
			tree, err := Dijkstra(g, u)
			require.NoError(t, err)
			for _, v := range g.IDs() {
				p, err := AStar(g, u, v)
				require.NoError(t, err)
				if !tree.Reachable(v) {
					assert.False(t, p.Found(), "trial %d %s->%s", trial, u, v)
					continue
				}
				assert.InDelta(t, tree.Dist(v), p.Distance, 1e-6, "trial %d %s->%s", trial, u, v)
			}
		}
	}
}

// A* is never beaten by an exhaustively enumerated alternative.
func TestAStarOptimalAgainstBruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for trial := 0; trial < 25; trial++ {
		g := randomGraph(r, 7, 0.45)
		ids := g.IDs()
		for _, u := range ids {
			for _, v := range ids {
				p, err := AStar(g, u, v)
				require.NoError(t, err)
				best := bruteForce(g, u, v)
				if math.IsInf(best, 1) {
					assert.False(t, p.Found())
					continue
				}
				require.True(t, p.Found(), "trial %d %s->%s", trial, u, v)
				assert.LessOrEqual(t, p.Distance, best+1e-6)
				assert.InDelta(t, p.Distance, pathCost(g, p.Nodes), 1e-6)
				assert.Equal(t, u, p.Nodes[0])
				assert.Equal(t, v, p.Nodes[len(p.Nodes)-1])
			}
		}
	}
}
