// Package pathfind implements shortest-path search over a floor graph.
//
// Two algorithms are provided:
//
//   - [AStar] answers one point-to-point query. Its heuristic is the
//     straight-line distance to the goal, which never overestimates because
//     every edge is a straight segment.
//   - [Dijkstra] computes distances from one source to every reachable node.
//     It is used when one origin must be compared against many destination
//     candidates: one search answers all of them.
//
// Both use a binary min-heap with lazy decrease-key: improved entries are
// pushed again and stale ones are skipped when popped.
//
// Complexity:
//
//   - Time:  O((V + E) log V)
//   - Space: O(V + E)
//
// # Failure Semantics
//
// An id that is not in the graph is a caller contract violation and returns
// a NOT_FOUND error. Callers are expected to resolve places and entrances to
// known path nodes first. Two valid nodes with no connecting path are not an
// error: [AStar] returns a [Path] with no nodes and infinite distance.
package pathfind
