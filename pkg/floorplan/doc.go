// Package floorplan models one floor of a building as a planar walking graph.
//
// # Overview
//
// A floor is authored as three lists: walkable path nodes, entrance nodes
// that attach destinations to the walkable network, and places (the named
// points of interest people actually ask for). [Decode] reads that JSON
// shape and [NewGraph] turns it into an adjacency structure suitable for
// shortest-path search.
//
// # Edge Weights
//
// Weights are never stored in the source data. Every edge costs the
// Euclidean distance between its endpoints, computed when the adjacency is
// built. Because edges are straight segments, straight-line distance is
// also an admissible A* heuristic.
//
// # Normalization
//
// Floor data is hand-authored and frequently lists a neighbor on only one
// side of an edge. [NewGraph] inserts the missing reverse edge so traversal
// is always symmetric. Neighbor references to unknown ids are dropped and
// counted in [Graph.DanglingRefs].
//
// # Floor Keys
//
// Every node and place carries an explicit Floor key. [Decode] fills it in
// from the floor being loaded when the authored data omits it, so no code
// ever re-derives a floor from an id at query time.
package floorplan
