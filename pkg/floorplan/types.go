package floorplan

import (
	"math"
)

// NodeType classifies a graph node by how it was authored.
type NodeType string

const (
	// NodeTypePath is an ordinary walkable node.
	NodeTypePath NodeType = "path"
	// NodeTypeEntrance attaches a place to the walkable network.
	NodeTypeEntrance NodeType = "entrance"
	// NodeTypeCircle and NodeTypeEllipse are walkable nodes exported from
	// round shapes in the source art.
	NodeTypeCircle  NodeType = "circle"
	NodeTypeEllipse NodeType = "ellipse"
)

// Point is a position in floor coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Node is a vertex of the floor graph.
type Node struct {
	ID        string   `json:"id" bson:"id"`
	X         float64  `json:"x" bson:"x"`
	Y         float64  `json:"y" bson:"y"`
	Type      NodeType `json:"type,omitempty" bson:"type,omitempty"`
	Neighbors []string `json:"neighbors,omitempty" bson:"neighbors,omitempty"`
	Floor     string   `json:"floor,omitempty" bson:"floor,omitempty"`
}

// Point returns the node's coordinates.
func (n Node) Point() Point { return Point{X: n.X, Y: n.Y} }

// IsEntrance reports whether the node attaches a place to the network.
func (n Node) IsEntrance() bool { return n.Type == NodeTypeEntrance }

// Place is a named point of interest. Names are not unique; several places
// on one floor (or across floors) may share a name.
//
// A place whose entrances all fail to resolve is unroutable. That is a
// "no route" outcome, not a data error.
type Place struct {
	ID            string   `json:"id" bson:"id"`
	Name          string   `json:"name" bson:"name"`
	Type          string   `json:"type,omitempty" bson:"type,omitempty"`
	EntranceNodes []string `json:"entranceNodes" bson:"entranceNodes"`
	Floor         string   `json:"floor,omitempty" bson:"floor,omitempty"`
	Centroid      Point    `json:"centroid" bson:"centroid"`
}

// FloorData is the authored input for one floor.
type FloorData struct {
	Floor     string  `json:"floor,omitempty" bson:"_id,omitempty"`
	Nodes     []Node  `json:"nodes" bson:"nodes"`
	Entrances []Node  `json:"entrances" bson:"entrances"`
	Places    []Place `json:"places" bson:"places"`
}
