// Package connector links the floors of a building through vertical
// connectors: stairs, elevators and escalators.
//
// # Storage vs. Travel
//
// A [Connector] is stored without direction: it simply joins node From on
// FromFloor with node To on ToFloor. [NewGraph] turns every connector of the
// requested [Type] into two directed edge records, each with endpoints and
// labels already oriented in its direction of travel. Path reconstruction
// therefore never swaps anything, and consumers never re-check direction.
//
// # Hop Count
//
// [Graph.FindPath] runs breadth-first search over floor keys, not over
// individual nodes. The result uses the fewest floor-to-floor hops. Physical
// distance is deliberately ignored: walking meters and riding an elevator
// are not commensurable.
//
// # Visualization
//
// [DOT] and [RenderSVG] draw the building's floor connectivity with
// Graphviz, which helps when auditing connector tables.
package connector
