// Package router answers "route from place A to place B" on a single floor.
//
// # Resolution
//
// People ask for places, but pathfinding runs between walkable path nodes.
// Three pieces bridge the gap:
//
//   - [PlaceFinder] maps an identifier to place records using an ordered
//     list of lookup strategies (by id, by name, by entrance membership).
//     The first strategy with a match wins; that precedence is part of the
//     contract. Names are not unique, so [PlaceFinder.FindCandidates]
//     returns every place matching an id or name.
//   - [EntranceResolver] maps a place's entrances to the path nodes they
//     attach to. An entrance with no declared path neighbors falls back to
//     the nearest path node, so incompletely wired entrances stay routable.
//   - [Router] composes both with [pathfind.Dijkstra].
//
// # Candidate Scan
//
// When a destination name matches several places, the router runs one
// single-source search per origin path node and scores every candidate's
// end nodes against that one distance table. The globally cheapest
// (start node, candidate, end node) triple wins, and the chosen candidate is
// reported in [Route.ChosenDestination].
//
// # State
//
// A Router owns its resolver caches. Build one per floor graph; when a
// floor is reloaded, build a new Router and the caches go with the old one.
package router
