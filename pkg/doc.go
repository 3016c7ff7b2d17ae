// Package pkg provides the libraries behind indoorroute.
//
// # Overview
//
// indoorroute finds walking routes inside buildings. Each floor is a graph
// of walkable path nodes with places attached through entrances; floors are
// joined by stairs, elevators and escalators. The pkg directory is
// organized by concern:
//
//  1. [floorplan], [pathfind], [router]: single-floor graphs and search
//  2. [connector], [journey]: cross-floor connectivity and step planning
//  3. [engine]: the routing facade tying floors, cache and journeys together
//  4. [cache], [floorstore], [session]: persistence
//  5. [config], [errors], [observability], [httputil], [buildinfo]: support
//
// # Architecture
//
//	floor JSON / MongoDB
//	         ↓
//	    [floorstore] (load floors and connector table)
//	         ↓
//	    [floorplan] (symmetric adjacency)  →  [router] (place lookup, A*)
//	         ↓
//	    [connector] (BFS over floors)  →  [journey] (steps, state machine)
//	         ↓
//	    [engine] (+ [cache] route cache, parallel pre-calculation)
//
// # Quick Start
//
//	e, err := engine.New(engine.Options{
//	    Source: floorstore.NewDirSource("./building"),
//	})
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	route, err := e.ComputeRoute(ctx, "L1", "lobby", "Room 101")
//	steps, err := e.ComputeMultiFloorRoute(ctx,
//	    journey.Endpoint{Floor: "L1", Place: "lobby"},
//	    journey.Endpoint{Floor: "L3", Place: "Room 301"},
//	    connector.Elevator)
package pkg
