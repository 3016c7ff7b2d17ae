// Package engine is the routing engine: the one value that owns floor
// graphs, the connector table, the route cache and the journey state
// machine.
//
// # Lifecycle
//
// An [Engine] is constructed with [New], used concurrently by any number
// of callers, and released with [Engine.Close]. [Engine.Reset] drops every
// loaded floor, the memory cache tier and the active journey without
// closing persisted storage. Tests construct a fresh engine per case;
// nothing is process-global.
//
// # Operations
//
//   - [Engine.ComputeRoute]: same-floor route between two places
//   - [Engine.ComputeMultiFloorRoute]: connector search, step decomposition,
//     parallel pre-calculation of every step, then journey start
//   - [Engine.AdvanceRoute], [Engine.ClearRoute], [Engine.OnFloorChange]:
//     drive the journey state machine
//   - [Engine.GetCachedRoute], [Engine.SetCachedRoute]: direct cache access
//
// "No route" outcomes (unreachable places, unknown names, missing connector
// chains) are logged at warn level and returned as nil results with a nil
// error. Errors are reserved for invalid input and storage failures.
package engine
