// Package journey turns a connector path into walkable route steps and
// tracks a traveller's progress through them.
//
// [BuildSteps] decomposes a multi-floor trip into one same-floor step per
// floor visited. [Machine] is the route-continuation state machine: it
// publishes the node path for the current step once the traveller is on
// that step's floor, and it only moves forward on an explicit [Machine.Advance].
//
// States:
//
//	Inactive --Start--> Active(0) --Advance--> Active(1) ... --Advance--> Inactive
//	any      --Clear--> Inactive
package journey
