// Package sim provides the core tick-driven simulation engine for parklot-sim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - layout.go: Facility geometry (portals, the row of spaces, walk distances)
//   - space.go: per-space occupancy ledger and history
//   - vehicle.go / visitor.go: the two agent state machines
//   - simulator.go: the per-tick Advance pass (promote, assign, move, sweep)
//   - metrics.go: read-only aggregation over engine state
//
// # Architecture
//
// The sim package owns every mutable entity of a run. Supporting packages
// live in sub-packages:
//   - sim/workload/: pending-schedule generation and CSV replay
//   - sim/trace/: assignment and full-lot retry decision records
//   - sim/paired/: two runs (with / without the accessible space) in lockstep
//
// A Simulator is advanced by an external driver supplying a non-decreasing
// clock value once per tick. Nothing inside the engine runs concurrently; the
// atomicity of space assignment comes from processing each Advance call to
// completion before the next one is accepted.
//
// # Key Interfaces
//
//   - AssignmentPolicy: pick a space for an arriving vehicle
//   - ScheduleSource: produce a pending schedule on construction and Reset
//
// Callers read state through snapshot structs (VehicleSnapshot,
// SpaceSnapshot, Summary) and never through the live entities.
package sim
