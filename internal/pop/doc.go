// Package pop couples binary stellar evolution to galactic orbit
// integration.
//
// A [System] is one sampled binary tracked from birth to the simulation
// horizon. The [Coupler] drives each system through an explicit state
// machine (bound, disrupted, merged, terminal), asking the
// [evolve.Stepper] for the next discrete event and the orbit integrator for
// the trajectory between events. Velocity impulses (natal kicks) are applied
// strictly after the integrator's last sample at the event time and before
// the next integration begins.
//
// Bodies are arena-allocated: a [History] holds a flat body table indexed by
// [BodyID], and the live set is a list of ids. When a binary disrupts, the
// centre-of-mass body is retired and two component bodies continue from the
// disruption position with their own post-kick velocities.
//
// Systems are independent, so population runs are embarrassingly parallel:
// [Coupler.Run] fans systems out over a worker pool, isolates per-system
// failures, and returns a partitioned result. Cancellation preserves
// completed histories and tags in-flight systems as cancelled.
package pop
