// Package evolve defines the binary-stellar-evolution boundary.
//
// The coupling engine treats stellar evolution as a black box behind the
// [Stepper] interface: given a binary's physical state and the current time,
// produce the next discrete evolutionary event (mass transfer, common
// envelope, supernova, disruption, merger) together with the post-event
// physical state and any velocity impulses imparted to the resulting bodies.
//
// Two implementations ship with the engine:
//
//   - [TableStepper]: replays precomputed per-system event tables, the
//     production path when a rapid population-synthesis code has already
//     been run.
//   - [HeuristicStepper]: a lightweight analytic stand-in for self-contained
//     runs and benchmarks; supernova times follow a crude nuclear-lifetime
//     scaling and natal kicks a Maxwellian draw.
//
// Steppers must be stateless per call (safe for concurrent use across
// systems); any randomness must derive deterministically from the system id
// and configured seed.
package evolve
