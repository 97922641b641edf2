// Package astro provides core value types for galactic kinematics.
//
// The package defines the fundamental types shared by the sampling,
// integration and coupling layers:
//
//   - [Vec3]: galactocentric Cartesian 3-vector
//   - [PhaseSpace]: position + velocity + time of a body
//   - unit conventions and conversion constants
//   - the error taxonomy for per-system failures
//
// # Units
//
// One global coordinate frame (galactocentric Cartesian) and one unit
// system are used everywhere inside the engine: lengths in kpc, times in
// Myr, velocities in kpc/Myr and masses in solar masses. Velocities quoted
// in km/s are converted exactly once at component boundaries using
// [KmPerSecToKpcPerMyr]; nothing converts per-step.
package astro
