// Package orbit integrates single-body trajectories through a gravitational
// potential.
//
// [Integrator.Integrate] advances a phase-space state from t0 to t1 and
// returns fixed-cadence samples plus the exact end state. Integration is a
// pure function: identical inputs and tolerance configuration give identical
// output. Velocity impulses are never applied here; callers split intervals
// at event boundaries instead.
//
// Three methods are available: fixed-step RK4, adaptive Dormand-Prince
// (RK45) and symplectic leapfrog (kick-drift-kick). Backwards integration
// (t1 < t0) is supported for rewinding bodies to their formation time.
package orbit
