// Package sample draws initial conditions for binary populations.
//
// [Sampler.Sample] combines initial binary parameters (Kroupa primary
// masses, uniform mass ratio, power-law separations, thermal
// eccentricities) with a [SFH] star-formation-history model providing birth
// time, position and metallicity, and assigns birth velocities from the
// galactic potential's local circular velocity plus an isotropic dispersion.
//
// All randomness flows through one explicit seeded generator; the same seed
// and configuration reproduce the same population bit for bit. Generators
// are never shared across concurrent calls.
package sample
