// Package potential provides time-dependent galactic gravitational fields.
//
// Every field implements [Field], evaluating the acceleration at a
// galactocentric position and time. Variants:
//
//   - [Plummer]: softened spherical potential
//   - [MiyamotoNagai]: flattened disc potential
//   - [NFW]: dark-matter halo profile
//   - [Composite]: sum of components ([MilkyWay] is the stock preset)
//   - [SnapshotGrid]: static field interpolated from simulation snapshot data
//   - [SnapshotSequence]: time-evolving stack of snapshot grids
//
// Analytic fields are valid everywhere except the origin; snapshot-backed
// fields have a bounded domain and report [astro.ErrDomain] outside it
// unless an extrapolation policy is configured.
//
// All fields are immutable after construction and safe for concurrent reads.
package potential
