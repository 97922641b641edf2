// Package obs turns completed histories into an "observed" catalog.
//
// The transform is strictly downstream of the dynamics: it consumes a
// [pop.History]'s terminal states plus a parameter catalog (dust model,
// bolometric-correction table, survey magnitude limit) and produces one
// observed record per surviving body. It holds no state of its own, so
// replaying a persisted history produces byte-identical records.
package obs
