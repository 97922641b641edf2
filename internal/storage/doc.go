// Package storage persists population runs to a directory tree: one
// subdirectory per run holding metadata.json, histories.json and, when any
// system failed, failures.json. The histories file is the ordered event and
// segment log per system, so a saved run can be reloaded and re-observed
// without re-running the dynamics.
package storage
