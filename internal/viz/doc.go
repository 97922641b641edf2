// Package viz renders population runs in the terminal: braille-canvas
// trajectory maps in the galactic plane, asciigraph time series, a
// lipgloss-styled run summary and a Bubble Tea progress view for long runs.
package viz
