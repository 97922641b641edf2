package astro

import (
	"errors"
	"fmt"
)

// Error taxonomy for population runs. Per-system failures wrap one of these
// sentinels; configuration failures surface before any dynamics run.
var (
	// ErrSampling indicates invalid population or star-formation-history
	// configuration. Raised before dispatch, never per-system.
	ErrSampling = errors.New("galpop: invalid sampling configuration")

	// ErrEvolutionDiverged indicates the stellar-evolution stepper could not
	// produce a valid next event within its retry budget.
	ErrEvolutionDiverged = errors.New("galpop: evolution stepper diverged")

	// ErrIntegrationFailed indicates the orbit integrator did not converge
	// (adaptive step collapsed below the configured minimum).
	ErrIntegrationFailed = errors.New("galpop: orbit integration failed")

	// ErrDomain indicates the potential was evaluated outside its valid
	// spatial or temporal range.
	ErrDomain = errors.New("galpop: potential queried outside valid domain")

	// ErrCancelled indicates a run-level cancellation interrupted a system
	// mid-advance. Completed histories are preserved.
	ErrCancelled = errors.New("galpop: run cancelled")
)

// SystemError attaches the originating system and simulation time to a
// failure so population-level callers can partition results by cause.
type SystemError struct {
	SystemID int
	Time     float64
	Err      error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("system %d (t=%.4f Myr): %v", e.SystemID, e.Time, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}
