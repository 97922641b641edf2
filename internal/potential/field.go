package potential

import (
	"math"

	"github.com/san-kum/galpop/internal/astro"
)

// Field evaluates the gravitational acceleration (kpc/Myr²) at a
// galactocentric position (kpc) and time (Myr).
type Field interface {
	Acceleration(pos astro.Vec3, t float64) (astro.Vec3, error)
}

// Valuer is implemented by fields that can also evaluate the scalar
// potential (kpc²/Myr²). Optional; used for energy diagnostics.
type Valuer interface {
	Value(pos astro.Vec3, t float64) (float64, error)
}

// Extrapolation controls what a bounded field does when queried outside its
// valid domain.
type Extrapolation int

const (
	// Abort returns astro.ErrDomain for out-of-domain queries.
	Abort Extrapolation = iota
	// Clamp evaluates at the nearest in-domain point instead.
	Clamp
)

// CircularVelocity returns the local circular speed (kpc/Myr) implied by the
// field at pos, from v_c² = -r·a.
func CircularVelocity(f Field, pos astro.Vec3, t float64) (float64, error) {
	a, err := f.Acceleration(pos, t)
	if err != nil {
		return 0, err
	}
	vc2 := -pos.Dot(a)
	if vc2 <= 0 {
		return 0, nil
	}
	return math.Sqrt(vc2), nil
}
