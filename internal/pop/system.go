package pop

import (
	"math"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/evolve"
)

// System is one sampled initial binary. Immutable once sampled.
type System struct {
	ID        int        `json:"id"`
	BirthTime float64    `json:"birth_time"` // Myr
	BirthPos  astro.Vec3 `json:"birth_pos"`  // kpc
	BirthVel  astro.Vec3 `json:"birth_vel"`  // kpc/Myr

	M1           float64 `json:"m1"`         // Msun
	M2           float64 `json:"m2"`         // Msun
	Separation   float64 `json:"separation"` // Rsun
	Eccentricity float64 `json:"eccentricity"`
	Metallicity  float64 `json:"metallicity"`
}

// initialPhysicalState builds the stepper-facing state at birth. Radii use
// a rough main-sequence mass-radius relation; the stepper is free to ignore
// them.
func (s System) initialPhysicalState() evolve.PhysicalState {
	return evolve.PhysicalState{
		Primary:      evolve.StarState{Mass: s.M1, Radius: msRadius(s.M1), Stage: evolve.MainSequence},
		Secondary:    evolve.StarState{Mass: s.M2, Radius: msRadius(s.M2), Stage: evolve.MainSequence},
		Separation:   s.Separation,
		Eccentricity: s.Eccentricity,
		Metallicity:  s.Metallicity,
		ZAMS:         s.BirthTime,
	}
}

// msRadius approximates R ~ M^0.8 in solar units.
func msRadius(mass float64) float64 {
	if mass <= 0 {
		return 0
	}
	return math.Pow(mass, 0.8)
}
