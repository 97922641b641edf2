package sample

import (
	"math"
	"math/rand"

	"github.com/san-kum/galpop/internal/astro"
)

// Birth is one drawn star-formation site: when and where a system forms,
// and at what metallicity.
type Birth struct {
	Time        float64    // Myr since simulation start
	Pos         astro.Vec3 // kpc, galactocentric
	Metallicity float64
}

// SFH models the spatial and temporal density of star formation.
type SFH interface {
	Draw(rng *rand.Rand) Birth
}

// ExponentialDisk is a simple inside-out disc star-formation history:
// uniform formation times over a window, exponentially distributed
// galactocentric radii with a scale length growing linearly with cosmic
// time, a sech² vertical profile, and a radial metallicity gradient.
type ExponentialDisk struct {
	Window      float64 // Myr of star formation, starting at t=0
	ScaleLength float64 // kpc at the end of the window
	GrowthFrac  float64 // fraction of ScaleLength already in place at t=0
	ScaleHeight float64 // kpc
	ZSun        float64 // metallicity normalisation at the solar radius
}

// MilkyWayDisk returns parameters loosely following inside-out disc growth
// fits used in population synthesis.
func MilkyWayDisk(window float64) ExponentialDisk {
	return ExponentialDisk{
		Window:      window,
		ScaleLength: 3.0,
		GrowthFrac:  0.4,
		ScaleHeight: 0.3,
		ZSun:        0.0142,
	}
}

func (d ExponentialDisk) Draw(rng *rand.Rand) Birth {
	tau := rng.Float64() * d.Window

	// Inside-out growth: earlier births see a smaller scale length.
	frac := d.GrowthFrac + (1-d.GrowthFrac)*(tau/d.Window)
	rd := d.ScaleLength * frac

	// Exponential surface-density radius: inverse-CDF sampling of
	// p(R) ∝ R exp(-R/rd) via two uniform draws (Gamma(2) shape).
	r := -rd * math.Log(rng.Float64()*rng.Float64())
	phi := 2 * math.Pi * rng.Float64()

	// sech² vertical profile: inverse CDF is z = h·atanh(2u-1).
	z := d.ScaleHeight * math.Atanh(2*rng.Float64()-1)

	// Crude radial gradient around the solar value.
	met := d.ZSun * math.Exp(-(r-8.0)/8.0)
	if met < 1e-4 {
		met = 1e-4
	}
	if met > 0.03 {
		met = 0.03
	}

	return Birth{
		Time: tau,
		Pos: astro.Vec3{
			X: r * math.Cos(phi),
			Y: r * math.Sin(phi),
			Z: z,
		},
		Metallicity: met,
	}
}

// Burst forms every system at the same instant and position; handy for
// controlled experiments and tests.
type Burst struct {
	Time        float64
	Pos         astro.Vec3
	Metallicity float64
}

func (b Burst) Draw(*rand.Rand) Birth {
	return Birth{Time: b.Time, Pos: b.Pos, Metallicity: b.Metallicity}
}
