package astro

// Unit system: kpc, Myr, solar masses. Velocities internal to the engine are
// kpc/Myr; km/s appears only at component boundaries.
const (
	// KmPerSecToKpcPerMyr converts km/s to kpc/Myr.
	KmPerSecToKpcPerMyr = 1.0227121650537077e-3

	// KpcPerMyrToKmPerSec converts kpc/Myr back to km/s for reporting.
	KpcPerMyrToKmPerSec = 1.0 / KmPerSecToKpcPerMyr

	// G is the gravitational constant in kpc³ Msun⁻¹ Myr⁻².
	G = 4.498502151469554e-12
)

// Kms builds a velocity vector from components quoted in km/s.
func Kms(x, y, z float64) Vec3 {
	return Vec3{x, y, z}.Scale(KmPerSecToKpcPerMyr)
}
