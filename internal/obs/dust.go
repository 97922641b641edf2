package obs

import (
	"math"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/evolve"
)

// DustModel is a smooth double-exponential disc of absorbing material.
// Extinction is the dust density integrated along the line of sight, scaled
// to magnitudes.
type DustModel struct {
	Density     float64 // mag/kpc of V-band extinction in the midplane at the solar circle
	ScaleLength float64 // kpc
	ScaleHeight float64 // kpc
	Steps       int     // line-of-sight quadrature steps
}

func DefaultDust() DustModel {
	return DustModel{
		Density:     1.0,
		ScaleLength: 3.0,
		ScaleHeight: 0.1,
		Steps:       64,
	}
}

// Extinction integrates the dust density from the observer to the target by
// midpoint quadrature and returns A_V in magnitudes.
func (d DustModel) Extinction(observer, target astro.Vec3) float64 {
	los := target.Sub(observer)
	length := los.Norm()
	if length == 0 || d.Steps <= 0 {
		return 0
	}

	// Normalise so density(solar circle, midplane) == Density.
	norm := d.Density / math.Exp(-8.122/d.ScaleLength)

	h := 1.0 / float64(d.Steps)
	total := 0.0
	for i := 0; i < d.Steps; i++ {
		f := (float64(i) + 0.5) * h
		p := observer.Add(los.Scale(f))
		rho := norm * math.Exp(-p.CylR()/d.ScaleLength) * math.Exp(-math.Abs(p.Z)/d.ScaleHeight)
		total += rho
	}
	return total * h * length
}

// BCTable maps a star's physical state to a bolometric correction in
// magnitudes, interpolated linearly in mass for burning stars.
type BCTable struct {
	Masses  []float64 // ascending
	BCs     []float64 // same length
	Remnant float64   // flat correction for compact remnants
}

// DefaultBCTable is a coarse V-band correction: hot massive stars emit most
// of their light outside the band.
func DefaultBCTable() BCTable {
	return BCTable{
		Masses:  []float64{0.5, 1.0, 2.0, 5.0, 10.0, 20.0, 50.0},
		BCs:     []float64{-1.5, -0.1, -0.2, -1.0, -2.5, -3.5, -4.5},
		Remnant: 0,
	}
}

// Correction returns the bolometric correction for one star.
func (t BCTable) Correction(star evolve.StarState) float64 {
	if star.Stage.Remnant() {
		return t.Remnant
	}
	if len(t.Masses) == 0 {
		return 0
	}
	m := star.Mass
	if m <= t.Masses[0] {
		return t.BCs[0]
	}
	last := len(t.Masses) - 1
	if m >= t.Masses[last] {
		return t.BCs[last]
	}
	hi := 1
	for t.Masses[hi] < m {
		hi++
	}
	if m == t.Masses[hi] {
		return t.BCs[hi]
	}
	lo := hi - 1
	f := (m - t.Masses[lo]) / (t.Masses[hi] - t.Masses[lo])
	return t.BCs[lo] + f*(t.BCs[hi]-t.BCs[lo])
}
