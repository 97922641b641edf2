package potential

import (
	"math"

	"github.com/san-kum/galpop/internal/astro"
)

// Plummer is a softened spherical potential
// Φ(r) = -GM / sqrt(r² + b²).
type Plummer struct {
	Mass float64 // Msun
	B    float64 // softening length, kpc
}

func (p Plummer) Acceleration(pos astro.Vec3, _ float64) (astro.Vec3, error) {
	r2 := pos.NormSq() + p.B*p.B
	inv := 1.0 / math.Sqrt(r2)
	return pos.Scale(-astro.G * p.Mass * inv * inv * inv), nil
}

func (p Plummer) Value(pos astro.Vec3, _ float64) (float64, error) {
	return -astro.G * p.Mass / math.Sqrt(pos.NormSq()+p.B*p.B), nil
}

// MiyamotoNagai is the flattened disc potential
// Φ(R,z) = -GM / sqrt(R² + (a + sqrt(z² + b²))²).
type MiyamotoNagai struct {
	Mass float64 // Msun
	A    float64 // scale length, kpc
	B    float64 // scale height, kpc
}

func (mn MiyamotoNagai) Acceleration(pos astro.Vec3, _ float64) (astro.Vec3, error) {
	zb := math.Sqrt(pos.Z*pos.Z + mn.B*mn.B)
	azb := mn.A + zb
	d2 := pos.X*pos.X + pos.Y*pos.Y + azb*azb
	inv := 1.0 / math.Sqrt(d2)
	f := -astro.G * mn.Mass * inv * inv * inv
	return astro.Vec3{
		X: f * pos.X,
		Y: f * pos.Y,
		Z: f * pos.Z * azb / zb,
	}, nil
}

func (mn MiyamotoNagai) Value(pos astro.Vec3, _ float64) (float64, error) {
	zb := math.Sqrt(pos.Z*pos.Z + mn.B*mn.B)
	azb := mn.A + zb
	return -astro.G * mn.Mass / math.Sqrt(pos.X*pos.X+pos.Y*pos.Y+azb*azb), nil
}

// NFW is the Navarro-Frenk-White halo profile with scale mass Mass and scale
// radius Rs.
type NFW struct {
	Mass float64 // Msun
	Rs   float64 // kpc
}

func (n NFW) Acceleration(pos astro.Vec3, _ float64) (astro.Vec3, error) {
	r := pos.Norm()
	if r == 0 {
		return astro.Vec3{}, nil
	}
	x := r / n.Rs
	// M(<r) profile factor: ln(1+x) - x/(1+x)
	m := math.Log(1+x) - x/(1+x)
	f := -astro.G * n.Mass * m / (r * r * r)
	return pos.Scale(f), nil
}

func (n NFW) Value(pos astro.Vec3, _ float64) (float64, error) {
	r := pos.Norm()
	if r == 0 {
		return -astro.G * n.Mass / n.Rs, nil
	}
	return -astro.G * n.Mass * math.Log(1+r/n.Rs) / r, nil
}

// Composite sums the accelerations of its components.
type Composite []Field

func (c Composite) Acceleration(pos astro.Vec3, t float64) (astro.Vec3, error) {
	var total astro.Vec3
	for _, f := range c {
		a, err := f.Acceleration(pos, t)
		if err != nil {
			return astro.Vec3{}, err
		}
		total = total.Add(a)
	}
	return total, nil
}

func (c Composite) Value(pos astro.Vec3, t float64) (float64, error) {
	total := 0.0
	for _, f := range c {
		v, ok := f.(Valuer)
		if !ok {
			continue
		}
		phi, err := v.Value(pos, t)
		if err != nil {
			return 0, err
		}
		total += phi
	}
	return total, nil
}

// MilkyWay returns a three-component Milky Way model: Plummer bulge,
// Miyamoto-Nagai disc and NFW halo. Parameter values follow the common
// bulge/disc/halo decomposition used for population synthesis.
func MilkyWay() Composite {
	return Composite{
		Plummer{Mass: 5.0e9, B: 0.3},
		MiyamotoNagai{Mass: 6.8e10, A: 3.0, B: 0.28},
		NFW{Mass: 5.4e11, Rs: 15.62},
	}
}
