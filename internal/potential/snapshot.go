package potential

import (
	"fmt"

	"github.com/san-kum/galpop/internal/astro"
)

// SnapshotGrid is a time-static field sampled on a regular Cartesian grid,
// typically derived from a hydrodynamical simulation snapshot. Acceleration
// queries are answered by trilinear interpolation; the grid's bounding box
// is the valid domain.
type SnapshotGrid struct {
	Min, Max astro.Vec3
	Dims     [3]int
	Policy   Extrapolation

	accel []astro.Vec3 // len = Dims[0]*Dims[1]*Dims[2], x-fastest
	step  astro.Vec3
}

// NewSnapshotGrid builds a grid field from pre-computed accelerations laid
// out x-fastest. Each dimension needs at least two nodes.
func NewSnapshotGrid(min, max astro.Vec3, dims [3]int, accel []astro.Vec3, policy Extrapolation) (*SnapshotGrid, error) {
	for _, d := range dims {
		if d < 2 {
			return nil, fmt.Errorf("snapshot grid needs >=2 nodes per axis, got %v", dims)
		}
	}
	if max.X <= min.X || max.Y <= min.Y || max.Z <= min.Z {
		return nil, fmt.Errorf("snapshot grid has empty extent: min %+v max %+v", min, max)
	}
	if want := dims[0] * dims[1] * dims[2]; len(accel) != want {
		return nil, fmt.Errorf("snapshot grid expects %d samples, got %d", want, len(accel))
	}
	return &SnapshotGrid{
		Min:   min,
		Max:   max,
		Dims:  dims,
		accel: accel,
		step: astro.Vec3{
			X: (max.X - min.X) / float64(dims[0]-1),
			Y: (max.Y - min.Y) / float64(dims[1]-1),
			Z: (max.Z - min.Z) / float64(dims[2]-1),
		},
		Policy: policy,
	}, nil
}

// SampleField fills a grid by evaluating another field at time t. Used to
// freeze an analytic model into snapshot form.
func SampleField(f Field, t float64, min, max astro.Vec3, dims [3]int, policy Extrapolation) (*SnapshotGrid, error) {
	accel := make([]astro.Vec3, dims[0]*dims[1]*dims[2])
	sx := (max.X - min.X) / float64(dims[0]-1)
	sy := (max.Y - min.Y) / float64(dims[1]-1)
	sz := (max.Z - min.Z) / float64(dims[2]-1)
	i := 0
	for kz := 0; kz < dims[2]; kz++ {
		for ky := 0; ky < dims[1]; ky++ {
			for kx := 0; kx < dims[0]; kx++ {
				pos := astro.Vec3{
					X: min.X + float64(kx)*sx,
					Y: min.Y + float64(ky)*sy,
					Z: min.Z + float64(kz)*sz,
				}
				a, err := f.Acceleration(pos, t)
				if err != nil {
					return nil, err
				}
				accel[i] = a
				i++
			}
		}
	}
	return NewSnapshotGrid(min, max, dims, accel, policy)
}

func (g *SnapshotGrid) at(ix, iy, iz int) astro.Vec3 {
	return g.accel[(iz*g.Dims[1]+iy)*g.Dims[0]+ix]
}

func (g *SnapshotGrid) Acceleration(pos astro.Vec3, _ float64) (astro.Vec3, error) {
	inside := pos.X >= g.Min.X && pos.X <= g.Max.X &&
		pos.Y >= g.Min.Y && pos.Y <= g.Max.Y &&
		pos.Z >= g.Min.Z && pos.Z <= g.Max.Z
	if !inside {
		if g.Policy == Abort {
			return astro.Vec3{}, fmt.Errorf("%w: position %+v outside grid [%+v, %+v]",
				astro.ErrDomain, pos, g.Min, g.Max)
		}
		pos = astro.Vec3{
			X: clamp(pos.X, g.Min.X, g.Max.X),
			Y: clamp(pos.Y, g.Min.Y, g.Max.Y),
			Z: clamp(pos.Z, g.Min.Z, g.Max.Z),
		}
	}

	fx, ix := cell(pos.X, g.Min.X, g.step.X, g.Dims[0])
	fy, iy := cell(pos.Y, g.Min.Y, g.step.Y, g.Dims[1])
	fz, iz := cell(pos.Z, g.Min.Z, g.step.Z, g.Dims[2])

	var out astro.Vec3
	for dz := 0; dz <= 1; dz++ {
		wz := 1 - fz
		if dz == 1 {
			wz = fz
		}
		for dy := 0; dy <= 1; dy++ {
			wy := 1 - fy
			if dy == 1 {
				wy = fy
			}
			for dx := 0; dx <= 1; dx++ {
				wx := 1 - fx
				if dx == 1 {
					wx = fx
				}
				out = out.Add(g.at(ix+dx, iy+dy, iz+dz).Scale(wx * wy * wz))
			}
		}
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// cell locates v within the grid axis, returning the fractional offset into
// the cell and the lower node index (never the last node).
func cell(v, min, step float64, n int) (float64, int) {
	u := (v - min) / step
	i := int(u)
	if i > n-2 {
		i = n - 2
	}
	if i < 0 {
		i = 0
	}
	return u - float64(i), i
}

// SnapshotSequence is a time-evolving field: a stack of snapshot grids at
// strictly increasing epochs, linearly interpolated in time. The temporal
// domain is [Times[0], Times[last]].
type SnapshotSequence struct {
	Times  []float64
	Grids  []*SnapshotGrid
	Policy Extrapolation
}

func NewSnapshotSequence(times []float64, grids []*SnapshotGrid, policy Extrapolation) (*SnapshotSequence, error) {
	if len(times) != len(grids) || len(times) < 2 {
		return nil, fmt.Errorf("snapshot sequence needs >=2 matching epochs, got %d times and %d grids",
			len(times), len(grids))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("snapshot epochs must be strictly increasing at index %d", i)
		}
	}
	return &SnapshotSequence{Times: times, Grids: grids, Policy: policy}, nil
}

func (s *SnapshotSequence) Acceleration(pos astro.Vec3, t float64) (astro.Vec3, error) {
	last := len(s.Times) - 1
	if t < s.Times[0] || t > s.Times[last] {
		if s.Policy == Abort {
			return astro.Vec3{}, fmt.Errorf("%w: time %.4f outside snapshot range [%.4f, %.4f]",
				astro.ErrDomain, t, s.Times[0], s.Times[last])
		}
		t = clamp(t, s.Times[0], s.Times[last])
	}

	hi := 1
	for hi < last && s.Times[hi] < t {
		hi++
	}
	lo := hi - 1

	a0, err := s.Grids[lo].Acceleration(pos, t)
	if err != nil {
		return astro.Vec3{}, err
	}
	a1, err := s.Grids[hi].Acceleration(pos, t)
	if err != nil {
		return astro.Vec3{}, err
	}
	f := (t - s.Times[lo]) / (s.Times[hi] - s.Times[lo])
	return a0.Scale(1 - f).Add(a1.Scale(f)), nil
}
