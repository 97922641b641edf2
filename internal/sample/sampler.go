package sample

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/pop"
	"github.com/san-kum/galpop/internal/potential"
)

// Config controls population sampling.
type Config struct {
	Seed        int64
	N           int     // systems to draw before the mass cutoff
	M1Cutoff    float64 // Msun; systems with a lighter primary are dropped
	VDispersion float64 // km/s, isotropic dispersion around circular velocity
	MinMass     float64 // Msun, IMF lower bound
	MaxMass     float64 // Msun, IMF upper bound
}

func DefaultConfig() Config {
	return Config{
		Seed:        42,
		N:           1000,
		M1Cutoff:    7.0,
		VDispersion: 5.0,
		MinMass:     0.08,
		MaxMass:     150.0,
	}
}

// Stats reports the bookkeeping a population draw implies: how much stellar
// mass was sampled and how many systems survived the primary-mass cutoff.
type Stats struct {
	TotalMass float64 // Msun across all sampled primaries+secondaries
	NSampled  int
	NMatched  int // systems surviving the cutoff
}

// Sampler draws initial conditions for a population. The potential supplies
// the local circular velocity at each birth position.
type Sampler struct {
	SFH   SFH
	Field potential.Field
}

func NewSampler(sfh SFH, field potential.Field) *Sampler {
	return &Sampler{SFH: sfh, Field: field}
}

// Sample draws cfg.N binaries and returns those whose primary passes the
// mass cutoff, with ids assigned sequentially from 0. The generator is
// private to this call; re-running with the same seed reproduces the
// population exactly.
func (s *Sampler) Sample(cfg Config) ([]pop.System, Stats, error) {
	if cfg.N <= 0 {
		return nil, Stats{}, fmt.Errorf("%w: population size must be positive, got %d",
			astro.ErrSampling, cfg.N)
	}
	if cfg.MinMass <= 0 || cfg.MaxMass <= cfg.MinMass {
		return nil, Stats{}, fmt.Errorf("%w: bad IMF mass range [%f, %f]",
			astro.ErrSampling, cfg.MinMass, cfg.MaxMass)
	}
	if d, ok := s.SFH.(ExponentialDisk); ok && d.Window <= 0 {
		return nil, Stats{}, fmt.Errorf("%w: star formation window must be non-empty",
			astro.ErrSampling)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	stats := Stats{NSampled: cfg.N}
	var systems []pop.System

	for i := 0; i < cfg.N; i++ {
		m1 := kroupaMass(rng, cfg.MinMass, cfg.MaxMass)
		// uniform mass ratio, companion above the hydrogen-burning limit
		q := rng.Float64()
		m2 := math.Max(q*m1, 0.08)
		sep := powerLawSeparation(rng)
		ecc := math.Sqrt(rng.Float64()) // thermal distribution p(e) ∝ e
		birth := s.SFH.Draw(rng)

		stats.TotalMass += m1 + m2

		vel, err := s.birthVelocity(rng, birth, cfg.VDispersion)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("%w: circular velocity at %+v: %v",
				astro.ErrSampling, birth.Pos, err)
		}

		if m1 < cfg.M1Cutoff {
			continue
		}

		systems = append(systems, pop.System{
			ID:           len(systems),
			BirthTime:    birth.Time,
			BirthPos:     birth.Pos,
			BirthVel:     vel,
			M1:           m1,
			M2:           m2,
			Separation:   sep,
			Eccentricity: ecc,
			Metallicity:  birth.Metallicity,
		})
	}

	stats.NMatched = len(systems)
	return systems, stats, nil
}

// birthVelocity is the local circular velocity (tangential) plus an
// isotropic Gaussian dispersion of σ/√3 per component.
func (s *Sampler) birthVelocity(rng *rand.Rand, birth Birth, dispersion float64) (astro.Vec3, error) {
	vc, err := potential.CircularVelocity(s.Field, birth.Pos, birth.Time)
	if err != nil {
		return astro.Vec3{}, err
	}

	r := birth.Pos.CylR()
	var tangent astro.Vec3
	if r > 0 {
		tangent = astro.Vec3{X: -birth.Pos.Y / r, Y: birth.Pos.X / r}
	}

	sigma := dispersion / math.Sqrt(3) * astro.KmPerSecToKpcPerMyr
	jitter := astro.Vec3{
		X: rng.NormFloat64() * sigma,
		Y: rng.NormFloat64() * sigma,
		Z: rng.NormFloat64() * sigma,
	}
	return tangent.Scale(vc).Add(jitter), nil
}

// kroupaMass draws from the Kroupa (2001) broken power-law IMF restricted
// to [min, max], by rejection over the analytic envelope.
func kroupaMass(rng *rand.Rand, min, max float64) float64 {
	for {
		// Sample log-uniform then accept against the IMF shape; adequate
		// for the modest draw counts of population synthesis setups.
		logM := math.Log(min) + rng.Float64()*(math.Log(max)-math.Log(min))
		m := math.Exp(logM)
		// ξ(m)·m normalised to its value at min (envelope = 1 at min)
		if rng.Float64() < kroupaWeight(m)/kroupaWeight(min) {
			return m
		}
	}
}

// kroupaWeight is m·ξ(m) up to normalisation, with breaks at 0.08 and 0.5.
func kroupaWeight(m float64) float64 {
	switch {
	case m < 0.08:
		return math.Pow(m, 1-0.3)
	case m < 0.5:
		return 0.08 * math.Pow(m/0.08, 1-1.3)
	default:
		return 0.08 * math.Pow(0.5/0.08, 1-1.3) * math.Pow(m/0.5, 1-2.3)
	}
}

// powerLawSeparation draws the initial separation in Rsun, log-uniform over
// [10, 1e4] (Öpik-style).
func powerLawSeparation(rng *rand.Rand) float64 {
	lo, hi := math.Log(10.0), math.Log(1e4)
	return math.Exp(lo + rng.Float64()*(hi-lo))
}
