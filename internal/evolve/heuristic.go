package evolve

import (
	"math"
	"math/rand"

	"github.com/san-kum/galpop/internal/astro"
)

// orbitalVelocityCoeff converts sqrt(Msun/Rsun) to km/s for a circular
// orbit: v = sqrt(G*Mtot/a).
const orbitalVelocityCoeff = 436.7

// HeuristicStepper is an analytic stand-in for a rapid binary-evolution
// code. Supernova times follow a crude nuclear-lifetime scaling, natal kicks
// a Maxwellian draw, and the disruption criterion compares the kick speed to
// the orbital speed. Useful for self-contained runs and scaling tests; not a
// substitute for real population synthesis.
type HeuristicStepper struct {
	Seed      int64
	KickSigma float64 // km/s, per-component Maxwellian dispersion
	SNCutoff  float64 // Msun, minimum ZAMS mass for core collapse
}

func NewHeuristicStepper(seed int64) *HeuristicStepper {
	return &HeuristicStepper{Seed: seed, KickSigma: 265.0, SNCutoff: 8.0}
}

// lifetime is a rough main-sequence + post-MS nuclear lifetime in Myr.
func lifetime(mass float64) float64 {
	if mass <= 0 {
		return math.Inf(1)
	}
	t := 10000.0 * math.Pow(mass, -2.5)
	if t < 3.0 {
		return 3.0
	}
	return t
}

func (h *HeuristicStepper) Next(systemID int, st PhysicalState, t, horizon float64) (Event, bool, error) {
	type candidate struct {
		time float64
		make func() Event
	}
	var cands []candidate

	// Close binaries interact at half the donor's lifetime.
	if !st.Disrupted && !st.Merged && st.Separation > 0 {
		interact := st.ZAMS + 0.5*lifetime(st.Primary.Mass)
		if interact > t {
			if st.Separation < st.Primary.Radius+st.Secondary.Radius {
				cands = append(cands, candidate{interact, func() Event { return h.merger(st, interact) }})
			} else if st.Separation < 500 {
				cands = append(cands, candidate{interact, func() Event { return h.massTransfer(st, interact) }})
			}
		}
	}

	if te := st.ZAMS + lifetime(st.Primary.Mass); te > t &&
		st.Primary.Mass >= h.SNCutoff && !st.Primary.Stage.Remnant() {
		cands = append(cands, candidate{te, func() Event { return h.supernova(systemID, st, te, true) }})
	}
	if te := st.ZAMS + lifetime(st.Secondary.Mass); te > t &&
		st.Secondary.Mass >= h.SNCutoff && !st.Secondary.Stage.Remnant() {
		cands = append(cands, candidate{te, func() Event { return h.supernova(systemID, st, te, false) }})
	}

	best := -1
	for i, c := range cands {
		if best == -1 || c.time < cands[best].time {
			best = i
		}
	}
	if best == -1 || cands[best].time > horizon {
		return Event{}, false, nil
	}
	return cands[best].make(), true, nil
}

func (h *HeuristicStepper) massTransfer(st PhysicalState, t float64) Event {
	post := st
	dm := 0.3 * st.Primary.Mass
	post.Primary.Mass -= dm
	post.Secondary.Mass += 0.5 * dm // half the transferred mass is accreted
	post.Separation *= 0.7
	post.Eccentricity = 0 // circularised
	return Event{Time: t, Type: MassTransfer, State: post}
}

func (h *HeuristicStepper) merger(st PhysicalState, t float64) Event {
	post := st
	post.Merged = true
	post.Primary = StarState{
		Mass:   st.Primary.Mass + st.Secondary.Mass,
		Radius: math.Max(st.Primary.Radius, st.Secondary.Radius),
		Stage:  Giant,
	}
	post.Secondary = StarState{Stage: Massless}
	post.Separation = 0
	post.Eccentricity = 0
	return Event{Time: t, Type: Merger, State: post}
}

func (h *HeuristicStepper) supernova(systemID int, st PhysicalState, t float64, primary bool) Event {
	rng := rand.New(rand.NewSource(mix(h.Seed, int64(systemID), boolBit(primary))))

	star := st.Secondary
	companion := st.Primary
	if primary {
		star = st.Primary
		companion = st.Secondary
	}

	remnant := StarState{Mass: 1.4, Stage: NeutronStar}
	if star.Mass >= 20 {
		remnant = StarState{Mass: math.Max(5, 0.2*star.Mass), Stage: BlackHole}
	}

	// Maxwellian kick: three Gaussian components, damped for black holes by
	// fallback (momentum-conserving scaling).
	sigma := h.KickSigma
	if remnant.Stage == BlackHole {
		sigma *= 1.4 / remnant.Mass
	}
	kick := astro.Kms(rng.NormFloat64()*sigma, rng.NormFloat64()*sigma, rng.NormFloat64()*sigma)

	post := st
	if primary {
		post.Primary = remnant
	} else {
		post.Secondary = remnant
	}

	alone := st.Disrupted || st.Merged || st.Separation <= 0
	if alone {
		// Single body: the kick lands directly on whichever component this is.
		target := TargetSecondary
		if primary || st.Merged {
			target = TargetPrimary
		}
		return Event{Time: t, Type: Supernova, State: post,
			Impulses: []Impulse{{Target: target, DeltaV: kick}}}
	}

	mtot := star.Mass + companion.Mass
	vorb := orbitalVelocityCoeff * math.Sqrt(mtot/st.Separation) // km/s

	if kick.Norm()*astro.KpcPerMyrToKmPerSec > vorb {
		// Unbound: each component flies off with its share of the orbital
		// motion, the exploding star additionally carrying the kick.
		u := randomUnit(rng)
		vStar := kick.Add(u.Scale(vorb * companion.Mass / mtot * astro.KmPerSecToKpcPerMyr))
		vComp := u.Scale(-vorb * star.Mass / mtot * astro.KmPerSecToKpcPerMyr)

		post.Disrupted = true
		post.Separation = 0

		starTarget, compTarget := TargetSecondary, TargetPrimary
		if primary {
			starTarget, compTarget = TargetPrimary, TargetSecondary
		}
		return Event{Time: t, Type: Disruption, State: post,
			Impulses: []Impulse{
				{Target: starTarget, DeltaV: vStar},
				{Target: compTarget, DeltaV: vComp},
			}}
	}

	// Still bound: the system recoils with the mass-weighted kick (Blaauw).
	recoil := kick.Scale(remnant.Mass / (remnant.Mass + companion.Mass))
	return Event{Time: t, Type: Supernova, State: post,
		Impulses: []Impulse{{Target: TargetSystem, DeltaV: recoil}}}
}

func randomUnit(rng *rand.Rand) astro.Vec3 {
	for {
		v := astro.Vec3{
			X: rng.NormFloat64(),
			Y: rng.NormFloat64(),
			Z: rng.NormFloat64(),
		}
		if n := v.Norm(); n > 1e-12 {
			return v.Scale(1 / n)
		}
	}
}

func boolBit(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// mix folds the seed, system id and star index into one deterministic
// source seed (splitmix-style).
func mix(vals ...int64) int64 {
	h := uint64(0x9e3779b97f4a7c15)
	for _, v := range vals {
		h ^= uint64(v) + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2)
	}
	return int64(h)
}
