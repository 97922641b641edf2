package orbit

import (
	"fmt"
	"math"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/potential"
)

// Method selects the stepping scheme.
type Method int

const (
	DormandPrince Method = iota // adaptive RK45, the default
	RK4                         // fixed-step classical Runge-Kutta
	Leapfrog                    // fixed-step kick-drift-kick
)

func (m Method) String() string {
	switch m {
	case DormandPrince:
		return "dopri45"
	case RK4:
		return "rk4"
	case Leapfrog:
		return "leapfrog"
	}
	return "unknown"
}

// ParseMethod maps a config string to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "dopri45":
		return DormandPrince, nil
	case "rk4":
		return RK4, nil
	case "leapfrog":
		return Leapfrog, nil
	}
	return 0, fmt.Errorf("unknown integration method %q", s)
}

// Integrator holds the numerical configuration for orbit integration. The
// zero value is not usable; start from Default.
type Integrator struct {
	Method    Method
	Tolerance float64 // per-step relative error target (adaptive)
	MinStep   float64 // Myr; adaptive collapse below this is a failure
	MaxStep   float64 // Myr; cap for all methods
	Cadence   float64 // Myr between output samples
}

// Default mirrors the stock cogsworth setup: 1 Myr output cadence with
// adaptive Dormand-Prince substepping.
func Default() Integrator {
	return Integrator{
		Method:    DormandPrince,
		Tolerance: 1e-8,
		MinStep:   1e-8,
		MaxStep:   1.0,
		Cadence:   1.0,
	}
}

// state is the 6-dimensional integration state split into two 3-vectors.
type state struct {
	pos, vel astro.Vec3
}

func (s state) axpy(h float64, d state) state {
	return state{
		pos: s.pos.Add(d.pos.Scale(h)),
		vel: s.vel.Add(d.vel.Scale(h)),
	}
}

// derivFunc evaluates (dpos/dt, dvel/dt) = (vel, a(pos,t)).
type derivFunc func(s state, t float64) (state, error)

func fieldDeriv(f potential.Field) derivFunc {
	return func(s state, t float64) (state, error) {
		a, err := f.Acceleration(s.pos, t)
		if err != nil {
			return state{}, err
		}
		return state{pos: s.vel, vel: a}, nil
	}
}

// Integrate advances w0 from t0 to t1 through the field and returns samples
// at fixed cadence, including both endpoints. The last sample is the exact
// state at t1. t1 < t0 integrates backwards; t1 == t0 returns the single
// initial sample.
func (it Integrator) Integrate(w0 astro.PhaseSpace, t0, t1 float64, field potential.Field) ([]astro.PhaseSpace, error) {
	if it.Cadence <= 0 {
		return nil, fmt.Errorf("integrator cadence must be positive, got %f", it.Cadence)
	}
	if !w0.IsValid() {
		return nil, fmt.Errorf("%w: initial state contains NaN/Inf", astro.ErrIntegrationFailed)
	}

	span := t1 - t0
	samples := []astro.PhaseSpace{{Pos: w0.Pos, Vel: w0.Vel, T: t0}}
	if span == 0 {
		return samples, nil
	}

	dir := 1.0
	if span < 0 {
		dir = -1.0
	}
	n := int(math.Ceil(math.Abs(span)/it.Cadence - 1e-12))

	deriv := fieldDeriv(field)
	s := state{pos: w0.Pos, vel: w0.Vel}
	t := t0
	for i := 1; i <= n; i++ {
		target := t0 + dir*float64(i)*it.Cadence
		if (dir > 0 && target > t1) || (dir < 0 && target < t1) || i == n {
			target = t1
		}
		next, err := it.span(deriv, s, t, target)
		if err != nil {
			return nil, err
		}
		s = next
		t = target
		if !s.pos.IsValid() || !s.vel.IsValid() {
			return nil, fmt.Errorf("%w: state diverged at t=%.4f", astro.ErrIntegrationFailed, t)
		}
		samples = append(samples, astro.PhaseSpace{Pos: s.pos, Vel: s.vel, T: t})
	}
	return samples, nil
}

// span integrates one cadence interval [t, target] with method-appropriate
// substepping.
func (it Integrator) span(deriv derivFunc, s state, t, target float64) (state, error) {
	switch it.Method {
	case RK4:
		return it.fixedSpan(deriv, s, t, target, rk4Step)
	case Leapfrog:
		return it.fixedSpan(deriv, s, t, target, leapfrogStep)
	default:
		return it.adaptiveSpan(deriv, s, t, target)
	}
}

// fixedSpan subdivides the interval into equal steps no larger than MaxStep.
func (it Integrator) fixedSpan(deriv derivFunc, s state, t, target float64, step fixedStep) (state, error) {
	span := target - t
	n := int(math.Ceil(math.Abs(span) / it.MaxStep))
	if n < 1 {
		n = 1
	}
	h := span / float64(n)
	for i := 0; i < n; i++ {
		next, err := step(deriv, s, t, h)
		if err != nil {
			return state{}, err
		}
		s = next
		t += h
	}
	return s, nil
}
