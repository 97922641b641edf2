package orbit

import (
	"fmt"
	"math"

	"github.com/san-kum/galpop/internal/astro"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

const (
	safety   = 0.9
	minScale = 0.2
	maxScale = 10.0
)

// adaptiveSpan integrates [t, target] with embedded-error step control,
// landing exactly on target.
func (it Integrator) adaptiveSpan(deriv derivFunc, s state, t, target float64) (state, error) {
	dir := 1.0
	if target < t {
		dir = -1.0
	}
	h := dir * it.MaxStep

	for dir*(target-t) > 0 {
		if remaining := target - t; math.Abs(h) > math.Abs(remaining) {
			h = remaining
		}

		next, errRatio, err := it.dopriStep(deriv, s, t, h)
		if err != nil {
			return state{}, err
		}

		if errRatio > 1 {
			// reject and shrink
			h *= math.Max(minScale, safety*math.Pow(errRatio, -0.25))
			if math.Abs(h) < it.MinStep {
				return state{}, fmt.Errorf("%w: step collapsed to %.3e Myr at t=%.4f",
					astro.ErrIntegrationFailed, math.Abs(h), t)
			}
			continue
		}

		s = next
		t += h

		if errRatio > 0 {
			h *= math.Min(maxScale, safety*math.Pow(errRatio, -0.2))
		} else {
			h *= maxScale
		}
		if math.Abs(h) > it.MaxStep {
			h = dir * it.MaxStep
		}
	}
	return s, nil
}

// dopriStep takes one trial step of size h and returns the 5th-order result
// plus the embedded error estimate normalised by the tolerance.
func (it Integrator) dopriStep(deriv derivFunc, s state, t, h float64) (state, float64, error) {
	k1, err := deriv(s, t)
	if err != nil {
		return state{}, 0, err
	}
	k2, err := deriv(s.axpy(h*b21, k1), t+a2*h)
	if err != nil {
		return state{}, 0, err
	}
	k3, err := deriv(s.axpy(h*b31, k1).axpy(h*b32, k2), t+a3*h)
	if err != nil {
		return state{}, 0, err
	}
	k4, err := deriv(s.axpy(h*b41, k1).axpy(h*b42, k2).axpy(h*b43, k3), t+a4*h)
	if err != nil {
		return state{}, 0, err
	}
	k5, err := deriv(s.axpy(h*b51, k1).axpy(h*b52, k2).axpy(h*b53, k3).axpy(h*b54, k4), t+a5*h)
	if err != nil {
		return state{}, 0, err
	}
	k6, err := deriv(s.axpy(h*b61, k1).axpy(h*b62, k2).axpy(h*b63, k3).axpy(h*b64, k4).axpy(h*b65, k5), t+h)
	if err != nil {
		return state{}, 0, err
	}

	next := s.axpy(h*c1, k1).axpy(h*c3, k3).axpy(h*c4, k4).axpy(h*c5, k5).axpy(h*c6, k6)

	k7, err := deriv(next, t+h)
	if err != nil {
		return state{}, 0, err
	}

	errEst := state{}.
		axpy(h*dc1, k1).axpy(h*dc3, k3).axpy(h*dc4, k4).
		axpy(h*dc5, k5).axpy(h*dc6, k6).axpy(h*dc7, k7)

	errMax := 0.0
	for i := 0; i < 6; i++ {
		e := component(errEst, i)
		scale := math.Abs(component(s, i)) + math.Abs(h*component(k1, i)) + 1e-10
		errMax = math.Max(errMax, math.Abs(e)/scale)
	}
	return next, errMax / it.Tolerance, nil
}

func component(s state, i int) float64 {
	switch i {
	case 0:
		return s.pos.X
	case 1:
		return s.pos.Y
	case 2:
		return s.pos.Z
	case 3:
		return s.vel.X
	case 4:
		return s.vel.Y
	default:
		return s.vel.Z
	}
}
