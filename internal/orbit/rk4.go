package orbit

type fixedStep func(deriv derivFunc, s state, t, h float64) (state, error)

func rk4Step(deriv derivFunc, s state, t, h float64) (state, error) {
	k1, err := deriv(s, t)
	if err != nil {
		return state{}, err
	}
	k2, err := deriv(s.axpy(h*0.5, k1), t+h*0.5)
	if err != nil {
		return state{}, err
	}
	k3, err := deriv(s.axpy(h*0.5, k2), t+h*0.5)
	if err != nil {
		return state{}, err
	}
	k4, err := deriv(s.axpy(h, k3), t+h)
	if err != nil {
		return state{}, err
	}

	h6 := h / 6.0
	out := s
	out = out.axpy(h6, k1)
	out = out.axpy(2*h6, k2)
	out = out.axpy(2*h6, k3)
	out = out.axpy(h6, k4)
	return out, nil
}

// leapfrogStep is kick-drift-kick: symplectic for time-independent fields.
func leapfrogStep(deriv derivFunc, s state, t, h float64) (state, error) {
	d0, err := deriv(s, t)
	if err != nil {
		return state{}, err
	}
	half := state{pos: s.pos, vel: s.vel.Add(d0.vel.Scale(h * 0.5))}
	half.pos = half.pos.Add(half.vel.Scale(h))

	d1, err := deriv(half, t+h)
	if err != nil {
		return state{}, err
	}
	half.vel = half.vel.Add(d1.vel.Scale(h * 0.5))
	return half, nil
}
