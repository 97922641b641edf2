package astro

// PhaseSpace is the kinematic state of a body at one instant: position in
// kpc, velocity in kpc/Myr and the time in Myr at which both hold.
type PhaseSpace struct {
	Pos Vec3    `json:"pos"`
	Vel Vec3    `json:"vel"`
	T   float64 `json:"t"`
}

// Kick returns the state after an instantaneous velocity impulse. Position
// and time are unchanged.
func (w PhaseSpace) Kick(impulse Vec3) PhaseSpace {
	w.Vel = w.Vel.Add(impulse)
	return w
}

func (w PhaseSpace) IsValid() bool {
	return w.Pos.IsValid() && w.Vel.IsValid()
}
