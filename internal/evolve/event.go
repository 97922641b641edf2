package evolve

import "github.com/san-kum/galpop/internal/astro"

// EventType classifies a discrete evolutionary occurrence.
type EventType int

const (
	MassTransfer EventType = iota
	CommonEnvelope
	Supernova  // natal kick, system stays bound
	Disruption // natal kick unbinds the binary
	Merger     // both stars coalesce into one body
)

func (t EventType) String() string {
	switch t {
	case MassTransfer:
		return "mass-transfer"
	case CommonEnvelope:
		return "common-envelope"
	case Supernova:
		return "supernova"
	case Disruption:
		return "disruption"
	case Merger:
		return "merger"
	}
	return "unknown"
}

// Target names which body an impulse applies to. System targets the bound
// binary's centre of mass; Primary/Secondary target the split components of
// a disrupted system.
type Target int

const (
	TargetSystem Target = iota
	TargetPrimary
	TargetSecondary
)

func (t Target) String() string {
	switch t {
	case TargetSystem:
		return "system"
	case TargetPrimary:
		return "primary"
	case TargetSecondary:
		return "secondary"
	}
	return "unknown"
}

// Impulse is an instantaneous velocity change (kpc/Myr) for one target.
// Steppers quoting kicks in km/s convert once with astro.Kms at
// construction.
type Impulse struct {
	Target Target     `json:"target"`
	DeltaV astro.Vec3 `json:"delta_v"`
}

// Event is one discrete evolutionary occurrence: when it happens, what it
// is, the physical state afterwards, and zero or more velocity impulses.
type Event struct {
	Time     float64       `json:"time"` // Myr, absolute simulation time
	Type     EventType     `json:"type"`
	State    PhysicalState `json:"state"`
	Impulses []Impulse     `json:"impulses,omitempty"`
}

// Stepper advances a system's stellar evolution to its next discrete event.
//
// Next returns ok=false when no further event occurs before horizon; the
// system then coasts to the horizon. Implementations must be safe for
// concurrent calls on different systems and deterministic given identical
// inputs.
type Stepper interface {
	Next(systemID int, st PhysicalState, t, horizon float64) (ev Event, ok bool, err error)
}
