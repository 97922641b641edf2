package pop

import (
	"fmt"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/evolve"
)

// BodyID indexes a History's flat body table.
type BodyID int

// Role names what a body represents within its system.
type Role int

const (
	RoleBinary    Role = iota // bound pair integrated as one centre of mass
	RolePrimary               // split primary after disruption
	RoleSecondary             // split secondary after disruption
	RoleMerged                // coalesced single body after a merger
)

func (r Role) String() string {
	switch r {
	case RoleBinary:
		return "binary"
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	case RoleMerged:
		return "merged"
	}
	return "unknown"
}

// Body is a single star, remnant or bound pair with its own trajectory.
// Bodies live in the history's arena; identity is the stable BodyID, never a
// pointer.
type Body struct {
	ID    BodyID           `json:"id"`
	Role  Role             `json:"role"`
	State astro.PhaseSpace `json:"state"` // latest known state; final state once terminal
	Live  bool             `json:"live"`
}

// BodyImpulse records a resolved velocity impulse against a concrete body.
type BodyImpulse struct {
	Body   BodyID     `json:"body"`
	DeltaV astro.Vec3 `json:"delta_v"` // kpc/Myr
}

// EvolutionaryEvent is one recorded discrete occurrence. Immutable once
// appended.
type EvolutionaryEvent struct {
	Time     float64          `json:"time"`
	Type     evolve.EventType `json:"type"`
	Bodies   []BodyID         `json:"bodies"`
	Impulses []BodyImpulse    `json:"impulses,omitempty"`
}

// TrajectorySegment is one body's continuous path between two consecutive
// events. Samples are at the integrator's cadence and include both
// endpoints; the final sample is the exact pre-impulse state at the segment
// end time.
type TrajectorySegment struct {
	Body    BodyID             `json:"body"`
	Samples []astro.PhaseSpace `json:"samples"`
}

// Start returns the segment's first sample.
func (s TrajectorySegment) Start() astro.PhaseSpace { return s.Samples[0] }

// End returns the segment's last sample.
func (s TrajectorySegment) End() astro.PhaseSpace { return s.Samples[len(s.Samples)-1] }

// Entry is one element of a history's ordered log: exactly one of Event or
// Segment is set. The tagged layout keeps the persisted form self-describing.
type Entry struct {
	Event   *EvolutionaryEvent `json:"event,omitempty"`
	Segment *TrajectorySegment `json:"segment,omitempty"`
}

// History is the full record of one system from birth to horizon (or to a
// terminal failure): the body arena plus the chronological log of events and
// trajectory segments.
type History struct {
	System  System               `json:"system"`
	Horizon float64              `json:"horizon"`
	Final   evolve.PhysicalState `json:"final"` // physical state at termination
	Bodies  []Body               `json:"bodies"`
	Entries []Entry              `json:"entries"`
}

func NewHistory(sys System, horizon float64) *History {
	return &History{System: sys, Horizon: horizon}
}

// newBody allocates a body in the arena and returns its id.
func (h *History) newBody(role Role, w astro.PhaseSpace) BodyID {
	id := BodyID(len(h.Bodies))
	h.Bodies = append(h.Bodies, Body{ID: id, Role: role, State: w, Live: true})
	return id
}

// retire marks a body dead; its State keeps the last known value.
func (h *History) retire(id BodyID) {
	h.Bodies[id].Live = false
}

// live returns the ids of live bodies in ascending id order. Ascending order
// is the tie-break for same-time impulses against different bodies.
func (h *History) live() []BodyID {
	var ids []BodyID
	for _, b := range h.Bodies {
		if b.Live {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func (h *History) appendSegment(seg TrajectorySegment) {
	h.Entries = append(h.Entries, Entry{Segment: &seg})
}

func (h *History) appendEvent(ev EvolutionaryEvent) {
	h.Entries = append(h.Entries, Entry{Event: &ev})
}

// Events returns the chronological event log.
func (h *History) Events() []EvolutionaryEvent {
	var out []EvolutionaryEvent
	for _, e := range h.Entries {
		if e.Event != nil {
			out = append(out, *e.Event)
		}
	}
	return out
}

// Segments returns all trajectory segments in log order, optionally
// filtered by body (pass a negative id for all).
func (h *History) Segments(body BodyID) []TrajectorySegment {
	var out []TrajectorySegment
	for _, e := range h.Entries {
		if e.Segment != nil && (body < 0 || e.Segment.Body == body) {
			out = append(out, *e.Segment)
		}
	}
	return out
}

// FinalStates returns the terminal phase-space state of every body still
// live at the horizon, in ascending body id order.
func (h *History) FinalStates() []Body {
	var out []Body
	for _, b := range h.Bodies {
		if b.Live {
			out = append(out, b)
		}
	}
	return out
}

// Validate checks the structural invariants: strictly increasing event
// times, and segment endpoints continuous with the surrounding events'
// pre-impulse states. Continuity is tracked per body: a segment must start
// at the previous segment's end state plus any recorded impulses in between.
// A body's first segment is unconstrained (disruption and merger allocate
// bodies mid-history).
func (h *History) Validate() error {
	lastEvent := h.System.BirthTime - 1
	end := map[BodyID]astro.PhaseSpace{}
	for i, e := range h.Entries {
		if e.Event != nil {
			if e.Event.Time <= lastEvent {
				return fmt.Errorf("entry %d: event times not strictly increasing (%.6f after %.6f)",
					i, e.Event.Time, lastEvent)
			}
			lastEvent = e.Event.Time
			for _, imp := range e.Event.Impulses {
				if w, ok := end[imp.Body]; ok {
					end[imp.Body] = w.Kick(imp.DeltaV)
				}
			}
			continue
		}
		seg := e.Segment
		if len(seg.Samples) == 0 {
			return fmt.Errorf("entry %d: body %d segment has no samples", i, seg.Body)
		}
		if w, ok := end[seg.Body]; ok {
			if s := seg.Start(); s != w {
				return fmt.Errorf("entry %d: body %d segment discontinuous at t=%.6f", i, seg.Body, s.T)
			}
		}
		end[seg.Body] = seg.End()
	}
	return nil
}
