package pop

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/evolve"
	"github.com/san-kum/galpop/internal/orbit"
	"github.com/san-kum/galpop/internal/potential"
)

// Coupler interleaves stellar-evolution events with orbit integration for
// one system at a time. Field and Stepper are shared read-only; a Coupler is
// safe for concurrent Advance calls on different systems.
type Coupler struct {
	Field   potential.Field
	Stepper evolve.Stepper
	Orbit   orbit.Integrator

	// StepperRetries is how many times a failing Stepper.Next call is
	// retried before the system is abandoned with ErrEvolutionDiverged.
	StepperRetries int
}

func NewCoupler(field potential.Field, stepper evolve.Stepper, integ orbit.Integrator) *Coupler {
	return &Coupler{
		Field:          field,
		Stepper:        stepper,
		Orbit:          integ,
		StepperRetries: 3,
	}
}

// Advance drives one system from birth to the horizon and returns its
// history. Per-system failures come back as *astro.SystemError wrapping one
// of the taxonomy sentinels; the caller decides whether to continue the
// population run.
func (c *Coupler) Advance(ctx context.Context, sys System, horizon float64) (*History, error) {
	if horizon < sys.BirthTime {
		return nil, fmt.Errorf("horizon %.4f precedes birth time %.4f of system %d",
			horizon, sys.BirthTime, sys.ID)
	}

	h := NewHistory(sys, horizon)
	h.Final = sys.initialPhysicalState()
	if horizon == sys.BirthTime {
		// Zero-duration system: an empty history, not an error.
		return h, nil
	}

	h.newBody(RoleBinary, astro.PhaseSpace{Pos: sys.BirthPos, Vel: sys.BirthVel, T: sys.BirthTime})

	phys := sys.initialPhysicalState()
	t := sys.BirthTime

	for {
		if err := ctx.Err(); err != nil {
			return nil, &astro.SystemError{SystemID: sys.ID, Time: t, Err: astro.ErrCancelled}
		}

		ev, ok, err := c.nextEvent(sys.ID, phys, t, horizon)
		if err != nil {
			return nil, &astro.SystemError{SystemID: sys.ID, Time: t, Err: err}
		}

		if !ok || ev.Time > horizon {
			if err := c.coast(h, t, horizon); err != nil {
				return nil, &astro.SystemError{SystemID: sys.ID, Time: t, Err: err}
			}
			return h, nil
		}

		if ev.Time <= t && t > sys.BirthTime {
			return nil, &astro.SystemError{SystemID: sys.ID, Time: t,
				Err: fmt.Errorf("%w: event time %.6f does not advance past %.6f",
					astro.ErrEvolutionDiverged, ev.Time, t)}
		}

		// Integrate every live body up to the event; the impulse applies
		// strictly after the last sample at the event time.
		if err := c.coast(h, t, ev.Time); err != nil {
			return nil, &astro.SystemError{SystemID: sys.ID, Time: t, Err: err}
		}

		if err := c.apply(h, ev); err != nil {
			return nil, &astro.SystemError{SystemID: sys.ID, Time: ev.Time, Err: err}
		}

		phys = ev.State
		h.Final = phys
		t = ev.Time
	}
}

// nextEvent queries the stepper with the configured retry budget.
func (c *Coupler) nextEvent(sysID int, phys evolve.PhysicalState, t, horizon float64) (evolve.Event, bool, error) {
	var lastErr error
	for attempt := 0; attempt <= c.StepperRetries; attempt++ {
		ev, ok, err := c.Stepper.Next(sysID, phys, t, horizon)
		if err == nil {
			return ev, ok, nil
		}
		lastErr = err
	}
	return evolve.Event{}, false, fmt.Errorf("%w: %v", astro.ErrEvolutionDiverged, lastErr)
}

// coast integrates every live body from t to target and appends one segment
// per body in ascending body id order.
func (c *Coupler) coast(h *History, t, target float64) error {
	for _, id := range h.live() {
		body := &h.Bodies[id]
		samples, err := c.Orbit.Integrate(body.State, t, target, c.Field)
		if err != nil {
			if errors.Is(err, astro.ErrDomain) || errors.Is(err, astro.ErrIntegrationFailed) {
				return err
			}
			return fmt.Errorf("%w: %v", astro.ErrIntegrationFailed, err)
		}
		seg := TrajectorySegment{Body: id, Samples: samples}
		h.appendSegment(seg)
		body.State = seg.End()
	}
	return nil
}

// apply records the event and mutates the body arena: impulses first (in
// ascending body id order), then any structural change (disruption split or
// merger collapse).
func (c *Coupler) apply(h *History, ev evolve.Event) error {
	switch ev.Type {
	case evolve.Disruption:
		return c.applyDisruption(h, ev)
	case evolve.Merger:
		return c.applyMerger(h, ev)
	default:
		return c.applyImpulses(h, ev)
	}
}

func (c *Coupler) applyImpulses(h *History, ev evolve.Event) error {
	live := h.live()
	rec := EvolutionaryEvent{Time: ev.Time, Type: ev.Type, Bodies: live}

	for _, imp := range ev.Impulses {
		id, err := resolveTarget(h, imp.Target)
		if err != nil {
			return err
		}
		h.Bodies[id].State = h.Bodies[id].State.Kick(imp.DeltaV)
		rec.Impulses = append(rec.Impulses, BodyImpulse{Body: id, DeltaV: imp.DeltaV})
	}

	h.appendEvent(rec)
	return nil
}

// applyDisruption retires the centre-of-mass body and allocates the two
// components at the disruption position, each with the pre-event
// centre-of-mass velocity plus its own impulse.
func (c *Coupler) applyDisruption(h *History, ev evolve.Event) error {
	com, err := singleLive(h, RoleBinary)
	if err != nil {
		return fmt.Errorf("%w: disruption of a system that is not a bound binary: %v",
			astro.ErrEvolutionDiverged, err)
	}
	w := h.Bodies[com].State
	h.retire(com)

	var dvPrimary, dvSecondary astro.Vec3
	for _, imp := range ev.Impulses {
		switch imp.Target {
		case evolve.TargetPrimary:
			dvPrimary = imp.DeltaV
		case evolve.TargetSecondary:
			dvSecondary = imp.DeltaV
		case evolve.TargetSystem:
			dvPrimary = dvPrimary.Add(imp.DeltaV)
			dvSecondary = dvSecondary.Add(imp.DeltaV)
		}
	}

	p := h.newBody(RolePrimary, w.Kick(dvPrimary))
	s := h.newBody(RoleSecondary, w.Kick(dvSecondary))

	h.appendEvent(EvolutionaryEvent{
		Time:   ev.Time,
		Type:   ev.Type,
		Bodies: []BodyID{com, p, s},
		Impulses: []BodyImpulse{
			{Body: p, DeltaV: dvPrimary},
			{Body: s, DeltaV: dvSecondary},
		},
	})
	return nil
}

// applyMerger collapses the bound pair into a single new body inheriting the
// centre-of-mass trajectory.
func (c *Coupler) applyMerger(h *History, ev evolve.Event) error {
	com, err := singleLive(h, RoleBinary)
	if err != nil {
		return fmt.Errorf("%w: merger of a system that is not a bound binary: %v",
			astro.ErrEvolutionDiverged, err)
	}
	w := h.Bodies[com].State
	h.retire(com)

	for _, imp := range ev.Impulses {
		w = w.Kick(imp.DeltaV)
	}
	merged := h.newBody(RoleMerged, w)

	rec := EvolutionaryEvent{Time: ev.Time, Type: ev.Type, Bodies: []BodyID{com, merged}}
	for _, imp := range ev.Impulses {
		rec.Impulses = append(rec.Impulses, BodyImpulse{Body: merged, DeltaV: imp.DeltaV})
	}
	h.appendEvent(rec)
	return nil
}

// resolveTarget maps a stepper impulse target onto a live body.
func resolveTarget(h *History, target evolve.Target) (BodyID, error) {
	live := h.live()
	switch target {
	case evolve.TargetSystem:
		if len(live) != 1 {
			return 0, fmt.Errorf("%w: system-wide impulse with %d live bodies",
				astro.ErrEvolutionDiverged, len(live))
		}
		return live[0], nil
	case evolve.TargetPrimary:
		return liveByRole(h, RolePrimary, RoleBinary, RoleMerged)
	case evolve.TargetSecondary:
		return liveByRole(h, RoleSecondary)
	}
	return 0, fmt.Errorf("%w: unknown impulse target %v", astro.ErrEvolutionDiverged, target)
}

func liveByRole(h *History, roles ...Role) (BodyID, error) {
	for _, b := range h.Bodies {
		if !b.Live {
			continue
		}
		for _, r := range roles {
			if b.Role == r {
				return b.ID, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: no live body for roles %v", astro.ErrEvolutionDiverged, roles)
}

func singleLive(h *History, role Role) (BodyID, error) {
	live := h.live()
	if len(live) != 1 || h.Bodies[live[0]].Role != role {
		return 0, fmt.Errorf("expected a single live %v body, have %d live bodies", role, len(live))
	}
	return live[0], nil
}
