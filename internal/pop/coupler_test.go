package pop

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/evolve"
	"github.com/san-kum/galpop/internal/orbit"
	"github.com/san-kum/galpop/internal/potential"
)

func testField() potential.Field {
	return potential.Plummer{Mass: 1e11, B: 1.0}
}

func testSystem(id int) System {
	return System{
		ID:           id,
		BirthTime:    0,
		BirthPos:     astro.Vec3{X: 8},
		BirthVel:     astro.Kms(0, 200, 0),
		M1:           12,
		M2:           8,
		Separation:   1000,
		Eccentricity: 0.1,
		Metallicity:  0.02,
	}
}

func newTestCoupler(stepper evolve.Stepper) *Coupler {
	return NewCoupler(testField(), stepper, orbit.Default())
}

// quietStepper never produces events.
type quietStepper struct{}

func (quietStepper) Next(int, evolve.PhysicalState, float64, float64) (evolve.Event, bool, error) {
	return evolve.Event{}, false, nil
}

// failingStepper always errors.
type failingStepper struct{ calls int }

func (f *failingStepper) Next(int, evolve.PhysicalState, float64, float64) (evolve.Event, bool, error) {
	f.calls++
	return evolve.Event{}, false, errors.New("stellar model blew up")
}

func TestAdvanceZeroEventsSingleSegment(t *testing.T) {
	g := NewWithT(t)
	c := newTestCoupler(quietStepper{})

	h, err := c.Advance(context.Background(), testSystem(0), 100)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(h.Entries).To(HaveLen(1))
	g.Expect(h.Events()).To(BeEmpty())

	seg := *h.Entries[0].Segment
	g.Expect(seg.Start().T).To(Equal(0.0))
	g.Expect(seg.End().T).To(Equal(100.0))
	g.Expect(h.FinalStates()).To(HaveLen(1))
}

func TestAdvanceBirthEqualsHorizon(t *testing.T) {
	g := NewWithT(t)
	c := newTestCoupler(quietStepper{})

	sys := testSystem(0)
	sys.BirthTime = 50

	h, err := c.Advance(context.Background(), sys, 50)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(h.Entries).To(BeEmpty())
}

func TestAdvanceHorizonBeforeBirth(t *testing.T) {
	c := newTestCoupler(quietStepper{})
	sys := testSystem(0)
	sys.BirthTime = 50

	if _, err := c.Advance(context.Background(), sys, 10); err == nil {
		t.Error("expected an error for a horizon before birth")
	}
}

func TestAdvanceImpulseContinuity(t *testing.T) {
	g := NewWithT(t)

	kick := astro.Kms(30, -10, 5)
	stepper := evolve.NewTableStepper(map[int][]evolve.Event{
		0: {{
			Time:     40,
			Type:     evolve.Supernova,
			Impulses: []evolve.Impulse{{Target: evolve.TargetSystem, DeltaV: kick}},
		}},
	})
	c := newTestCoupler(stepper)

	h, err := c.Advance(context.Background(), testSystem(0), 100)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(h.Validate()).To(Succeed())

	segs := h.Segments(-1)
	g.Expect(segs).To(HaveLen(2))
	events := h.Events()
	g.Expect(events).To(HaveLen(1))

	before := segs[0].End()
	after := segs[1].Start()

	// Position continuous; velocity differs by exactly the impulse.
	g.Expect(after.Pos).To(Equal(before.Pos))
	g.Expect(after.T).To(Equal(before.T))
	g.Expect(after.Vel.Sub(before.Vel).Sub(kick).Norm()).To(BeNumerically("<", 1e-15))
}

func TestAdvanceSupernovaDisruption(t *testing.T) {
	// A binary born at the origin of a static spherical potential with zero
	// velocity, disrupted by a supernova at t=5 Myr whose kick gives the
	// secondary (50,0,0) km/s relative to the primary.
	g := NewWithT(t)

	kick := astro.Kms(50, 0, 0)
	stepper := evolve.NewTableStepper(map[int][]evolve.Event{
		0: {{
			Time: 5,
			Type: evolve.Disruption,
			Impulses: []evolve.Impulse{
				{Target: evolve.TargetPrimary, DeltaV: astro.Vec3{}},
				{Target: evolve.TargetSecondary, DeltaV: kick},
			},
		}},
	})

	sys := testSystem(0)
	sys.BirthPos = astro.Vec3{}
	sys.BirthVel = astro.Vec3{}

	c := newTestCoupler(stepper)
	h, err := c.Advance(context.Background(), sys, 50)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(h.Validate()).To(Succeed())

	// One pre-event segment for the bound binary, then one per component.
	g.Expect(h.Bodies).To(HaveLen(3))
	g.Expect(h.Bodies[0].Role).To(Equal(RoleBinary))
	g.Expect(h.Bodies[0].Live).To(BeFalse())

	primSegs := h.Segments(1)
	secSegs := h.Segments(2)
	g.Expect(primSegs).To(HaveLen(1))
	g.Expect(secSegs).To(HaveLen(1))

	p0 := primSegs[0].Start()
	s0 := secSegs[0].Start()
	g.Expect(p0.T).To(Equal(5.0))
	g.Expect(s0.T).To(Equal(5.0))
	g.Expect(p0.Pos).To(Equal(s0.Pos))
	g.Expect(s0.Vel.Sub(p0.Vel).Sub(kick).Norm()).To(BeNumerically("<", 1e-15))

	// After the split the two bodies evolve independently and diverge.
	pEnd := primSegs[0].End()
	sEnd := secSegs[0].End()
	g.Expect(pEnd.T).To(Equal(50.0))
	g.Expect(sEnd.T).To(Equal(50.0))
	g.Expect(pEnd.Pos.Sub(sEnd.Pos).Norm()).To(BeNumerically(">", 0.01))

	g.Expect(h.FinalStates()).To(HaveLen(2))
}

func TestAdvanceMergerInheritsTrajectory(t *testing.T) {
	g := NewWithT(t)

	stepper := evolve.NewTableStepper(map[int][]evolve.Event{
		0: {{Time: 20, Type: evolve.Merger}},
	})
	c := newTestCoupler(stepper)

	h, err := c.Advance(context.Background(), testSystem(0), 60)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(h.Bodies).To(HaveLen(2))
	g.Expect(h.Bodies[0].Live).To(BeFalse())
	g.Expect(h.Bodies[1].Role).To(Equal(RoleMerged))

	comSeg := h.Segments(0)
	mergedSeg := h.Segments(1)
	g.Expect(comSeg).To(HaveLen(1))
	g.Expect(mergedSeg).To(HaveLen(1))

	// The merged body continues exactly from the pair's state.
	g.Expect(mergedSeg[0].Start().Pos).To(Equal(comSeg[0].End().Pos))
	g.Expect(mergedSeg[0].Start().Vel).To(Equal(comSeg[0].End().Vel))
}

func TestAdvanceMultipleEventsChronological(t *testing.T) {
	g := NewWithT(t)

	stepper := evolve.NewTableStepper(map[int][]evolve.Event{
		0: {
			{Time: 10, Type: evolve.MassTransfer},
			{Time: 25, Type: evolve.CommonEnvelope},
			{Time: 40, Type: evolve.Supernova,
				Impulses: []evolve.Impulse{{Target: evolve.TargetSystem, DeltaV: astro.Kms(20, 0, 0)}}},
		},
	})
	c := newTestCoupler(stepper)

	h, err := c.Advance(context.Background(), testSystem(0), 100)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(h.Validate()).To(Succeed())

	events := h.Events()
	g.Expect(events).To(HaveLen(3))
	for i := 1; i < len(events); i++ {
		g.Expect(events[i].Time).To(BeNumerically(">", events[i-1].Time))
	}
	// Three inter-event segments plus the terminal coast.
	g.Expect(h.Segments(-1)).To(HaveLen(4))
}

func TestAdvanceStepperDiverged(t *testing.T) {
	stepper := &failingStepper{}
	c := newTestCoupler(stepper)
	c.StepperRetries = 2

	_, err := c.Advance(context.Background(), testSystem(0), 100)
	if !errors.Is(err, astro.ErrEvolutionDiverged) {
		t.Fatalf("expected ErrEvolutionDiverged, got %v", err)
	}
	if stepper.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", stepper.calls)
	}

	var sysErr *astro.SystemError
	if !errors.As(err, &sysErr) {
		t.Fatal("error should carry the system id")
	}
	if sysErr.SystemID != 0 {
		t.Errorf("wrong system id: %d", sysErr.SystemID)
	}
}

func TestAdvanceDomainFailureSurfaced(t *testing.T) {
	// A grid too small to hold the orbit: the system fails with ErrDomain.
	grid, err := potential.SampleField(testField(), 0,
		astro.Vec3{X: -2, Y: -2, Z: -2}, astro.Vec3{X: 2, Y: 2, Z: 2},
		[3]int{5, 5, 5}, potential.Abort)
	if err != nil {
		t.Fatalf("grid setup failed: %v", err)
	}

	c := NewCoupler(grid, quietStepper{}, orbit.Default())
	_, err = c.Advance(context.Background(), testSystem(0), 200)
	if !errors.Is(err, astro.ErrDomain) {
		t.Fatalf("expected ErrDomain, got %v", err)
	}
}

func TestAdvanceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCoupler(quietStepper{})
	_, err := c.Advance(ctx, testSystem(0), 100)
	if !errors.Is(err, astro.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestAdvanceReproducible(t *testing.T) {
	g := NewWithT(t)

	stepper := evolve.NewHeuristicStepper(99)
	c := newTestCoupler(stepper)
	sys := testSystem(0)

	a, err := c.Advance(context.Background(), sys, 500)
	g.Expect(err).NotTo(HaveOccurred())
	b, err := c.Advance(context.Background(), sys, 500)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(b.Entries).To(HaveLen(len(a.Entries)))
	for i := range a.Entries {
		if a.Entries[i].Segment != nil {
			segA, segB := a.Entries[i].Segment, b.Entries[i].Segment
			g.Expect(segB.Samples).To(Equal(segA.Samples))
		} else {
			g.Expect(b.Entries[i].Event).To(Equal(a.Entries[i].Event))
		}
	}
}
