package obs

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/evolve"
	"github.com/san-kum/galpop/internal/orbit"
	"github.com/san-kum/galpop/internal/pop"
	"github.com/san-kum/galpop/internal/potential"
)

func sampleHistory(t *testing.T) *pop.History {
	t.Helper()
	sys := pop.System{
		ID:         3,
		BirthPos:   astro.Vec3{X: 8},
		BirthVel:   astro.Kms(0, 220, 0),
		M1:         10,
		M2:         2,
		Separation: 2000,
	}
	c := pop.NewCoupler(potential.MilkyWay(), evolve.NewHeuristicStepper(11), orbit.Default())
	h, err := c.Advance(context.Background(), sys, 100)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	return h
}

func TestObserveProducesRecordPerLiveBody(t *testing.T) {
	h := sampleHistory(t)
	tr := Default()

	records := tr.Observe(h)
	if len(records) != len(h.FinalStates()) {
		t.Fatalf("expected %d records, got %d", len(h.FinalStates()), len(records))
	}
	for _, r := range records {
		if r.SystemID != 3 {
			t.Errorf("record carries wrong system id %d", r.SystemID)
		}
		if r.Distance <= 0 {
			t.Errorf("distance should be positive, got %f", r.Distance)
		}
		if math.IsNaN(r.AppMag) || math.IsInf(r.AppMag, 0) {
			t.Errorf("apparent magnitude not finite: %f", r.AppMag)
		}
		if r.AV < 0 {
			t.Errorf("extinction cannot be negative: %f", r.AV)
		}
	}
}

func TestObserveStateless(t *testing.T) {
	h := sampleHistory(t)
	tr := Default()

	a := tr.Observe(h)
	b := tr.Observe(h)
	if len(a) != len(b) {
		t.Fatal("repeated observation changed the record count")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs between identical observations", i)
		}
	}
}

func TestObserveDetectionRespectsMagLimit(t *testing.T) {
	h := sampleHistory(t)

	deep := Default()
	deep.MagLimit = 99
	shallow := Default()
	shallow.MagLimit = -99

	for _, r := range deep.Observe(h) {
		if !r.Detected {
			t.Error("everything should be detected with a deep limit")
		}
	}
	for _, r := range shallow.Observe(h) {
		if r.Detected {
			t.Error("nothing should be detected with an impossible limit")
		}
	}
}

func TestDustExtinctionGeometry(t *testing.T) {
	d := DefaultDust()
	sun := astro.Vec3{X: -8.122}

	inPlane := d.Extinction(sun, astro.Vec3{X: 0})
	outOfPlane := d.Extinction(sun, astro.Vec3{X: -8.122, Z: 5})

	if inPlane <= 0 {
		t.Error("line of sight through the disc should be extincted")
	}
	if outOfPlane >= inPlane {
		t.Error("looking out of the plane should suffer less extinction")
	}

	if d.Extinction(sun, sun) != 0 {
		t.Error("zero-length line of sight should have zero extinction")
	}
}

func TestBCTableInterpolation(t *testing.T) {
	table := DefaultBCTable()

	ms := func(m float64) evolve.StarState {
		return evolve.StarState{Mass: m, Stage: evolve.MainSequence}
	}

	if got := table.Correction(ms(1.0)); got != -0.1 {
		t.Errorf("exact node should return the tabulated value, got %f", got)
	}
	if got := table.Correction(ms(5.0)); got != -1.0 {
		t.Errorf("interior exact node should return the tabulated value, got %f", got)
	}
	if got := table.Correction(ms(0.1)); got != table.BCs[0] {
		t.Errorf("below-range mass should clamp to the first entry, got %f", got)
	}
	if got := table.Correction(ms(500)); got != table.BCs[len(table.BCs)-1] {
		t.Errorf("above-range mass should clamp to the last entry, got %f", got)
	}

	mid := table.Correction(ms(1.5))
	if mid >= -0.1 || mid <= -0.2 {
		lo, hi := table.Correction(ms(1.0)), table.Correction(ms(2.0))
		t.Errorf("midpoint correction %f should sit between %f and %f", mid, lo, hi)
	}

	ns := evolve.StarState{Mass: 1.4, Stage: evolve.NeutronStar}
	if got := table.Correction(ns); got != table.Remnant {
		t.Errorf("remnants take the flat correction, got %f", got)
	}
}
