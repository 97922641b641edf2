package pop

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/evolve"
)

func testPopulation(n int) []System {
	systems := make([]System, n)
	for i := range systems {
		sys := testSystem(i)
		sys.BirthPos = astro.Vec3{X: 6 + 0.1*float64(i)}
		systems[i] = sys
	}
	return systems
}

func TestRunAllSucceed(t *testing.T) {
	c := newTestCoupler(evolve.NewHeuristicStepper(7))
	systems := testPopulation(12)

	res := c.Run(context.Background(), systems, 200, 4)

	if len(res.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", res.Failures)
	}
	if len(res.Histories) != 12 {
		t.Fatalf("expected 12 histories, got %d", len(res.Histories))
	}
	for i, h := range res.Histories {
		if h.System.ID != i {
			t.Errorf("histories not ordered by system id at %d: %d", i, h.System.ID)
		}
		if err := h.Validate(); err != nil {
			t.Errorf("system %d history invalid: %v", i, err)
		}
	}
}

// mixedStepper fails a fixed subset of systems.
type mixedStepper struct {
	inner evolve.Stepper
	bad   map[int]bool
}

func (m mixedStepper) Next(id int, st evolve.PhysicalState, t, horizon float64) (evolve.Event, bool, error) {
	if m.bad[id] {
		return evolve.Event{}, false, errors.New("no convergence")
	}
	return m.inner.Next(id, st, t, horizon)
}

func TestRunIsolatesFailures(t *testing.T) {
	stepper := mixedStepper{inner: quietStepper{}, bad: map[int]bool{2: true, 5: true}}
	c := newTestCoupler(stepper)
	systems := testPopulation(8)

	res := c.Run(context.Background(), systems, 100, 3)

	if len(res.Histories) != 6 {
		t.Errorf("expected 6 successes, got %d", len(res.Histories))
	}
	if len(res.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(res.Failures))
	}
	for _, f := range res.Failures {
		if f.SystemID != 2 && f.SystemID != 5 {
			t.Errorf("unexpected failing system %d", f.SystemID)
		}
		if !errors.Is(f.Err, astro.ErrEvolutionDiverged) {
			t.Errorf("failure should wrap ErrEvolutionDiverged: %v", f.Err)
		}
	}
}

func TestRunCancellationPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCoupler(quietStepper{})
	systems := testPopulation(10)

	res := c.Run(ctx, systems, 100, 2)

	if got := len(res.Histories) + len(res.Failures); got != 10 {
		t.Fatalf("every system must be accounted for, got %d", got)
	}
	if len(res.Cancelled()) == 0 {
		t.Error("expected cancelled systems to be tagged")
	}
	for _, f := range res.Failures {
		if !errors.Is(f.Err, astro.ErrCancelled) {
			t.Errorf("cancelled run should only produce cancellation failures: %v", f.Err)
		}
	}
}

func TestRunReproducibleAcrossWorkerCounts(t *testing.T) {
	systems := testPopulation(6)

	advance := func(workers int) *RunResult {
		c := newTestCoupler(evolve.NewHeuristicStepper(31))
		return c.Run(context.Background(), systems, 300, workers)
	}

	serial := advance(1)
	parallel := advance(4)

	if len(serial.Histories) != len(parallel.Histories) {
		t.Fatalf("success counts differ: %d vs %d", len(serial.Histories), len(parallel.Histories))
	}
	for i := range serial.Histories {
		a, b := serial.Histories[i], parallel.Histories[i]
		if a.System.ID != b.System.ID {
			t.Fatalf("ordering differs at %d", i)
		}
		if len(a.Entries) != len(b.Entries) {
			t.Fatalf("system %d: entry counts differ", a.System.ID)
		}
		for j := range a.Entries {
			ea, eb := a.Entries[j], b.Entries[j]
			if (ea.Segment == nil) != (eb.Segment == nil) {
				t.Fatalf("system %d entry %d: kind differs", a.System.ID, j)
			}
			if ea.Segment != nil {
				sa, sb := ea.Segment.Samples, eb.Segment.Samples
				if len(sa) != len(sb) || sa[len(sa)-1] != sb[len(sb)-1] {
					t.Fatalf("system %d entry %d: trajectories differ", a.System.ID, j)
				}
			}
		}
	}
}

func TestRunProgressCallback(t *testing.T) {
	c := newTestCoupler(quietStepper{})
	systems := testPopulation(5)

	var mu sync.Mutex
	var ticks []int
	c.RunWithProgress(context.Background(), systems, 50, 2, func(done int) {
		mu.Lock()
		ticks = append(ticks, done)
		mu.Unlock()
	})

	if len(ticks) != 5 {
		t.Fatalf("expected 5 progress ticks, got %d", len(ticks))
	}
	if ticks[len(ticks)-1] != 5 {
		t.Errorf("final tick should be 5, got %d", ticks[len(ticks)-1])
	}
}
