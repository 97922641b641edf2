package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/evolve"
	"github.com/san-kum/galpop/internal/obs"
	"github.com/san-kum/galpop/internal/pop"
)

func sampleHistory() *pop.History {
	return &pop.History{
		System:  pop.System{ID: 3, M1: 5, M2: 2, Metallicity: 0.02},
		Horizon: 10,
		Final: evolve.PhysicalState{
			Primary:   evolve.StarState{Mass: 5, Stage: evolve.MainSequence},
			Secondary: evolve.StarState{Mass: 2, Stage: evolve.MainSequence},
		},
		Bodies: []pop.Body{
			{ID: 0, Role: pop.RoleBinary, Live: true, State: astro.PhaseSpace{
				Pos: astro.Vec3{X: 7.8, Y: 1.9}, T: 10,
			}},
		},
		Entries: []pop.Entry{
			{Segment: &pop.TrajectorySegment{Body: 0, Samples: []astro.PhaseSpace{
				{Pos: astro.Vec3{X: 8, Y: 0}, T: 0},
				{Pos: astro.Vec3{X: 7.9, Y: 1}, T: 5},
				{Pos: astro.Vec3{X: 7.8, Y: 1.9}, T: 10},
			}}},
		},
	}
}

func TestCanvasMarkAndString(t *testing.T) {
	c := NewCanvas(10, 5)
	c.SetWindow(0, 1, 0, 1)
	c.Mark(0.5, 0.5)

	out := c.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(lines))
	}
	for i, line := range lines {
		if n := len([]rune(line)); n != 10 {
			t.Errorf("row %d: expected 10 cells, got %d", i, n)
		}
	}
	if !strings.ContainsFunc(out, func(r rune) bool { return r > 0x2800 && r <= 0x28ff }) {
		t.Error("expected at least one set dot")
	}
}

func TestCanvasOutOfWindowDropped(t *testing.T) {
	c := NewCanvas(4, 4)
	c.SetWindow(0, 1, 0, 1)
	c.Mark(2, 2)
	c.Mark(-1, 0.5)

	for _, row := range c.grid {
		for _, cell := range row {
			if cell != 0x2800 {
				t.Fatal("out-of-window marks should not set dots")
			}
		}
	}
}

func TestCanvasLineEndpoints(t *testing.T) {
	c := NewCanvas(8, 4)
	c.SetWindow(0, 1, 0, 1)
	c.Line(0, 0, 1, 1)

	set := 0
	for _, row := range c.grid {
		for _, cell := range row {
			if cell != 0x2800 {
				set++
			}
		}
	}
	if set < 2 {
		t.Errorf("expected a drawn line, got %d set cells", set)
	}
}

func TestCanvasDegenerateWindow(t *testing.T) {
	c := NewCanvas(4, 4)
	c.SetWindow(3, 3, 7, 7)
	c.Mark(3, 7)

	set := false
	for _, row := range c.grid {
		for _, cell := range row {
			if cell != 0x2800 {
				set = true
			}
		}
	}
	if !set {
		t.Error("point window should still accept its own point")
	}
}

func TestTrajectoryXY(t *testing.T) {
	out := TrajectoryXY(sampleHistory(), 40, 12)
	if !strings.Contains(out, "kpc") {
		t.Error("expected axis ranges in kpc")
	}
	if !strings.Contains(out, "system 3") {
		t.Error("expected system id in caption")
	}
}

func TestTrajectoryXYEmpty(t *testing.T) {
	h := &pop.History{System: pop.System{ID: 1}}
	if out := TrajectoryXY(h, 40, 12); !strings.Contains(out, "no trajectory data") {
		t.Errorf("expected empty-data notice, got %q", out)
	}
}

func TestRadiusPlot(t *testing.T) {
	out := RadiusPlot(sampleHistory(), 40, 8)
	if !strings.Contains(out, "galactocentric radius") {
		t.Error("expected radius caption")
	}
}

func TestMagnitudeHistogram(t *testing.T) {
	records := []obs.Record{
		{AppMag: 10.0}, {AppMag: 12.5}, {AppMag: 12.6}, {AppMag: 18.0},
	}
	out := MagnitudeHistogram(records, 8, 40, 8)
	if !strings.Contains(out, "apparent magnitude") {
		t.Error("expected histogram caption")
	}
}

func TestSummarize(t *testing.T) {
	h := sampleHistory()
	h.Entries = append(h.Entries, pop.Entry{Event: &pop.EvolutionaryEvent{
		Time: 5, Type: evolve.Supernova, Bodies: []pop.BodyID{0},
	}})

	res := &pop.RunResult{
		Histories: []*pop.History{h},
		Failures:  []pop.Failure{{SystemID: 9}},
	}
	records := []obs.Record{{Detected: true}, {Detected: false}}

	s := Summarize(res, records)
	if s.Systems != 2 || s.Succeeded != 1 || s.Failed != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.Events["supernova"] != 1 {
		t.Errorf("expected one supernova, got %v", s.Events)
	}
	if s.Detected != 1 || s.Observed != 2 {
		t.Errorf("unexpected observation counts: %+v", s)
	}
}

func TestSummaryRender(t *testing.T) {
	s := RunSummary{
		RunID:     "abc",
		Seed:      42,
		Horizon:   100,
		Systems:   5,
		Succeeded: 4,
		Failed:    1,
		Events:    map[string]int{"merger": 2},
		Observed:  3,
		Detected:  2,
	}
	out := s.Render()
	for _, want := range []string{"abc", "42", "100.0 Myr", "merger", "failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestProgressModelUpdate(t *testing.T) {
	m := NewProgress(10)

	next, cmd := m.Update(ProgressMsg(3))
	pm := next.(ProgressModel)
	if pm.Done() != 3 {
		t.Errorf("expected done 3, got %d", pm.Done())
	}
	if cmd != nil {
		t.Error("mid-run progress should not quit")
	}

	next, cmd = pm.Update(ProgressMsg(10))
	pm = next.(ProgressModel)
	if cmd == nil {
		t.Error("completion should quit")
	}

	if !strings.Contains(pm.View(), "10/10 systems") {
		t.Errorf("view should show completion count: %q", pm.View())
	}
}

func TestProgressBarBounds(t *testing.T) {
	if ProgressBar(-0.5, 10) == "" || ProgressBar(1.5, 10) == "" {
		t.Error("bar should render for clamped inputs")
	}
}
