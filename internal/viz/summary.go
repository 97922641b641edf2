package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/galpop/internal/obs"
	"github.com/san-kum/galpop/internal/pop"
)

// RunSummary collects the headline numbers of a finished run for rendering.
type RunSummary struct {
	RunID     string
	Seed      int64
	Horizon   float64 // Myr
	Elapsed   time.Duration
	Systems   int
	Succeeded int
	Failed    int
	Events    map[string]int
	Observed  int
	Detected  int
}

// Summarize tallies a run result and its observed records.
func Summarize(res *pop.RunResult, records []obs.Record) RunSummary {
	s := RunSummary{
		Systems:   len(res.Histories) + len(res.Failures),
		Succeeded: len(res.Histories),
		Failed:    len(res.Failures),
		Events:    make(map[string]int),
		Observed:  len(records),
	}
	for _, h := range res.Histories {
		for _, ev := range h.Events() {
			s.Events[ev.Type.String()]++
		}
	}
	for _, r := range records {
		if r.Detected {
			s.Detected++
		}
	}
	return s
}

// Render lays the summary out as a bordered panel.
func (s RunSummary) Render() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("population run") + "\n")
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	if s.RunID != "" {
		row("run id", s.RunID)
	}
	row("seed", fmt.Sprintf("%d", s.Seed))
	row("horizon", fmt.Sprintf("%.1f Myr", s.Horizon))
	if s.Elapsed > 0 {
		row("elapsed", s.Elapsed.Round(time.Millisecond).String())
	}
	row("systems", fmt.Sprintf("%d", s.Systems))

	done := fmt.Sprintf("%d", s.Succeeded)
	if s.Failed > 0 {
		done += failStyle.Render(fmt.Sprintf("  (%d failed)", s.Failed))
	}
	row("completed", done)

	if len(s.Events) > 0 {
		names := make([]string, 0, len(s.Events))
		for name := range s.Events {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString(subtleStyle.Render("events") + "\n")
		for _, name := range names {
			row("  "+name, fmt.Sprintf("%d", s.Events[name]))
		}
	}

	if s.Observed > 0 {
		row("observed", fmt.Sprintf("%d", s.Observed))
		row("detected", fmt.Sprintf("%d", s.Detected))
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}
