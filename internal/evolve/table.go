package evolve

import (
	"fmt"
	"sort"
)

// TableStepper replays precomputed event tables, one per system. This is the
// production path: a rapid population-synthesis code is run up front, its
// evolutionary history and kick tables are distilled into per-system event
// lists, and the coupler consumes them here.
type TableStepper struct {
	tables map[int][]Event
}

// NewTableStepper builds a stepper from per-system event lists. Each list is
// sorted by time; a list with non-finite ordering is rejected by the coupler
// at advance time rather than here.
func NewTableStepper(tables map[int][]Event) *TableStepper {
	sorted := make(map[int][]Event, len(tables))
	for id, events := range tables {
		evs := make([]Event, len(events))
		copy(evs, events)
		sort.SliceStable(evs, func(i, j int) bool { return evs[i].Time < evs[j].Time })
		sorted[id] = evs
	}
	return &TableStepper{tables: sorted}
}

func (ts *TableStepper) Next(systemID int, _ PhysicalState, t, horizon float64) (Event, bool, error) {
	events, found := ts.tables[systemID]
	if !found {
		return Event{}, false, fmt.Errorf("no event table for system %d", systemID)
	}
	idx := sort.Search(len(events), func(i int) bool { return events[i].Time > t })
	if idx == len(events) || events[idx].Time > horizon {
		return Event{}, false, nil
	}
	return events[idx], true, nil
}
