package pop

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"

	"github.com/san-kum/galpop/internal/astro"
)

// Failure tags one system's error with its id so callers can partition the
// run outcome by cause.
type Failure struct {
	SystemID int
	Err      error
}

// RunResult is the partitioned outcome of a population run: completed
// histories plus per-system failures (including cancellations). Both slices
// are ordered by system id.
type RunResult struct {
	Histories []*History
	Failures  []Failure
}

// Cancelled returns the ids of systems abandoned due to run-level
// cancellation.
func (r *RunResult) Cancelled() []int {
	var ids []int
	for _, f := range r.Failures {
		if errors.Is(f.Err, astro.ErrCancelled) {
			ids = append(ids, f.SystemID)
		}
	}
	return ids
}

// Run advances every system to the horizon over a worker pool. Systems are
// independent: each worker pulls one system at a time and computes its full
// history with no shared mutable state. A failing system never aborts the
// run; cancellation preserves completed histories and marks pending and
// in-flight systems as cancelled.
func (c *Coupler) Run(ctx context.Context, systems []System, horizon float64, workers int) *RunResult {
	return c.RunWithProgress(ctx, systems, horizon, workers, nil)
}

// RunWithProgress is Run with a completion callback, invoked after each
// system finishes (successfully or not) with the number completed so far.
// The callback always runs on the collector goroutine.
func (c *Coupler) RunWithProgress(ctx context.Context, systems []System, horizon float64, workers int, progress func(done int)) *RunResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(systems) {
		workers = len(systems)
	}

	type outcome struct {
		history *History
		failure *Failure
	}

	jobs := make(chan System)
	results := make(chan outcome)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sys := range jobs {
				h, err := c.Advance(ctx, sys, horizon)
				if err != nil {
					results <- outcome{failure: &Failure{SystemID: sys.ID, Err: err}}
					continue
				}
				results <- outcome{history: h}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, sys := range systems {
			select {
			case jobs <- sys:
			case <-ctx.Done():
				// Remaining systems never started; tag them cancelled.
				results <- outcome{failure: &Failure{
					SystemID: sys.ID,
					Err:      &astro.SystemError{SystemID: sys.ID, Time: sys.BirthTime, Err: astro.ErrCancelled},
				}}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	res := &RunResult{}
	done := 0
	for out := range results {
		if out.history != nil {
			res.Histories = append(res.Histories, out.history)
		} else {
			res.Failures = append(res.Failures, *out.failure)
		}
		done++
		if progress != nil {
			progress(done)
		}
	}

	sort.Slice(res.Histories, func(i, j int) bool {
		return res.Histories[i].System.ID < res.Histories[j].System.ID
	})
	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].SystemID < res.Failures[j].SystemID
	})
	return res
}
