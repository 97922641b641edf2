package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/galpop/internal/obs"
	"github.com/san-kum/galpop/internal/pop"
)

// TrajectoryXY renders every body's path projected onto the galactic plane.
// The window is fitted to the trajectory with a small margin.
func TrajectoryXY(h *pop.History, width, height int) string {
	segments := h.Segments(-1)
	if len(segments) == 0 {
		return "no trajectory data\n"
	}

	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, seg := range segments {
		for _, s := range seg.Samples {
			xmin = math.Min(xmin, s.Pos.X)
			xmax = math.Max(xmax, s.Pos.X)
			ymin = math.Min(ymin, s.Pos.Y)
			ymax = math.Max(ymax, s.Pos.Y)
		}
	}
	mx := 0.05 * (xmax - xmin)
	my := 0.05 * (ymax - ymin)

	canvas := NewCanvas(width, height)
	canvas.SetWindow(xmin-mx, xmax+mx, ymin-my, ymax+my)
	for _, seg := range segments {
		for i := 1; i < len(seg.Samples); i++ {
			a, b := seg.Samples[i-1], seg.Samples[i]
			canvas.Line(a.Pos.X, a.Pos.Y, b.Pos.X, b.Pos.Y)
		}
	}

	var sb strings.Builder
	sb.WriteString(canvas.String())
	wx0, wx1, wy0, wy1 := canvas.Window()
	sb.WriteString(fmt.Sprintf("x: [%.2f, %.2f] kpc  y: [%.2f, %.2f] kpc  system %d\n",
		wx0, wx1, wy0, wy1, h.System.ID))
	return sb.String()
}

// RadiusPlot charts each body's galactocentric radius against time.
func RadiusPlot(h *pop.History, width, height int) string {
	var series [][]float64
	for _, body := range h.Bodies {
		var r []float64
		for _, seg := range h.Segments(body.ID) {
			for _, s := range seg.Samples {
				r = append(r, s.Pos.Norm())
			}
		}
		if len(r) > 1 {
			series = append(series, r)
		}
	}
	if len(series) == 0 {
		return "no trajectory data\n"
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("galactocentric radius [kpc], system %d", h.System.ID)),
	) + "\n"
}

// MagnitudeHistogram charts the apparent-magnitude distribution of a set of
// observed records.
func MagnitudeHistogram(records []obs.Record, bins, width, height int) string {
	if len(records) == 0 {
		return "no records\n"
	}
	if bins < 2 {
		bins = 2
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range records {
		lo = math.Min(lo, r.AppMag)
		hi = math.Max(hi, r.AppMag)
	}
	if hi <= lo {
		hi = lo + 1
	}

	counts := make([]float64, bins)
	for _, r := range records {
		idx := int(float64(bins) * (r.AppMag - lo) / (hi - lo))
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	return asciigraph.Plot(counts,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("apparent magnitude, %.1f to %.1f mag", lo, hi)),
	) + "\n"
}
