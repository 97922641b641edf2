package obs

import (
	"math"
	"sort"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/evolve"
	"github.com/san-kum/galpop/internal/pop"
)

// Record is one observed body.
type Record struct {
	SystemID int        `json:"system_id"`
	BodyID   pop.BodyID `json:"body_id"`
	Role     pop.Role   `json:"role"`

	Pos      astro.Vec3 `json:"pos"`      // kpc, galactocentric
	Vel      astro.Vec3 `json:"vel"`      // km/s
	Distance float64    `json:"distance"` // kpc from the observer

	Mass   float64      `json:"mass"` // Msun
	Stage  evolve.Stage `json:"stage"`
	AbsMag float64      `json:"abs_mag"` // absolute bolometric, after BC
	AppMag float64      `json:"app_mag"` // apparent, after dust
	AV     float64      `json:"a_v"`     // extinction, mag

	Detected bool `json:"detected"`
}

// Transform holds the parameter catalog for turning terminal states into
// observed records. It is stateless across calls.
type Transform struct {
	Observer astro.Vec3 // kpc; default is the solar position
	Dust     DustModel
	BC       BCTable
	MagLimit float64 // apparent-magnitude survey cut
}

// Default mirrors a Gaia-like setup: solar observer, smooth disc dust, a
// 20.7 mag limit.
func Default() Transform {
	return Transform{
		Observer: astro.Vec3{X: -8.122, Z: 0.0208},
		Dust:     DefaultDust(),
		BC:       DefaultBCTable(),
		MagLimit: 20.7,
	}
}

// Observe maps every body live at the horizon to an observed record.
// Records are ordered by body id.
func (tr Transform) Observe(h *pop.History) []Record {
	finals := h.FinalStates()
	records := make([]Record, 0, len(finals))

	for _, body := range finals {
		star := starFor(h, body.Role)
		if star.Stage == evolve.Massless {
			continue
		}

		los := body.State.Pos.Sub(tr.Observer)
		dist := los.Norm()

		lum := luminosity(star)
		absMag := bolometricMagnitude(lum) + tr.BC.Correction(star)
		av := tr.Dust.Extinction(tr.Observer, body.State.Pos)
		appMag := apparent(absMag, dist) + av

		records = append(records, Record{
			SystemID: h.System.ID,
			BodyID:   body.ID,
			Role:     body.Role,
			Pos:      body.State.Pos,
			Vel:      body.State.Vel.Scale(astro.KpcPerMyrToKmPerSec),
			Distance: dist,
			Mass:     star.Mass,
			Stage:    star.Stage,
			AbsMag:   absMag,
			AppMag:   appMag,
			AV:       av,
			Detected: appMag <= tr.MagLimit,
		})
	}
	return records
}

// ObserveAll flattens a run result into one catalog ordered by system id
// then body id.
func (tr Transform) ObserveAll(res *pop.RunResult) []Record {
	var out []Record
	for _, h := range res.Histories {
		out = append(out, tr.Observe(h)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SystemID != out[j].SystemID {
			return out[i].SystemID < out[j].SystemID
		}
		return out[i].BodyID < out[j].BodyID
	})
	return out
}

// starFor picks which component of the final physical state a body
// represents. A bound pair reports the (brighter) primary.
func starFor(h *pop.History, role pop.Role) evolve.StarState {
	switch role {
	case pop.RoleSecondary:
		return h.Final.Secondary
	default:
		return h.Final.Primary
	}
}

// luminosity is a crude mass-luminosity relation in Lsun: M^3.5 for
// burning stars, small constants for remnants.
func luminosity(star evolve.StarState) float64 {
	switch star.Stage {
	case evolve.WhiteDwarf:
		return 1e-3
	case evolve.NeutronStar:
		return 1e-6
	case evolve.BlackHole:
		return 1e-10
	default:
		if star.Mass <= 0 {
			return 1e-10
		}
		return math.Pow(star.Mass, 3.5)
	}
}

// bolometricMagnitude converts Lsun to absolute bolometric magnitude.
func bolometricMagnitude(lum float64) float64 {
	return 4.74 - 2.5*math.Log10(lum)
}

// apparent applies the distance modulus; dist is in kpc.
func apparent(absMag, dist float64) float64 {
	if dist <= 0 {
		return absMag
	}
	return absMag + 5*math.Log10(dist*1000/10)
}
