package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/galpop/internal/astro"
	"github.com/san-kum/galpop/internal/obs"
	"github.com/san-kum/galpop/internal/pop"
)

// ExportHistoriesJSON writes the full history log as indented JSON.
func ExportHistoriesJSON(w io.Writer, histories []*pop.History) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(histories)
}

// ExportFinalCSV writes one row per body still live at the horizon: its
// terminal position in kpc and velocity in km/s.
func ExportFinalCSV(w io.Writer, histories []*pop.History) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"system", "body", "role", "t", "x", "y", "z", "vx", "vy", "vz"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, h := range histories {
		for _, b := range h.FinalStates() {
			vel := b.State.Vel.Scale(astro.KpcPerMyrToKmPerSec)
			row := []string{
				strconv.Itoa(h.System.ID),
				strconv.Itoa(int(b.ID)),
				b.Role.String(),
				ffmt(b.State.T),
				ffmt(b.State.Pos.X), ffmt(b.State.Pos.Y), ffmt(b.State.Pos.Z),
				ffmt(vel.X), ffmt(vel.Y), ffmt(vel.Z),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportObservationsCSV writes one row per observed record.
func ExportObservationsCSV(w io.Writer, records []obs.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"system", "body", "role", "mass", "stage", "distance", "abs_mag", "app_mag", "a_v", "detected"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.SystemID),
			strconv.Itoa(int(r.BodyID)),
			r.Role.String(),
			ffmt(r.Mass),
			r.Stage.String(),
			ffmt(r.Distance),
			ffmt(r.AbsMag),
			ffmt(r.AppMag),
			ffmt(r.AV),
			strconv.FormatBool(r.Detected),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ffmt(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
