package evolve

// Stage is a coarse evolutionary phase. The engine only distinguishes
// levels of compactness; the stepper's internal model is opaque beyond this.
type Stage int

const (
	MainSequence Stage = iota
	Giant
	HeliumStar
	WhiteDwarf
	NeutronStar
	BlackHole
	Massless // fully disrupted / lost
)

func (s Stage) String() string {
	switch s {
	case MainSequence:
		return "MS"
	case Giant:
		return "giant"
	case HeliumStar:
		return "He-star"
	case WhiteDwarf:
		return "WD"
	case NeutronStar:
		return "NS"
	case BlackHole:
		return "BH"
	case Massless:
		return "massless"
	}
	return "unknown"
}

// Remnant reports whether the stage is a stellar remnant.
func (s Stage) Remnant() bool {
	return s == WhiteDwarf || s == NeutronStar || s == BlackHole
}

// StarState is one star's physical state as far as the engine needs it.
type StarState struct {
	Mass   float64 `json:"mass"`   // Msun
	Radius float64 `json:"radius"` // Rsun
	Stage  Stage   `json:"stage"`
}

// PhysicalState is the stepper-facing state of one system: both stars plus
// the orbital elements that stellar evolution cares about.
type PhysicalState struct {
	Primary      StarState `json:"primary"`
	Secondary    StarState `json:"secondary"`
	Separation   float64   `json:"separation"` // Rsun; 0 once disrupted or merged
	Eccentricity float64   `json:"eccentricity"`
	Metallicity  float64   `json:"metallicity"`
	ZAMS         float64   `json:"zams"` // birth time, Myr; ages are measured from here
	Disrupted    bool      `json:"disrupted"`
	Merged       bool      `json:"merged"`
}
