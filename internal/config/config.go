package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/galpop/internal/evolve"
	"github.com/san-kum/galpop/internal/orbit"
	"github.com/san-kum/galpop/internal/potential"
	"github.com/san-kum/galpop/internal/sample"
)

const (
	DefaultN           = 1000
	DefaultHorizon     = 1000.0 // Myr
	DefaultCadence     = 1.0    // Myr
	DefaultM1Cutoff    = 7.0    // Msun
	DefaultVDispersion = 5.0    // km/s
	DefaultKickSigma   = 265.0  // km/s
	DefaultSNCutoff    = 8.0    // Msun
	DefaultMagLimit    = 20.7
)

type Config struct {
	Seed    int64  `yaml:"seed"`
	Workers int    `yaml:"workers"`
	DataDir string `yaml:"data_dir"`

	Population PopulationConfig `yaml:"population"`
	Potential  PotentialConfig  `yaml:"potential"`
	Stepper    StepperConfig    `yaml:"stepper"`
	Integrator IntegratorConfig `yaml:"integrator"`
	Observe    ObserveConfig    `yaml:"observe"`
}

type PopulationConfig struct {
	N           int     `yaml:"n"`
	Horizon     float64 `yaml:"horizon"`      // Myr
	M1Cutoff    float64 `yaml:"m1_cutoff"`    // Msun, minimum primary mass kept
	VDispersion float64 `yaml:"v_dispersion"` // km/s, isotropic birth jitter
	Lookback    float64 `yaml:"lookback"`     // Myr, star-formation window
}

type PotentialConfig struct {
	Model       string  `yaml:"model"`        // milky-way, plummer, miyamoto-nagai, nfw
	Mass        float64 `yaml:"mass"`         // Msun
	ScaleLength float64 `yaml:"scale_length"` // kpc
	ScaleHeight float64 `yaml:"scale_height"` // kpc, miyamoto-nagai only
}

type StepperConfig struct {
	Kind      string  `yaml:"kind"`       // heuristic or table
	KickSigma float64 `yaml:"kick_sigma"` // km/s
	SNCutoff  float64 `yaml:"sn_cutoff"`  // Msun
	TablePath string  `yaml:"table_path"` // JSON event tables, table kind only
}

type IntegratorConfig struct {
	Method    string  `yaml:"method"`
	Tolerance float64 `yaml:"tolerance"`
	MinStep   float64 `yaml:"min_step"` // Myr
	MaxStep   float64 `yaml:"max_step"` // Myr
	Cadence   float64 `yaml:"cadence"`  // Myr
}

type ObserveConfig struct {
	MagLimit float64 `yaml:"mag_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Seed:    42,
		DataDir: "data",
		Population: PopulationConfig{
			N:           DefaultN,
			Horizon:     DefaultHorizon,
			M1Cutoff:    DefaultM1Cutoff,
			VDispersion: DefaultVDispersion,
			Lookback:    DefaultHorizon,
		},
		Potential: PotentialConfig{Model: "milky-way"},
		Stepper: StepperConfig{
			Kind:      "heuristic",
			KickSigma: DefaultKickSigma,
			SNCutoff:  DefaultSNCutoff,
		},
		Integrator: IntegratorConfig{
			Method:    "dopri45",
			Tolerance: 1e-8,
			MinStep:   1e-8,
			MaxStep:   1.0,
			Cadence:   DefaultCadence,
		},
		Observe: ObserveConfig{MagLimit: DefaultMagLimit},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the engine cannot run.
func (c *Config) Validate() error {
	if c.Population.N <= 0 {
		return fmt.Errorf("population.n must be positive, got %d", c.Population.N)
	}
	if c.Population.Horizon <= 0 {
		return fmt.Errorf("population.horizon must be positive, got %g", c.Population.Horizon)
	}
	if c.Population.Lookback < 0 || c.Population.Lookback > c.Population.Horizon {
		return fmt.Errorf("population.lookback must be within [0, horizon], got %g", c.Population.Lookback)
	}
	if c.Integrator.Cadence <= 0 {
		return fmt.Errorf("integrator.cadence must be positive, got %g", c.Integrator.Cadence)
	}
	if _, err := orbit.ParseMethod(c.Integrator.Method); err != nil {
		return err
	}
	switch c.Stepper.Kind {
	case "heuristic":
	case "table":
		if c.Stepper.TablePath == "" {
			return fmt.Errorf("stepper.table_path required for table stepper")
		}
	default:
		return fmt.Errorf("unknown stepper kind %q", c.Stepper.Kind)
	}
	switch c.Potential.Model {
	case "milky-way":
	case "plummer", "miyamoto-nagai", "nfw":
		if c.Potential.Mass <= 0 || c.Potential.ScaleLength <= 0 {
			return fmt.Errorf("potential %q needs positive mass and scale_length", c.Potential.Model)
		}
		if c.Potential.Model == "miyamoto-nagai" && c.Potential.ScaleHeight <= 0 {
			return fmt.Errorf("potential miyamoto-nagai needs positive scale_height")
		}
	default:
		return fmt.Errorf("unknown potential model %q", c.Potential.Model)
	}
	return nil
}

// Field builds the configured gravitational potential.
func (c *Config) Field() (potential.Field, error) {
	switch c.Potential.Model {
	case "milky-way":
		return potential.MilkyWay(), nil
	case "plummer":
		return potential.Plummer{Mass: c.Potential.Mass, B: c.Potential.ScaleLength}, nil
	case "miyamoto-nagai":
		return potential.MiyamotoNagai{
			Mass: c.Potential.Mass,
			A:    c.Potential.ScaleLength,
			B:    c.Potential.ScaleHeight,
		}, nil
	case "nfw":
		return potential.NFW{Mass: c.Potential.Mass, Rs: c.Potential.ScaleLength}, nil
	default:
		return nil, fmt.Errorf("unknown potential model %q", c.Potential.Model)
	}
}

// BuildStepper builds the configured evolution stepper. Table steppers load
// their per-system event lists from a JSON file keyed by system id.
func (c *Config) BuildStepper() (evolve.Stepper, error) {
	switch c.Stepper.Kind {
	case "heuristic":
		hs := evolve.NewHeuristicStepper(c.Seed)
		if c.Stepper.KickSigma > 0 {
			hs.KickSigma = c.Stepper.KickSigma
		}
		if c.Stepper.SNCutoff > 0 {
			hs.SNCutoff = c.Stepper.SNCutoff
		}
		return hs, nil
	case "table":
		data, err := os.ReadFile(c.Stepper.TablePath)
		if err != nil {
			return nil, err
		}
		var tables map[int][]evolve.Event
		if err := json.Unmarshal(data, &tables); err != nil {
			return nil, fmt.Errorf("event tables %s: %w", c.Stepper.TablePath, err)
		}
		return evolve.NewTableStepper(tables), nil
	default:
		return nil, fmt.Errorf("unknown stepper kind %q", c.Stepper.Kind)
	}
}

// BuildIntegrator builds the configured orbit integrator.
func (c *Config) BuildIntegrator() (orbit.Integrator, error) {
	method, err := orbit.ParseMethod(c.Integrator.Method)
	if err != nil {
		return orbit.Integrator{}, err
	}
	integ := orbit.Default()
	integ.Method = method
	if c.Integrator.Tolerance > 0 {
		integ.Tolerance = c.Integrator.Tolerance
	}
	if c.Integrator.MinStep > 0 {
		integ.MinStep = c.Integrator.MinStep
	}
	if c.Integrator.MaxStep > 0 {
		integ.MaxStep = c.Integrator.MaxStep
	}
	if c.Integrator.Cadence > 0 {
		integ.Cadence = c.Integrator.Cadence
	}
	return integ, nil
}

// SamplerConfig maps the population section onto the sampler's knobs.
func (c *Config) SamplerConfig() sample.Config {
	sc := sample.DefaultConfig()
	sc.Seed = c.Seed
	sc.N = c.Population.N
	if c.Population.M1Cutoff > 0 {
		sc.M1Cutoff = c.Population.M1Cutoff
	}
	if c.Population.VDispersion > 0 {
		sc.VDispersion = c.Population.VDispersion
	}
	return sc
}
