package config

import (
	"path/filepath"
	"testing"

	"github.com/san-kum/galpop/internal/orbit"
	"github.com/san-kum/galpop/internal/potential"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Population.N <= 0 {
		t.Error("n should be positive")
	}
	if cfg.Population.Horizon <= 0 {
		t.Error("horizon should be positive")
	}
	if cfg.Stepper.Kind != "heuristic" {
		t.Errorf("expected heuristic stepper, got %s", cfg.Stepper.Kind)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("quick-look")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Population.N != 100 {
		t.Errorf("expected n 100, got %d", cfg.Population.N)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("presets not sorted: %s before %s", names[i-1], names[i])
		}
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for name, cfg := range Presets {
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Population.N = 250
	cfg.Potential.Model = "plummer"
	cfg.Potential.Mass = 1e10
	cfg.Potential.ScaleLength = 1.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Seed != 7 {
		t.Errorf("expected seed 7, got %d", loaded.Seed)
	}
	if loaded.Population.N != 250 {
		t.Errorf("expected n 250, got %d", loaded.Population.N)
	}
	if loaded.Potential.Model != "plummer" {
		t.Errorf("expected plummer, got %s", loaded.Potential.Model)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero n", func(c *Config) { c.Population.N = 0 }},
		{"negative horizon", func(c *Config) { c.Population.Horizon = -1 }},
		{"lookback beyond horizon", func(c *Config) { c.Population.Lookback = c.Population.Horizon + 1 }},
		{"zero cadence", func(c *Config) { c.Integrator.Cadence = 0 }},
		{"bad method", func(c *Config) { c.Integrator.Method = "euler" }},
		{"bad stepper", func(c *Config) { c.Stepper.Kind = "cosmic" }},
		{"table without path", func(c *Config) { c.Stepper.Kind = "table"; c.Stepper.TablePath = "" }},
		{"bad potential", func(c *Config) { c.Potential.Model = "kepler" }},
		{"plummer without mass", func(c *Config) { c.Potential.Model = "plummer"; c.Potential.Mass = 0 }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestField(t *testing.T) {
	cfg := DefaultConfig()
	field, err := cfg.Field()
	if err != nil {
		t.Fatalf("field failed: %v", err)
	}
	if _, ok := field.(potential.Composite); !ok {
		t.Errorf("expected composite milky way, got %T", field)
	}

	cfg.Potential = PotentialConfig{Model: "nfw", Mass: 5e11, ScaleLength: 15.0}
	field, err = cfg.Field()
	if err != nil {
		t.Fatalf("field failed: %v", err)
	}
	if _, ok := field.(potential.NFW); !ok {
		t.Errorf("expected NFW, got %T", field)
	}
}

func TestBuildIntegrator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Integrator.Method = "leapfrog"
	cfg.Integrator.Cadence = 0.5

	integ, err := cfg.BuildIntegrator()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if integ.Method != orbit.Leapfrog {
		t.Errorf("expected leapfrog, got %v", integ.Method)
	}
	if integ.Cadence != 0.5 {
		t.Errorf("expected cadence 0.5, got %g", integ.Cadence)
	}
}

func TestBuildStepperHeuristic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stepper.KickSigma = 100.0

	stepper, err := cfg.BuildStepper()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if stepper == nil {
		t.Fatal("expected stepper")
	}
}

func TestBuildStepperTableMissingFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stepper.Kind = "table"
	cfg.Stepper.TablePath = filepath.Join(t.TempDir(), "absent.json")

	if _, err := cfg.BuildStepper(); err == nil {
		t.Error("expected error for missing table file")
	}
}
