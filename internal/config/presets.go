package config

import "sort"

// Presets are complete, validated starting points for common runs. Each is
// built on top of the defaults so later additions pick up sane values.
var Presets = map[string]*Config{
	"fiducial":   DefaultConfig(),
	"quick-look": quickLook(),
	"massive":    massive(),
	"low-kicks":  lowKicks(),
	"halo":       halo(),
}

func quickLook() *Config {
	c := DefaultConfig()
	c.Population.N = 100
	c.Population.Horizon = 200.0
	c.Population.Lookback = 200.0
	c.Integrator.Tolerance = 1e-6
	return c
}

func massive() *Config {
	c := DefaultConfig()
	c.Population.N = 2000
	c.Population.M1Cutoff = 15.0
	return c
}

func lowKicks() *Config {
	c := DefaultConfig()
	c.Stepper.KickSigma = 30.0
	return c
}

func halo() *Config {
	c := DefaultConfig()
	c.Potential.Model = "nfw"
	c.Potential.Mass = 5.4e11
	c.Potential.ScaleLength = 15.62
	c.Population.VDispersion = 120.0
	return c
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
