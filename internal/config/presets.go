package config

import "sort"

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

var presets = map[string]func() *Config{
	// Stock lab, closed loop on both channels.
	"default": func() *Config {
		return preset(func(c *Config) { c.Mode = "auto" })
	},
	// Open-loop step response: heater 1 full on, heater 2 off.
	"step-test": func() *Config {
		return preset(func(c *Config) {
			c.Mode = "manual"
			c.Heater1.Duty = 100
			c.Heater2.Duty = 0
			c.Duration = 900
			c.Window = 0
		})
	},
	// Lagged plant: poor convection and low emissivity.
	"insulated": func() *Config {
		return preset(func(c *Config) {
			c.Mode = "auto"
			c.Plant.U = 5.0
			c.Plant.Emissivity = 0.5
		})
	},
	// Fast losses: strong airflow across the device.
	"drafty": func() *Config {
		return preset(func(c *Config) {
			c.Mode = "auto"
			c.Plant.U = 20.0
		})
	},
	// Euler stability demo: tiny thermal mass with a step far beyond
	// the thermal time constant. The run is expected to diverge.
	"unstable-dt": func() *Config {
		return preset(func(c *Config) {
			c.Mode = "manual"
			c.Heater1.Duty = 100
			c.Plant.Mass = 2.0e-4
			c.Dt = 30.0
			c.Duration = 1200
		})
	},
}

func GetPreset(name string) *Config {
	fn, ok := presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
