// Package config loads and saves lab configuration files (YAML) and
// provides defaults and named presets.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abe-mart/tclab-sim/internal/plant"
)

const (
	DefaultDt          = 0.1 // physics step, seconds
	DefaultTickMillis  = 100 // wall-clock tick cadence for live mode
	DefaultDuration    = 600.0
	DefaultWindow      = 300.0
	DefaultKp          = 10.0
	DefaultKi          = 0.2
	DefaultKd          = 1.0
	DefaultSetpoint1   = 50.0
	DefaultSetpoint2   = 40.0
	DefaultInitialTemp = plant.DefaultInitialC
)

type Config struct {
	Dt          float64     `yaml:"dt"`
	TickMillis  int         `yaml:"tick_ms"`
	Duration    float64     `yaml:"duration"`
	InitialTemp float64     `yaml:"initial_temp"`
	Window      float64     `yaml:"window"` // seconds, 0 = unbounded
	Mode        string      `yaml:"mode"`   // "manual" or "auto"
	Plant       PlantConfig `yaml:"plant"`
	Heater1     LoopConfig  `yaml:"heater1"`
	Heater2     LoopConfig  `yaml:"heater2"`
}

type PlantConfig struct {
	U          float64 `yaml:"u"`
	Mass       float64 `yaml:"mass"`
	Cp         float64 `yaml:"cp"`
	Alpha1     float64 `yaml:"alpha1"`
	Alpha2     float64 `yaml:"alpha2"`
	Emissivity float64 `yaml:"emissivity"`
	Ambient    float64 `yaml:"ambient"` // celsius
}

// LoopConfig holds one control channel: PID tuning plus the manual
// duty used while that channel is not under automatic control.
type LoopConfig struct {
	Kp       float64 `yaml:"kp"`
	Ki       float64 `yaml:"ki"`
	Kd       float64 `yaml:"kd"`
	Setpoint float64 `yaml:"setpoint"`
	Duty     float64 `yaml:"duty"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:          DefaultDt,
		TickMillis:  DefaultTickMillis,
		Duration:    DefaultDuration,
		InitialTemp: DefaultInitialTemp,
		Window:      DefaultWindow,
		Mode:        "manual",
		Plant: PlantConfig{
			U:          plant.DefaultU,
			Mass:       plant.DefaultMass,
			Cp:         plant.DefaultCp,
			Alpha1:     plant.DefaultAlpha1,
			Alpha2:     plant.DefaultAlpha2,
			Emissivity: plant.DefaultEmissivity,
			Ambient:    plant.DefaultInitialC,
		},
		Heater1: LoopConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, Setpoint: DefaultSetpoint1},
		Heater2: LoopConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, Setpoint: DefaultSetpoint2},
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
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Automatic reports whether the configured mode is closed-loop.
func (c *Config) Automatic() bool {
	return c.Mode == "auto"
}

// PlantParams returns the plant section as a parameter map in the
// shape plant.Model.SetParams expects.
func (c *Config) PlantParams() map[string]float64 {
	return map[string]float64{
		"U":          c.Plant.U,
		"mass":       c.Plant.Mass,
		"Cp":         c.Plant.Cp,
		"alpha1":     c.Plant.Alpha1,
		"alpha2":     c.Plant.Alpha2,
		"emissivity": c.Plant.Emissivity,
		"ambient":    c.Plant.Ambient,
	}
}
