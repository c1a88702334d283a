package config

import "sort"

type presetDef struct {
	description string
	apply       func(c *Config)
}

var presets = map[string]presetDef{
	"hover": {"take off and hold 5 m", func(c *Config) {
		c.Controller.TargetAltitude = 5
		c.Simulation.Steps = 3000
	}},
	"climb": {"climb to 30 m", func(c *Config) {
		c.Controller.TargetAltitude = 30
		c.Simulation.Steps = 6000
	}},
	"descent": {"start airborne at 20 m and descend to 5 m", func(c *Config) {
		c.Simulation.InitialAltitudeM = 20
		c.Controller.TargetAltitude = 5
		c.Simulation.Steps = 4000
	}},
	"low_battery": {"take off on a 5% pack until cutoff", func(c *Config) {
		c.Drone.Battery.InitialSoCPercent = 5
		c.Controller.TargetAltitude = 10
		c.Simulation.Steps = 6000
	}},
	"heavy": {"carry a 0.75 kg payload to 10 m", func(c *Config) {
		c.Drone.BodyWeightKg = 1.2
		c.Simulation.Steps = 4000
	}},
	"noisy_gps": {"hold 10 m on noisy GPS fixes", func(c *Config) {
		c.Drone.GPS.Noise = true
		c.Drone.GPS.VerticalAccuracyM = 0.05
		c.Drone.GPS.HorizontalAccuracyM = 0.5
		c.Simulation.Steps = 3000
	}},
	"esc": {"hold 10 m through the ESC speed law", func(c *Config) {
		c.Simulation.SpeedLaw = "esc"
		c.Simulation.Steps = 3000
	}},
}

// GetPreset returns a fresh copy of the named preset applied over the
// defaults, or nil if there is no such preset.
func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func PresetDescription(name string) string {
	return presets[name].description
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
