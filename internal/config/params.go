package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/virtdrone/internal/dynamo"
)

func (c *ControllerConfig) fields() map[string]*float64 {
	return map[string]*float64{
		"target_altitude": &c.TargetAltitude,
		"alt_p":           &c.AltP,
		"max_slew":        &c.MaxSlew,
		"inner_p":         &c.InnerP,
		"inner_i":         &c.InnerI,
		"kd":              &c.Kd,
		"hover_rpm":       &c.HoverRPM,
		"fixed_rpm":       &c.FixedRPM,
	}
}

// Set assigns a controller gain by its yaml name.
func (c *ControllerConfig) Set(name string, value float64) error {
	f, ok := c.fields()[name]
	if !ok {
		return fmt.Errorf("controller param %q: %w", name, dynamo.ErrUnknownParam)
	}
	*f = value
	return nil
}

func (c *ControllerConfig) Get(name string) (float64, error) {
	f, ok := c.fields()[name]
	if !ok {
		return 0, fmt.Errorf("controller param %q: %w", name, dynamo.ErrUnknownParam)
	}
	return *f, nil
}

func ControllerParams() []string {
	var c ControllerConfig
	names := make([]string, 0, len(c.fields()))
	for name := range c.fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
