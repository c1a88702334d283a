package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/virtdrone/internal/config"
	"github.com/san-kum/virtdrone/internal/control"
	"github.com/san-kum/virtdrone/internal/dynamo"
)

// ControllerFactory builds a controller from its gains; hoverRPM is already
// resolved against the airframe.
type ControllerFactory func(c config.ControllerConfig, hoverRPM float64) control.SpeedController

type Registry struct {
	controllers map[string]ControllerFactory
	speedLaws   map[string]func(config.ESCConfig) *control.ESC
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]ControllerFactory),
		speedLaws:   make(map[string]func(config.ESCConfig) *control.ESC),
	}

	r.controllers["altitude"] = func(c config.ControllerConfig, hover float64) control.SpeedController {
		return control.NewAltitude(c.AltP, c.MaxSlew, c.InnerP, c.InnerI, hover)
	}
	r.controllers["pid"] = func(c config.ControllerConfig, hover float64) control.SpeedController {
		return control.NewPID(c.InnerP, c.InnerI, c.Kd, hover)
	}
	r.controllers["fixed"] = func(c config.ControllerConfig, hover float64) control.SpeedController {
		rpm := c.FixedRPM
		if rpm == 0 {
			rpm = hover
		}
		return control.NewFixed(rpm)
	}

	r.speedLaws["direct"] = func(config.ESCConfig) *control.ESC { return nil }
	r.speedLaws["esc"] = func(c config.ESCConfig) *control.ESC {
		return control.NewESC(c.MaxDeltaRPMps, c.Kp)
	}

	return r
}

func (r *Registry) RegisterController(name string, f ControllerFactory) {
	r.controllers[name] = f
}

func (r *Registry) GetController(name string, c config.ControllerConfig, hoverRPM float64) (control.SpeedController, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("controller %q: %w", name, dynamo.ErrUnknownComponent)
	}
	ctrl := fn(c, hoverRPM)
	ctrl.SetTargetAltitude(c.TargetAltitude)
	return ctrl, nil
}

func (r *Registry) GetSpeedLaw(name string, c config.ESCConfig) (*control.ESC, error) {
	fn, ok := r.speedLaws[name]
	if !ok {
		return nil, fmt.Errorf("speed law %q: %w", name, dynamo.ErrUnknownComponent)
	}
	return fn(c), nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListSpeedLaws() []string {
	names := make([]string, 0, len(r.speedLaws))
	for name := range r.speedLaws {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
