package physics

import (
	"fmt"

	"github.com/san-kum/virtdrone/internal/dynamo"
)

const (
	DefaultGravity   = 9.81
	DefaultDragCoeff = 0.5
)

// Vertical is the single-axis rigid body of the airframe. State is
// [altitude, velocity] (up positive); control u[0] is total rotor thrust in N.
type Vertical struct {
	Mass      float64
	Gravity   float64
	DragCoeff float64
}

func NewVertical(massKg float64) *Vertical {
	return &Vertical{
		Mass:      massKg,
		Gravity:   DefaultGravity,
		DragCoeff: DefaultDragCoeff,
	}
}

func (v *Vertical) StateDim() int   { return 2 }
func (v *Vertical) ControlDim() int { return 1 }

func (v *Vertical) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	vel := x[1]
	thrust := 0.0
	if len(u) > 0 {
		thrust = u[0]
	}
	if v.Mass <= 0 {
		return dynamo.State{vel, 0}
	}
	return dynamo.State{vel, v.NetForce(thrust, vel) / v.Mass}
}

// NetForce is thrust minus weight minus linear drag.
func (v *Vertical) NetForce(thrust, vel float64) float64 {
	return thrust - v.Mass*v.Gravity - v.DragCoeff*vel
}

func (v *Vertical) Weight() float64 {
	return v.Mass * v.Gravity
}

func (v *Vertical) Energy(x dynamo.State) float64 {
	alt, vel := x[0], x[1]
	return 0.5*v.Mass*vel*vel + v.Mass*v.Gravity*alt
}

// Ground floors altitude at zero and zeroes velocity on contact. It reports
// whether the state was touched.
func Ground(x dynamo.State) bool {
	if x[0] >= 0 {
		return false
	}
	x[0] = 0
	x[1] = 0
	return true
}

func (v *Vertical) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    v.Mass,
		"gravity": v.Gravity,
		"drag":    v.DragCoeff,
	}
}

func (v *Vertical) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		if value <= 0 {
			return fmt.Errorf("mass %v: %w", value, dynamo.ErrParameterBounds)
		}
		v.Mass = value
	case "gravity":
		v.Gravity = value
	case "drag":
		if value < 0 {
			return fmt.Errorf("drag %v: %w", value, dynamo.ErrParameterBounds)
		}
		v.DragCoeff = value
	default:
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}
