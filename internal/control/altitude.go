package control

import (
	"fmt"

	"github.com/san-kum/virtdrone/internal/dynamo"
	"github.com/san-kum/virtdrone/internal/mathx"
)

const (
	// IntegralGateM is the error band inside which the integrator runs.
	IntegralGateM = 0.5
	// IntegralLimit bounds the integral accumulator in RPM.
	IntegralLimit = 5000.0
)

// Altitude is a two-loop altitude controller. The outer loop moves an
// altitude reference toward the target, limited to MaxSlew m/s around the
// measured altitude. The inner loop turns the reference error into an RPM
// setpoint: InnerP*err + integral + HoverRPM.
type Altitude struct {
	AltP     float64
	MaxSlew  float64
	InnerP   float64
	InnerI   float64
	HoverRPM float64

	target   float64
	altRef   float64
	integral float64
	output   float64
}

func NewAltitude(altP, maxSlew, innerP, innerI, hoverRPM float64) *Altitude {
	return &Altitude{
		AltP:     altP,
		MaxSlew:  maxSlew,
		InnerP:   innerP,
		InnerI:   innerI,
		HoverRPM: hoverRPM,
		output:   hoverRPM,
	}
}

func (a *Altitude) SetTargetAltitude(m float64) { a.target = m }
func (a *Altitude) TargetAltitude() float64     { return a.target }
func (a *Altitude) AltitudeRef() float64        { return a.altRef }
func (a *Altitude) Integral() float64           { return a.integral }

// Update advances both loops by dt seconds. A non-positive dt returns the
// previous output without touching any state.
func (a *Altitude) Update(altitudeM, dt float64) float64 {
	if dt <= 0 {
		return a.output
	}

	a.altRef += a.AltP * (a.target - altitudeM) * dt
	slew := a.MaxSlew * dt
	a.altRef = mathx.Clamp(a.altRef, altitudeM-slew, altitudeM+slew)

	err := a.altRef - altitudeM
	p := a.InnerP * err
	if err > -IntegralGateM && err < IntegralGateM {
		a.integral += err * a.InnerI * dt
		a.integral = mathx.Clamp(a.integral, -IntegralLimit, IntegralLimit)
	}

	a.output = p + a.integral + a.HoverRPM
	return a.output
}

func (a *Altitude) Reset() {
	a.altRef = 0
	a.integral = 0
	a.output = a.HoverRPM
}

func (a *Altitude) GetParams() map[string]float64 {
	return map[string]float64{
		"alt_p":     a.AltP,
		"max_slew":  a.MaxSlew,
		"inner_p":   a.InnerP,
		"inner_i":   a.InnerI,
		"hover_rpm": a.HoverRPM,
		"target":    a.target,
	}
}

func (a *Altitude) SetParam(name string, value float64) error {
	switch name {
	case "alt_p":
		a.AltP = value
	case "max_slew":
		if value < 0 {
			return fmt.Errorf("max_slew %v: %w", value, dynamo.ErrParameterBounds)
		}
		a.MaxSlew = value
	case "inner_p":
		a.InnerP = value
	case "inner_i":
		a.InnerI = value
	case "hover_rpm":
		a.HoverRPM = value
	case "target":
		a.target = value
	default:
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}
