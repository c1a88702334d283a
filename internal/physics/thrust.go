package physics

import (
	"math"

	"github.com/san-kum/virtdrone/internal/components"
)

const (
	DefaultThrustCoeff = 3e-5
	DefaultTorqueCoeff = 5e-7
)

// ThrustParams holds rotor geometry and aerodynamic coefficients.
type ThrustParams struct {
	KT              float64
	KQ              float64
	BladeDiameterM  float64
	BladeShapeCoeff float64
}

func DefaultThrustParams() ThrustParams {
	return ThrustParams{
		KT:              DefaultThrustCoeff,
		KQ:              DefaultTorqueCoeff,
		BladeDiameterM:  0.25,
		BladeShapeCoeff: 1.0,
	}
}

// ParamsFor takes the blade geometry from the motor specs and the
// coefficients from p.
func (p ThrustParams) ParamsFor(specs components.MotorSpecs) ThrustParams {
	p.BladeDiameterM = specs.BladeDiameterM
	p.BladeShapeCoeff = specs.BladeShapeCoeff
	return p
}

func RPMToRadPerSec(rpm float64) float64 {
	return rpm * 2 * math.Pi / 60
}

// Thrust in newtons for angular speed omega (rad/s).
func Thrust(omega float64, p ThrustParams) float64 {
	return p.KT * p.BladeDiameterM * p.BladeShapeCoeff * omega * omega
}

// Torque is the rotor reaction torque in N·m.
func Torque(omega float64, p ThrustParams) float64 {
	return p.KQ * p.BladeDiameterM * p.BladeShapeCoeff * omega * omega
}

func MotorThrust(m components.MotorReader, coeffs ThrustParams) float64 {
	return Thrust(RPMToRadPerSec(m.SpeedRPM()), coeffs.ParamsFor(m.Specs()))
}

func MotorTorque(m components.MotorReader, coeffs ThrustParams) float64 {
	return Torque(RPMToRadPerSec(m.SpeedRPM()), coeffs.ParamsFor(m.Specs()))
}

// HoverRPM is the speed at which n rotors with params p lift massKg.
func HoverRPM(massKg, gravity float64, n int, p ThrustParams) float64 {
	k := p.KT * p.BladeDiameterM * p.BladeShapeCoeff
	if n <= 0 || k <= 0 {
		return 0
	}
	omega := math.Sqrt(massKg * gravity / float64(n) / k)
	return omega * 60 / (2 * math.Pi)
}
