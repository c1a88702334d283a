package control

import (
	"fmt"

	"github.com/san-kum/virtdrone/internal/dynamo"
	"github.com/san-kum/virtdrone/internal/mathx"
)

// PID drives altitude error straight to an RPM offset around HoverRPM.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	HoverRPM float64
	Target   float64

	integral float64
	prevErr  float64
	first    bool
	output   float64
}

func NewPID(kp, ki, kd, hoverRPM float64) *PID {
	return &PID{
		Kp:       kp,
		Ki:       ki,
		Kd:       kd,
		HoverRPM: hoverRPM,
		first:    true,
		output:   hoverRPM,
	}
}

func (p *PID) SetTargetAltitude(m float64) { p.Target = m }
func (p *PID) TargetAltitude() float64     { return p.Target }

func (p *PID) Update(altitudeM, dt float64) float64 {
	if dt <= 0 {
		return p.output
	}
	err := p.Target - altitudeM

	derivative := 0.0
	if !p.first {
		derivative = (err - p.prevErr) / dt
	}
	p.first = false
	p.prevErr = err

	p.integral += err * dt
	p.integral = mathx.Clamp(p.integral, -IntegralLimit, IntegralLimit)

	p.output = p.HoverRPM + p.Kp*err + p.Ki*p.integral + p.Kd*derivative
	return p.output
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
	p.output = p.HoverRPM
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":        p.Kp,
		"Ki":        p.Ki,
		"Kd":        p.Kd,
		"hover_rpm": p.HoverRPM,
		"Target":    p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "hover_rpm":
		p.HoverRPM = value
	case "Target":
		p.Target = value
	default:
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}
