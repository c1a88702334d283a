package metrics

import (
	"math"

	"github.com/san-kum/virtdrone/internal/sim"
)

// Energy integrates bus power over the run and reports watt-hours drawn.
type Energy struct {
	name    string
	joules  float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy_wh"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(t sim.Telemetry) {
	e.joules += t.BatteryV * t.CurrentA * t.Dt
	e.samples++
}

func (e *Energy) Value() float64 {
	return e.joules / 3600.0
}

func (e *Energy) Reset() {
	e.joules = 0
	e.samples = 0
}

// PeakTemperature is the hottest motor winding seen during the run.
type PeakTemperature struct {
	name    string
	peak    float64
	samples int
}

func NewPeakTemperature() *PeakTemperature {
	return &PeakTemperature{name: "peak_motor_temp_c"}
}

func (p *PeakTemperature) Name() string { return p.name }

func (p *PeakTemperature) Observe(t sim.Telemetry) {
	hottest := t.MaxMotorTempC()
	if p.samples == 0 {
		p.peak = hottest
	} else {
		p.peak = math.Max(p.peak, hottest)
	}
	p.samples++
}

func (p *PeakTemperature) Value() float64 {
	return p.peak
}

func (p *PeakTemperature) Reset() {
	p.peak = 0
	p.samples = 0
}
