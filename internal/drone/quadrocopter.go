// Package drone assembles airframes out of components.
package drone

import (
	"fmt"

	"github.com/san-kum/virtdrone/internal/components"
	"github.com/san-kum/virtdrone/internal/physics"
)

const MotorCount = 4

// Specs describes everything needed to build a simulated quadrocopter.
type Specs struct {
	Name               string
	Motor              components.MotorSpecs
	MotorIO            components.AnalogIOSpec
	Battery            components.BatterySpecs
	TempIO             components.AnalogIOSpec
	TempRanges         components.TemperatureRanges
	TempSensorWeightKg float64
	GPS                components.GPSSpecs
	BodyWeightKg       float64
	BladeDiameterM     float64
	BladeShapeCoeff    float64
}

// DefaultSpecs is a 4S 5000 mAh quad of about 1.2 kg.
func DefaultSpecs() Specs {
	return Specs{
		Name:               "Quad",
		Motor:              components.DefaultMotorSpecs(),
		MotorIO:            components.NewAnalogIOSpec(components.IOOutput, components.ZeroTo10V, 0, 10000),
		Battery:            components.NewBatterySpecs(4, components.DefaultCellSpecs(), 0.5),
		TempIO:             components.NewAnalogIOSpec(components.IOInput, components.FourTo20mA, 4000, 20000),
		TempRanges:         components.DefaultTemperatureRanges(),
		TempSensorWeightKg: 0.02,
		GPS:                components.DefaultGPSSpecs(),
		BodyWeightKg:       0.45,
		BladeDiameterM:     0.25,
		BladeShapeCoeff:    1.0,
	}
}

// Quadrocopter owns four identical motors plus its battery, frame
// temperature sensor and GPS. Battery and GPS may be static or simulated.
type Quadrocopter struct {
	name         string
	motors       []*components.Motor
	battery      components.Battery
	tempSensor   *components.TemperatureSensor
	gps          components.GPS
	bodyWeightKg float64
}

func New(name string, motorSpecs components.MotorSpecs, motorIO components.AnalogIOSpec,
	battery components.Battery, tempSensor *components.TemperatureSensor, gps components.GPS,
	bodyWeightKg, bladeDiameterM, bladeShapeCoeff float64) *Quadrocopter {

	specs := motorSpecs
	specs.BladeDiameterM = bladeDiameterM
	specs.BladeShapeCoeff = bladeShapeCoeff

	motors := make([]*components.Motor, MotorCount)
	for i := range motors {
		motors[i] = components.NewMotor(fmt.Sprintf("%s_M%d", name, i+1), motorIO, specs)
	}

	return &Quadrocopter{
		name:         name,
		motors:       motors,
		battery:      battery,
		tempSensor:   tempSensor,
		gps:          gps,
		bodyWeightKg: bodyWeightKg,
	}
}

// NewWithBatterySim builds a quad with a simulated battery pack and GPS.
func NewWithBatterySim(s Specs) *Quadrocopter {
	battery := physics.NewBatteryPack(s.Name+"_Battery", s.Battery)
	temp := components.NewTemperatureSensor(s.Name+"_TempSensor", s.TempIO, s.TempRanges, s.TempSensorWeightKg)
	gps := physics.NewSimGPS(s.Name+"_GPS", s.GPS)
	return New(s.Name, s.Motor, s.MotorIO, battery, temp, gps, s.BodyWeightKg, s.BladeDiameterM, s.BladeShapeCoeff)
}

func (q *Quadrocopter) Name() string                                     { return q.name }
func (q *Quadrocopter) Motors() []*components.Motor                      { return q.motors }
func (q *Quadrocopter) Battery() components.Battery                      { return q.battery }
func (q *Quadrocopter) TemperatureSensor() *components.TemperatureSensor { return q.tempSensor }
func (q *Quadrocopter) GPS() components.GPS                              { return q.gps }
func (q *Quadrocopter) BodyWeightKg() float64                            { return q.bodyWeightKg }

func (q *Quadrocopter) SetBodyWeightKg(kg float64) { q.bodyWeightKg = kg }

// AltitudeM is the GPS altitude, or 0 without a GPS.
func (q *Quadrocopter) AltitudeM() float64 {
	if q.gps == nil {
		return 0
	}
	return q.gps.Position().AltitudeM
}

func (q *Quadrocopter) TotalWeightKg() float64 {
	total := q.bodyWeightKg
	for _, m := range q.motors {
		total += m.WeightKg()
	}
	if q.battery != nil {
		total += q.battery.WeightKg()
	}
	if q.tempSensor != nil {
		total += q.tempSensor.WeightKg()
	}
	if q.gps != nil {
		total += q.gps.WeightKg()
	}
	return total
}
