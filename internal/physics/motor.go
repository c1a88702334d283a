package physics

import (
	"math"
	"time"

	"github.com/san-kum/virtdrone/internal/components"
	"github.com/san-kum/virtdrone/internal/mathx"
)

const (
	// ThermalTimeConstant is the first-order lag of the winding temperature.
	ThermalTimeConstant = 10 * time.Second

	// CutoffSoCPercent is the pack state of charge below which motors see no
	// bus voltage and draw no current.
	CutoffSoCPercent = 1.0
)

// UpdateSpeed ramps the motor toward its desired speed by at most
// MaxRampRateRPMps*dt. The reachable ceiling scales with batteryV over the
// motor's nominal voltage.
func UpdateSpeed(m components.MotorState, dt time.Duration, batteryV float64) {
	if dt <= 0 {
		return
	}
	specs := m.Specs()

	ceiling := specs.MaxSpeedRPM
	if specs.NominalVoltageV > 0 {
		ceiling = specs.MaxSpeedRPM * batteryV / specs.NominalVoltageV
	}
	desired := mathx.Clamp(m.DesiredSpeedRPM(), 0, math.Max(0, ceiling))

	step := specs.MaxRampRateRPMps * dt.Seconds()
	speed := m.SpeedRPM()
	switch {
	case speed < desired:
		speed = math.Min(speed+step, desired)
	case speed > desired:
		speed = math.Max(speed-step, desired)
	}
	m.SetSpeedRPM(speed)
}

// CalculateCurrent derives current draw from the actual speed.
func CalculateCurrent(m components.MotorState) {
	specs := m.Specs()
	if specs.MaxSpeedRPM <= 0 || specs.Efficiency <= 0 {
		m.SetCurrentA(0)
		return
	}
	normalized := m.SpeedRPM() / specs.MaxSpeedRPM
	m.SetCurrentA(mathx.Clamp(normalized*specs.MaxCurrentA/specs.Efficiency, 0, specs.MaxCurrentA))
}

// CalculateCurrentWithBattery forces the current to zero when the pack is
// depleted and otherwise behaves like CalculateCurrent.
func CalculateCurrentWithBattery(m components.MotorState, battery components.Battery) {
	if battery != nil && battery.StateOfChargePercent() < CutoffSoCPercent {
		m.SetCurrentA(0)
		return
	}
	CalculateCurrent(m)
}

func CalculateLosses(m components.MotorState) {
	m.SetLossesW(m.VoltageV() * m.CurrentA() * (1.0 - m.Specs().Efficiency))
}

// UpdateTemperature relaxes the winding temperature toward
// ambient + losses*thermalResistance and mirrors it onto the motor's
// temperature sensor as raw counts.
func UpdateTemperature(m components.MotorState, dt time.Duration) {
	if dt <= 0 {
		return
	}
	target := m.AmbientTempC() + m.LossesW()*m.Specs().ThermalResistance
	t := m.TemperatureC()
	t += (target - t) * (dt.Seconds() / ThermalTimeConstant.Seconds())
	m.SetTemperatureC(t)

	sensor := m.TempSensor()
	if sensor == nil {
		return
	}
	r := sensor.Ranges()
	counts := sensor.IO().Counts
	raw := mathx.MapRange(t, r.MinC, r.MaxC, float64(counts.Min), float64(counts.Max))
	sensor.SetLastCountsReading(uint64(math.Max(0, raw)))
}

// BatteryDrainJ is the electrical energy drawn over seconds at the motor's
// present voltage and current.
func BatteryDrainJ(m components.MotorReader, seconds float64) float64 {
	return m.VoltageV() * m.CurrentA() * seconds
}

// BusVoltage is the voltage a motor sees from battery: zero once the pack is
// below CutoffSoCPercent.
func BusVoltage(battery components.Battery) float64 {
	if battery == nil || battery.StateOfChargePercent() < CutoffSoCPercent {
		return 0
	}
	return battery.VoltageV()
}

// UpdateMotor advances one motor by dt: speed, then current, losses and
// temperature, so the latter three follow the speed reached this tick.
// A nil battery is an ideal supply at the motor's nominal voltage.
func UpdateMotor(m components.MotorState, dt time.Duration, battery components.Battery) {
	if dt <= 0 {
		return
	}
	v := m.Specs().NominalVoltageV
	if battery != nil {
		v = BusVoltage(battery)
	}
	m.SetVoltageV(v)
	UpdateSpeed(m, dt, v)
	CalculateCurrentWithBattery(m, battery)
	CalculateLosses(m)
	UpdateTemperature(m, dt)
}
