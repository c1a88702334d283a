package components

import "github.com/san-kum/virtdrone/internal/mathx"

const DefaultAmbientTempC = 25.0

type MotorSpecs struct {
	MaxSpeedRPM       float64
	NominalVoltageV   float64
	MaxCurrentA       float64
	Efficiency        float64 // (0, 1]
	ThermalResistance float64 // °C/W
	BladeDiameterM    float64
	BladeShapeCoeff   float64
	MaxRampRateRPMps  float64
	WeightKg          float64
}

func DefaultMotorSpecs() MotorSpecs {
	return MotorSpecs{
		MaxSpeedRPM:       15000.0,
		NominalVoltageV:   14.8,
		MaxCurrentA:       20.0,
		Efficiency:        0.9,
		ThermalResistance: 0.4,
		BladeDiameterM:    0.25,
		BladeShapeCoeff:   1.0,
		MaxRampRateRPMps:  1000.0,
		WeightKg:          0.05,
	}
}

// MotorReader is the read-only view of a motor.
type MotorReader interface {
	Name() string
	Specs() MotorSpecs
	SpeedRPM() float64
	DesiredSpeedRPM() float64
	CurrentA() float64
	VoltageV() float64
	TemperatureC() float64
	LossesW() float64
	AmbientTempC() float64
	WeightKg() float64
	TemperatureReading() TemperatureReading
}

// MotorState is the view the motor physics mutates each tick.
type MotorState interface {
	MotorReader
	SetSpeedRPM(rpm float64)
	SetCurrentA(a float64)
	SetVoltageV(v float64)
	SetTemperatureC(c float64)
	SetLossesW(w float64)
	TempSensor() *TemperatureSensor
}

type Motor struct {
	BaseSensor
	specs        MotorSpecs
	speedRPM     float64
	desiredRPM   float64
	currentA     float64
	voltageV     float64
	temperatureC float64
	lossesW      float64
	ambientC     float64
	tempSensor   *TemperatureSensor
}

func NewMotor(name string, io AnalogIOSpec, specs MotorSpecs) *Motor {
	sensorIO := NewAnalogIOSpec(IOInput, FourTo20mA, 4000, 20000)
	return &Motor{
		BaseSensor:   NewBaseSensor(name, SensorActuator, io),
		specs:        specs,
		voltageV:     specs.NominalVoltageV,
		temperatureC: DefaultAmbientTempC,
		ambientC:     DefaultAmbientTempC,
		tempSensor:   NewTemperatureSensor(name+"_Temp", sensorIO, DefaultTemperatureRanges(), 0),
	}
}

func (m *Motor) Specs() MotorSpecs        { return m.specs }
func (m *Motor) SpeedRPM() float64        { return m.speedRPM }
func (m *Motor) DesiredSpeedRPM() float64 { return m.desiredRPM }
func (m *Motor) CurrentA() float64        { return m.currentA }
func (m *Motor) VoltageV() float64        { return m.voltageV }
func (m *Motor) TemperatureC() float64    { return m.temperatureC }
func (m *Motor) LossesW() float64         { return m.lossesW }
func (m *Motor) AmbientTempC() float64    { return m.ambientC }
func (m *Motor) WeightKg() float64        { return m.specs.WeightKg }

func (m *Motor) TempSensor() *TemperatureSensor { return m.tempSensor }

func (m *Motor) TemperatureReading() TemperatureReading {
	return m.tempSensor.Reading()
}

// SetDesiredSpeedRPM stores the speed command, clamped to [0, MaxSpeedRPM].
func (m *Motor) SetDesiredSpeedRPM(rpm float64) {
	m.desiredRPM = mathx.Clamp(rpm, 0, m.specs.MaxSpeedRPM)
}

func (m *Motor) SetAmbientTempC(c float64) { m.ambientC = c }

func (m *Motor) SetSpeedRPM(rpm float64)   { m.speedRPM = rpm }
func (m *Motor) SetCurrentA(a float64)     { m.currentA = a }
func (m *Motor) SetVoltageV(v float64)     { m.voltageV = v }
func (m *Motor) SetTemperatureC(c float64) { m.temperatureC = c }
func (m *Motor) SetLossesW(w float64)      { m.lossesW = w }
