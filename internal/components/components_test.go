package components

import (
	"math"
	"testing"
)

type fixedNoise float64

func (f fixedNoise) Float64() float64 { return float64(f) }

func newTestSensor() *TemperatureSensor {
	io := NewAnalogIOSpec(IOInput, FourTo20mA, 4000, 20000)
	return NewTemperatureSensor("T1", io, DefaultTemperatureRanges(), 0.01)
}

func TestTemperatureSensorCounts(t *testing.T) {
	tests := []struct {
		name   string
		counts uint64
		wantC  float64
		wantOK bool
		status SensorStatus
	}{
		{"low bound", 4000, -50, true, StatusActive},
		{"midpoint", 12000, 50, true, StatusActive},
		{"high bound", 20000, 150, true, StatusActive},
		{"below range", 3000, -50, false, StatusError},
		{"above range", 25000, 150, false, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSensor()
			if ok := s.SetLastCountsReading(tt.counts); ok != tt.wantOK {
				t.Errorf("SetLastCountsReading(%d) = %v, want %v", tt.counts, ok, tt.wantOK)
			}
			if math.Abs(s.TemperatureC()-tt.wantC) > 1e-9 {
				t.Errorf("temperature = %v, want %v", s.TemperatureC(), tt.wantC)
			}
			if s.Status() != tt.status {
				t.Errorf("status = %v, want %v", s.Status(), tt.status)
			}
			if s.LastCountsReading() != tt.counts {
				t.Errorf("counts = %d, want %d", s.LastCountsReading(), tt.counts)
			}
		})
	}
}

func TestTemperatureSensorUpdate(t *testing.T) {
	s := newTestSensor()
	if s.Status() != StatusInactive {
		t.Fatalf("new sensor status = %v, want inactive", s.Status())
	}

	s.Update(nil)
	if s.TemperatureC() != DefaultSensorTemperatureC || s.Status() != StatusActive {
		t.Errorf("nil noise: got %v %v", s.TemperatureC(), s.Status())
	}

	s.Update(fixedNoise(0.75))
	if math.Abs(s.TemperatureC()-(DefaultSensorTemperatureC+0.5)) > 1e-12 {
		t.Errorf("temperature = %v, want %v", s.TemperatureC(), DefaultSensorTemperatureC+0.5)
	}

	r := s.Reading()
	if r.TemperatureC != s.TemperatureC() || r.Status != StatusActive {
		t.Errorf("reading = %+v", r)
	}
}

func TestSensorStatusString(t *testing.T) {
	for status, want := range map[SensorStatus]string{
		StatusInactive: "inactive",
		StatusActive:   "active",
		StatusError:    "error",
	} {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}

func TestMotorDesiredSpeedClamp(t *testing.T) {
	m := NewMotor("M1", NewAnalogIOSpec(IOOutput, ZeroTo10V, 0, 4095), DefaultMotorSpecs())

	if m.Type() != SensorActuator || m.Name() != "M1" {
		t.Errorf("identity = %v %q", m.Type(), m.Name())
	}
	if m.VoltageV() != 14.8 || m.TemperatureC() != DefaultAmbientTempC {
		t.Errorf("initial state: %vV %v°C", m.VoltageV(), m.TemperatureC())
	}

	m.SetDesiredSpeedRPM(-100)
	if m.DesiredSpeedRPM() != 0 {
		t.Errorf("negative command: %v, want 0", m.DesiredSpeedRPM())
	}
	m.SetDesiredSpeedRPM(20000)
	if m.DesiredSpeedRPM() != 15000 {
		t.Errorf("over max: %v, want 15000", m.DesiredSpeedRPM())
	}
	m.SetDesiredSpeedRPM(6000)
	if m.DesiredSpeedRPM() != 6000 {
		t.Errorf("in range: %v, want 6000", m.DesiredSpeedRPM())
	}

	if m.TempSensor().Name() != "M1_Temp" {
		t.Errorf("temp sensor name = %q", m.TempSensor().Name())
	}
}

func TestStaticBattery(t *testing.T) {
	b := NewStaticBattery("pack", NewBatterySpecs(4, DefaultCellSpecs(), 0.5))

	if math.Abs(b.VoltageV()-14.8) > 1e-9 {
		t.Errorf("voltage = %v, want 14.8", b.VoltageV())
	}
	if b.StateOfChargePercent() != 100 || b.CurrentA() != 0 {
		t.Errorf("soc %v current %v", b.StateOfChargePercent(), b.CurrentA())
	}
	if math.Abs(b.RemainingEnergyWh()-74) > 1e-9 {
		t.Errorf("energy = %v Wh, want 74", b.RemainingEnergyWh())
	}
}

func TestStaticGPS(t *testing.T) {
	pos := Position3D{LatitudeDeg: 47.1, LongitudeDeg: 8.5, AltitudeM: 420}
	g := NewStaticGPS("gps", DefaultGPSSpecs(), pos)

	if g.Position() != pos {
		t.Errorf("position = %+v", g.Position())
	}
	if g.Velocity() != (Velocity3D{}) || g.Status() != StatusActive {
		t.Errorf("velocity %+v status %v", g.Velocity(), g.Status())
	}
	if g.SatelliteCount() != DefaultGPSSpecs().MaxSatellites {
		t.Errorf("satellites = %d", g.SatelliteCount())
	}
}

func TestPosition3D(t *testing.T) {
	a := Position3D{LatitudeDeg: 1, LongitudeDeg: 2, AltitudeM: 3}
	b := Position3D{LatitudeDeg: 4, LongitudeDeg: 6, AltitudeM: 3}

	if got := a.Add(b).Sub(b); got != a {
		t.Errorf("Add then Sub = %+v, want %+v", got, a)
	}
	if d := a.DistanceTo(b); math.Abs(d-5) > 1e-12 {
		t.Errorf("distance = %v, want 5", d)
	}
}

func TestAnalogIOSpecContains(t *testing.T) {
	io := NewAnalogIOSpec(IOInput, ZeroTo10V, 100, 200)
	for counts, want := range map[uint64]bool{99: false, 100: true, 150: true, 200: true, 201: false} {
		if got := io.Contains(counts); got != want {
			t.Errorf("Contains(%d) = %v, want %v", counts, got, want)
		}
	}
}
