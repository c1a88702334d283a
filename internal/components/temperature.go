package components

import "github.com/san-kum/virtdrone/internal/mathx"

const DefaultSensorTemperatureC = 20.0

type TemperatureRanges struct {
	MinC float64
	MaxC float64
}

func DefaultTemperatureRanges() TemperatureRanges {
	return TemperatureRanges{MinC: -50.0, MaxC: 150.0}
}

// NoiseSource yields uniform samples in [0, 1). *rand.Rand satisfies it.
type NoiseSource interface {
	Float64() float64
}

type TemperatureReading struct {
	TemperatureC float64
	Status       SensorStatus
}

type TemperatureSensor struct {
	BaseSensor
	ranges       TemperatureRanges
	weightKg     float64
	counts       uint64
	temperatureC float64
}

func NewTemperatureSensor(name string, io AnalogIOSpec, ranges TemperatureRanges, weightKg float64) *TemperatureSensor {
	return &TemperatureSensor{
		BaseSensor:   NewBaseSensor(name, SensorSensing, io),
		ranges:       ranges,
		weightKg:     weightKg,
		temperatureC: DefaultSensorTemperatureC,
	}
}

func (s *TemperatureSensor) Ranges() TemperatureRanges { return s.ranges }
func (s *TemperatureSensor) WeightKg() float64         { return s.weightKg }
func (s *TemperatureSensor) LastCountsReading() uint64 { return s.counts }
func (s *TemperatureSensor) TemperatureC() float64     { return s.temperatureC }

func (s *TemperatureSensor) Reading() TemperatureReading {
	return TemperatureReading{TemperatureC: s.temperatureC, Status: s.Status()}
}

// SetLastCountsReading stores a raw reading and converts it to a temperature.
// Counts outside the channel range are kept, the temperature is pinned to the
// nearest range bound and the sensor reports StatusError.
func (s *TemperatureSensor) SetLastCountsReading(counts uint64) bool {
	s.counts = counts

	io := s.IO()
	t := mathx.MapRange(float64(counts), float64(io.Counts.Min), float64(io.Counts.Max), s.ranges.MinC, s.ranges.MaxC)
	s.temperatureC = mathx.Clamp(t, s.ranges.MinC, s.ranges.MaxC)

	if !io.Contains(counts) {
		s.SetStatus(StatusError)
		return false
	}
	s.SetStatus(StatusActive)
	return true
}

// Update applies a jitter of up to ±1 °C drawn from noise. A nil source only
// marks the sensor active.
func (s *TemperatureSensor) Update(noise NoiseSource) {
	if noise != nil {
		s.temperatureC += noise.Float64()*2 - 1
		s.temperatureC = mathx.Clamp(s.temperatureC, s.ranges.MinC, s.ranges.MaxC)
	}
	s.SetStatus(StatusActive)
}
