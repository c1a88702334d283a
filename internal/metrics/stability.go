package metrics

import (
	"math"

	"github.com/san-kum/virtdrone/internal/sim"
)

// Stability is the fraction of samples whose altitude lies within band
// meters of the target.
type Stability struct {
	name    string
	band    float64
	inside  int
	samples int
}

func NewStability(band float64) *Stability {
	return &Stability{
		name: "settled_fraction",
		band: band,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t sim.Telemetry) {
	s.samples++
	if math.Abs(t.AltitudeM-t.TargetM) <= s.band {
		s.inside++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.inside) / float64(s.samples)
}

func (s *Stability) Reset() {
	s.inside = 0
	s.samples = 0
}

// TrackingError is the RMS distance between altitude and target.
type TrackingError struct {
	name    string
	sumSq   float64
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{name: "tracking_rms_m"}
}

func (e *TrackingError) Name() string { return e.name }

func (e *TrackingError) Observe(t sim.Telemetry) {
	d := t.AltitudeM - t.TargetM
	e.sumSq += d * d
	e.samples++
}

func (e *TrackingError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return math.Sqrt(e.sumSq / float64(e.samples))
}

func (e *TrackingError) Reset() {
	e.sumSq = 0
	e.samples = 0
}

// Default returns a fresh set of the standard flight metrics.
func Default(settleBand float64) []sim.Metric {
	return []sim.Metric{
		NewTrackingError(),
		NewStability(settleBand),
		NewEnergy(),
		NewPeakTemperature(),
		NewControlEffort(),
	}
}
