package analysis

import (
	"math"

	"github.com/san-kum/virtdrone/internal/sim"
)

// StepResponse summarises a move from the first sample's altitude to the
// final target. Times are negative when the event never happens.
type StepResponse struct {
	StartM           float64
	TargetM          float64
	RiseTime         float64
	OvershootPercent float64
	SettlingTime     float64
	SteadyStateError float64
}

// AnalyzeStep measures the 10-90 % rise time, the overshoot past the target
// and the time after which the altitude stays within band of it.
func AnalyzeStep(samples []sim.Telemetry, band float64) StepResponse {
	resp := StepResponse{RiseTime: -1, SettlingTime: -1}
	if len(samples) == 0 {
		return resp
	}

	final := samples[len(samples)-1]
	resp.StartM = samples[0].AltitudeM
	resp.TargetM = final.TargetM
	resp.SteadyStateError = final.AltitudeM - final.TargetM

	delta := resp.TargetM - resp.StartM
	if math.Abs(delta) < 1e-9 {
		resp.RiseTime = 0
	} else {
		sign := math.Copysign(1, delta)
		t10, t90 := -1.0, -1.0
		peak := 0.0
		for _, t := range samples {
			progress := (t.AltitudeM - resp.StartM) / delta
			if t10 < 0 && progress >= 0.1 {
				t10 = t.Time
			}
			if t90 < 0 && progress >= 0.9 {
				t90 = t.Time
			}
			peak = max(peak, (t.AltitudeM-resp.TargetM)*sign)
		}
		if t10 >= 0 && t90 >= 0 {
			resp.RiseTime = t90 - t10
		}
		resp.OvershootPercent = peak / math.Abs(delta) * 100
	}

	for i := len(samples) - 1; i >= 0; i-- {
		if math.Abs(samples[i].AltitudeM-samples[i].TargetM) > band {
			if i < len(samples)-1 {
				resp.SettlingTime = samples[i+1].Time
			}
			return resp
		}
	}
	resp.SettlingTime = samples[0].Time
	return resp
}

// ConvergenceRate fits ln|altitude - target| against time by least squares
// over samples whose error exceeds floor. A negative slope is the rate in
// 1/s at which the error decays; a positive one means it grows.
func ConvergenceRate(samples []sim.Telemetry, floor float64) float64 {
	var sumT, sumL, sumTT, sumTL float64
	n := 0
	for _, t := range samples {
		e := math.Abs(t.AltitudeM - t.TargetM)
		if e <= floor || e == 0 {
			continue
		}
		l := math.Log(e)
		sumT += t.Time
		sumL += l
		sumTT += t.Time * t.Time
		sumTL += t.Time * l
		n++
	}
	if n < 2 {
		return 0
	}

	fn := float64(n)
	den := fn*sumTT - sumT*sumT
	if den == 0 {
		return 0
	}
	return (fn*sumTL - sumT*sumL) / den
}
