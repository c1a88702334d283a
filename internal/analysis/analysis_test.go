package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/virtdrone/internal/sim"
)

func firstOrderClimb(n int, dt float64) []sim.Telemetry {
	samples := make([]sim.Telemetry, n)
	for i := range samples {
		t := float64(i+1) * dt
		samples[i] = sim.Telemetry{Step: i + 1, Time: t, Dt: dt, AltitudeM: 10 * (1 - math.Exp(-t)), TargetM: 10}
	}
	return samples
}

func oscillation(n int, dt, freq float64) []sim.Telemetry {
	samples := make([]sim.Telemetry, n)
	for i := range samples {
		t := float64(i+1) * dt
		samples[i] = sim.Telemetry{Step: i + 1, Time: t, Dt: dt, AltitudeM: 10 + math.Sin(2*math.Pi*freq*t), TargetM: 10}
	}
	return samples
}

func TestFFTPadsToPowerOfTwo(t *testing.T) {
	out := FFT([]float64{1, 1, 1})
	if len(out) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(out))
	}
	if real(out[0]) != 3 {
		t.Errorf("expected DC 3, got %v", out[0])
	}
}

func TestErrorSpectrumDominantFrequency(t *testing.T) {
	freqs, power := ErrorSpectrum(oscillation(1024, 0.01, 0.5))
	if len(freqs) != 512 || len(power) != 512 {
		t.Fatalf("expected 512 bins, got %d/%d", len(freqs), len(power))
	}

	f := DominantFrequency(freqs, power)
	if math.Abs(f-0.5) > 0.1 {
		t.Errorf("expected dominant frequency near 0.5 Hz, got %f", f)
	}
}

func TestErrorSpectrumEmpty(t *testing.T) {
	freqs, power := ErrorSpectrum(nil)
	if freqs != nil || power != nil {
		t.Error("expected nil spectrum for no samples")
	}
	if f := DominantFrequency(nil, nil); f != 0 {
		t.Errorf("expected 0, got %f", f)
	}
}

func TestAnalyzeStep(t *testing.T) {
	resp := AnalyzeStep(firstOrderClimb(1000, 0.01), 0.5)

	if math.Abs(resp.RiseTime-math.Log(9)) > 0.03 {
		t.Errorf("expected rise time near %f, got %f", math.Log(9), resp.RiseTime)
	}
	if resp.OvershootPercent != 0 {
		t.Errorf("expected no overshoot, got %f", resp.OvershootPercent)
	}
	if math.Abs(resp.SettlingTime-3.0) > 0.011 {
		t.Errorf("expected settling near 3.0, got %f", resp.SettlingTime)
	}
	if math.Abs(resp.SteadyStateError) > 1e-3 {
		t.Errorf("expected small steady state error, got %f", resp.SteadyStateError)
	}
}

func TestAnalyzeStepNeverSettles(t *testing.T) {
	resp := AnalyzeStep(firstOrderClimb(100, 0.01), 0.5)

	if resp.RiseTime != -1 {
		t.Errorf("expected no rise time, got %f", resp.RiseTime)
	}
	if resp.SettlingTime != -1 {
		t.Errorf("expected no settling time, got %f", resp.SettlingTime)
	}
}

func TestAnalyzeStepOvershoot(t *testing.T) {
	samples := []sim.Telemetry{
		{Time: 1, AltitudeM: 0, TargetM: 10},
		{Time: 2, AltitudeM: 12, TargetM: 10},
		{Time: 3, AltitudeM: 10.1, TargetM: 10},
	}
	resp := AnalyzeStep(samples, 0.5)

	if math.Abs(resp.OvershootPercent-20) > 1e-9 {
		t.Errorf("expected 20%% overshoot, got %f", resp.OvershootPercent)
	}
	if resp.SettlingTime != 3 {
		t.Errorf("expected settling at 3, got %f", resp.SettlingTime)
	}
}

func TestConvergenceRate(t *testing.T) {
	rate := ConvergenceRate(firstOrderClimb(500, 0.01), 0)
	if math.Abs(rate+1) > 1e-6 {
		t.Errorf("expected rate -1, got %f", rate)
	}

	if rate := ConvergenceRate(nil, 0); rate != 0 {
		t.Errorf("expected 0 for no samples, got %f", rate)
	}
}

func TestTargetCrossings(t *testing.T) {
	crossings := TargetCrossings(oscillation(350, 0.01, 0.5))
	if len(crossings) != 3 {
		t.Fatalf("expected 3 crossings, got %d", len(crossings))
	}

	wantRising := []bool{false, true, false}
	for i, c := range crossings {
		if math.Abs(c.Time-float64(i+1)) > 0.01 {
			t.Errorf("crossing %d at %f, expected %d", i, c.Time, i+1)
		}
		if c.Rising != wantRising[i] {
			t.Errorf("crossing %d rising=%v", i, c.Rising)
		}
	}
}

func TestPhasePortrait(t *testing.T) {
	samples := firstOrderClimb(200, 0.01)
	portrait := GeneratePhasePortrait(samples)
	if len(portrait.Points) != len(samples) {
		t.Fatalf("expected %d points, got %d", len(samples), len(portrait.Points))
	}

	art := PhasePortraitToASCII(portrait, 40, 10)
	if lines := strings.Count(art, "\n"); lines != 10 {
		t.Errorf("expected 10 lines, got %d", lines)
	}
	if !strings.Contains(art, "•") {
		t.Error("expected plotted points")
	}
	if PhasePortraitToASCII(nil, 40, 10) != "" {
		t.Error("expected empty output for nil portrait")
	}
}

func TestSweep(t *testing.T) {
	boom := errors.New("boom")
	run := func(_ context.Context, v float64) (*sim.Result, error) {
		if v == 2 {
			return nil, boom
		}
		return &sim.Result{Metrics: map[string]float64{"m": v * v}}, nil
	}

	points, err := Sweep(context.Background(), 0, 4, 5, run)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	if points[3].Param != 3 || points[3].Metrics["m"] != 9 {
		t.Errorf("unexpected point %+v", points[3])
	}
	if !errors.Is(points[2].Err, boom) {
		t.Errorf("expected recorded error, got %v", points[2].Err)
	}

	if art := SweepToASCII(points, "m", 20, 5); !strings.Contains(art, "•") {
		t.Error("expected plotted sweep")
	}
	if art := SweepToASCII(points, "missing", 20, 5); art != "" {
		t.Error("expected empty plot for unknown metric")
	}
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sweep(ctx, 0, 1, 3, func(context.Context, float64) (*sim.Result, error) {
		return &sim.Result{}, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
