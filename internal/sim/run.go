package sim

import (
	"context"
	"log/slog"
)

// RunDrone steps d n times at dt and collects every sample plus the final
// metric values. The partial result is returned alongside any error.
func RunDrone(ctx context.Context, d *Drone, n int, dt float64) (*Result, error) {
	rec := NewRecorder(n)
	d.AddObserver(rec)
	for _, m := range d.metrics {
		m.Reset()
	}

	err := NewSimulation(d).Run(ctx, n, dt)

	result := &Result{
		Telemetry:  rec.Samples,
		Metrics:    make(map[string]float64, len(d.metrics)),
		StepsTaken: d.Steps(),
	}
	for _, m := range d.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if err != nil {
		result.Errors = append(result.Errors, err)
	}
	return result, err
}

// Factory builds a fresh drone with its own component graph for one run.
type Factory func(seed int64) (*Drone, error)

// Batch runs independent drones in parallel, one goroutine per run. No state
// is shared between runs; every drone comes from its own Factory call.
type Batch struct {
	factory   Factory
	numRuns   int
	seedStart int64
	logger    *slog.Logger
}

func NewBatch(factory Factory, numRuns int, seedStart int64, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Batch{factory: factory, numRuns: numRuns, seedStart: seedStart, logger: logger}
}
