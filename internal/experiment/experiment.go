package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/virtdrone/internal/components"
	"github.com/san-kum/virtdrone/internal/config"
	"github.com/san-kum/virtdrone/internal/drone"
	"github.com/san-kum/virtdrone/internal/integrators"
	"github.com/san-kum/virtdrone/internal/metrics"
	"github.com/san-kum/virtdrone/internal/physics"
	"github.com/san-kum/virtdrone/internal/sim"
)

// Experiment turns a validated config into runnable drones.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Experiment{cfg: cfg, registry: NewRegistry(), logger: logger}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Registry() *Registry    { return e.registry }

// HoverRPM is the configured hover offset, or the speed at which the
// configured airframe balances its weight.
func (e *Experiment) HoverRPM(q *drone.Quadrocopter) float64 {
	if e.cfg.Controller.HoverRPM > 0 {
		return e.cfg.Controller.HoverRPM
	}
	return physics.HoverRPM(q.TotalWeightKg(), e.cfg.Environment.Gravity, len(q.Motors()), e.cfg.ThrustParams())
}

// Build assembles a drone with its own component graph. seed drives GPS and
// sensor noise.
func (e *Experiment) Build(seed int64) (*sim.Drone, error) {
	cfg := e.cfg
	q := drone.NewWithBatterySim(cfg.DroneSpecs())

	if sb, ok := q.Battery().(components.SimBattery); ok {
		sb.SetStateOfChargePercent(cfg.Drone.Battery.InitialSoCPercent)
	}

	hover := e.HoverRPM(q)
	if alt := cfg.Simulation.InitialAltitudeM; alt > 0 {
		if g, ok := q.GPS().(*physics.SimGPS); ok {
			g.SetAltitudeM(alt)
		}
		for _, m := range q.Motors() {
			m.SetSpeedRPM(hover)
		}
	}

	ctrl, err := e.registry.GetController(cfg.Simulation.Controller, cfg.Controller, hover)
	if err != nil {
		return nil, err
	}
	esc, err := e.registry.GetSpeedLaw(cfg.Simulation.SpeedLaw, cfg.ESC)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Simulation.Integrator)
	if err != nil {
		return nil, err
	}

	dc := sim.DroneConfig{
		Thrust:        cfg.ThrustParams(),
		Gravity:       cfg.Environment.Gravity,
		DragCoeff:     cfg.Environment.DragCoeff,
		AmbientC:      cfg.Environment.AmbientC,
		ESC:           esc,
		ValidateState: cfg.Simulation.ValidateState,
		Logger:        e.logger.With("seed", seed),
	}
	if cfg.Drone.GPS.Noise {
		dc.GPSNoise = physics.NewGPSNoise(seed)
		dc.SensorNoise = rand.New(rand.NewSource(seed + 1))
	}

	d := sim.NewDrone(q, ctrl, integ, dc)
	for _, m := range metrics.Default(cfg.Simulation.SettleBandM) {
		d.AddMetric(m)
	}

	e.logger.Debug("drone built",
		"controller", cfg.Simulation.Controller,
		"integrator", cfg.Simulation.Integrator,
		"speed_law", cfg.Simulation.SpeedLaw,
		"hover_rpm", hover,
		"mass_kg", q.TotalWeightKg())
	return d, nil
}

// Run builds one drone from the configured seed and flies it for the
// configured number of steps.
func (e *Experiment) Run(ctx context.Context, observers ...sim.Observer) (*sim.Result, error) {
	d, err := e.Build(e.cfg.Simulation.Seed)
	if err != nil {
		return nil, err
	}
	for _, o := range observers {
		d.AddObserver(o)
	}
	return sim.RunDrone(ctx, d, e.cfg.Simulation.Steps, e.cfg.Simulation.Dt)
}

// RunBatch flies n independent drones in parallel with seeds seed..seed+n-1.
func (e *Experiment) RunBatch(ctx context.Context, n int) ([]*sim.Result, error) {
	batch := sim.NewBatch(e.Build, n, e.cfg.Simulation.Seed, e.logger)
	return batch.Run(ctx, e.cfg.Simulation.Steps, e.cfg.Simulation.Dt)
}
