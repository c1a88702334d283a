package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/virtdrone/internal/config"
	"github.com/san-kum/virtdrone/internal/experiment"
	"github.com/san-kum/virtdrone/internal/sim"
)

// Scenario is a scripted list of flights.
type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Flights     []FlightSpec `yaml:"flights"`
}

// FlightSpec overrides the base config for one flight. Zero values keep the
// base setting.
type FlightSpec struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Controller string             `yaml:"controller"`
	SpeedLaw   string             `yaml:"speed_law"`
	Steps      int                `yaml:"steps"`
	Dt         float64            `yaml:"dt"`
	Seed       int64              `yaml:"seed"`
	TargetM    float64            `yaml:"target_m"`
	InitialSoC float64            `yaml:"initial_soc"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// FlightResult pairs a finished flight with the config it flew.
type FlightResult struct {
	Spec   FlightSpec
	Config *config.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Flights) == 0 {
		return nil, fmt.Errorf("scenario %s: no flights", path)
	}

	return &scenario, nil
}

// Resolve applies the flight's overrides over a copy of base, or over the
// named preset when one is given.
func (f FlightSpec) Resolve(base *config.Config) (*config.Config, error) {
	cfg := *base
	if f.Preset != "" {
		p := config.GetPreset(f.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", f.Preset)
		}
		cfg = *p
	}

	if f.Integrator != "" {
		cfg.Simulation.Integrator = f.Integrator
	}
	if f.Controller != "" {
		cfg.Simulation.Controller = f.Controller
	}
	if f.SpeedLaw != "" {
		cfg.Simulation.SpeedLaw = f.SpeedLaw
	}
	if f.Steps > 0 {
		cfg.Simulation.Steps = f.Steps
	}
	if f.Dt > 0 {
		cfg.Simulation.Dt = f.Dt
	}
	if f.Seed != 0 {
		cfg.Simulation.Seed = f.Seed
	}
	if f.TargetM > 0 {
		cfg.Controller.TargetAltitude = f.TargetM
	}
	if f.InitialSoC > 0 {
		cfg.Drone.Battery.InitialSoCPercent = f.InitialSoC
	}
	for name, v := range f.Params {
		if err := cfg.Controller.Set(name, v); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// RunScenario flies every flight in order. A faulted flight is kept in the
// results; only setup errors and cancellation stop the scenario.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, logger *slog.Logger) ([]FlightResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]FlightResult, 0, len(scenario.Flights))

	for i, flight := range scenario.Flights {
		logger.Info("scenario flight", "scenario", scenario.Name, "flight", i+1, "of", len(scenario.Flights), "name", flight.Name)

		cfg, err := flight.Resolve(base)
		if err != nil {
			return results, fmt.Errorf("flight %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("flight %d: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return results, ctxErr
		}
		if err != nil && result == nil {
			return results, fmt.Errorf("flight %d run: %w", i+1, err)
		}

		results = append(results, FlightResult{Spec: flight, Config: cfg, Result: result})
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial charge and target altitude of the
// base config uniformly by up to the given spreads.
type MonteCarloConfig struct {
	Trials       int
	Seed         int64
	SoCSpread    float64
	TargetSpread float64
	BandM        float64
}

// MonteCarloResult is the outcome of one perturbed flight.
type MonteCarloResult struct {
	Trial      int
	InitialSoC float64
	TargetM    float64
	FinalAltM  float64
	FinalSoC   float64
	Stable     bool // ended within BandM of target without a fault
	Err        error
}

// RunMonteCarlo executes multiple trials with random perturbations
func RunMonteCarlo(ctx context.Context, mc MonteCarloConfig, base *config.Config, logger *slog.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]MonteCarloResult, 0, mc.Trials)

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < mc.Trials; trial++ {
		cfg := *base
		cfg.Simulation.Seed = base.Simulation.Seed + int64(trial)
		soc := base.Drone.Battery.InitialSoCPercent + (rng.Float64()-0.5)*2*mc.SoCSpread
		cfg.Drone.Battery.InitialSoCPercent = math.Max(0, math.Min(100, soc))
		target := base.Controller.TargetAltitude + (rng.Float64()-0.5)*2*mc.TargetSpread
		cfg.Controller.TargetAltitude = math.Max(0, target)

		exp, err := experiment.New(&cfg, logger)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		r := MonteCarloResult{
			Trial:      trial,
			InitialSoC: cfg.Drone.Battery.InitialSoCPercent,
			TargetM:    cfg.Controller.TargetAltitude,
		}

		result, err := exp.Run(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return results, ctxErr
		}
		r.Err = err
		if result != nil {
			final := result.Final()
			r.FinalAltM = final.AltitudeM
			r.FinalSoC = final.SoCPercent
			r.Stable = err == nil && math.Abs(final.AltitudeM-r.TargetM) <= mc.BandM
		}

		results = append(results, r)

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo progress", "done", trial+1, "trials", mc.Trials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
