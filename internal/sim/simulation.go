package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/virtdrone/internal/dynamo"
)

// Stepper is the behavior a Simulation drives.
type Stepper interface {
	OnStart()
	OnStop()
	OnStep(dt float64)
}

// Faulter is implemented by steppers that can enter an unrecoverable state.
type Faulter interface {
	Err() error
}

// Simulation owns the lifecycle and the clock. Start and Stop are idempotent.
// Step does not require the simulation to be running.
type Simulation struct {
	stepper Stepper
	running bool
	elapsed float64
	steps   int
}

func NewSimulation(s Stepper) *Simulation {
	return &Simulation{stepper: s}
}

func (s *Simulation) Running() bool    { return s.running }
func (s *Simulation) Elapsed() float64 { return s.elapsed }
func (s *Simulation) Steps() int       { return s.steps }

func (s *Simulation) Start() {
	if s.running {
		return
	}
	s.running = true
	s.stepper.OnStart()
}

func (s *Simulation) Stop() {
	if !s.running {
		return
	}
	s.stepper.OnStop()
	s.running = false
}

// Step advances one tick of dt seconds. dt <= 0 skips the tick entirely.
func (s *Simulation) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.stepper.OnStep(dt)
	s.elapsed += dt
	s.steps++
}

func (s *Simulation) RunForSteps(n int, dt float64) {
	if dt <= 0 {
		return
	}
	for i := 0; i < n; i++ {
		s.Step(dt)
	}
}

// Run steps the simulation n times. A stopped simulation is started for the
// run and stopped again afterwards; a running one is left running.
// Cancellation is checked between ticks. A stepper fault ends the run with
// its error.
func (s *Simulation) Run(ctx context.Context, n int, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", dt, dynamo.ErrParameterBounds)
	}

	if !s.running {
		s.Start()
		defer s.Stop()
	}

	f, _ := s.stepper.(Faulter)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.Step(dt)
		if f != nil {
			if err := f.Err(); err != nil {
				return err
			}
		}
	}
	return nil
}
