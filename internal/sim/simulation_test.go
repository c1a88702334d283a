package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/virtdrone/internal/dynamo"
)

type countingStepper struct {
	starts, stops, steps int
	lastDt               float64
	failAfter            int
}

func (c *countingStepper) OnStart() { c.starts++ }
func (c *countingStepper) OnStop()  { c.stops++ }
func (c *countingStepper) OnStep(dt float64) {
	c.steps++
	c.lastDt = dt
}

func (c *countingStepper) Err() error {
	if c.failAfter > 0 && c.steps >= c.failAfter {
		return dynamo.SimError{Step: c.steps, Message: "boom", Wrapped: dynamo.ErrInvalidState}
	}
	return nil
}

func TestLifecycleIsIdempotent(t *testing.T) {
	st := &countingStepper{}
	s := NewSimulation(st)

	s.Stop()
	if st.stops != 0 {
		t.Errorf("stop while stopped should be a no-op, got %d stops", st.stops)
	}

	s.Start()
	s.Start()
	if st.starts != 1 || !s.Running() {
		t.Errorf("expected one start and running, got %d starts running=%v", st.starts, s.Running())
	}

	s.Stop()
	s.Stop()
	if st.stops != 1 || s.Running() {
		t.Errorf("expected one stop and stopped, got %d stops running=%v", st.stops, s.Running())
	}
}

func TestStepSkipsNonPositiveDt(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
		want int
	}{
		{"zero", 0, 0},
		{"negative", -0.01, 0},
		{"positive", 0.01, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &countingStepper{}
			s := NewSimulation(st)
			s.Step(tt.dt)
			if st.steps != tt.want {
				t.Errorf("steps = %d, want %d", st.steps, tt.want)
			}
		})
	}
}

func TestRunForSteps(t *testing.T) {
	st := &countingStepper{}
	s := NewSimulation(st)

	s.RunForSteps(5, 0)
	if st.steps != 0 {
		t.Fatalf("dt=0 should run nothing, ran %d", st.steps)
	}

	s.RunForSteps(5, 0.1)
	if st.steps != 5 || s.Steps() != 5 {
		t.Errorf("expected 5 steps, got %d/%d", st.steps, s.Steps())
	}
	if st.lastDt != 0.1 {
		t.Errorf("lastDt = %v", st.lastDt)
	}
	if s.Elapsed() < 0.5-1e-12 || s.Elapsed() > 0.5+1e-12 {
		t.Errorf("elapsed = %v, want 0.5", s.Elapsed())
	}
}

func TestRun(t *testing.T) {
	st := &countingStepper{}
	s := NewSimulation(st)
	if err := s.Run(context.Background(), 10, 0.01); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if st.steps != 10 || st.starts != 1 || st.stops != 1 {
		t.Errorf("steps=%d starts=%d stops=%d", st.steps, st.starts, st.stops)
	}
	if s.Running() {
		t.Error("run should leave the simulation stopped")
	}
}

func TestRunKeepsStartedSimulationRunning(t *testing.T) {
	st := &countingStepper{}
	s := NewSimulation(st)
	s.Start()

	if err := s.Run(context.Background(), 3, 0.01); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !s.Running() || st.stops != 0 {
		t.Errorf("run should not stop a simulation it did not start: running=%v stops=%d", s.Running(), st.stops)
	}
	if st.starts != 1 || st.steps != 3 {
		t.Errorf("starts=%d steps=%d", st.starts, st.steps)
	}

	s.Stop()
	if st.stops != 1 {
		t.Errorf("expected one stop, got %d", st.stops)
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("bad dt", func(t *testing.T) {
		err := NewSimulation(&countingStepper{}).Run(context.Background(), 10, 0)
		if !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("expected ErrParameterBounds, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		st := &countingStepper{}
		err := NewSimulation(st).Run(ctx, 10, 0.01)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if st.steps != 0 {
			t.Errorf("no step should run after cancel, ran %d", st.steps)
		}
	})

	t.Run("fault", func(t *testing.T) {
		st := &countingStepper{failAfter: 3}
		err := NewSimulation(st).Run(context.Background(), 10, 0.01)
		var simErr dynamo.SimError
		if !errors.As(err, &simErr) || simErr.Step != 3 {
			t.Errorf("expected SimError at step 3, got %v", err)
		}
		if !errors.Is(err, dynamo.ErrInvalidState) {
			t.Errorf("expected wrapped ErrInvalidState, got %v", err)
		}
		if st.stops != 1 {
			t.Error("fault should still stop the simulation")
		}
	})
}
