package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/virtdrone/internal/config"
	"github.com/san-kum/virtdrone/internal/dynamo"
	"github.com/san-kum/virtdrone/internal/experiment"
)

func shortHover() *config.Config {
	cfg := config.GetPreset("hover")
	cfg.Simulation.Steps = 1000
	return cfg
}

func TestGridSearchPicksLowestTrackingError(t *testing.T) {
	gs := NewGridSearch([]string{"alt_p"}, [][]float64{{0.05, 0.5}})

	best, val, err := gs.Search(context.Background(), ControllerBuilder(shortHover(), nil), "tracking_rms_m")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["alt_p"] != 0.5 {
		t.Errorf("expected alt_p 0.5 to track better, got %v", best)
	}
	if val <= 0 {
		t.Errorf("expected positive rms, got %f", val)
	}
	if n := len(gs.Evaluations()); n != 2 {
		t.Errorf("expected 2 evaluations, got %d", n)
	}
}

func TestGridSearchUnknownParam(t *testing.T) {
	gs := NewGridSearch([]string{"bogus"}, [][]float64{{1}})

	_, _, err := gs.Search(context.Background(), ControllerBuilder(shortHover(), nil), "tracking_rms_m")
	if !errors.Is(err, ErrNoEvaluation) {
		t.Fatalf("expected ErrNoEvaluation, got %v", err)
	}
	if evals := gs.Evaluations(); len(evals) != 1 || !errors.Is(evals[0].Err, dynamo.ErrUnknownParam) {
		t.Errorf("expected recorded ErrUnknownParam, got %+v", evals)
	}
}

func TestGridSearchMismatchedRanges(t *testing.T) {
	gs := NewGridSearch([]string{"alt_p", "inner_p"}, [][]float64{{1}})
	if _, _, err := gs.Search(context.Background(), nil, "tracking_rms_m"); err == nil {
		t.Error("expected error for mismatched ranges")
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := NewGridSearch([]string{"alt_p"}, [][]float64{{0.5}})
	build := func(map[string]float64) (*experiment.Experiment, error) {
		t.Fatal("build called after cancel")
		return nil, nil
	}
	if _, _, err := gs.Search(ctx, build, "tracking_rms_m"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
