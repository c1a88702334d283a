package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/virtdrone/internal/config"
	"github.com/san-kum/virtdrone/internal/experiment"
)

var ErrNoEvaluation = errors.New("optim: no parameter combination produced the metric")

// Evaluation is one point of the grid.
type Evaluation struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch tries every combination of the given values and keeps the one
// with the lowest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	evals      []Evaluation
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Evaluations returns every point visited by the last Search.
func (g *GridSearch) Evaluations() []Evaluation { return g.evals }

func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	g.evals = g.evals[:0]
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams); err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, ErrNoEvaluation
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		eval := Evaluation{Params: current, Value: math.NaN()}
		defer func() { g.evals = append(g.evals, eval) }()

		exp, err := buildExperiment(current)
		if err != nil {
			eval.Err = err
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			eval.Err = err
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			eval.Err = fmt.Errorf("metric %q not recorded", metricName)
			return nil
		}
		eval.Value = val
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// ControllerBuilder returns a build function that applies controller gains
// by yaml name over a copy of base.
func ControllerBuilder(base *config.Config, logger *slog.Logger) func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		for name, v := range params {
			if err := cfg.Controller.Set(name, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(&cfg, logger)
	}
}
