package analysis

import (
	"context"
	"strings"

	"github.com/san-kum/virtdrone/internal/sim"
)

// SweepPoint is the outcome of one run in a parameter sweep.
type SweepPoint struct {
	Param   float64
	Metrics map[string]float64
	Final   sim.Telemetry
	Err     error
}

// RunFunc flies one simulation with the swept parameter set to v.
type RunFunc func(ctx context.Context, v float64) (*sim.Result, error)

// Sweep runs steps evenly spaced parameter values from paramMin to
// paramMax. A failed run is recorded on its point; only cancellation stops
// the sweep.
func Sweep(ctx context.Context, paramMin, paramMax float64, steps int, run RunFunc) ([]SweepPoint, error) {
	if steps <= 1 {
		steps = 2 // Prevent division by zero
	}
	paramStep := (paramMax - paramMin) / float64(steps-1)

	results := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		param := paramMin + float64(i)*paramStep
		point := SweepPoint{Param: param}

		res, err := run(ctx, param)
		if err != nil {
			point.Err = err
		}
		if res != nil {
			point.Metrics = res.Metrics
			point.Final = res.Final()
		}
		results = append(results, point)
	}
	return results, nil
}

// SweepToASCII plots one metric against the swept parameter.
func SweepToASCII(data []SweepPoint, metric string, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		v, ok := p.Metrics[metric]
		if !ok {
			continue
		}
		if !foundFirst {
			minVal, maxVal = v, v
			foundFirst = true
			continue
		}
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if !foundFirst {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i, p := range data {
		v, ok := p.Metrics[metric]
		if !ok {
			continue
		}
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
		if row >= 0 && row < height {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
