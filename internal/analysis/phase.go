package analysis

import (
	"strings"

	"github.com/san-kum/virtdrone/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XLabel, YLabel string
	Points         []Point
}

// GeneratePhasePortrait records altitude against vertical velocity.
func GeneratePhasePortrait(samples []sim.Telemetry) *PhasePortrait2D {
	portrait := &PhasePortrait2D{
		XLabel: "altitude_m",
		YLabel: "velocity_mps",
		Points: make([]Point, 0, len(samples)),
	}
	for _, t := range samples {
		portrait.Points = append(portrait.Points, Point{X: t.AltitudeM, Y: t.VelocityMps})
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Zero velocity line
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossing is one pass of the altitude through the target.
type Crossing struct {
	Time   float64
	Rising bool
}

// TargetCrossings lists every time the altitude passes through the target,
// linearly interpolated between samples.
func TargetCrossings(samples []sim.Telemetry) []Crossing {
	crossings := make([]Crossing, 0)
	for i := 1; i < len(samples); i++ {
		prev := samples[i-1].AltitudeM - samples[i-1].TargetM
		curr := samples[i].AltitudeM - samples[i].TargetM

		rising := prev < 0 && curr >= 0
		falling := prev > 0 && curr <= 0
		if !rising && !falling {
			continue
		}

		frac := prev / (prev - curr)
		t0, t1 := samples[i-1].Time, samples[i].Time
		crossings = append(crossings, Crossing{Time: t0 + frac*(t1-t0), Rising: rising})
	}
	return crossings
}
