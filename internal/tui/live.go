package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/virtdrone/internal/sim"
)

const (
	width       = 60
	height      = 18
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws a side view of the drone as telemetry arrives. It is
// a sim.Observer; frames beyond frameRate per second are dropped.
type LiveRenderer struct {
	out       io.Writer
	name      string
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	trail     []int
	ceiling   float64
	now       func() time.Time
}

func NewLiveRenderer(out io.Writer, name string, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		out:       out,
		name:      name,
		frameRate: frameRate,
		canvas:    canvas,
		trail:     make([]int, 0, width),
		ceiling:   1,
		now:       time.Now,
	}
}

func (r *LiveRenderer) OnStep(t sim.Telemetry) {
	if r.frameRate > 0 {
		now := r.now()
		if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = now
	}

	// The vertical scale only grows so the picture does not jump around.
	r.ceiling = math.Max(r.ceiling, math.Max(t.AltitudeM, t.TargetM)*1.2)

	r.clear()
	r.drawDrone(t)
	r.render(t)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

// row maps an altitude onto the canvas, ground on the last line.
func (r *LiveRenderer) row(altM float64) int {
	ground := height - 2
	return ground - int(math.Round(altM/r.ceiling*float64(ground-1)))
}

func (r *LiveRenderer) drawDrone(t sim.Telemetry) {
	for x := 0; x < width; x++ {
		r.set(x, height-1, '=')
	}

	ty := r.row(t.TargetM)
	for x := 0; x < width; x += 2 {
		r.set(x, ty, '-')
	}

	y := r.row(t.AltitudeM)
	r.trail = append(r.trail, y)
	if len(r.trail) > width/2-4 {
		r.trail = r.trail[1:]
	}
	for i, py := range r.trail {
		r.set(i, py, '.')
	}

	cx := width / 2
	for dx := -4; dx <= 4; dx++ {
		r.set(cx+dx, y, '-')
	}
	r.set(cx-4, y, 'o')
	r.set(cx+4, y, 'o')
	r.set(cx, y, 'X')
	if t.ThrustN > 0 && y+1 < height-1 {
		r.set(cx-4, y+1, '\'')
		r.set(cx+4, y+1, '\'')
	}
}

func (r *LiveRenderer) render(t sim.Telemetry) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs  alt=%.2fm  target=%.2fm\n", r.name, t.Time, t.AltitudeM, t.TargetM))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  soc=%.1f%%  v=%.2fV  i=%.2fA  rpm_ref=%.0f  temp=%.1fC\n",
		t.SoCPercent, t.BatteryV, t.CurrentA, t.RPMRef, t.MaxMotorTempC()))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
