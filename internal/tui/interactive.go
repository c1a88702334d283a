package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/virtdrone/internal/config"
	"github.com/san-kum/virtdrone/internal/experiment"
	"github.com/san-kum/virtdrone/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const (
	historyLen = 120
	frameTime  = 16 * time.Millisecond
)

type state int

const (
	stateMenu state = iota
	stateConfig
	stateSim
)

var editable = []string{"target_altitude", "alt_p", "max_slew", "inner_p", "inner_i", "initial_soc", "dt", "duration"}

type model struct {
	state    state
	cursor   int
	presets  []string
	selected string

	params      map[string]float64
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string

	cfg     *config.Config
	drone   *sim.Drone
	run     *sim.Simulation
	running bool
	paused  bool
	speed   float64
	err     error

	altHistory []float64
	socHistory []float64
	lastFrame  time.Time
	fps        float64

	width  int
	height int
}

func NewInteractiveApp() *model {
	return &model{
		state:      stateMenu,
		presets:    config.ListPresets(),
		paramNames: editable,
		speed:      1.0,
		width:      80,
		height:     24,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameTime, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim {
			return m, nil
		}
		if m.running && !m.paused && m.run != nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			for i := 0; i < m.stepsPerFrame(); i++ {
				m.step()
			}
		}
		if m.running {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

// stepsPerFrame keeps simulated time in step with the wall clock at speed 1.
func (m model) stepsPerFrame() int {
	dt := m.cfg.Simulation.Dt
	n := int(math.Round(m.speed * frameTime.Seconds() / dt))
	return max(n, 1)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.state = stateConfig
		m.paramCursor = 0
		m.loadPreset()
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				m.params[m.paramNames[m.paramCursor]] = val
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
		m.err = nil
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = fmt.Sprintf("%g", m.params[m.paramNames[m.paramCursor]])
	case "s":
		if err := m.start(); err != nil {
			m.err = err
			return m, nil
		}
		m.state = stateSim
		return m, tea.Batch(tea.ClearScreen, tick())
	case "left", "h":
		m.nudge(-1)
	case "right", "l":
		m.nudge(1)
	}
	return m, nil
}

// nudge moves the selected param by a tenth of its magnitude.
func (m *model) nudge(dir float64) {
	name := m.paramNames[m.paramCursor]
	v := m.params[name]
	step := math.Max(math.Abs(v)*0.1, 0.01)
	m.params[name] = v + dir*step
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.stop()
		m.state = stateMenu
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		if err := m.start(); err != nil {
			m.err = err
		}
		return m, tea.ClearScreen
	case "c":
		m.stop()
		m.state = stateConfig
		return m, tea.ClearScreen
	case "up", "k":
		m.shiftTarget(1)
	case "down", "j":
		m.shiftTarget(-1)
	case "+", "=":
		m.speed = math.Min(m.speed*2, 16)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1.0
	}
	return m, nil
}

func (m *model) shiftTarget(dm float64) {
	if m.drone == nil {
		return
	}
	ctrl := m.drone.Controller()
	ctrl.SetTargetAltitude(math.Max(0, ctrl.TargetAltitude()+dm))
}

func (m *model) loadPreset() {
	cfg := config.GetPreset(m.selected)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m.params = map[string]float64{
		"target_altitude": cfg.Controller.TargetAltitude,
		"alt_p":           cfg.Controller.AltP,
		"max_slew":        cfg.Controller.MaxSlew,
		"inner_p":         cfg.Controller.InnerP,
		"inner_i":         cfg.Controller.InnerI,
		"initial_soc":     cfg.Drone.Battery.InitialSoCPercent,
		"dt":              cfg.Simulation.Dt,
		"duration":        cfg.Duration(),
	}
}

// buildConfig applies the edited params over the selected preset.
func (m *model) buildConfig() (*config.Config, error) {
	cfg := config.GetPreset(m.selected)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	for _, name := range []string{"target_altitude", "alt_p", "max_slew", "inner_p", "inner_i"} {
		if err := cfg.Controller.Set(name, m.params[name]); err != nil {
			return nil, err
		}
	}
	cfg.Drone.Battery.InitialSoCPercent = m.params["initial_soc"]
	cfg.Simulation.Dt = m.params["dt"]
	if cfg.Simulation.Dt > 0 {
		cfg.Simulation.Steps = int(math.Round(m.params["duration"] / cfg.Simulation.Dt))
	}
	return cfg, cfg.Validate()
}

func (m *model) start() error {
	m.stop()
	cfg, err := m.buildConfig()
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}
	d, err := exp.Build(cfg.Simulation.Seed)
	if err != nil {
		return err
	}

	m.cfg = cfg
	m.drone = d
	m.run = sim.NewSimulation(d)
	m.run.Start()
	m.altHistory = make([]float64, 0, historyLen)
	m.socHistory = make([]float64, 0, historyLen)
	m.speed = 1.0
	m.lastFrame = time.Time{}
	m.err = nil
	m.running = true
	m.paused = false
	return nil
}

func (m *model) stop() {
	if m.run != nil {
		m.run.Stop()
	}
	m.running = false
}

func (m *model) step() {
	if m.run.Steps() >= m.cfg.Simulation.Steps {
		m.paused = true
		return
	}
	m.run.Step(m.cfg.Simulation.Dt)
	if err := m.drone.Err(); err != nil {
		m.err = err
		m.paused = true
		return
	}

	t := m.drone.Telemetry()
	m.altHistory = appendBounded(m.altHistory, t.AltitudeM)
	m.socHistory = appendBounded(m.socHistory, t.SoCPercent)
}

func appendBounded(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyLen {
		h = h[1:]
	}
	return h
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("v i r t d r o n e") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := config.PresetDescription(name)
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-14s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-14s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter configure   q quit") + "\n")

	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.selected) + "  " + dim.Render(config.PresetDescription(m.selected)) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 36)) + "\n\n")

	for i, name := range m.paramNames {
		val := fmt.Sprintf("%10.3f", m.params[name])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-16s", name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-16s", name)) + dim.Render(val) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  ←→ adjust  enter edit  s start  esc back") + "\n")

	return b.String()
}

func (m model) viewSim() string {
	if m.drone == nil {
		return ""
	}
	t := m.drone.Telemetry()
	target := m.drone.Controller().TargetAltitude()

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("flying")
	switch {
	case m.err != nil:
		statusIcon = red.Render("✕")
		statusText = red.Render("fault")
	case m.paused:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.selected), statusText, dim.Render(fmt.Sprintf("x%.2g", m.speed))))

	duration := m.cfg.Duration()
	progress := 0.0
	if duration > 0 {
		progress = math.Min(m.run.Elapsed()/duration, 1)
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	timeStr := fmt.Sprintf("%.1fs/%.0fs", m.run.Elapsed(), duration)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(timeStr), dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	chartW := max(m.width-16, 40)
	if len(m.altHistory) > 1 {
		chart := asciigraph.Plot(m.altHistory,
			asciigraph.Height(max(m.height-16, 8)),
			asciigraph.Width(chartW),
			asciigraph.Precision(1),
			asciigraph.Caption(fmt.Sprintf("altitude m  (target %.1f)", target)))
		for _, line := range strings.Split(chart, "\n") {
			b.WriteString("   " + line + "\n")
		}
	} else {
		b.WriteString(dim.Render("   waiting for telemetry") + "\n")
	}

	b.WriteString(fmt.Sprintf("\n   %s%s  %s%s  %s%s  %s%s\n",
		dim.Render("alt="), white.Render(fmt.Sprintf("%6.2f m", t.AltitudeM)),
		dim.Render("vel="), white.Render(fmt.Sprintf("%+5.2f m/s", t.VelocityMps)),
		dim.Render("ref="), white.Render(fmt.Sprintf("%5.0f rpm", t.RPMRef)),
		dim.Render("thrust="), white.Render(fmt.Sprintf("%5.2f N", t.ThrustN))))

	b.WriteString("   " + batteryBar(t.SoCPercent, 20) + fmt.Sprintf("  %s %s",
		dim.Render(fmt.Sprintf("%5.2f V", t.BatteryV)), cyan.Render(sparkline(m.socHistory, 24))) + "\n")

	for _, mt := range t.Motors {
		b.WriteString(fmt.Sprintf("   %s %s %s %s\n",
			dim.Render(fmt.Sprintf("%-8s", mt.Name)),
			white.Render(fmt.Sprintf("%6.0f rpm", mt.SpeedRPM)),
			white.Render(fmt.Sprintf("%5.2f A", mt.CurrentA)),
			tempStyle(mt.TemperatureC).Render(fmt.Sprintf("%5.1f °C", mt.TemperatureC))))
	}

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  ↑↓ target  ±speed  r reset  c config  q quit") + "\n")

	return b.String()
}

func batteryBar(soc float64, width int) string {
	filled := int(math.Round(soc / 100 * float64(width)))
	filled = max(0, min(filled, width))
	style := green
	switch {
	case soc < 20:
		style = red
	case soc < 50:
		style = yellow
	}
	return "battery " + style.Render(strings.Repeat("█", filled)) + dimmer.Render(strings.Repeat("░", width-filled)) +
		" " + style.Render(fmt.Sprintf("%5.1f%%", soc))
}

func tempStyle(c float64) lipgloss.Style {
	switch {
	case c > 80:
		return red
	case c > 50:
		return yellow
	}
	return white
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := max(len(data)/width, 1)
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		idx = max(0, min(idx, 7))
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func RunInteractive() error {
	p := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
