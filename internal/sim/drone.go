package sim

import (
	"log/slog"
	"time"

	"github.com/san-kum/virtdrone/internal/components"
	"github.com/san-kum/virtdrone/internal/control"
	"github.com/san-kum/virtdrone/internal/drone"
	"github.com/san-kum/virtdrone/internal/dynamo"
	"github.com/san-kum/virtdrone/internal/physics"
)

type DroneConfig struct {
	Thrust    physics.ThrustParams
	Gravity   float64
	DragCoeff float64
	AmbientC  float64

	// ESC, when set, shapes the controller output per motor before it
	// becomes the motor's desired speed.
	ESC *control.ESC
	// GPSNoise, when set, perturbs the fixes fed back to the controller.
	GPSNoise *physics.GPSNoise
	// SensorNoise jitters the frame temperature sensor.
	SensorNoise components.NoiseSource

	ValidateState bool
	Logger        *slog.Logger
}

func DefaultDroneConfig() DroneConfig {
	return DroneConfig{
		Thrust:        physics.DefaultThrustParams(),
		Gravity:       physics.DefaultGravity,
		DragCoeff:     physics.DefaultDragCoeff,
		AmbientC:      components.DefaultAmbientTempC,
		ValidateState: true,
	}
}

// Drone couples a quadrocopter, its controller and the vertical rigid body.
// It implements Stepper.
type Drone struct {
	quad  *drone.Quadrocopter
	ctrl  control.SpeedController
	integ dynamo.Integrator
	body  *physics.Vertical
	cfg   DroneConfig
	log   *slog.Logger

	state   dynamo.State
	truePos components.Position3D
	elapsed float64
	steps   int
	last    Telemetry
	err     error

	observers []Observer
	metrics   []Metric
}

func NewDrone(q *drone.Quadrocopter, ctrl control.SpeedController, integ dynamo.Integrator, cfg DroneConfig) *Drone {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	body := physics.NewVertical(q.TotalWeightKg())
	body.Gravity = cfg.Gravity
	body.DragCoeff = cfg.DragCoeff

	for _, m := range q.Motors() {
		m.SetAmbientTempC(cfg.AmbientC)
		m.SetTemperatureC(cfg.AmbientC)
	}

	var pos components.Position3D
	if g := q.GPS(); g != nil {
		pos = g.Position()
	}

	return &Drone{
		quad:    q,
		ctrl:    ctrl,
		integ:   integ,
		body:    body,
		cfg:     cfg,
		log:     logger.With("drone", q.Name()),
		state:   dynamo.State{pos.AltitudeM, 0},
		truePos: pos,
	}
}

func (d *Drone) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Drone) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Drone) Quadrocopter() *drone.Quadrocopter   { return d.quad }
func (d *Drone) Controller() control.SpeedController { return d.ctrl }
func (d *Drone) Body() *physics.Vertical             { return d.body }
func (d *Drone) Telemetry() Telemetry                { return d.last }
func (d *Drone) Steps() int                          { return d.steps }
func (d *Drone) Err() error                          { return d.err }

// AltitudeM and VelocityMps are the true vertical state, free of GPS noise.
func (d *Drone) AltitudeM() float64   { return d.state[0] }
func (d *Drone) VelocityMps() float64 { return d.state[1] }

func (d *Drone) OnStart() {
	d.log.Info("simulation started",
		"mass_kg", d.body.Mass,
		"target_m", d.ctrl.TargetAltitude(),
		"motors", len(d.quad.Motors()))
}

func (d *Drone) OnStop() {
	d.log.Info("simulation stopped",
		"steps", d.steps,
		"elapsed_s", d.elapsed,
		"altitude_m", d.state[0])
}

// OnStep runs one tick: controller, motors, rigid body, battery, GPS.
// The battery sees this tick's current only after the motors have used its
// voltage, so voltage sag reaches the motors one tick later.
func (d *Drone) OnStep(dt float64) {
	if dt <= 0 || d.err != nil {
		return
	}
	// a tick shorter than the component clock resolution is skipped whole
	dur := time.Duration(dt * float64(time.Second))
	if dur <= 0 {
		return
	}

	altitude := d.quad.AltitudeM()
	rpmRef := d.ctrl.Update(altitude, dt)

	battery := d.quad.Battery()
	busV := physics.BusVoltage(battery)

	var totalCurrent, totalThrust float64
	motors := make([]MotorTelemetry, 0, len(d.quad.Motors()))
	for _, m := range d.quad.Motors() {
		desired := rpmRef
		if d.cfg.ESC != nil {
			desired = d.cfg.ESC.Shape(rpmRef, m.SpeedRPM(), dt)
		}
		m.SetDesiredSpeedRPM(desired)
		physics.UpdateMotor(m, dur, battery)

		totalCurrent += m.CurrentA()
		totalThrust += physics.MotorThrust(m, d.cfg.Thrust)
		motors = append(motors, MotorTelemetry{
			Name:         m.Name(),
			SpeedRPM:     m.SpeedRPM(),
			CurrentA:     m.CurrentA(),
			TemperatureC: m.TemperatureC(),
		})
	}

	d.body.Mass = d.quad.TotalWeightKg()
	next := d.integ.Step(d.body, d.state, dynamo.Control{totalThrust}, d.elapsed, dt)
	if d.cfg.ValidateState && !next.IsValid() {
		d.err = dynamo.SimError{
			Time:    d.elapsed,
			Step:    d.steps,
			Message: "invalid vertical state",
			Wrapped: dynamo.ErrInvalidState,
		}
		d.log.Error("tick aborted", "step", d.steps, "error", d.err)
		return
	}
	if physics.Ground(next) && d.state[0] > 0 {
		d.log.Debug("ground contact", "t", d.elapsed+dt)
	}
	d.state = next

	if sb, ok := battery.(components.SimBattery); ok {
		sb.SetCurrentA(totalCurrent)
		sb.Update(dur)
	}

	if g, ok := d.quad.GPS().(components.GPSFixSetter); ok {
		d.truePos.AltitudeM = d.state[0]
		d.cfg.GPSNoise.Apply(g, d.truePos, components.Velocity3D{DownMps: -d.state[1]})
	}
	if ts := d.quad.TemperatureSensor(); ts != nil {
		ts.Update(d.cfg.SensorNoise)
	}

	d.elapsed += dt
	d.steps++

	tm := Telemetry{
		Step:        d.steps,
		Time:        d.elapsed,
		Dt:          dt,
		AltitudeM:   d.state[0],
		VelocityMps: d.state[1],
		TargetM:     d.ctrl.TargetAltitude(),
		RPMRef:      rpmRef,
		ThrustN:     totalThrust,
		CurrentA:    totalCurrent,
		BatteryV:    busV,
		Motors:      motors,
	}
	if battery != nil {
		tm.SoCPercent = battery.StateOfChargePercent()
	}
	d.last = tm

	for _, m := range d.metrics {
		m.Observe(tm)
	}
	for _, o := range d.observers {
		o.OnStep(tm)
	}
}
