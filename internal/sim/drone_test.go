package sim_test

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/virtdrone/internal/components"
	"github.com/san-kum/virtdrone/internal/control"
	"github.com/san-kum/virtdrone/internal/drone"
	"github.com/san-kum/virtdrone/internal/integrators"
	"github.com/san-kum/virtdrone/internal/physics"
	"github.com/san-kum/virtdrone/internal/sim"
)

type lastValue struct {
	alt float64
}

func (l *lastValue) Name() string            { return "last_alt" }
func (l *lastValue) Observe(t sim.Telemetry) { l.alt = t.AltitudeM }
func (l *lastValue) Value() float64          { return l.alt }
func (l *lastValue) Reset()                  { l.alt = -1 }

func newTestDrone(ctrl control.SpeedController) *sim.Drone {
	q := drone.NewWithBatterySim(drone.DefaultSpecs())
	return sim.NewDrone(q, ctrl, integrators.NewSymplecticEuler(), sim.DefaultDroneConfig())
}

func hoverRPM() float64 {
	q := drone.NewWithBatterySim(drone.DefaultSpecs())
	return physics.HoverRPM(q.TotalWeightKg(), physics.DefaultGravity, drone.MotorCount, physics.DefaultThrustParams())
}

func TestDroneStaysGroundedWithoutThrust(t *testing.T) {
	d := newTestDrone(control.NewFixed(0))
	res, err := sim.RunDrone(context.Background(), d, 100, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Telemetry) != 100 || res.StepsTaken != 100 {
		t.Fatalf("expected 100 samples, got %d/%d", len(res.Telemetry), res.StepsTaken)
	}
	final := res.Final()
	if final.AltitudeM != 0 || final.VelocityMps != 0 {
		t.Errorf("expected resting on ground, got alt=%v vel=%v", final.AltitudeM, final.VelocityMps)
	}
	if final.SoCPercent != 100 {
		t.Errorf("no current should be drawn, soc=%v", final.SoCPercent)
	}
}

func TestDroneClimbsAboveHoverSpeed(t *testing.T) {
	d := newTestDrone(control.NewFixed(9000))
	res, err := sim.RunDrone(context.Background(), d, 1000, 0.01)
	if err != nil {
		t.Fatal(err)
	}

	// motors ramp at 1000 RPM/s and pass hover speed near t=6 s
	if alt := res.Telemetry[499].AltitudeM; alt != 0 {
		t.Errorf("should still be on the ground at t=5s, alt=%v", alt)
	}
	final := res.Final()
	if final.AltitudeM < 10 {
		t.Errorf("expected a climb, alt=%v", final.AltitudeM)
	}
	if final.Motors[0].SpeedRPM != 9000 {
		t.Errorf("motor speed = %v, want 9000", final.Motors[0].SpeedRPM)
	}
	if final.SoCPercent >= 100 {
		t.Error("battery should discharge")
	}
	if final.MaxMotorTempC() <= components.DefaultAmbientTempC {
		t.Error("motors should warm up")
	}
	if d.Quadrocopter().AltitudeM() != final.AltitudeM {
		t.Error("gps should report the integrated altitude")
	}
}

func TestDroneBatteryLagsOneTick(t *testing.T) {
	d := newTestDrone(control.NewFixed(15000))
	rec := sim.NewRecorder(3)
	d.AddObserver(rec)
	s := sim.NewSimulation(d)

	s.RunForSteps(2, 0.5)

	first, second := rec.Samples[0], rec.Samples[1]
	if math.Abs(first.BatteryV-16.8) > 1e-9 {
		t.Errorf("first tick should see the full pack, got %v", first.BatteryV)
	}
	if second.BatteryV >= first.BatteryV {
		t.Errorf("second tick should see the sag from the first tick's draw: %v >= %v", second.BatteryV, first.BatteryV)
	}
}

func TestDroneSkipsSubNanosecondTick(t *testing.T) {
	d := newTestDrone(control.NewFixed(15000))
	rec := sim.NewRecorder(4)
	d.AddObserver(rec)
	s := sim.NewSimulation(d)
	s.RunForSteps(2, 0.5)

	before := d.Telemetry()
	alt, vel := d.AltitudeM(), d.VelocityMps()
	rpm := d.Quadrocopter().Motors()[0].SpeedRPM()
	soc := d.Quadrocopter().Battery().StateOfChargePercent()

	d.OnStep(5e-10)

	if d.Steps() != 2 || len(rec.Samples) != 2 {
		t.Errorf("tick should be skipped, steps=%d samples=%d", d.Steps(), len(rec.Samples))
	}
	if d.AltitudeM() != alt || d.VelocityMps() != vel {
		t.Errorf("body moved: alt %v -> %v, vel %v -> %v", alt, d.AltitudeM(), vel, d.VelocityMps())
	}
	if got := d.Quadrocopter().Motors()[0].SpeedRPM(); got != rpm {
		t.Errorf("motor speed changed: %v -> %v", rpm, got)
	}
	if got := d.Quadrocopter().Battery().StateOfChargePercent(); got != soc {
		t.Errorf("battery changed: %v -> %v", soc, got)
	}
	if d.Telemetry().Time != before.Time {
		t.Errorf("elapsed advanced: %v -> %v", before.Time, d.Telemetry().Time)
	}
}

func TestDroneTracksTarget(t *testing.T) {
	ctrl := control.NewAltitude(0.5, 1.0, 30000, 3000, hoverRPM())
	ctrl.SetTargetAltitude(10)
	d := newTestDrone(ctrl)
	last := &lastValue{}
	d.AddMetric(last)

	res, err := sim.RunDrone(context.Background(), d, 6000, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Final().AltitudeM-10) > 0.5 {
		t.Errorf("altitude = %.3f, want ~10", res.Final().AltitudeM)
	}
	if res.Metrics["last_alt"] != res.Final().AltitudeM {
		t.Errorf("metric = %v, want %v", res.Metrics["last_alt"], res.Final().AltitudeM)
	}
	if soc := res.Final().SoCPercent; soc > 95 || soc < 80 {
		t.Errorf("soc after a minute = %.2f", soc)
	}
}

func TestDroneWithESC(t *testing.T) {
	cfg := sim.DefaultDroneConfig()
	cfg.ESC = control.NewESC(500, 2)
	q := drone.NewWithBatterySim(drone.DefaultSpecs())
	d := sim.NewDrone(q, control.NewFixed(8000), integrators.NewSymplecticEuler(), cfg)

	sim.NewSimulation(d).RunForSteps(10, 0.1)
	// ESC limits the setpoint to 500 RPM/s, below the motor ramp
	if got := d.Telemetry().Motors[0].SpeedRPM; math.Abs(got-500) > 1e-6 {
		t.Errorf("speed = %v, want 500", got)
	}
}

func TestDroneStaticComponents(t *testing.T) {
	specs := drone.DefaultSpecs()
	q := drone.New("static", specs.Motor, specs.MotorIO,
		components.NewStaticBattery("b", specs.Battery), nil,
		components.NewStaticGPS("g", specs.GPS, components.Position3D{}),
		specs.BodyWeightKg, specs.BladeDiameterM, specs.BladeShapeCoeff)
	d := sim.NewDrone(q, control.NewFixed(9000), integrators.NewRK4(), sim.DefaultDroneConfig())

	sim.NewSimulation(d).RunForSteps(100, 0.1)
	if d.Telemetry().SoCPercent != 100 {
		t.Error("static battery never discharges")
	}
	if d.AltitudeM() <= 0 {
		t.Error("the body should still climb")
	}
	if q.AltitudeM() != 0 {
		t.Error("static gps keeps its fix")
	}
}

func TestBatch(t *testing.T) {
	factory := func(seed int64) (*sim.Drone, error) {
		cfg := sim.DefaultDroneConfig()
		cfg.GPSNoise = physics.NewGPSNoise(seed)
		q := drone.NewWithBatterySim(drone.DefaultSpecs())
		return sim.NewDrone(q, control.NewFixed(9000), integrators.NewSymplecticEuler(), cfg), nil
	}

	results, err := sim.NewBatch(factory, 4, 1, nil).Run(context.Background(), 200, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 200 {
			t.Errorf("run %d took %d steps", i, r.StepsTaken)
		}
	}
	// the true state does not depend on gps noise with an open-loop controller
	if results[0].Final().AltitudeM != results[3].Final().AltitudeM {
		t.Error("open-loop runs should agree on the true altitude")
	}
}
