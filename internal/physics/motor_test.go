package physics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/virtdrone/internal/components"
	"github.com/san-kum/virtdrone/internal/physics"
)

func newTestMotor() *components.Motor {
	io := components.NewAnalogIOSpec(components.IOOutput, components.ZeroTo10V, 0, 10000)
	return components.NewMotor("M1", io, components.DefaultMotorSpecs())
}

var _ = Describe("Motor", func() {
	var motor *components.Motor

	BeforeEach(func() {
		motor = newTestMotor()
	})

	It("ramps toward the desired speed at the ramp rate", func() {
		motor.SetDesiredSpeedRPM(5000)
		physics.UpdateMotor(motor, time.Second, nil)
		Expect(motor.SpeedRPM()).To(Equal(1000.0))
	})

	It("decelerates symmetrically", func() {
		motor.SetSpeedRPM(5000)
		motor.SetDesiredSpeedRPM(4500)
		physics.UpdateSpeed(motor, 100*time.Millisecond, motor.Specs().NominalVoltageV)
		Expect(motor.SpeedRPM()).To(BeNumerically("~", 4900, 1e-9))

		physics.UpdateSpeed(motor, time.Second, motor.Specs().NominalVoltageV)
		Expect(motor.SpeedRPM()).To(Equal(4500.0))
	})

	It("caps speed by the voltage-scaled ceiling", func() {
		motor.SetSpeedRPM(10000)
		motor.SetDesiredSpeedRPM(15000)
		physics.UpdateSpeed(motor, 10*time.Second, motor.Specs().NominalVoltageV/2)
		Expect(motor.SpeedRPM()).To(BeNumerically("~", 7500, 1e-9))
	})

	It("clamps the desired speed to the motor range", func() {
		motor.SetDesiredSpeedRPM(-10)
		Expect(motor.DesiredSpeedRPM()).To(Equal(0.0))
		motor.SetDesiredSpeedRPM(1e6)
		Expect(motor.DesiredSpeedRPM()).To(Equal(15000.0))
	})

	It("heats up monotonically under sustained load", func() {
		motor.SetDesiredSpeedRPM(12000)
		prevI, prevT := 0.0, motor.AmbientTempC()
		for i := 0; i < 200; i++ {
			physics.UpdateMotor(motor, 100*time.Millisecond, nil)
			Expect(motor.CurrentA()).To(BeNumerically(">=", prevI))
			Expect(motor.TemperatureC()).To(BeNumerically(">=", prevT))
			Expect(motor.CurrentA()).To(BeNumerically("<=", motor.Specs().MaxCurrentA))
			prevI, prevT = motor.CurrentA(), motor.TemperatureC()
		}
		Expect(motor.TemperatureC()).To(BeNumerically(">", motor.AmbientTempC()))
	})

	It("derives current from actual speed", func() {
		motor.SetSpeedRPM(7500)
		physics.CalculateCurrent(motor)
		Expect(motor.CurrentA()).To(BeNumerically("~", 0.5*20/0.9, 1e-9))

		motor.SetSpeedRPM(15000)
		physics.CalculateCurrent(motor)
		Expect(motor.CurrentA()).To(Equal(20.0))
	})

	It("computes losses as the complement of efficiency", func() {
		motor.SetVoltageV(10)
		motor.SetCurrentA(2)
		physics.CalculateLosses(motor)
		Expect(motor.LossesW()).To(BeNumerically("~", 2, 1e-9))
		Expect(physics.BatteryDrainJ(motor, 3)).To(Equal(60.0))
	})

	It("mirrors temperature onto the sensor counts", func() {
		physics.UpdateTemperature(motor, time.Second)
		sensor := motor.TempSensor()
		Expect(sensor.LastCountsReading()).To(Equal(uint64(10000)))
		Expect(sensor.Status()).To(Equal(components.StatusActive))
		Expect(motor.TemperatureReading().TemperatureC).To(BeNumerically("~", 25, 1e-9))
	})

	It("stops drawing current from a depleted pack", func() {
		specs := components.NewBatterySpecs(4, components.DefaultCellSpecs(), 0.5)
		pack := physics.NewBatteryPack("pack", specs)
		pack.SetStateOfChargePercent(0.5)

		motor.SetSpeedRPM(3000)
		motor.SetDesiredSpeedRPM(6000)
		physics.UpdateMotor(motor, 100*time.Millisecond, pack)

		Expect(motor.CurrentA()).To(Equal(0.0))
		Expect(motor.VoltageV()).To(Equal(0.0))
		Expect(motor.SpeedRPM()).To(BeNumerically("<", 3000))
	})

	It("is unchanged by a zero step", func() {
		motor.SetDesiredSpeedRPM(8000)
		physics.UpdateMotor(motor, 500*time.Millisecond, nil)
		before := *motor
		sensorBefore := *motor.TempSensor()

		physics.UpdateMotor(motor, 0, nil)
		Expect(*motor).To(Equal(before))
		Expect(*motor.TempSensor()).To(Equal(sensorBefore))
	})
})

var _ = Describe("ThrustModel", func() {
	params := physics.DefaultThrustParams()

	It("converts RPM to rad/s", func() {
		Expect(physics.RPMToRadPerSec(60)).To(BeNumerically("~", 6.283185307, 1e-8))
	})

	It("scales quadratically with angular speed", func() {
		t1 := physics.Thrust(100, params)
		Expect(t1).To(BeNumerically("~", 3e-5*0.25*1.0*1e4, 1e-12))
		Expect(physics.Thrust(200, params)).To(BeNumerically("~", 4*t1, 1e-12))
		Expect(physics.Torque(100, params)).To(BeNumerically("~", 5e-7*0.25*1e4, 1e-12))
		Expect(physics.Thrust(0, params)).To(Equal(0.0))
	})

	It("takes geometry from the motor", func() {
		motor := newTestMotor()
		motor.SetSpeedRPM(6000)
		omega := physics.RPMToRadPerSec(6000)
		Expect(physics.MotorThrust(motor, params)).To(BeNumerically("~", physics.Thrust(omega, params), 1e-12))
		Expect(physics.MotorTorque(motor, params)).To(BeNumerically("~", physics.Torque(omega, params), 1e-12))
	})

	It("finds the hover speed", func() {
		rpm := physics.HoverRPM(1.2, physics.DefaultGravity, 4, params)
		total := 4 * physics.Thrust(physics.RPMToRadPerSec(rpm), params)
		Expect(total).To(BeNumerically("~", 1.2*physics.DefaultGravity, 1e-9))
	})
})

var _ = Describe("Vertical", func() {
	It("balances at hover thrust", func() {
		v := physics.NewVertical(1.2)
		dx := v.Derive([]float64{10, 0}, []float64{v.Weight()}, 0)
		Expect(dx[0]).To(Equal(0.0))
		Expect(dx[1]).To(BeNumerically("~", 0, 1e-12))
	})

	It("applies linear drag against velocity", func() {
		v := physics.NewVertical(2)
		v.DragCoeff = 1
		Expect(v.NetForce(v.Weight(), 3)).To(BeNumerically("~", -3, 1e-12))
	})

	It("floors at the ground", func() {
		x := []float64{-0.2, -1.5}
		Expect(physics.Ground(x)).To(BeTrue())
		Expect(x).To(Equal([]float64{0, 0}))
		Expect(physics.Ground([]float64{1, -1})).To(BeFalse())
	})

	It("rejects out-of-range parameters", func() {
		v := physics.NewVertical(1)
		Expect(v.SetParam("mass", -1)).To(HaveOccurred())
		Expect(v.SetParam("nope", 1)).To(HaveOccurred())
		Expect(v.SetParam("drag", 0.2)).To(Succeed())
		Expect(v.GetParams()["drag"]).To(Equal(0.2))
	})
})

var _ = Describe("SimGPS", func() {
	It("reports exact fixes without noise", func() {
		g := physics.NewSimGPS("gps", components.DefaultGPSSpecs())
		var noise *physics.GPSNoise
		noise.Apply(g, components.Position3D{AltitudeM: 12.5}, components.Velocity3D{DownMps: -1})

		Expect(g.AltitudeM()).To(Equal(12.5))
		Expect(g.Velocity().DownMps).To(Equal(-1.0))
		Expect(g.Status()).To(Equal(components.StatusActive))
		Expect(g.SatelliteCount()).To(Equal(8))
	})

	It("adds reproducible noise for a fixed seed", func() {
		a := physics.NewSimGPS("a", components.DefaultGPSSpecs())
		b := physics.NewSimGPS("b", components.DefaultGPSSpecs())
		physics.NewGPSNoise(7).Apply(a, components.Position3D{AltitudeM: 10}, components.Velocity3D{})
		physics.NewGPSNoise(7).Apply(b, components.Position3D{AltitudeM: 10}, components.Velocity3D{})

		Expect(a.Position()).To(Equal(b.Position()))
		Expect(a.AltitudeM()).NotTo(Equal(10.0))
	})
})
