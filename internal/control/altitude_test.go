package control_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/virtdrone/internal/control"
	"github.com/san-kum/virtdrone/internal/dynamo"
)

var _ = Describe("Altitude", func() {
	It("starts from rest", func() {
		a := control.NewAltitude(1, 1, 1, 0, 0)
		Expect(a.AltitudeRef()).To(Equal(0.0))
		Expect(a.Integral()).To(Equal(0.0))
		Expect(a.TargetAltitude()).To(Equal(0.0))
	})

	It("steps the reference up at the slew limit in P-only mode", func() {
		a := control.NewAltitude(1.0, 1.0, 1.0, 0.0, 0)
		a.SetTargetAltitude(10)

		a.Update(0, 1)
		Expect(a.AltitudeRef()).To(BeNumerically("~", 1.0, 1e-12))

		a.Update(1, 1)
		Expect(a.AltitudeRef()).To(BeNumerically("~", 2.0, 1e-12))

		a.Update(5, 1)
		Expect(a.AltitudeRef()).To(BeNumerically("~", 6.0, 1e-12))
	})

	It("holds the reference within the slew band of the measured altitude", func() {
		a := control.NewAltitude(1.0, 1.0, 1.0, 0.0, 0)
		a.SetTargetAltitude(10)
		a.Update(0, 1)
		a.Update(0, 1)
		Expect(a.AltitudeRef()).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("never moves faster than a tighter slew rate", func() {
		a := control.NewAltitude(1.0, 0.5, 1.0, 0.0, 0)
		a.SetTargetAltitude(10)

		a.Update(0, 1)
		Expect(a.AltitudeRef()).To(BeNumerically("~", 0.5, 1e-12))

		a.Update(0.5, 1)
		Expect(a.AltitudeRef()).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("outputs the proportional term plus hover offset", func() {
		a := control.NewAltitude(1.0, 1.0, 500, 0, 6000)
		a.SetTargetAltitude(10)
		Expect(a.Update(0, 0.1)).To(BeNumerically("~", 6000+500*0.1, 1e-9))
	})

	It("integrates only near the setpoint", func() {
		a := control.NewAltitude(1.0, 2.0, 0, 10, 0)
		a.SetTargetAltitude(10)
		a.Update(0, 1)
		Expect(a.Integral()).To(Equal(0.0))

		b := control.NewAltitude(1.0, 0.2, 0, 10, 0)
		b.SetTargetAltitude(10)
		b.Update(0, 1)
		Expect(b.Integral()).To(BeNumerically("~", 0.2*10, 1e-12))
	})

	It("bounds the integral accumulator", func() {
		a := control.NewAltitude(1.0, 0.4, 0, 1e5, 0)
		a.SetTargetAltitude(100)
		for i := 0; i < 100; i++ {
			a.Update(0, 1)
		}
		Expect(a.Integral()).To(Equal(control.IntegralLimit))

		a.SetTargetAltitude(-100)
		for i := 0; i < 100; i++ {
			a.Update(0, 1)
		}
		Expect(a.Integral()).To(Equal(-control.IntegralLimit))
	})

	It("ignores non-positive steps", func() {
		a := control.NewAltitude(1.0, 1.0, 100, 10, 6000)
		a.SetTargetAltitude(3)
		out := a.Update(0, 0.5)
		ref := a.AltitudeRef()

		Expect(a.Update(2, 0)).To(Equal(out))
		Expect(a.Update(2, -1)).To(Equal(out))
		Expect(a.AltitudeRef()).To(Equal(ref))
	})

	It("resets to the hover offset", func() {
		a := control.NewAltitude(1.0, 1.0, 100, 10, 6000)
		a.SetTargetAltitude(3)
		a.Update(0, 0.5)
		a.Reset()
		Expect(a.AltitudeRef()).To(Equal(0.0))
		Expect(a.Update(0, 0)).To(Equal(6000.0))
	})

	It("is tunable by name", func() {
		a := control.NewAltitude(1.0, 1.0, 100, 10, 6000)
		Expect(a.SetParam("inner_p", 250)).To(Succeed())
		Expect(a.GetParams()["inner_p"]).To(Equal(250.0))

		err := a.SetParam("max_slew", -1)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		err = a.SetParam("gain", 1)
		Expect(errors.Is(err, dynamo.ErrUnknownParam)).To(BeTrue())
	})
})

var _ = Describe("PID", func() {
	It("raises speed below the target and lowers it above", func() {
		p := control.NewPID(100, 0, 0, 6000)
		p.SetTargetAltitude(5)
		Expect(p.Update(0, 0.1)).To(BeNumerically(">", 6000))

		p.Reset()
		Expect(p.Update(10, 0.1)).To(BeNumerically("<", 6000))
	})

	It("damps with the derivative term", func() {
		p := control.NewPID(0, 0, 10, 0)
		p.SetTargetAltitude(5)
		Expect(p.Update(0, 1)).To(Equal(0.0))
		Expect(p.Update(1, 1)).To(BeNumerically("~", -10, 1e-12))
	})

	It("rejects unknown parameters", func() {
		p := control.NewPID(1, 0, 0, 0)
		Expect(p.SetParam("Kd", 2)).To(Succeed())
		Expect(p.SetParam("Kx", 2)).To(MatchError(dynamo.ErrUnknownParam))
	})
})

var _ = Describe("Fixed", func() {
	It("ignores altitude", func() {
		f := control.NewFixed(4200)
		f.SetTargetAltitude(12)
		Expect(f.Update(0, 0.1)).To(Equal(4200.0))
		Expect(f.Update(50, 0.1)).To(Equal(4200.0))
		Expect(f.TargetAltitude()).To(Equal(12.0))
	})
})
