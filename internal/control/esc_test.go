package control_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/virtdrone/internal/control"
)

var _ = Describe("RPMRefP", func() {
	DescribeTable("proportional speed law",
		func(ref, current, wantUnclamped, wantClamped float64) {
			unclamped, clamped := control.RPMRefP(ref, current, 1000, 0.5, 0.1)
			Expect(unclamped).To(BeNumerically("~", wantUnclamped, 1e-9))
			Expect(clamped).To(BeNumerically("~", wantClamped, 1e-9))
		},
		Entry("accelerate inside the rate limit", 5000.0, 3000.0, 3100.0, 3100.0),
		Entry("accelerate past the rate limit", 15000.0, 3000.0, 3600.0, 3100.0),
		Entry("decelerate inside the rate limit", 3000.0, 5000.0, 4900.0, 4900.0),
		Entry("decelerate past the rate limit", 3000.0, 15000.0, 14400.0, 14900.0),
		Entry("at reference", 5000.0, 5000.0, 5000.0, 5000.0),
	)

	It("returns the clamped law from ESC", func() {
		e := control.NewESC(1000, 0.5)
		Expect(e.Shape(15000, 3000, 0.1)).To(BeNumerically("~", 3100, 1e-9))
		Expect(e.Shape(15000, 3000, 0)).To(Equal(3000.0))
	})
})
