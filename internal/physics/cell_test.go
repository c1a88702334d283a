package physics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/virtdrone/internal/components"
	"github.com/san-kum/virtdrone/internal/physics"
)

var _ = Describe("Cell", func() {
	var cell *components.Cell

	BeforeEach(func() {
		cell = physics.NewCell("C1", components.CellSpecs{CapacityMah: 1500, NominalVoltageV: 3.7})
	})

	DescribeTable("voltage curve",
		func(soc, want, tol float64) {
			physics.SetCellStateOfCharge(cell, soc)
			Expect(cell.VoltageV()).To(BeNumerically("~", want, tol))
		},
		Entry("full", 100.0, 4.2, 1e-9),
		Entry("knee", 85.0, 3.9, 1e-9),
		Entry("plateau midpoint", 50.0, 3.7, 0.1),
		Entry("plateau edge", 30.0, 3.5, 1e-9),
		Entry("empty", 0.0, 3.2, 1e-9),
	)

	It("starts full with a derived voltage", func() {
		Expect(cell.StateOfChargePercent()).To(Equal(100.0))
		Expect(cell.RemainingCapacityMah()).To(Equal(1500.0))
		Expect(cell.VoltageV()).To(BeNumerically("~", 4.2, 1e-9))
	})

	It("has a non-decreasing curve", func() {
		prev := physics.CellVoltage(0)
		for soc := 0.5; soc <= 100; soc += 0.5 {
			v := physics.CellVoltage(soc)
			Expect(v).To(BeNumerically(">=", prev))
			prev = v
		}
	})

	It("empties after an hour at 1C", func() {
		physics.SetCellCurrentA(cell, 1.5)
		physics.UpdateCell(cell, time.Hour)

		Expect(cell.StateOfChargePercent()).To(Equal(0.0))
		Expect(cell.RemainingCapacityMah()).To(Equal(0.0))
		Expect(cell.VoltageV()).To(BeNumerically("~", 3.2, 1e-9))
	})

	It("floors remaining capacity at zero", func() {
		physics.SetCellCurrentA(cell, 10)
		physics.UpdateCell(cell, time.Hour)
		Expect(cell.RemainingCapacityMah()).To(Equal(0.0))
	})

	It("is unchanged by a zero step", func() {
		physics.SetCellStateOfCharge(cell, 42.42)
		physics.SetCellCurrentA(cell, 3)
		before := *cell

		physics.UpdateCell(cell, 0)
		Expect(*cell).To(Equal(before))
	})

	It("round-trips the state of charge with clamping", func() {
		physics.SetCellStateOfCharge(cell, 63.5)
		Expect(cell.StateOfChargePercent()).To(Equal(63.5))
		Expect(cell.VoltageV()).To(Equal(physics.CellVoltage(63.5)))

		physics.SetCellStateOfCharge(cell, 140)
		Expect(cell.StateOfChargePercent()).To(Equal(100.0))

		physics.SetCellStateOfCharge(cell, -5)
		Expect(cell.StateOfChargePercent()).To(Equal(0.0))
		Expect(cell.RemainingCapacityMah()).To(Equal(0.0))
	})

	It("reports zero charge for a zero-capacity cell", func() {
		empty := physics.NewCell("C0", components.CellSpecs{CapacityMah: 0, NominalVoltageV: 3.7})
		physics.SetCellCurrentA(empty, 1)
		physics.UpdateCell(empty, time.Second)
		Expect(empty.StateOfChargePercent()).To(Equal(0.0))
	})
})

var _ = Describe("BatteryPack", func() {
	var pack *physics.BatteryPack

	BeforeEach(func() {
		specs := components.NewBatterySpecs(4, components.CellSpecs{CapacityMah: 5000, NominalVoltageV: 3.7}, 0.5)
		pack = physics.NewBatteryPack("pack", specs)
	})

	It("sums series cell voltages", func() {
		Expect(pack.Cells()).To(HaveLen(4))
		Expect(pack.VoltageV()).To(BeNumerically("~", 16.8, 0.1))

		pack.SetStateOfChargePercent(85)
		Expect(pack.VoltageV()).To(BeNumerically("~", 15.6, 0.1))
	})

	It("names cells after the pack", func() {
		Expect(pack.Cells()[0].ID()).To(Equal("pack_C1"))
		Expect(pack.Cells()[3].ID()).To(Equal("pack_C4"))
	})

	It("drops depleted cells from the bus voltage", func() {
		pack.SetStateOfChargePercent(0)
		Expect(pack.VoltageV()).To(Equal(0.0))
	})

	It("averages charge across cells", func() {
		physics.SetCellStateOfCharge(pack.Cells()[0], 50)
		Expect(pack.StateOfChargePercent()).To(BeNumerically("~", 87.5, 1e-9))
		Expect(pack.RemainingCapacityMah()).To(BeNumerically("~", 4375, 1e-9))
	})

	It("discharges every cell with the shared current", func() {
		pack.SetCurrentA(5)
		pack.Update(30 * time.Minute)

		Expect(pack.CurrentA()).To(Equal(5.0))
		for _, c := range pack.Cells() {
			Expect(c.StateOfChargePercent()).To(BeNumerically("~", 50, 1e-9))
		}
		Expect(pack.RemainingEnergyWh()).To(BeNumerically("~", 4*2.5*physics.CellVoltage(50), 1e-9))
	})

	It("reports its weight", func() {
		Expect(pack.WeightKg()).To(Equal(0.5))
	})
})
