package components

import "time"

// Battery is the read-only view of a battery.
type Battery interface {
	Name() string
	VoltageV() float64
	CurrentA() float64
	StateOfChargePercent() float64
	RemainingCapacityMah() float64
	RemainingEnergyWh() float64
	WeightKg() float64
}

// SimBattery is a battery whose charge evolves with the drawn current.
type SimBattery interface {
	Battery
	SetCurrentA(a float64)
	SetStateOfChargePercent(p float64)
	Update(dt time.Duration)
}

// BatterySpecs describes a pack of identical cells in series.
type BatterySpecs struct {
	Cells         int
	Cell          CellSpecs
	MaxDischargeC float64
	WeightKg      float64
}

func NewBatterySpecs(cells int, cell CellSpecs, weightKg float64) BatterySpecs {
	return BatterySpecs{
		Cells:         cells,
		Cell:          cell,
		MaxDischargeC: 1.0,
		WeightKg:      weightKg,
	}
}

func (s BatterySpecs) NominalVoltageV() float64 { return float64(s.Cells) * s.Cell.NominalVoltageV }
func (s BatterySpecs) CapacityMah() float64     { return s.Cell.CapacityMah }

// StaticBattery reports fixed nominal values and never discharges.
type StaticBattery struct {
	name  string
	specs BatterySpecs
}

func NewStaticBattery(name string, specs BatterySpecs) *StaticBattery {
	return &StaticBattery{name: name, specs: specs}
}

func (b *StaticBattery) Name() string                  { return b.name }
func (b *StaticBattery) VoltageV() float64             { return b.specs.NominalVoltageV() }
func (b *StaticBattery) CurrentA() float64             { return 0 }
func (b *StaticBattery) StateOfChargePercent() float64 { return 100.0 }
func (b *StaticBattery) RemainingCapacityMah() float64 { return b.specs.CapacityMah() }
func (b *StaticBattery) WeightKg() float64             { return b.specs.WeightKg }

func (b *StaticBattery) RemainingEnergyWh() float64 {
	return b.specs.CapacityMah() / 1000.0 * b.specs.NominalVoltageV()
}
