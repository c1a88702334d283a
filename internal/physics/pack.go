package physics

import (
	"fmt"
	"time"

	"github.com/san-kum/virtdrone/internal/components"
)

// CellCutoffMah is the remaining capacity below which a cell stops
// contributing to pack voltage.
const CellCutoffMah = 0.1

// BatteryPack is a string of identical series cells sharing one current.
// Pack state of charge and capacity are averages over the cells.
type BatteryPack struct {
	name  string
	specs components.BatterySpecs
	cells []*components.Cell
}

var _ components.SimBattery = (*BatteryPack)(nil)

func NewBatteryPack(name string, specs components.BatterySpecs) *BatteryPack {
	cells := make([]*components.Cell, specs.Cells)
	for i := range cells {
		cells[i] = NewCell(fmt.Sprintf("%s_C%d", name, i+1), specs.Cell)
	}
	return &BatteryPack{name: name, specs: specs, cells: cells}
}

func (b *BatteryPack) Name() string                  { return b.name }
func (b *BatteryPack) Specs() components.BatterySpecs { return b.specs }
func (b *BatteryPack) Cells() []*components.Cell      { return b.cells }
func (b *BatteryPack) WeightKg() float64              { return b.specs.WeightKg }

func (b *BatteryPack) VoltageV() float64 {
	total := 0.0
	for _, c := range b.cells {
		if c.RemainingCapacityMah() < CellCutoffMah {
			continue
		}
		total += c.VoltageV()
	}
	return total
}

// CurrentA is the series current, read from the first cell.
func (b *BatteryPack) CurrentA() float64 {
	if len(b.cells) == 0 {
		return 0
	}
	return b.cells[0].CurrentA()
}

func (b *BatteryPack) StateOfChargePercent() float64 {
	return b.average(func(c *components.Cell) float64 { return c.StateOfChargePercent() })
}

func (b *BatteryPack) RemainingCapacityMah() float64 {
	return b.average(func(c *components.Cell) float64 { return c.RemainingCapacityMah() })
}

func (b *BatteryPack) RemainingEnergyWh() float64 {
	wh := 0.0
	for _, c := range b.cells {
		wh += c.RemainingCapacityMah() / 1000.0 * c.VoltageV()
	}
	return wh
}

func (b *BatteryPack) SetCurrentA(a float64) {
	for _, c := range b.cells {
		SetCellCurrentA(c, a)
	}
}

func (b *BatteryPack) SetStateOfChargePercent(p float64) {
	for _, c := range b.cells {
		SetCellStateOfCharge(c, p)
	}
}

func (b *BatteryPack) Update(dt time.Duration) {
	for _, c := range b.cells {
		UpdateCell(c, dt)
	}
}

func (b *BatteryPack) average(f func(*components.Cell) float64) float64 {
	if len(b.cells) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range b.cells {
		sum += f(c)
	}
	return sum / float64(len(b.cells))
}
