package physics

import (
	"time"

	"github.com/san-kum/virtdrone/internal/components"
	"github.com/san-kum/virtdrone/internal/mathx"
)

// Discharge curve breakpoints for a single Li-ion cell.
const (
	CellFullV    = 4.2
	CellKneeV    = 3.9
	CellPlateauV = 3.5
	CellEmptyV   = 3.2

	KneeSoCPercent    = 85.0
	PlateauSoCPercent = 30.0
)

// CellVoltage returns the open-circuit voltage for a state of charge using a
// three-segment piecewise-linear curve: cliff below 30 %, plateau up to 85 %,
// knee up to full.
func CellVoltage(socPercent float64) float64 {
	soc := mathx.Clamp(socPercent, 0, 100)
	switch {
	case soc > KneeSoCPercent:
		return mathx.MapRange(soc, KneeSoCPercent, 100, CellKneeV, CellFullV)
	case soc >= PlateauSoCPercent:
		return mathx.MapRange(soc, PlateauSoCPercent, KneeSoCPercent, CellPlateauV, CellKneeV)
	default:
		return mathx.MapRange(soc, 0, PlateauSoCPercent, CellEmptyV, CellPlateauV)
	}
}

// NewCell builds a fully charged cell with its voltage already derived.
func NewCell(id string, specs components.CellSpecs) *components.Cell {
	c := components.NewCell(id, specs)
	CalculateVoltageDrop(c)
	return c
}

func CalculateVoltageDrop(c *components.Cell) {
	c.SetVoltageV(CellVoltage(c.StateOfChargePercent()))
}

func SetCellCurrentA(c *components.Cell, a float64) {
	c.SetCurrentA(a)
}

// SetCellStateOfCharge clamps soc to [0, 100] and rederives remaining
// capacity and voltage from it.
func SetCellStateOfCharge(c *components.Cell, socPercent float64) {
	soc := mathx.Clamp(socPercent, 0, 100)
	c.SetStateOfChargePercent(soc)
	c.SetRemainingCapacityMah(soc / 100.0 * c.NominalCapacityMah())
	CalculateVoltageDrop(c)
}

// UpdateCell coulomb-counts the cell's current over dt. A non-positive dt
// leaves the cell untouched.
func UpdateCell(c *components.Cell, dt time.Duration) {
	if dt <= 0 {
		return
	}

	usedMah := c.CurrentA() * dt.Hours() * 1000.0
	remaining := mathx.Clamp(c.RemainingCapacityMah()-usedMah, 0, c.NominalCapacityMah())
	c.SetRemainingCapacityMah(remaining)

	soc := 0.0
	if c.NominalCapacityMah() > 0 {
		soc = remaining / c.NominalCapacityMah() * 100.0
	}
	c.SetStateOfChargePercent(soc)
	CalculateVoltageDrop(c)
}
