package components

type CellSpecs struct {
	CapacityMah     float64
	NominalVoltageV float64
}

func DefaultCellSpecs() CellSpecs {
	return CellSpecs{CapacityMah: 5000.0, NominalVoltageV: 3.7}
}

// Cell is one Li-ion cell. A new cell is fully charged; its terminal voltage
// is left at zero until the cell physics derives it from the state of charge.
type Cell struct {
	id                 string
	nominalCapacityMah float64
	remainingMah       float64
	socPercent         float64
	voltageV           float64
	currentA           float64
	nominalVoltageV    float64
}

func NewCell(id string, specs CellSpecs) *Cell {
	return &Cell{
		id:                 id,
		nominalCapacityMah: specs.CapacityMah,
		remainingMah:       specs.CapacityMah,
		socPercent:         100.0,
		nominalVoltageV:    specs.NominalVoltageV,
	}
}

func (c *Cell) ID() string                    { return c.id }
func (c *Cell) NominalCapacityMah() float64   { return c.nominalCapacityMah }
func (c *Cell) RemainingCapacityMah() float64 { return c.remainingMah }
func (c *Cell) StateOfChargePercent() float64 { return c.socPercent }
func (c *Cell) VoltageV() float64             { return c.voltageV }
func (c *Cell) CurrentA() float64             { return c.currentA }
func (c *Cell) NominalVoltageV() float64      { return c.nominalVoltageV }

// Raw setters for the cell physics. They store without validation.

func (c *Cell) SetRemainingCapacityMah(mah float64) { c.remainingMah = mah }
func (c *Cell) SetStateOfChargePercent(p float64)   { c.socPercent = p }
func (c *Cell) SetVoltageV(v float64)               { c.voltageV = v }
func (c *Cell) SetCurrentA(a float64)               { c.currentA = a }
