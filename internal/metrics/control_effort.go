package metrics

import (
	"math"

	"github.com/san-kum/virtdrone/internal/sim"
)

// ControlEffort is the mean magnitude of the commanded RPM reference.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "mean_rpm_ref",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(t sim.Telemetry) {
	c.sum += math.Abs(t.RPMRef)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
