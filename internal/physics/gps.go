package physics

import (
	"math/rand"

	"github.com/san-kum/virtdrone/internal/components"
)

// SimGPS is a GPS module whose fix is written by the simulation.
type SimGPS struct {
	name       string
	specs      components.GPSSpecs
	position   components.Position3D
	velocity   components.Velocity3D
	status     components.SensorStatus
	satellites int
}

var _ components.GPSFixSetter = (*SimGPS)(nil)

func NewSimGPS(name string, specs components.GPSSpecs) *SimGPS {
	return &SimGPS{name: name, specs: specs, status: components.StatusInactive}
}

func (g *SimGPS) Name() string                    { return g.name }
func (g *SimGPS) Specs() components.GPSSpecs      { return g.specs }
func (g *SimGPS) Position() components.Position3D { return g.position }
func (g *SimGPS) Velocity() components.Velocity3D { return g.velocity }
func (g *SimGPS) Status() components.SensorStatus { return g.status }
func (g *SimGPS) SatelliteCount() int             { return g.satellites }
func (g *SimGPS) WeightKg() float64               { return g.specs.WeightKg }

func (g *SimGPS) SetPosition(p components.Position3D) { g.position = p }
func (g *SimGPS) SetVelocity(v components.Velocity3D) { g.velocity = v }
func (g *SimGPS) SetStatus(s components.SensorStatus) { g.status = s }
func (g *SimGPS) SetSatelliteCount(n int)             { g.satellites = n }

func (g *SimGPS) AltitudeM() float64 { return g.position.AltitudeM }

func (g *SimGPS) SetAltitudeM(alt float64) { g.position.AltitudeM = alt }

// metersPerDegree approximates one degree of latitude.
const metersPerDegree = 111320.0

// GPSNoise perturbs fixes with zero-mean Gaussian noise scaled by the
// module's accuracy figures.
type GPSNoise struct {
	rng *rand.Rand
}

func NewGPSNoise(seed int64) *GPSNoise {
	return &GPSNoise{rng: rand.New(rand.NewSource(seed))}
}

// Apply writes pos and vel to g, with noise when n is non-nil, and marks the
// fix active with the module's satellite count.
func (n *GPSNoise) Apply(g components.GPSFixSetter, pos components.Position3D, vel components.Velocity3D) {
	if n != nil {
		s := g.Specs()
		pos.LatitudeDeg += n.rng.NormFloat64() * s.HorizontalAccuracyM / metersPerDegree
		pos.LongitudeDeg += n.rng.NormFloat64() * s.HorizontalAccuracyM / metersPerDegree
		pos.AltitudeM += n.rng.NormFloat64() * s.VerticalAccuracyM
		vel.NorthMps += n.rng.NormFloat64() * s.VelocityAccuracyMps
		vel.EastMps += n.rng.NormFloat64() * s.VelocityAccuracyMps
		vel.DownMps += n.rng.NormFloat64() * s.VelocityAccuracyMps
	}
	g.SetPosition(pos)
	g.SetVelocity(vel)
	g.SetSatelliteCount(g.Specs().MaxSatellites)
	g.SetStatus(components.StatusActive)
}
