package components

import "math"

// Position3D is a geodetic position: degrees for lat/lon, meters for altitude.
type Position3D struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeM    float64
}

func (p Position3D) Add(o Position3D) Position3D {
	return Position3D{p.LatitudeDeg + o.LatitudeDeg, p.LongitudeDeg + o.LongitudeDeg, p.AltitudeM + o.AltitudeM}
}

func (p Position3D) Sub(o Position3D) Position3D {
	return Position3D{p.LatitudeDeg - o.LatitudeDeg, p.LongitudeDeg - o.LongitudeDeg, p.AltitudeM - o.AltitudeM}
}

// DistanceTo is a plain Euclidean distance over the three fields.
func (p Position3D) DistanceTo(o Position3D) float64 {
	d := p.Sub(o)
	return math.Sqrt(d.LatitudeDeg*d.LatitudeDeg + d.LongitudeDeg*d.LongitudeDeg + d.AltitudeM*d.AltitudeM)
}

// Velocity3D is NED; DownMps is negative when climbing.
type Velocity3D struct {
	NorthMps float64
	EastMps  float64
	DownMps  float64
}

type GPSSpecs struct {
	HorizontalAccuracyM float64
	VerticalAccuracyM   float64
	VelocityAccuracyMps float64
	UpdateRateHz        int
	MaxSatellites       int
	WeightKg            float64
}

func DefaultGPSSpecs() GPSSpecs {
	return GPSSpecs{
		HorizontalAccuracyM: 5.0,
		VerticalAccuracyM:   10.0,
		VelocityAccuracyMps: 0.5,
		UpdateRateHz:        5,
		MaxSatellites:       8,
		WeightKg:            0.03,
	}
}

// GPS is the read-only view of a positioning module.
type GPS interface {
	Name() string
	Specs() GPSSpecs
	Position() Position3D
	Velocity() Velocity3D
	Status() SensorStatus
	SatelliteCount() int
	WeightKg() float64
}

// GPSFixSetter is implemented by modules whose fix is written by the simulation.
type GPSFixSetter interface {
	GPS
	SetPosition(p Position3D)
	SetVelocity(v Velocity3D)
	SetStatus(s SensorStatus)
	SetSatelliteCount(n int)
}

// StaticGPS always reports the position it was created with.
type StaticGPS struct {
	name     string
	specs    GPSSpecs
	position Position3D
}

func NewStaticGPS(name string, specs GPSSpecs, position Position3D) *StaticGPS {
	return &StaticGPS{name: name, specs: specs, position: position}
}

func (g *StaticGPS) Name() string         { return g.name }
func (g *StaticGPS) Specs() GPSSpecs      { return g.specs }
func (g *StaticGPS) Position() Position3D { return g.position }
func (g *StaticGPS) Velocity() Velocity3D { return Velocity3D{} }
func (g *StaticGPS) Status() SensorStatus { return StatusActive }
func (g *StaticGPS) SatelliteCount() int  { return g.specs.MaxSatellites }
func (g *StaticGPS) WeightKg() float64    { return g.specs.WeightKg }
