package control

// SpeedController maps measured altitude to a motor RPM reference.
type SpeedController interface {
	SetTargetAltitude(m float64)
	TargetAltitude() float64
	Update(altitudeM, dt float64) float64
	Reset()
}
