package control

// Fixed ignores altitude and always commands the same speed.
type Fixed struct {
	RPM    float64
	target float64
}

func NewFixed(rpm float64) *Fixed {
	return &Fixed{RPM: rpm}
}

func (f *Fixed) SetTargetAltitude(m float64) { f.target = m }
func (f *Fixed) TargetAltitude() float64     { return f.target }
func (f *Fixed) Update(_, _ float64) float64 { return f.RPM }
func (f *Fixed) Reset()                      {}
