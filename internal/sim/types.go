package sim

// MotorTelemetry is one motor's state after a tick.
type MotorTelemetry struct {
	Name         string  `json:"name"`
	SpeedRPM     float64 `json:"speed_rpm"`
	CurrentA     float64 `json:"current_a"`
	TemperatureC float64 `json:"temperature_c"`
}

// Telemetry is the drone state after a tick.
type Telemetry struct {
	Step        int              `json:"step"`
	Time        float64          `json:"time"`
	Dt          float64          `json:"dt"`
	AltitudeM   float64          `json:"altitude_m"`
	VelocityMps float64          `json:"velocity_mps"`
	TargetM     float64          `json:"target_m"`
	RPMRef      float64          `json:"rpm_ref"`
	ThrustN     float64          `json:"thrust_n"`
	CurrentA    float64          `json:"current_a"`
	BatteryV    float64          `json:"battery_v"`
	SoCPercent  float64          `json:"soc_percent"`
	Motors      []MotorTelemetry `json:"motors"`
}

// MaxMotorTempC is the hottest motor winding in the sample.
func (t Telemetry) MaxMotorTempC() float64 {
	if len(t.Motors) == 0 {
		return 0
	}
	hottest := t.Motors[0].TemperatureC
	for _, m := range t.Motors[1:] {
		if m.TemperatureC > hottest {
			hottest = m.TemperatureC
		}
	}
	return hottest
}

type Metric interface {
	Name() string
	Observe(t Telemetry)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(t Telemetry)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(t Telemetry)

func (f ObserverFunc) OnStep(t Telemetry) { f(t) }

type Result struct {
	Telemetry  []Telemetry
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last sample, or the zero value for an empty run.
func (r *Result) Final() Telemetry {
	if len(r.Telemetry) == 0 {
		return Telemetry{}
	}
	return r.Telemetry[len(r.Telemetry)-1]
}

// Recorder keeps every sample it observes.
type Recorder struct {
	Samples []Telemetry
}

func NewRecorder(capacity int) *Recorder {
	return &Recorder{Samples: make([]Telemetry, 0, capacity)}
}

func (r *Recorder) OnStep(t Telemetry) { r.Samples = append(r.Samples, t) }
