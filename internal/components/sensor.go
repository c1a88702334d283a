package components

type SensorStatus int

const (
	StatusInactive SensorStatus = iota
	StatusActive
	StatusError
)

func (s SensorStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusError:
		return "error"
	default:
		return "inactive"
	}
}

type SensorType int

const (
	SensorActuator SensorType = iota
	SensorSensing
)

type IODirection int

const (
	IOInput IODirection = iota
	IOOutput
)

type SignalRange int

const (
	ZeroTo10V SignalRange = iota
	FourTo20mA
)

// CountsRange is the raw ADC/DAC count span of an analog channel.
type CountsRange struct {
	Min uint64
	Max uint64
}

type AnalogIOSpec struct {
	Direction IODirection
	Signal    SignalRange
	Counts    CountsRange
}

func NewAnalogIOSpec(dir IODirection, signal SignalRange, minCounts, maxCounts uint64) AnalogIOSpec {
	return AnalogIOSpec{
		Direction: dir,
		Signal:    signal,
		Counts:    CountsRange{Min: minCounts, Max: maxCounts},
	}
}

// Contains reports whether counts lies inside the channel range.
func (s AnalogIOSpec) Contains(counts uint64) bool {
	return counts >= s.Counts.Min && counts <= s.Counts.Max
}

// BaseSensor carries the identity and status shared by every sensor and actuator.
type BaseSensor struct {
	name   string
	kind   SensorType
	status SensorStatus
	io     AnalogIOSpec
}

func NewBaseSensor(name string, kind SensorType, io AnalogIOSpec) BaseSensor {
	return BaseSensor{
		name:   name,
		kind:   kind,
		status: StatusInactive,
		io:     io,
	}
}

func (b *BaseSensor) Name() string                  { return b.name }
func (b *BaseSensor) Type() SensorType              { return b.kind }
func (b *BaseSensor) Status() SensorStatus          { return b.status }
func (b *BaseSensor) SetStatus(status SensorStatus) { b.status = status }
func (b *BaseSensor) IO() AnalogIOSpec              { return b.io }
