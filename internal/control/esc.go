package control

// RPMRefP moves current toward ref by kp*(ref-current)*dt. unclamped is that
// raw step; clamped limits the step to ±maxDelta*dt first.
func RPMRefP(ref, current, maxDelta, kp, dt float64) (unclamped, clamped float64) {
	out := kp * (ref - current) * dt
	unclamped = current + out

	limit := maxDelta * dt
	if out > limit {
		out = limit
	} else if out < -limit {
		out = -limit
	}
	clamped = current + out
	return unclamped, clamped
}

// ESC applies RPMRefP with fixed gains and reports the rate-limited result.
type ESC struct {
	MaxDeltaRPMps float64
	Kp            float64
}

func NewESC(maxDelta, kp float64) *ESC {
	return &ESC{MaxDeltaRPMps: maxDelta, Kp: kp}
}

func (e *ESC) Shape(ref, current, dt float64) float64 {
	if dt <= 0 {
		return current
	}
	_, clamped := RPMRefP(ref, current, e.MaxDeltaRPMps, e.Kp, dt)
	return clamped
}
