package integrators

import "github.com/san-kum/virtdrone/internal/dynamo"

// Verlet is velocity Verlet for a [position..., velocity...] state. Drag
// makes the acceleration depend on velocity, so the closing acceleration is
// taken at the end position with the Euler-predicted end velocity. This keeps
// the scheme second order instead of collapsing to semi-implicit Euler.
type Verlet struct {
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}

	next := make(dynamo.State, n)
	a0 := dyn.Derive(x, u, t)
	for i := 0; i < half; i++ {
		next[i] = x[i] + x[half+i]*dt + 0.5*a0[half+i]*dt*dt
		v.scratch[i] = next[i]
		v.scratch[half+i] = x[half+i] + a0[half+i]*dt
	}

	a1 := dyn.Derive(v.scratch, u, t+dt)
	for i := 0; i < half; i++ {
		next[half+i] = x[half+i] + 0.5*(a0[half+i]+a1[half+i])*dt
	}
	return next
}

// Leapfrog is kick-drift-kick. The closing half kick evaluates the
// acceleration at a velocity predicted from the drifted position.
type Leapfrog struct {
	scratch dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(l.scratch) != n {
		l.scratch = make(dynamo.State, n)
	}
	halfDt := 0.5 * dt

	next := make(dynamo.State, n)
	a0 := dyn.Derive(x, u, t)
	for i := 0; i < half; i++ {
		vHalf := x[half+i] + a0[half+i]*halfDt
		next[i] = x[i] + vHalf*dt
		next[half+i] = vHalf
		l.scratch[i] = next[i]
		l.scratch[half+i] = vHalf
	}

	// predict the end velocity, then kick with the acceleration there
	aMid := dyn.Derive(l.scratch, u, t+dt)
	for i := 0; i < half; i++ {
		l.scratch[half+i] = next[half+i] + aMid[half+i]*halfDt
	}
	a1 := dyn.Derive(l.scratch, u, t+dt)
	for i := 0; i < half; i++ {
		next[half+i] += a1[half+i] * halfDt
	}
	return next
}
