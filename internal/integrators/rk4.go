package integrators

import "github.com/san-kum/virtdrone/internal/dynamo"

// RK4 is classic fourth-order Runge-Kutta. The control (rotor thrust) is held
// for the whole tick, since motors only update once per tick.
type RK4 struct {
	k     [4]dynamo.State
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

// at fills the stage buffer with x + h*k and returns it.
func (r *RK4) at(x dynamo.State, h float64, k dynamo.State) dynamo.State {
	for i := range x {
		r.stage[i] = x[i] + h*k[i]
	}
	return r.stage
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	if len(r.stage) != n {
		r.stage = make(dynamo.State, n)
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
	}

	// Derive may return a shared slice, so every slope is copied out.
	copy(r.k[0], dyn.Derive(x, u, t))
	copy(r.k[1], dyn.Derive(r.at(x, dt/2, r.k[0]), u, t+dt/2))
	copy(r.k[2], dyn.Derive(r.at(x, dt/2, r.k[1]), u, t+dt/2))
	copy(r.k[3], dyn.Derive(r.at(x, dt, r.k[2]), u, t+dt))

	next := make(dynamo.State, n)
	for i := range next {
		next[i] = x[i] + dt/6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return next
}
