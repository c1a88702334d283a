// Package dynamo provides the shared primitives of the drone simulator.
//
// The package defines the types used between the physics models, the
// integrators and the simulation driver:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [Hamiltonian]: optional mechanical energy of a system
//   - [Configurable]: runtime parameter access used by config and the CLI
//
// # Example
//
//	dyn := physics.NewVertical(1.2, 9.81, 0.3)
//	integ := integrators.NewSymplecticEuler()
//	x = integ.Step(dyn, x, dynamo.Control{thrust}, t, dt)
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent mutation. Parallel runs must
// give every simulated drone its own state graph.
package dynamo
