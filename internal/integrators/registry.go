package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/virtdrone/internal/dynamo"
)

// Default is the integrator that reproduces the reference vertical update
// velocity += a*dt; altitude += velocity*dt.
const Default = "symplectic"

var registry = map[string]func() dynamo.Integrator{
	"euler":      func() dynamo.Integrator { return NewEuler() },
	"symplectic": func() dynamo.Integrator { return NewSymplecticEuler() },
	"rk4":        func() dynamo.Integrator { return NewRK4() },
	"verlet":     func() dynamo.Integrator { return NewVerlet() },
	"leapfrog":   func() dynamo.Integrator { return NewLeapfrog() },
}

// New returns a fresh integrator by name. Integrators keep scratch buffers,
// so each simulation needs its own.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("integrator %q: %w", name, dynamo.ErrUnknownComponent)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
