package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParam indicates a Configurable was asked for a parameter it does not have.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrUnknownComponent indicates a registry lookup for an unregistered name.
	ErrUnknownComponent = errors.New("dynamo: unknown component")
)

// SimError wraps an error with simulation context.
type SimError struct {
	Time    float64
	Step    int
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error {
	return e.Wrapped
}
