package sim

import "errors"

// Domain errors for simulation operations.
var (
	// ErrUnstable indicates the integration diverged (NaN or Inf state).
	ErrUnstable = errors.New("sim: simulation unstable (state diverged)")

	// ErrUnknownParameter indicates a parameter name not recognized by
	// a Configurable.
	ErrUnknownParameter = errors.New("sim: unknown parameter")

	// ErrInvalidStep indicates a non-positive step size.
	ErrInvalidStep = errors.New("sim: step size must be positive")
)
