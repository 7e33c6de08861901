package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation and parameter handling.
var (
	// ErrNonConvergence indicates the integrator failed to produce a finite
	// trajectory. The whole run is discarded; no partial results are kept.
	ErrNonConvergence = errors.New("dynamo: integrator failed to converge")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrRunInFlight indicates a run request while another run is active.
	ErrRunInFlight = errors.New("dynamo: a simulation run is already in flight")

	// ErrStepTooSmall indicates the adaptive timestep collapsed below minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrSchemaVersion indicates a parameter file with an unsupported schema tag.
	ErrSchemaVersion = errors.New("dynamo: unsupported parameter schema version")

	// ErrMissingField indicates a parameter file missing a required key.
	ErrMissingField = errors.New("dynamo: parameter set missing required field")
)

// SimulationError wraps a run failure with step context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
