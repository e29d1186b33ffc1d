package dispatch

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
)

// Validation errors block a dispatch before any network I/O.
var (
	ErrValidation      = errors.New("validation failed")
	ErrMissingAddress  = fmt.Errorf("%w: contract address is required", ErrValidation)
	ErrInvalidAddress  = fmt.Errorf("%w: contract address is invalid", ErrValidation)
	ErrNoChainSelected = fmt.Errorf("%w: no chain selected", ErrValidation)
	ErrNoSigner        = fmt.Errorf("%w: a connected account is required for non-view functions", ErrValidation)
)

// Transport errors are surfaced as-is and never retried.
var (
	ErrTransport   = errors.New("transport error")
	ErrCall        = fmt.Errorf("%w: call failed", ErrTransport)
	ErrSimulation  = fmt.Errorf("%w: simulation failed", ErrTransport)
	ErrTransaction = fmt.Errorf("%w: transaction failed", ErrTransport)
)

// SimulationError is a simulation the node rejected. Reason carries the
// revert reason when the node supplied one.
type SimulationError struct {
	Reason string
	Err    error
}

func (e *SimulationError) Error() string {
	if e.Reason == "" {
		return ErrSimulation.Error()
	}
	return ErrSimulation.Error() + ": " + e.Reason
}

func (e *SimulationError) Unwrap() []error { return []error{ErrSimulation, e.Err} }

func simulationError(err error) *SimulationError {
	var re *chain.RevertError
	if errors.As(err, &re) {
		return &SimulationError{Reason: re.Reason, Err: err}
	}
	return &SimulationError{Reason: err.Error(), Err: err}
}
