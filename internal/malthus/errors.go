package malthus

import (
	"errors"
	"fmt"
)

// Domain errors for model operations.
var (
	// ErrInvalidParameter indicates a parameter or state value outside its valid domain.
	ErrInvalidParameter = errors.New("malthus: invalid parameter")

	// ErrUnknownParameter indicates a parameter name that does not exist.
	ErrUnknownParameter = errors.New("malthus: unknown parameter")

	// ErrNonConvergence indicates Equilibrium ran out of iterations undecided.
	ErrNonConvergence = errors.New("malthus: equilibrium did not converge")

	// ErrDuplicateValue indicates a sweep value supplied more than once.
	ErrDuplicateValue = errors.New("malthus: duplicate sweep value")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...)
}

// ConvergenceError carries the state Equilibrium stopped at.
type ConvergenceError struct {
	Iterations int
	Last       State
	Income     float64
	// Overflow is set when the next state would leave float64 range.
	Overflow bool
}

func (e *ConvergenceError) Error() string {
	if e.Overflow {
		return fmt.Sprintf("%s: state overflow after %d iterations (t=%d, y=%.6g)", ErrNonConvergence, e.Iterations, e.Last.T, e.Income)
	}
	return fmt.Sprintf("%s after %d iterations (t=%d, y=%.6g)", ErrNonConvergence, e.Iterations, e.Last.T, e.Income)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrNonConvergence
}
