package search

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers use errors.Is against these to distinguish
// the error kinds from spec, following the teacher's fmt.Errorf("...: %w")
// wrapping idiom (detector.go, fitsreader.go).
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStateViolation  = errors.New("state violation")
	ErrNotImplemented  = errors.New("not implemented")
	ErrOnAccelerator   = fmt.Errorf("%w: data is owned by the accelerator", ErrStateViolation)
	ErrNotPrepared     = fmt.Errorf("%w: psi/phi not prepared", ErrStateViolation)
	ErrNoAccelerator   = fmt.Errorf("%w: no accelerator kernel in this build", ErrNotImplemented)
)

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

func stateViolationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrStateViolation}, args...)...)
}
