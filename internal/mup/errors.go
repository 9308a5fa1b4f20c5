package mup

import (
	"errors"
	"fmt"

	"github.com/born-ml/born-mup/internal/tensor"
)

// Common errors.
var (
	ErrSessionReuse        = errors.New("attempted to re-use mup session after learning rates were recorded")
	ErrSessionActive       = errors.New("mup session is already active")
	ErrNoActiveSession     = errors.New("parameter created outside of an active mup session")
	ErrMissingBaseShape    = errors.New("no base shape for parameter")
	ErrTooManyInfiniteDims = errors.New("at most two infinite dimensions supported")
	ErrEmptyRegistry       = errors.New("attempted to wrap optimizer before initializing network")
	ErrInvalidName         = errors.New("parameter name has no scope")
	ErrNoMupMeta           = errors.New("checkpoint carries no mup multipliers")
)

// DimensionError reports a parameter whose shape differs from its base shape
// in more than two dimensions.
type DimensionError struct {
	Param  string       // Full parameter name
	Base   tensor.Shape // Shape in the base model
	Actual tensor.Shape // Shape being created
	Count  int          // Number of differing dimensions
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: found %d in %s (base %v, actual %v)",
		ErrTooManyInfiniteDims, e.Count, e.Param, e.Base, e.Actual)
}

// Unwrap makes errors.Is(err, ErrTooManyInfiniteDims) hold.
func (e *DimensionError) Unwrap() error {
	return ErrTooManyInfiniteDims
}
