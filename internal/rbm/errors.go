package rbm

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrInvalidArgument reports a malformed hyperparameter (non-positive
	// batch size, negative Gibbs step count, period <= 0).
	ErrInvalidArgument = errors.New("invalid argument")
)

// ShapeError reports mismatched dimensions between the model, a batch of
// configurations, a Hilbert space, or persisted parameters.
type ShapeError struct {
	Op   string // Operation that detected the mismatch (e.g., "Normalization")
	Want string // Expected shape
	Got  string // Actual shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %s, got %s", e.Op, e.Want, e.Got)
}

// NumericDivergenceError reports NaN or Inf detected in a parameter tensor
// or a computed normalization. It is fatal: training halts and the
// parameters are left in their last updated state.
type NumericDivergenceError struct {
	Tensor string // Name of the offending tensor ("weights", "normalization", ...)
	Epoch  int    // Epoch at which the corruption was detected (0 outside training)
}

// Error implements the error interface.
func (e *NumericDivergenceError) Error() string {
	if e.Epoch > 0 {
		return fmt.Sprintf("numeric divergence in %s at epoch %d", e.Tensor, e.Epoch)
	}
	return fmt.Sprintf("numeric divergence in %s", e.Tensor)
}

// EvaluatorError reports a failed user-supplied metric function. The
// trainer does not retry: the error propagates to the caller of Fit.
type EvaluatorError struct {
	Metric string // Name of the metric whose function failed
	Err    error  // Underlying failure
}

// Error implements the error interface.
func (e *EvaluatorError) Error() string {
	return fmt.Sprintf("metric %q failed: %v", e.Metric, e.Err)
}

// Unwrap returns the underlying failure.
func (e *EvaluatorError) Unwrap() error {
	return e.Err
}
