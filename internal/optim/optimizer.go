// Package optim implements gradient-based optimizers for wavefunction
// training.
//
// Optimizers operate on named parameter views: each Param aliases the
// backing storage of one model tensor (weights, visible bias, hidden
// bias), and Step applies an in-place update from a matching map of
// gradients. The trainer produces gradients of the negative
// log-likelihood, so every optimizer here is a descent method.
package optim

import "fmt"

// Param is a named view over a parameter tensor's backing storage.
//
// Data aliases the model's memory: updating it updates the model. The
// gonum raw-data accessors make this view cheap to construct.
type Param struct {
	Name string
	Data []float64
}

// Optimizer updates parameters from named gradients.
//
// Implementations keep any per-parameter state (momentum buffers, moment
// estimates) keyed by parameter name.
type Optimizer interface {
	// Step applies one update. Gradients are keyed by parameter name;
	// parameters without a gradient entry are skipped.
	Step(grads map[string][]float64) error

	// LR returns the current learning rate.
	LR() float64

	// SetLR updates the learning rate, for schedules.
	SetLR(lr float64)
}

// checkGrad validates that a gradient matches its parameter's length.
func checkGrad(p Param, grad []float64) error {
	if len(grad) != len(p.Data) {
		return fmt.Errorf("gradient length mismatch for %q: param has %d elements, gradient has %d",
			p.Name, len(p.Data), len(grad))
	}
	return nil
}
