// Package wavefunction provides the public API for reconstructing quantum
// states from measurement data with RBM-based models.
//
// The package covers the full tomography workflow:
//   - PositiveWavefunction: positive-real RBM wavefunction model
//   - GibbsSampler: block Gibbs sampling for contrastive divergence
//   - Trainer / FitConfig: the stochastic gradient fit loop
//   - Enumerate: exact Hilbert-space enumeration for evaluation
//
// Example:
//
//	rng := rand.New(rand.NewPCG(1234, 0))
//	psi, _ := wavefunction.New(10, 10, rng)
//	trainer := wavefunction.NewTrainer(psi, rng)
//	cfg := wavefunction.DefaultFitConfig()
//	cfg.K = 10
//	if err := trainer.Fit(samples, cfg); err != nil {
//	    log.Fatal(err)
//	}
package wavefunction

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/tomo-ml/tomo/internal/hilbert"
	"github.com/tomo-ml/tomo/internal/optim"
	"github.com/tomo-ml/tomo/internal/rbm"
	"github.com/tomo-ml/tomo/internal/train"
)

// PositiveWavefunction is an RBM wavefunction with strictly positive real
// amplitudes.
type PositiveWavefunction = rbm.BinaryRBM

// View is the read-only model handle passed to training callbacks.
type View = rbm.View

// GibbsSampler draws negative-phase samples by block Gibbs sampling.
type GibbsSampler = rbm.GibbsSampler

// Trainer drives contrastive-divergence training.
type Trainer = train.Trainer

// FitConfig holds the hyperparameters of one Fit call.
type FitConfig = train.FitConfig

// Callback runs after each training epoch.
type Callback = train.Callback

// Error taxonomy.
type (
	// ShapeError reports mismatched tensor dimensions.
	ShapeError = rbm.ShapeError
	// NumericDivergenceError reports NaN/Inf parameters; fatal.
	NumericDivergenceError = rbm.NumericDivergenceError
	// EvaluatorError wraps a failed metric function.
	EvaluatorError = rbm.EvaluatorError
)

// ErrInvalidArgument reports malformed hyperparameters.
var ErrInvalidArgument = rbm.ErrInvalidArgument

// MaxSites is the enumeration cap on exact Hilbert-space operations.
const MaxSites = hilbert.MaxSites

// New creates a PositiveWavefunction with Gaussian-initialized weights
// drawn from the supplied random source.
func New(numVisible, numHidden int, rng *rand.Rand) (*PositiveWavefunction, error) {
	return rbm.New(numVisible, numHidden, rng)
}

// Load restores a persisted model from a .tomo file.
func Load(path string) (*PositiveWavefunction, error) {
	return rbm.Load(path)
}

// NewGibbsSampler creates a sampler bound to a model and random source.
func NewGibbsSampler(model *PositiveWavefunction, rng *rand.Rand) *GibbsSampler {
	return rbm.NewGibbsSampler(model, rng)
}

// NewTrainer creates a trainer for the given model and random source.
func NewTrainer(model *PositiveWavefunction, rng *rand.Rand) *Trainer {
	return train.NewTrainer(model, rng)
}

// DefaultFitConfig returns the standard training hyperparameters.
func DefaultFitConfig() FitConfig {
	return train.DefaultFitConfig()
}

// Enumerate generates all 2^numSites binary configurations in the stable
// integer-counting order. Exponential in numSites; see MaxSites.
func Enumerate(numSites int) (*mat.Dense, error) {
	return hilbert.Enumerate(numSites)
}

// Optimizers, re-exported for callers overriding FitConfig.Optimizer.
type (
	// Optimizer updates parameters from named gradients.
	Optimizer = optim.Optimizer
	// SGDConfig configures plain/momentum SGD.
	SGDConfig = optim.SGDConfig
	// AdamConfig configures the Adam optimizer.
	AdamConfig = optim.AdamConfig
)

// NewSGD creates an SGD optimizer over a trainer's parameters.
func NewSGD(t *Trainer, config SGDConfig) Optimizer {
	return optim.NewSGD(t.Params(), config)
}

// NewAdam creates an Adam optimizer over a trainer's parameters.
func NewAdam(t *Trainer, config AdamConfig) Optimizer {
	return optim.NewAdam(t.Params(), config)
}
