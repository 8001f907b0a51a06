// Package rbm implements the positive-real wavefunction model used for
// quantum state tomography.
//
// The model is a Restricted Boltzmann Machine over binary visible units
// (one per physical site) and binary hidden units. Its unnormalized
// amplitude for a configuration v is
//
//	psi(v) = exp(-E(v) / 2)
//
// where E is the effective visible energy obtained by tracing out the
// hidden layer. Amplitudes are therefore strictly positive, which is the
// defining property of this wavefunction class: it can represent any state
// whose amplitudes are real and non-negative in the computational basis.
//
// The package also provides the block Gibbs sampler used for contrastive
// divergence training (see gibbs.go) and parameter persistence (see
// persist.go). Parameters are mutated only by the trainer; callbacks
// receive the model through the read-only View interface.
package rbm

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/tomo-ml/tomo/internal/hilbert"
)

// View is the read-only handle to a wavefunction model.
//
// Metric callbacks receive a View during training: everything needed to
// evaluate amplitudes and probabilities, nothing that can mutate the
// parameter set mid-epoch.
type View interface {
	// NumVisible returns the number of visible units (physical sites).
	NumVisible() int

	// NumHidden returns the number of hidden units.
	NumHidden() int

	// EffectiveEnergy returns the visible-layer energy of a configuration
	// with the hidden layer traced out.
	EffectiveEnergy(config mat.Vector) float64

	// Amplitude returns the unnormalized model amplitude exp(-E/2).
	Amplitude(config mat.Vector) float64

	// Normalization sums the squared amplitudes over the supplied space.
	Normalization(space *mat.Dense) (float64, error)

	// Probability returns Amplitude(config)^2 / normalization.
	Probability(config mat.Vector, normalization float64) float64

	// HilbertSpace enumerates all configurations of the visible layer.
	HilbertSpace() (*mat.Dense, error)
}

// BinaryRBM is a Restricted Boltzmann Machine with binary units on both
// layers, parameterizing a positive-real wavefunction.
//
// The parameter set consists of:
//   - weights: (numHidden x numVisible) coupling matrix
//   - visibleBias: (numVisible) bias vector
//   - hiddenBias: (numHidden) bias vector
//
// All parameters are float64. Construction initializes weights from a
// scaled Gaussian and biases to zero; the random source is supplied by the
// caller so that runs are reproducible.
type BinaryRBM struct {
	numVisible int
	numHidden  int

	weights     *mat.Dense
	visibleBias *mat.VecDense
	hiddenBias  *mat.VecDense
}

// New creates a BinaryRBM with Gaussian-initialized weights.
//
// Weights are drawn from N(0, 1/numVisible); biases start at zero. The
// supplied random source is used only during construction, so the same
// seed yields the same initial parameter set.
func New(numVisible, numHidden int, rng *rand.Rand) (*BinaryRBM, error) {
	if numVisible <= 0 || numHidden <= 0 {
		return nil, fmt.Errorf("%w: layer sizes must be positive, got visible=%d hidden=%d",
			ErrInvalidArgument, numVisible, numHidden)
	}

	weights := mat.NewDense(numHidden, numVisible, nil)
	scale := 1.0 / math.Sqrt(float64(numVisible))
	for i := 0; i < numHidden; i++ {
		for j := 0; j < numVisible; j++ {
			weights.Set(i, j, rng.NormFloat64()*scale)
		}
	}

	return &BinaryRBM{
		numVisible:  numVisible,
		numHidden:   numHidden,
		weights:     weights,
		visibleBias: mat.NewVecDense(numVisible, nil),
		hiddenBias:  mat.NewVecDense(numHidden, nil),
	}, nil
}

// NumVisible returns the number of visible units.
func (m *BinaryRBM) NumVisible() int { return m.numVisible }

// NumHidden returns the number of hidden units.
func (m *BinaryRBM) NumHidden() int { return m.numHidden }

// Weights returns the live weight matrix. Mutating it changes the model;
// only the trainer should do so.
func (m *BinaryRBM) Weights() *mat.Dense { return m.weights }

// VisibleBias returns the live visible bias vector.
func (m *BinaryRBM) VisibleBias() *mat.VecDense { return m.visibleBias }

// HiddenBias returns the live hidden bias vector.
func (m *BinaryRBM) HiddenBias() *mat.VecDense { return m.hiddenBias }

// SetParameters replaces the parameter set, copying the inputs.
//
// Returns a ShapeError if any input does not match the model's layer
// sizes. Used by Load and by tests that need a known parameter set.
func (m *BinaryRBM) SetParameters(weights *mat.Dense, visibleBias, hiddenBias *mat.VecDense) error {
	if r, c := weights.Dims(); r != m.numHidden || c != m.numVisible {
		return &ShapeError{
			Op:   "SetParameters",
			Want: fmt.Sprintf("weights (%d x %d)", m.numHidden, m.numVisible),
			Got:  fmt.Sprintf("(%d x %d)", r, c),
		}
	}
	if visibleBias.Len() != m.numVisible {
		return &ShapeError{
			Op:   "SetParameters",
			Want: fmt.Sprintf("visible_bias (%d)", m.numVisible),
			Got:  fmt.Sprintf("(%d)", visibleBias.Len()),
		}
	}
	if hiddenBias.Len() != m.numHidden {
		return &ShapeError{
			Op:   "SetParameters",
			Want: fmt.Sprintf("hidden_bias (%d)", m.numHidden),
			Got:  fmt.Sprintf("(%d)", hiddenBias.Len()),
		}
	}

	m.weights.Copy(weights)
	m.visibleBias.CopyVec(visibleBias)
	m.hiddenBias.CopyVec(hiddenBias)
	return nil
}

// EffectiveEnergy computes the visible-layer energy with the hidden layer
// traced out:
//
//	E(v) = -(b . v) - sum_j softplus(c_j + W_j . v)
//
// The softplus form comes from summing the hidden units analytically, so
// no sampling is involved.
func (m *BinaryRBM) EffectiveEnergy(config mat.Vector) float64 {
	energy := -mat.Dot(m.visibleBias, config)

	var pre mat.VecDense
	pre.MulVec(m.weights, config)
	pre.AddVec(&pre, m.hiddenBias)

	for j := 0; j < m.numHidden; j++ {
		energy -= softplus(pre.AtVec(j))
	}
	return energy
}

// Amplitude returns the unnormalized amplitude exp(-E(config)/2).
//
// Deterministic given the current parameters; strictly positive for any
// finite parameter set.
func (m *BinaryRBM) Amplitude(config mat.Vector) float64 {
	return math.Exp(-m.EffectiveEnergy(config) / 2)
}

// Normalization returns the sum of squared amplitudes over the supplied
// Hilbert space.
//
// The space must have one column per visible unit and exactly 2^numVisible
// rows; anything else is a ShapeError or ErrInvalidArgument respectively.
// A non-finite sum is reported as a NumericDivergenceError.
func (m *BinaryRBM) Normalization(space *mat.Dense) (float64, error) {
	rows, cols := space.Dims()
	if cols != m.numVisible {
		return 0, &ShapeError{
			Op:   "Normalization",
			Want: fmt.Sprintf("space with %d columns", m.numVisible),
			Got:  fmt.Sprintf("%d columns", cols),
		}
	}
	if rows != hilbert.Dim(m.numVisible) {
		return 0, fmt.Errorf("%w: space has %d rows, want 2^%d = %d",
			ErrInvalidArgument, rows, m.numVisible, hilbert.Dim(m.numVisible))
	}

	var z float64
	for i := 0; i < rows; i++ {
		z += math.Exp(-m.EffectiveEnergy(space.RowView(i)))
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, &NumericDivergenceError{Tensor: "normalization"}
	}
	return z, nil
}

// Probability returns |Amplitude(config)|^2 / normalization.
//
// The normalization is supplied by the caller (computed once via
// Normalization and reused) because recomputing it is exponential in the
// number of visible units.
func (m *BinaryRBM) Probability(config mat.Vector, normalization float64) float64 {
	return math.Exp(-m.EffectiveEnergy(config)) / normalization
}

// HilbertSpace enumerates all 2^numVisible configurations of the visible
// layer in the package-wide stable order.
//
// Cost and memory are exponential in the number of visible units; the
// enumeration cap in the hilbert package applies.
func (m *BinaryRBM) HilbertSpace() (*mat.Dense, error) {
	return hilbert.Enumerate(m.numVisible)
}

// HiddenProbabilities computes p(h_j = 1 | v) = sigmoid(c_j + W_j . v) for
// every row of a visible batch. Input is (batch x numVisible), output is
// (batch x numHidden).
func (m *BinaryRBM) HiddenProbabilities(visible *mat.Dense) *mat.Dense {
	batch, _ := visible.Dims()
	probs := mat.NewDense(batch, m.numHidden, nil)
	probs.Mul(visible, m.weights.T())
	probs.Apply(func(i, j int, v float64) float64 {
		return sigmoid(v + m.hiddenBias.AtVec(j))
	}, probs)
	return probs
}

// VisibleProbabilities computes p(v_i = 1 | h) = sigmoid(b_i + h . W_i)
// for every row of a hidden batch. Input is (batch x numHidden), output is
// (batch x numVisible).
func (m *BinaryRBM) VisibleProbabilities(hidden *mat.Dense) *mat.Dense {
	batch, _ := hidden.Dims()
	probs := mat.NewDense(batch, m.numVisible, nil)
	probs.Mul(hidden, m.weights)
	probs.Apply(func(i, j int, v float64) float64 {
		return sigmoid(v + m.visibleBias.AtVec(j))
	}, probs)
	return probs
}

// CheckFinite scans the parameter set for NaN or Inf values.
//
// Returns a NumericDivergenceError naming the first offending tensor, with
// the supplied epoch for context. The trainer calls this at the end of
// every epoch.
func (m *BinaryRBM) CheckFinite(epoch int) error {
	if !allFinite(m.weights.RawMatrix().Data) {
		return &NumericDivergenceError{Tensor: "weights", Epoch: epoch}
	}
	if !allFinite(m.visibleBias.RawVector().Data) {
		return &NumericDivergenceError{Tensor: "visible_bias", Epoch: epoch}
	}
	if !allFinite(m.hiddenBias.RawVector().Data) {
		return &NumericDivergenceError{Tensor: "hidden_bias", Epoch: epoch}
	}
	return nil
}

func allFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// softplus computes log(1 + exp(x)) without overflowing for large x.
func softplus(x float64) float64 {
	if x > 30 {
		// exp(-x) is below float64 resolution of log1p; softplus(x) ~= x.
		return x
	}
	return math.Log1p(math.Exp(x))
}

// sigmoid computes 1 / (1 + exp(-x)).
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
