// Package train implements the contrastive-divergence fit loop for
// wavefunction models.
//
// Training maximizes the log-likelihood of the measurement data under the
// model distribution |psi(v)|^2. Exact likelihood gradients need model
// expectations that are exponential to compute, so the negative phase is
// estimated with a short block Gibbs chain (CD-k): each minibatch seeds a
// chain from its own rows and runs k Gibbs steps. Setting
// FitConfig.Persistent keeps the chain alive across minibatches and epochs
// (persistent contrastive divergence) instead.
//
// The loop is single-threaded and synchronous: one parameter set, mutated
// only here, with callbacks receiving a read-only view after each epoch.
package train

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tomo-ml/tomo/internal/optim"
	"github.com/tomo-ml/tomo/internal/rbm"
)

// Parameter names used for optimizer gradient maps.
const (
	paramWeights     = "weights"
	paramVisibleBias = "visible_bias"
	paramHiddenBias  = "hidden_bias"
)

// Callback is invoked after each training epoch with a read-only view of
// the model. Returning an error aborts training.
type Callback interface {
	OnEpochEnd(view rbm.View, epoch int) error
}

// FitConfig holds hyperparameters for one Fit call.
//
// Use DefaultFitConfig for the standard starting point; Fit validates
// every field strictly, so a zero batch size is an error rather than a
// silent default.
type FitConfig struct {
	Epochs       int     // Number of passes over the training data
	PosBatchSize int     // Positive-phase (data) minibatch size
	NegBatchSize int     // Negative-phase (Gibbs) batch size
	K            int     // Gibbs steps per negative-phase sample, >= 1
	LR           float64 // Learning rate for the default optimizer

	// Callbacks run after every epoch, in order. A metrics.Evaluator is
	// the usual entry.
	Callbacks []Callback

	// Optimizer overrides the default plain SGD. The optimizer must have
	// been constructed over this trainer's model parameters (see Params).
	Optimizer optim.Optimizer

	// Persistent switches from CD (chain restarts from each positive
	// batch) to PCD (one chain carried across minibatches and epochs).
	Persistent bool

	// Time logs the elapsed wall-clock duration when training completes.
	Time bool
}

// DefaultFitConfig returns the standard hyperparameters: 100 epochs,
// batch sizes of 100, CD-1, learning rate 1e-3.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		Epochs:       100,
		PosBatchSize: 100,
		NegBatchSize: 100,
		K:            1,
		LR:           0.001,
	}
}

// Trainer drives contrastive-divergence training of a single model.
//
// All randomness (Gibbs sampling, epoch shuffling) comes from the random
// source supplied at construction.
type Trainer struct {
	model   *rbm.BinaryRBM
	sampler *rbm.GibbsSampler
	rng     *rand.Rand
	elapsed time.Duration
}

// NewTrainer creates a trainer for the given model and random source.
func NewTrainer(model *rbm.BinaryRBM, rng *rand.Rand) *Trainer {
	return &Trainer{
		model:   model,
		sampler: rbm.NewGibbsSampler(model, rng),
		rng:     rng,
	}
}

// Params returns optimizer views over the model's parameter tensors, for
// callers constructing their own optimizer.
func (t *Trainer) Params() []optim.Param {
	return []optim.Param{
		{Name: paramWeights, Data: t.model.Weights().RawMatrix().Data},
		{Name: paramVisibleBias, Data: t.model.VisibleBias().RawVector().Data},
		{Name: paramHiddenBias, Data: t.model.HiddenBias().RawVector().Data},
	}
}

// Fit trains the model on a matrix of measurement outcomes, one binary
// configuration per row.
//
// The model parameters are mutated in place. On error the parameters are
// left in the state reached by the last completed update; there is no
// rollback. Configuration problems are reported before any epoch runs.
func (t *Trainer) Fit(data *mat.Dense, config FitConfig) error {
	if err := t.validate(data, config); err != nil {
		return err
	}

	opt := config.Optimizer
	if opt == nil {
		opt = optim.NewSGD(t.Params(), optim.SGDConfig{LR: config.LR})
	}

	numSamples, _ := data.Dims()
	start := time.Now()

	// Persistent chain state for PCD; nil until seeded.
	var chain *mat.Dense

	for epoch := 1; epoch <= config.Epochs; epoch++ {
		perm := t.rng.Perm(numSamples)

		for lo := 0; lo < numSamples; lo += config.PosBatchSize {
			hi := lo + config.PosBatchSize
			if hi > numSamples {
				hi = numSamples
			}
			posBatch := gatherRows(data, perm[lo:hi])

			negSeed := chain
			if negSeed == nil {
				negSeed = resampleRows(posBatch, config.NegBatchSize)
			}
			negBatch, err := t.sampler.Sample(negSeed, config.K)
			if err != nil {
				return err
			}
			if config.Persistent {
				chain = negBatch
			}

			if err := opt.Step(t.gradients(posBatch, negBatch)); err != nil {
				return err
			}
		}

		if err := t.model.CheckFinite(epoch); err != nil {
			return err
		}
		for _, cb := range config.Callbacks {
			if err := cb.OnEpochEnd(t.model, epoch); err != nil {
				return fmt.Errorf("epoch %d: %w", epoch, err)
			}
		}
	}

	t.elapsed = time.Since(start)
	if config.Time {
		log.Printf("training completed in %s", t.elapsed)
	}
	return nil
}

// Elapsed returns the wall-clock duration of the last completed Fit.
func (t *Trainer) Elapsed() time.Duration { return t.elapsed }

// validate checks data and hyperparameters before the first epoch.
func (t *Trainer) validate(data *mat.Dense, config FitConfig) error {
	numSamples, numCols := data.Dims()
	if numCols != t.model.NumVisible() {
		return &rbm.ShapeError{
			Op:   "Fit",
			Want: fmt.Sprintf("data with %d columns", t.model.NumVisible()),
			Got:  fmt.Sprintf("%d columns", numCols),
		}
	}
	if numSamples == 0 {
		return fmt.Errorf("%w: training data is empty", rbm.ErrInvalidArgument)
	}
	if config.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be positive, got %d", rbm.ErrInvalidArgument, config.Epochs)
	}
	if config.PosBatchSize <= 0 {
		return fmt.Errorf("%w: positive batch size must be positive, got %d",
			rbm.ErrInvalidArgument, config.PosBatchSize)
	}
	if config.NegBatchSize <= 0 {
		return fmt.Errorf("%w: negative batch size must be positive, got %d",
			rbm.ErrInvalidArgument, config.NegBatchSize)
	}
	if config.K < 1 {
		return fmt.Errorf("%w: gibbs steps k must be >= 1, got %d", rbm.ErrInvalidArgument, config.K)
	}
	if config.Optimizer == nil && config.LR <= 0 {
		return fmt.Errorf("%w: learning rate must be positive, got %g", rbm.ErrInvalidArgument, config.LR)
	}
	return nil
}

// gradients estimates the negative log-likelihood gradient as the
// difference of sufficient statistics between the negative (model) and
// positive (data) phases, each averaged over its batch.
func (t *Trainer) gradients(pos, neg *mat.Dense) map[string][]float64 {
	posRows, _ := pos.Dims()
	negRows, _ := neg.Dims()
	numHidden := t.model.NumHidden()
	numVisible := t.model.NumVisible()

	phPos := t.model.HiddenProbabilities(pos)
	phNeg := t.model.HiddenProbabilities(neg)

	// Weight gradient: <p(h|v) v^T>_model - <p(h|v) v^T>_data.
	var gradW mat.Dense
	gradW.Mul(phNeg.T(), neg)
	gradW.Scale(1/float64(negRows), &gradW)

	var posStat mat.Dense
	posStat.Mul(phPos.T(), pos)
	posStat.Scale(1/float64(posRows), &posStat)
	gradW.Sub(&gradW, &posStat)

	// Bias gradients: column means of the phase statistics.
	gradVisible := make([]float64, numVisible)
	addColMeans(gradVisible, neg, 1/float64(negRows))
	addColMeans(gradVisible, pos, -1/float64(posRows))

	gradHidden := make([]float64, numHidden)
	addColMeans(gradHidden, phNeg, 1/float64(negRows))
	addColMeans(gradHidden, phPos, -1/float64(posRows))

	return map[string][]float64{
		paramWeights:     gradW.RawMatrix().Data,
		paramVisibleBias: gradVisible,
		paramHiddenBias:  gradHidden,
	}
}

// addColMeans accumulates scale * column-sums of m into dst.
func addColMeans(dst []float64, m *mat.Dense, scale float64) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[j] += scale * m.At(i, j)
		}
	}
}

// gatherRows builds a batch from the given row indices of data.
func gatherRows(data *mat.Dense, indices []int) *mat.Dense {
	_, cols := data.Dims()
	batch := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		batch.SetRow(i, data.RawRowView(idx))
	}
	return batch
}

// resampleRows sizes a seed batch for the negative phase, cycling through
// the positive batch rows when the negative batch is larger.
func resampleRows(batch *mat.Dense, size int) *mat.Dense {
	rows, cols := batch.Dims()
	if rows == size {
		return batch
	}
	out := mat.NewDense(size, cols, nil)
	for i := 0; i < size; i++ {
		out.SetRow(i, batch.RawRowView(i%rows))
	}
	return out
}
