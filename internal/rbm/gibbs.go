package rbm

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// GibbsSampler draws configurations from the model distribution by block
// Gibbs sampling between the visible and hidden layers.
//
// One Gibbs step samples the full hidden layer conditioned on the visible
// layer and then the full visible layer conditioned on the hidden layer;
// rows of a batch evolve independently. Contrastive divergence training
// uses a short chain (k steps) started from the data batch.
//
// All randomness comes from the *rand.Rand supplied at construction, so a
// seeded source makes sampling fully reproducible.
type GibbsSampler struct {
	model *BinaryRBM
	rng   *rand.Rand
}

// NewGibbsSampler creates a sampler bound to a model and a random source.
func NewGibbsSampler(model *BinaryRBM, rng *rand.Rand) *GibbsSampler {
	return &GibbsSampler{model: model, rng: rng}
}

// Sample runs k Gibbs steps from a batch of visible configurations and
// returns the resulting batch. The input is never modified.
//
// k == 0 is the identity: a copy of the input is returned without touching
// the random source. k < 0 is ErrInvalidArgument. A batch whose column
// count differs from the model's visible layer is a ShapeError.
func (s *GibbsSampler) Sample(batch *mat.Dense, k int) (*mat.Dense, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: gibbs steps k must be >= 0, got %d", ErrInvalidArgument, k)
	}
	rows, cols := batch.Dims()
	if cols != s.model.NumVisible() {
		return nil, &ShapeError{
			Op:   "Sample",
			Want: fmt.Sprintf("batch with %d columns", s.model.NumVisible()),
			Got:  fmt.Sprintf("%d columns", cols),
		}
	}

	visible := mat.NewDense(rows, cols, nil)
	visible.Copy(batch)

	for step := 0; step < k; step++ {
		hidden := s.bernoulli(s.model.HiddenProbabilities(visible))
		visible = s.bernoulli(s.model.VisibleProbabilities(hidden))
	}
	return visible, nil
}

// SampleHidden draws one hidden-layer sample conditioned on a visible
// batch. Exposed for callers that need the hidden states themselves
// (e.g., inspecting learned features); training uses the mean activations
// instead.
func (s *GibbsSampler) SampleHidden(visible *mat.Dense) (*mat.Dense, error) {
	_, cols := visible.Dims()
	if cols != s.model.NumVisible() {
		return nil, &ShapeError{
			Op:   "SampleHidden",
			Want: fmt.Sprintf("batch with %d columns", s.model.NumVisible()),
			Got:  fmt.Sprintf("%d columns", cols),
		}
	}
	return s.bernoulli(s.model.HiddenProbabilities(visible)), nil
}

// bernoulli samples a binary matrix elementwise from success probabilities.
func (s *GibbsSampler) bernoulli(probs *mat.Dense) *mat.Dense {
	rows, cols := probs.Dims()
	sample := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if s.rng.Float64() < probs.At(i, j) {
				sample.Set(i, j, 1)
			}
		}
	}
	return sample
}
