package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomo-ml/tomo/internal/rbm"
)

// Errors returned by the built-in metrics when Options are incomplete.
var (
	ErrMissingTarget  = errors.New("metric requires a target wavefunction")
	ErrMissingSpace   = errors.New("metric requires an enumerated Hilbert space")
	ErrMissingSamples = errors.New("metric requires held-out samples")
)

// Fidelity computes the squared overlap between the model wavefunction and
// the target wavefunction:
//
//	F = |<target|model>|^2
//
// Both states are normalized internally, so the target amplitudes need not
// arrive normalized. Requires Options.Target and Options.Space.
func Fidelity(view rbm.View, opts Options) (float64, error) {
	if opts.Target == nil {
		return 0, ErrMissingTarget
	}
	space, err := metricSpace(view, opts)
	if err != nil {
		return 0, err
	}
	rows, _ := space.Dims()
	if opts.Target.Len() != rows {
		return 0, fmt.Errorf("target has %d amplitudes, space has %d configurations",
			opts.Target.Len(), rows)
	}

	z, err := view.Normalization(space)
	if err != nil {
		return 0, err
	}

	var overlap, targetNorm float64
	for i := 0; i < rows; i++ {
		t := opts.Target.AtVec(i)
		overlap += t * view.Amplitude(space.RowView(i))
		targetNorm += t * t
	}

	fidelity := overlap * overlap / (targetNorm * z)
	return fidelity, nil
}

// KLDivergence computes the Kullback-Leibler divergence between the target
// distribution and the model distribution over the Hilbert space:
//
//	KL(p_target || p_model) = sum_v p_target(v) * ln(p_target(v) / p_model(v))
//
// Configurations with zero target probability contribute nothing. Requires
// Options.Target and Options.Space.
func KLDivergence(view rbm.View, opts Options) (float64, error) {
	if opts.Target == nil {
		return 0, ErrMissingTarget
	}
	space, err := metricSpace(view, opts)
	if err != nil {
		return 0, err
	}
	rows, _ := space.Dims()
	if opts.Target.Len() != rows {
		return 0, fmt.Errorf("target has %d amplitudes, space has %d configurations",
			opts.Target.Len(), rows)
	}

	z, err := view.Normalization(space)
	if err != nil {
		return 0, err
	}

	targetProbs := make([]float64, rows)
	for i := 0; i < rows; i++ {
		t := opts.Target.AtVec(i)
		targetProbs[i] = t * t
	}
	targetNorm := floats.Sum(targetProbs)

	var kl float64
	for i := 0; i < rows; i++ {
		pt := targetProbs[i] / targetNorm
		if pt == 0 {
			continue
		}
		pm := view.Probability(space.RowView(i), z)
		kl += pt * math.Log(pt/pm)
	}
	return kl, nil
}

// NLL computes the mean negative log-likelihood of a held-out sample set
// under the model distribution. Requires Options.Samples and
// Options.Space.
func NLL(view rbm.View, opts Options) (float64, error) {
	if opts.Samples == nil {
		return 0, ErrMissingSamples
	}
	space, err := metricSpace(view, opts)
	if err != nil {
		return 0, err
	}

	z, err := view.Normalization(space)
	if err != nil {
		return 0, err
	}

	numSamples, _ := opts.Samples.Dims()
	if numSamples == 0 {
		return 0, ErrMissingSamples
	}

	var nll float64
	for i := 0; i < numSamples; i++ {
		nll -= math.Log(view.Probability(opts.Samples.RowView(i), z))
	}
	return nll / float64(numSamples), nil
}

// metricSpace returns the space from Options, enumerating it on demand as
// a fallback. Metrics run at most once per period, but enumeration is
// still exponential, so callers should pass a cached space.
func metricSpace(view rbm.View, opts Options) (*mat.Dense, error) {
	if opts.Space != nil {
		return opts.Space, nil
	}
	return view.HilbertSpace()
}
