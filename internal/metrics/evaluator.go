// Package metrics implements periodic metric evaluation during training.
//
// An Evaluator is a training callback: every period epochs it runs a set
// of named metric functions against the live (read-only) model and appends
// each result to that metric's series. The recorded series are what a
// caller plots after training.
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tomo-ml/tomo/internal/rbm"
)

// Func evaluates one scalar metric against the current model state.
//
// The model is handed over as a read-only view; the options carry whatever
// reference data the metric needs (target wavefunction, enumerated space,
// held-out samples). A returned error aborts training.
type Func func(view rbm.View, opts Options) (float64, error)

// Options is the configuration forwarded to every metric function call.
//
// Fields are optional; each metric documents what it requires. The space
// is supplied by the caller (enumerated once, reused) because building it
// is exponential in the number of sites.
type Options struct {
	// Target is the reference wavefunction's amplitude over the Hilbert
	// space, in enumeration order. Need not be normalized. Used only for
	// evaluation, never for training.
	Target *mat.VecDense

	// Space is the enumerated Hilbert space of the model's visible layer.
	Space *mat.Dense

	// Samples is a held-out set of configurations for data-driven metrics
	// such as the negative log-likelihood.
	Samples *mat.Dense
}

// Metric pairs a name with its evaluation function. Evaluators preserve
// the order in which metrics are given.
type Metric struct {
	Name string
	Func Func
}

// Evaluator records named metric series at a fixed epoch period.
//
// It implements the trainer's Callback interface. Results are kept in an
// insertion-ordered mapping: Names returns the metrics in registration
// order, Get looks a series up by name, and both views are backed by the
// same recorded data.
type Evaluator struct {
	period  int
	metrics []Metric
	lookup  map[string]int
	opts    Options

	epochs []int
	series map[string][]float64
}

// NewEvaluator creates an evaluator that runs every period epochs.
//
// The metric order is preserved in all ordered accessors. period <= 0 and
// duplicate metric names are ErrInvalidArgument.
func NewEvaluator(period int, metrics []Metric, opts Options) (*Evaluator, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive, got %d", rbm.ErrInvalidArgument, period)
	}

	lookup := make(map[string]int, len(metrics))
	series := make(map[string][]float64, len(metrics))
	for i, m := range metrics {
		if _, exists := lookup[m.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate metric %q", rbm.ErrInvalidArgument, m.Name)
		}
		lookup[m.Name] = i
		series[m.Name] = nil
	}

	return &Evaluator{
		period:  period,
		metrics: metrics,
		lookup:  lookup,
		opts:    opts,
		series:  series,
	}, nil
}

// OnEpochEnd evaluates all metrics if epoch is a multiple of the period.
//
// Failures are not retried: the first metric error is wrapped in an
// EvaluatorError and returned, which the trainer treats as fatal.
func (e *Evaluator) OnEpochEnd(view rbm.View, epoch int) error {
	if epoch%e.period != 0 {
		return nil
	}

	for _, m := range e.metrics {
		value, err := m.Func(view, e.opts)
		if err != nil {
			return &rbm.EvaluatorError{Metric: m.Name, Err: err}
		}
		e.series[m.Name] = append(e.series[m.Name], value)
	}
	e.epochs = append(e.epochs, epoch)
	return nil
}

// Period returns the evaluation period in epochs.
func (e *Evaluator) Period() int { return e.period }

// Names returns the metric names in registration order.
func (e *Evaluator) Names() []string {
	names := make([]string, len(e.metrics))
	for i, m := range e.metrics {
		names[i] = m.Name
	}
	return names
}

// Get returns the recorded series for a metric by name.
//
// The returned slice is a copy; recorded history is append-only. Unknown
// names return nil.
func (e *Evaluator) Get(name string) []float64 {
	recorded, ok := e.series[name]
	if !ok {
		return nil
	}
	out := make([]float64, len(recorded))
	copy(out, recorded)
	return out
}

// Last returns the most recent value of a metric.
func (e *Evaluator) Last(name string) (float64, error) {
	recorded, ok := e.series[name]
	if !ok {
		return 0, fmt.Errorf("unknown metric %q", name)
	}
	if len(recorded) == 0 {
		return 0, fmt.Errorf("metric %q has no recorded values", name)
	}
	return recorded[len(recorded)-1], nil
}

// Epochs returns the epochs at which evaluations were recorded.
func (e *Evaluator) Epochs() []int {
	out := make([]int, len(e.epochs))
	copy(out, e.epochs)
	return out
}

// Len returns the number of recorded evaluations.
func (e *Evaluator) Len() int { return len(e.epochs) }
