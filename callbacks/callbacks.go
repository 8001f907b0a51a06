// Package callbacks provides the public API for real-time metric
// evaluation during training.
//
// A MetricEvaluator is registered on FitConfig.Callbacks; every period
// epochs it evaluates its metric functions against the live model and
// records the results as named series for later inspection or plotting.
//
// Example:
//
//	evaluator, _ := callbacks.NewMetricEvaluator(10,
//	    []callbacks.Metric{
//	        {Name: "Fidelity", Func: callbacks.Fidelity},
//	        {Name: "KL", Func: callbacks.KLDivergence},
//	    },
//	    callbacks.Options{Target: psiTrue, Space: space},
//	)
//	cfg.Callbacks = []wavefunction.Callback{evaluator}
package callbacks

import (
	"github.com/tomo-ml/tomo/internal/metrics"
	"github.com/tomo-ml/tomo/internal/rbm"
)

// MetricEvaluator records named metric series at a fixed epoch period.
type MetricEvaluator = metrics.Evaluator

// Metric pairs a name with its evaluation function.
type Metric = metrics.Metric

// Func evaluates one scalar metric against the current model state.
type Func = metrics.Func

// Options carries reference data forwarded to every metric call.
type Options = metrics.Options

// NewMetricEvaluator creates an evaluator that runs every period epochs.
func NewMetricEvaluator(period int, ms []Metric, opts Options) (*MetricEvaluator, error) {
	return metrics.NewEvaluator(period, ms, opts)
}

// Built-in metric functions.
var (
	// Fidelity is the squared overlap with the target wavefunction.
	Fidelity Func = metrics.Fidelity
	// KLDivergence is KL(target || model) over the Hilbert space.
	KLDivergence Func = metrics.KLDivergence
	// NLL is the mean negative log-likelihood of held-out samples.
	NLL Func = metrics.NLL
)

// Scalar adapts a plain function over the model view into a metric Func
// that never fails.
func Scalar(fn func(view rbm.View) float64) Func {
	return func(view rbm.View, _ Options) (float64, error) {
		return fn(view), nil
	}
}
