package train_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tomo-ml/tomo/internal/metrics"
	"github.com/tomo-ml/tomo/internal/optim"
	"github.com/tomo-ml/tomo/internal/rbm"
	"github.com/tomo-ml/tomo/internal/train"
)

func newTestTrainer(t *testing.T, numVisible, numHidden int, seed uint64) (*train.Trainer, *rbm.BinaryRBM) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, 0))
	model, err := rbm.New(numVisible, numHidden, rng)
	if err != nil {
		t.Fatalf("New(%d, %d) failed: %v", numVisible, numHidden, err)
	}
	return train.NewTrainer(model, rng), model
}

// constantData builds rows copies of the given configuration.
func constantData(rows int, config []float64) *mat.Dense {
	data := mat.NewDense(rows, len(config), nil)
	for i := 0; i < rows; i++ {
		data.SetRow(i, config)
	}
	return data
}

// countingCallback counts epoch-end invocations.
type countingCallback struct {
	calls  int
	epochs []int
}

func (c *countingCallback) OnEpochEnd(_ rbm.View, epoch int) error {
	c.calls++
	c.epochs = append(c.epochs, epoch)
	return nil
}

// failingCallback fails once a given epoch is reached.
type failingCallback struct {
	failAt int
	err    error
}

func (c *failingCallback) OnEpochEnd(_ rbm.View, epoch int) error {
	if epoch >= c.failAt {
		return c.err
	}
	return nil
}

// TestFit_RejectsBadConfig tests that configuration problems are reported
// before any epoch runs: the callback counter must stay at zero.
func TestFit_RejectsBadConfig(t *testing.T) {
	data := constantData(20, []float64{1, 0, 1})

	cases := []struct {
		name   string
		mutate func(*train.FitConfig)
	}{
		{"zero epochs", func(c *train.FitConfig) { c.Epochs = 0 }},
		{"zero positive batch", func(c *train.FitConfig) { c.PosBatchSize = 0 }},
		{"zero negative batch", func(c *train.FitConfig) { c.NegBatchSize = 0 }},
		{"negative positive batch", func(c *train.FitConfig) { c.PosBatchSize = -5 }},
		{"zero gibbs steps", func(c *train.FitConfig) { c.K = 0 }},
		{"zero learning rate", func(c *train.FitConfig) { c.LR = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trainer, _ := newTestTrainer(t, 3, 3, 7)
			counter := &countingCallback{}

			config := train.DefaultFitConfig()
			config.Epochs = 2
			config.Callbacks = []train.Callback{counter}
			tc.mutate(&config)

			err := trainer.Fit(data, config)
			if !errors.Is(err, rbm.ErrInvalidArgument) {
				t.Fatalf("Fit error = %v, want ErrInvalidArgument", err)
			}
			if counter.calls != 0 {
				t.Errorf("callback ran %d times despite invalid config", counter.calls)
			}
		})
	}
}

// TestFit_RejectsEmptyData tests the empty-data guard.
func TestFit_RejectsEmptyData(t *testing.T) {
	trainer, _ := newTestTrainer(t, 3, 3, 7)
	err := trainer.Fit(mat.NewDense(0, 3, nil), train.DefaultFitConfig())
	if !errors.Is(err, rbm.ErrInvalidArgument) {
		t.Errorf("Fit on empty data = %v, want ErrInvalidArgument", err)
	}
}

// TestFit_RejectsColumnMismatch tests the data-shape guard.
func TestFit_RejectsColumnMismatch(t *testing.T) {
	trainer, _ := newTestTrainer(t, 3, 3, 7)
	data := constantData(10, []float64{1, 0, 1, 0}) // 4 columns, model has 3

	err := trainer.Fit(data, train.DefaultFitConfig())
	var shapeErr *rbm.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("Fit error = %v, want ShapeError", err)
	}
}

// TestFit_CallbacksEveryEpoch tests one invocation per epoch, in order.
func TestFit_CallbacksEveryEpoch(t *testing.T) {
	trainer, _ := newTestTrainer(t, 3, 3, 7)
	counter := &countingCallback{}

	config := train.DefaultFitConfig()
	config.Epochs = 5
	config.PosBatchSize = 10
	config.NegBatchSize = 10
	config.Callbacks = []train.Callback{counter}

	if err := trainer.Fit(constantData(20, []float64{1, 0, 1}), config); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if counter.calls != 5 {
		t.Errorf("callback ran %d times, want 5", counter.calls)
	}
	for i, epoch := range counter.epochs {
		if epoch != i+1 {
			t.Fatalf("epochs out of order: %v", counter.epochs)
		}
	}
	if trainer.Elapsed() <= 0 {
		t.Error("Elapsed() not recorded after Fit")
	}
}

// TestFit_CallbackErrorAborts tests fail-fast propagation of callback
// errors, with the failing epoch in the message chain.
func TestFit_CallbackErrorAborts(t *testing.T) {
	trainer, _ := newTestTrainer(t, 3, 3, 7)
	boom := errors.New("metric exploded")
	counter := &countingCallback{}

	config := train.DefaultFitConfig()
	config.Epochs = 10
	config.PosBatchSize = 10
	config.NegBatchSize = 10
	config.Callbacks = []train.Callback{&failingCallback{failAt: 3, err: boom}, counter}

	err := trainer.Fit(constantData(20, []float64{1, 0, 1}), config)
	if !errors.Is(err, boom) {
		t.Fatalf("Fit error = %v, want wrapped callback failure", err)
	}
	// The first callback fails at epoch 3 before the counter runs there.
	if counter.calls != 2 {
		t.Errorf("later callback ran %d times, want 2", counter.calls)
	}
}

// TestFit_DetectsDivergence tests that non-finite parameters abort
// training with a NumericDivergenceError naming the tensor.
func TestFit_DetectsDivergence(t *testing.T) {
	trainer, model := newTestTrainer(t, 3, 3, 7)
	model.Weights().Set(0, 0, math.NaN())

	config := train.DefaultFitConfig()
	config.Epochs = 3
	config.PosBatchSize = 10
	config.NegBatchSize = 10

	err := trainer.Fit(constantData(20, []float64{1, 0, 1}), config)
	var divErr *rbm.NumericDivergenceError
	if !errors.As(err, &divErr) {
		t.Fatalf("Fit error = %v, want NumericDivergenceError", err)
	}
	if divErr.Epoch != 1 {
		t.Errorf("divergence reported at epoch %d, want 1", divErr.Epoch)
	}
}

// TestFit_LearnsConcentratedState trains on measurements of a single
// basis state and checks that fidelity rises and KL falls.
func TestFit_LearnsConcentratedState(t *testing.T) {
	trainer, model := newTestTrainer(t, 3, 6, 42)

	space, err := model.HilbertSpace()
	if err != nil {
		t.Fatalf("HilbertSpace failed: %v", err)
	}
	// All measurements are |101>, index 5 in counting order.
	rows, _ := space.Dims()
	target := mat.NewVecDense(rows, nil)
	target.SetVec(5, 1)

	evaluator, err := metrics.NewEvaluator(10, []metrics.Metric{
		{Name: "Fidelity", Func: metrics.Fidelity},
		{Name: "KL", Func: metrics.KLDivergence},
	}, metrics.Options{Target: target, Space: space})
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}

	config := train.FitConfig{
		Epochs:       100,
		PosBatchSize: 25,
		NegBatchSize: 25,
		K:            5,
		LR:           0.05,
		Callbacks:    []train.Callback{evaluator},
	}
	if err := trainer.Fit(constantData(100, []float64{1, 0, 1}), config); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if evaluator.Len() != 10 {
		t.Fatalf("evaluator recorded %d rounds, want 10", evaluator.Len())
	}

	fidelity := evaluator.Get("Fidelity")
	if last := fidelity[len(fidelity)-1]; last <= fidelity[0] || last < 0.5 {
		t.Errorf("fidelity did not improve: first %v, last %v", fidelity[0], last)
	}
	kl := evaluator.Get("KL")
	if last := kl[len(kl)-1]; last >= kl[0] {
		t.Errorf("KL did not decrease: first %v, last %v", kl[0], last)
	}
}

// TestFit_PersistentChain tests that PCD runs to completion and still
// learns the concentrated state.
func TestFit_PersistentChain(t *testing.T) {
	trainer, model := newTestTrainer(t, 3, 6, 42)

	config := train.FitConfig{
		Epochs:       100,
		PosBatchSize: 25,
		NegBatchSize: 25,
		K:            5,
		LR:           0.05,
		Persistent:   true,
	}
	if err := trainer.Fit(constantData(100, []float64{1, 0, 1}), config); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	space, err := model.HilbertSpace()
	if err != nil {
		t.Fatalf("HilbertSpace failed: %v", err)
	}
	z, err := model.Normalization(space)
	if err != nil {
		t.Fatalf("Normalization failed: %v", err)
	}
	p := model.Probability(mat.NewVecDense(3, []float64{1, 0, 1}), z)
	if p < 0.5 {
		t.Errorf("trained probability of |101> = %v, want > 0.5", p)
	}
}

// TestFit_CustomOptimizer tests Fit with a caller-built Adam.
func TestFit_CustomOptimizer(t *testing.T) {
	trainer, model := newTestTrainer(t, 3, 6, 42)

	config := train.DefaultFitConfig()
	config.Epochs = 50
	config.PosBatchSize = 25
	config.NegBatchSize = 25
	config.K = 5
	config.Optimizer = optim.NewAdam(trainer.Params(), optim.AdamConfig{LR: 0.01})

	if err := trainer.Fit(constantData(100, []float64{1, 0, 1}), config); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	space, err := model.HilbertSpace()
	if err != nil {
		t.Fatalf("HilbertSpace failed: %v", err)
	}
	z, err := model.Normalization(space)
	if err != nil {
		t.Fatalf("Normalization failed: %v", err)
	}
	p := model.Probability(mat.NewVecDense(3, []float64{1, 0, 1}), z)
	if p < 0.3 {
		t.Errorf("Adam-trained probability of |101> = %v, want > 0.3", p)
	}
}
