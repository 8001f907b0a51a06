package rbm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tomo-ml/tomo/internal/serialization"
)

// modelType identifies this wavefunction class in persisted files.
const modelType = "PositiveWavefunction"

// Tensor names in the persisted container.
const (
	tensorWeights     = "weights"
	tensorVisibleBias = "visible_bias"
	tensorHiddenBias  = "hidden_bias"
)

// Save serializes the parameter set to a .tomo file.
//
// Three named tensors are written: weights (numHidden x numVisible),
// visible_bias (numVisible) and hidden_bias (numHidden).
func (m *BinaryRBM) Save(path string) error {
	weights := make([]float64, m.numHidden*m.numVisible)
	for i := 0; i < m.numHidden; i++ {
		for j := 0; j < m.numVisible; j++ {
			weights[i*m.numVisible+j] = m.weights.At(i, j)
		}
	}

	visibleBias := make([]float64, m.numVisible)
	for j := 0; j < m.numVisible; j++ {
		visibleBias[j] = m.visibleBias.AtVec(j)
	}
	hiddenBias := make([]float64, m.numHidden)
	for j := 0; j < m.numHidden; j++ {
		hiddenBias[j] = m.hiddenBias.AtVec(j)
	}

	tensors := []serialization.Tensor{
		{Name: tensorWeights, Shape: []int{m.numHidden, m.numVisible}, Data: weights},
		{Name: tensorVisibleBias, Shape: []int{m.numVisible}, Data: visibleBias},
		{Name: tensorHiddenBias, Shape: []int{m.numHidden}, Data: hiddenBias},
	}
	return serialization.Write(path, modelType, tensors, nil)
}

// Load reads a .tomo file and constructs a model with the persisted
// parameter set.
//
// Inconsistent tensor shapes inside the file (e.g., a weight matrix whose
// column count disagrees with the visible bias) fail with a ShapeError.
func Load(path string) (*BinaryRBM, error) {
	file, err := serialization.Read(path)
	if err != nil {
		return nil, err
	}

	weights, err := fileMatrix(file, tensorWeights)
	if err != nil {
		return nil, err
	}
	numHidden, numVisible := weights.Dims()

	visibleBias, err := fileVector(file, tensorVisibleBias)
	if err != nil {
		return nil, err
	}
	hiddenBias, err := fileVector(file, tensorHiddenBias)
	if err != nil {
		return nil, err
	}

	model := &BinaryRBM{
		numVisible:  numVisible,
		numHidden:   numHidden,
		weights:     mat.NewDense(numHidden, numVisible, nil),
		visibleBias: mat.NewVecDense(numVisible, nil),
		hiddenBias:  mat.NewVecDense(numHidden, nil),
	}
	if err := model.SetParameters(weights, visibleBias, hiddenBias); err != nil {
		return nil, err
	}
	return model, nil
}

// LoadInto restores persisted parameters into an existing model.
//
// The model must already have the matching layer sizes; any mismatch is a
// ShapeError.
func (m *BinaryRBM) LoadInto(path string) error {
	file, err := serialization.Read(path)
	if err != nil {
		return err
	}

	weights, err := fileMatrix(file, tensorWeights)
	if err != nil {
		return err
	}
	visibleBias, err := fileVector(file, tensorVisibleBias)
	if err != nil {
		return err
	}
	hiddenBias, err := fileVector(file, tensorHiddenBias)
	if err != nil {
		return err
	}
	return m.SetParameters(weights, visibleBias, hiddenBias)
}

func fileMatrix(file *serialization.File, name string) (*mat.Dense, error) {
	t, ok := file.Tensor(name)
	if !ok {
		return nil, fmt.Errorf("persisted model is missing tensor %q", name)
	}
	if len(t.Shape) != 2 {
		return nil, &ShapeError{
			Op:   "Load",
			Want: fmt.Sprintf("%s with 2 dimensions", name),
			Got:  fmt.Sprintf("%d dimensions", len(t.Shape)),
		}
	}
	return mat.NewDense(t.Shape[0], t.Shape[1], t.Data), nil
}

func fileVector(file *serialization.File, name string) (*mat.VecDense, error) {
	t, ok := file.Tensor(name)
	if !ok {
		return nil, fmt.Errorf("persisted model is missing tensor %q", name)
	}
	if len(t.Shape) != 1 {
		return nil, &ShapeError{
			Op:   "Load",
			Want: fmt.Sprintf("%s with 1 dimension", name),
			Got:  fmt.Sprintf("%d dimensions", len(t.Shape)),
		}
	}
	return mat.NewVecDense(t.Shape[0], t.Data), nil
}
