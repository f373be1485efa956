package transforms

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/menta2k/image-augmentor/pkg/tensor"
)

// ErrClassIndex reports a class label that cannot be one-hot encoded.
var ErrClassIndex = errors.New("transforms: class index out of range")

// ExpandDims inserts a length-1 axis at Axis. Negative values count from
// the end of the result.
type ExpandDims struct {
	Axis int
}

// NewExpandDims returns an ExpandDims that appends a trailing axis.
func NewExpandDims() ExpandDims { return ExpandDims{Axis: -1} }

// Transform returns x with the extra axis.
func (e ExpandDims) Transform(x *tensor.Array) (*tensor.Array, error) {
	return x.ExpandDims(e.Axis)
}

// TypeCast casts every value to DType.
type TypeCast struct {
	DType tensor.DType
}

// Transform returns a cast copy of x.
func (c TypeCast) Transform(x *tensor.Array) (*tensor.Array, error) {
	return x.AsType(c.DType), nil
}

// ToCategorical one-hot encodes integer class labels.
//
// The class count comes from NumClasses when positive, otherwise from
// the last Fit, otherwise it is inferred from each input as max+1. An
// inferred count is never carried over to later calls.
type ToCategorical struct {
	NumClasses int
	learned    int
}

// Fit learns the class count from the labels in x.
func (tc *ToCategorical) Fit(x, _ *tensor.Array) error {
	labels, err := classLabels(x)
	if err != nil {
		return err
	}
	tc.learned = maxLabel(labels) + 1
	return nil
}

// Reset forgets the class count learned by Fit.
func (tc *ToCategorical) Reset() { tc.learned = 0 }

// Classes returns the class count Transform will use, or 0 if it will be
// inferred per call.
func (tc *ToCategorical) Classes() int {
	if tc.NumClasses > 0 {
		return tc.NumClasses
	}
	return tc.learned
}

// Transform flattens x and returns an (n, classes) float64 one-hot array.
func (tc *ToCategorical) Transform(x *tensor.Array) (*tensor.Array, error) {
	m, err := OneHot(x, tc.Classes())
	if err != nil {
		return nil, err
	}
	n, k := m.Dims()
	return tensor.New([]int{n, k}, m.RawMatrix().Data)
}

// OneHot flattens x to integer labels and encodes them as an n×k matrix.
// k <= 0 infers the class count as max+1.
func OneHot(x *tensor.Array, k int) (*mat.Dense, error) {
	labels, err := classLabels(x)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = maxLabel(labels) + 1
		if k <= 0 {
			return nil, fmt.Errorf("%w: all labels are negative", ErrClassIndex)
		}
	}
	m := mat.NewDense(len(labels), k, nil)
	for i, l := range labels {
		if l < 0 || l >= k {
			return nil, fmt.Errorf("%w: label %d at position %d for %d classes", ErrClassIndex, l, i, k)
		}
		m.Set(i, l, 1)
	}
	return m, nil
}

func classLabels(x *tensor.Array) ([]int, error) {
	if x.Size() == 0 {
		return nil, fmt.Errorf("%w: no labels to encode", tensor.ErrShape)
	}
	labels := make([]int, x.Size())
	for i, v := range x.Data() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite label at position %d", ErrClassIndex, i)
		}
		labels[i] = int(math.Trunc(v))
	}
	return labels, nil
}

func maxLabel(labels []int) int {
	best := labels[0]
	for _, l := range labels[1:] {
		if l > best {
			best = l
		}
	}
	return best
}
