// Package tensor provides the dense N-dimensional array that flows through
// the augmentation pipeline.
//
// An Array stores its values row-major as float64 alongside a DType tag.
// Operations that change layout (MoveAxis, ExpandDims, Reshape) return new
// arrays; the receiver is never modified except through Set.
package tensor

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShape is returned when a shape does not fit the data or operation.
	ErrShape = errors.New("tensor: invalid shape")
	// ErrAxis is returned when an axis index is out of range.
	ErrAxis = errors.New("tensor: axis out of range")
)

// Array is a dense row-major N-dimensional array.
type Array struct {
	shape   []int
	strides []int
	data    []float64
	dtype   DType
}

// New creates a float64 array with the given shape. data is copied.
func New(shape []int, data []float64) (*Array, error) {
	return NewOf(Float64, shape, data)
}

// NewOf creates an array of dtype d; every value in data is cast to d.
func NewOf(d DType, shape []int, data []float64) (*Array, error) {
	n, err := shapeSize(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v holds %d values, got %d", ErrShape, shape, n, len(data))
	}
	a := &Array{
		shape:   append([]int(nil), shape...),
		strides: rowMajorStrides(shape),
		data:    make([]float64, n),
		dtype:   d,
	}
	for i, v := range data {
		a.data[i] = d.cast(v)
	}
	return a, nil
}

// Zeros returns a zero-filled array of dtype d.
func Zeros(d DType, shape ...int) *Array {
	n, err := shapeSize(shape)
	if err != nil {
		panic(err)
	}
	return &Array{
		shape:   append([]int(nil), shape...),
		strides: rowMajorStrides(shape),
		data:    make([]float64, n),
		dtype:   d,
	}
}

func shapeSize(shape []int) (int, error) {
	n := 1
	for _, s := range shape {
		if s < 0 {
			return 0, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		n *= s
	}
	return n, nil
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// NormalizeAxis resolves a possibly negative axis against ndim axes.
func NormalizeAxis(axis, ndim int) (int, error) {
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		return 0, fmt.Errorf("%w: axis %d for %d dimensions", ErrAxis, axis, ndim)
	}
	return axis, nil
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// NDim returns the number of axes.
func (a *Array) NDim() int { return len(a.shape) }

// Size returns the total number of elements.
func (a *Array) Size() int { return len(a.data) }

// DType returns the array's element type.
func (a *Array) DType() DType { return a.dtype }

// Dim returns the size of axis, which may be negative.
func (a *Array) Dim(axis int) int {
	ax, err := NormalizeAxis(axis, len(a.shape))
	if err != nil {
		panic(err)
	}
	return a.shape[ax]
}

// Data returns the backing slice in row-major order. Writes are visible
// to the array and bypass dtype casting.
func (a *Array) Data() []float64 { return a.data }

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{
		shape:   append([]int(nil), a.shape...),
		strides: append([]int(nil), a.strides...),
		data:    append([]float64(nil), a.data...),
		dtype:   a.dtype,
	}
}

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("tensor: %d indices for %d dimensions", len(idx), len(a.shape)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for axis %d of size %d", v, i, a.shape[i]))
		}
		off += v * a.strides[i]
	}
	return off
}

// At returns the element at idx.
func (a *Array) At(idx ...int) float64 { return a.data[a.offset(idx)] }

// Set stores v at idx, cast to the array's dtype.
func (a *Array) Set(v float64, idx ...int) { a.data[a.offset(idx)] = a.dtype.cast(v) }

// Reshape returns a copy with a new shape of the same size.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	n, err := shapeSize(shape)
	if err != nil {
		return nil, err
	}
	if n != len(a.data) {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", ErrShape, a.shape, shape)
	}
	return &Array{
		shape:   append([]int(nil), shape...),
		strides: rowMajorStrides(shape),
		data:    append([]float64(nil), a.data...),
		dtype:   a.dtype,
	}, nil
}

// ExpandDims inserts a length-1 axis at position axis. Negative values
// count from the end of the result, so -1 appends a trailing axis.
func (a *Array) ExpandDims(axis int) (*Array, error) {
	ax, err := NormalizeAxis(axis, len(a.shape)+1)
	if err != nil {
		return nil, err
	}
	shape := make([]int, 0, len(a.shape)+1)
	shape = append(shape, a.shape[:ax]...)
	shape = append(shape, 1)
	shape = append(shape, a.shape[ax:]...)
	return a.Reshape(shape...)
}

// Transpose permutes the axes: axis i of the result is axis perm[i] of a.
func (a *Array) Transpose(perm ...int) (*Array, error) {
	nd := len(a.shape)
	if len(perm) != nd {
		return nil, fmt.Errorf("%w: permutation %v for %d dimensions", ErrAxis, perm, nd)
	}
	seen := make([]bool, nd)
	shape := make([]int, nd)
	srcStrides := make([]int, nd)
	for i, p := range perm {
		if p < 0 || p >= nd || seen[p] {
			return nil, fmt.Errorf("%w: invalid permutation %v", ErrAxis, perm)
		}
		seen[p] = true
		shape[i] = a.shape[p]
		srcStrides[i] = a.strides[p]
	}
	out := Zeros(a.dtype, shape...)
	if len(out.data) == 0 {
		return out, nil
	}
	idx := make([]int, nd)
	src := 0
	for i := range out.data {
		out.data[i] = a.data[src]
		// odometer increment over the output index
		for ax := nd - 1; ax >= 0; ax-- {
			idx[ax]++
			src += srcStrides[ax]
			if idx[ax] < shape[ax] {
				break
			}
			src -= idx[ax] * srcStrides[ax]
			idx[ax] = 0
		}
	}
	return out, nil
}

// MoveAxis moves axis src to position dst, keeping the order of the others.
func (a *Array) MoveAxis(src, dst int) (*Array, error) {
	nd := len(a.shape)
	s, err := NormalizeAxis(src, nd)
	if err != nil {
		return nil, err
	}
	d, err := NormalizeAxis(dst, nd)
	if err != nil {
		return nil, err
	}
	if s == d {
		return a.Clone(), nil
	}
	perm := make([]int, 0, nd)
	for i := 0; i < nd; i++ {
		if i != s {
			perm = append(perm, i)
		}
	}
	perm = append(perm[:d], append([]int{s}, perm[d:]...)...)
	return a.Transpose(perm...)
}

// AsType returns a copy with every value cast to d.
func (a *Array) AsType(d DType) *Array {
	out := &Array{
		shape:   append([]int(nil), a.shape...),
		strides: append([]int(nil), a.strides...),
		data:    make([]float64, len(a.data)),
		dtype:   d,
	}
	for i, v := range a.data {
		out.data[i] = d.cast(v)
	}
	return out
}

// SameShape reports whether a and b have identical dimensions.
func (a *Array) SameShape(b *Array) bool {
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return true
}

// Equal reports whether a and b have the same shape and values.
// The dtype tags are not compared.
func (a *Array) Equal(b *Array) bool {
	return a.EqualApprox(b, 0)
}

// EqualApprox is Equal with an absolute tolerance on each value.
func (a *Array) EqualApprox(b *Array, tol float64) bool {
	if !a.SameShape(b) {
		return false
	}
	for i, v := range a.data {
		if math.Abs(v-b.data[i]) > tol {
			return false
		}
	}
	return true
}

func (a *Array) String() string {
	return fmt.Sprintf("Array(%s, shape=%v)", a.dtype, a.shape)
}
