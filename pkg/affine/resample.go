package affine

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/menta2k/image-augmentor/pkg/tensor"
)

// OffsetCenter re-expresses m so that it acts about the centre of a
// height×width image instead of the origin. The +0.5 aligns with pixel
// centres.
func OffsetCenter(m mat.Matrix, height, width int) *mat.Dense {
	ox := float64(height)/2 + 0.5
	oy := float64(width)/2 + 0.5
	offset := mat.NewDense(3, 3, []float64{
		1, 0, ox,
		0, 1, oy,
		0, 0, 1,
	})
	reset := mat.NewDense(3, 3, []float64{
		1, 0, -ox,
		0, 1, -oy,
		0, 0, 1,
	})
	var out mat.Dense
	out.Product(offset, m, reset)
	return &out
}

// ApplyTransform resamples every channel of x through the homogeneous
// matrix m after centring it on the image.
//
// m maps output coordinates to input coordinates. Sampling is always
// nearest-neighbour so no new intensity or label values are introduced.
// The result is float32 and has the same shape as x.
func ApplyTransform(x *tensor.Array, m mat.Matrix, fill Fill, channelAxis int) (*tensor.Array, error) {
	if !fill.Mode.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFillMode, fill.Mode)
	}
	if r, c := m.Dims(); r != 3 || c != 3 {
		return nil, fmt.Errorf("%w: transform matrix is %dx%d, want 3x3", ErrBadShape, r, c)
	}
	if x.NDim() != 3 {
		return nil, fmt.Errorf("%w: need 3 dimensions, got %v", ErrBadShape, x.Shape())
	}
	axis, err := tensor.NormalizeAxis(channelAxis, x.NDim())
	if err != nil {
		return nil, err
	}

	chw, err := x.MoveAxis(axis, 0)
	if err != nil {
		return nil, err
	}
	chw = chw.AsType(tensor.Float32)

	shape := chw.Shape()
	height, width := shape[1], shape[2]
	if height == 0 || width == 0 {
		return nil, fmt.Errorf("%w: empty spatial dimensions %dx%d", ErrBadShape, height, width)
	}
	centred := OffsetCenter(m, height, width)
	linear := centred.Slice(0, 2, 0, 2)
	offset := mat.Col(nil, 2, centred)[:2]

	planes := make([]*mat.Dense, shape[0])
	for c := range planes {
		src, err := chw.Plane(c)
		if err != nil {
			return nil, err
		}
		planes[c] = resamplePlane(src, linear, offset, fill)
	}

	out, err := tensor.StackPlanes(tensor.Float32, planes)
	if err != nil {
		return nil, err
	}
	return out.MoveAxis(0, axis)
}

// resamplePlane is order-0 affine resampling of one channel:
// out[o] = in[round(A·o + b)].
func resamplePlane(src *mat.Dense, a mat.Matrix, b []float64, fill Fill) *mat.Dense {
	h, w := src.Dims()
	a00, a01 := a.At(0, 0), a.At(0, 1)
	a10, a11 := a.At(1, 0), a.At(1, 1)
	out := mat.NewDense(h, w, nil)
	for r := 0; r < h; r++ {
		fr := float64(r)
		for c := 0; c < w; c++ {
			fc := float64(c)
			sr, okR := fill.Mode.resolve(roundIndex(a00*fr+a01*fc+b[0]), h)
			sc, okC := fill.Mode.resolve(roundIndex(a10*fr+a11*fc+b[1]), w)
			if okR && okC {
				out.Set(r, c, src.At(sr, sc))
			} else {
				out.Set(r, c, fill.Value)
			}
		}
	}
	return out
}

// spatialDims returns the two non-channel dimensions of a 3-D array in
// memory order.
func spatialDims(x *tensor.Array, channelAxis int) (int, int, error) {
	if x.NDim() != 3 {
		return 0, 0, fmt.Errorf("%w: need 3 dimensions, got %v", ErrBadShape, x.Shape())
	}
	axis, err := tensor.NormalizeAxis(channelAxis, 3)
	if err != nil {
		return 0, 0, err
	}
	dims := make([]int, 0, 2)
	for i, d := range x.Shape() {
		if i != axis {
			dims = append(dims, d)
		}
	}
	return dims[0], dims[1], nil
}
