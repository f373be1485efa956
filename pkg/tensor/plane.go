package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Plane copies channel c of a channel-first (C, H, W) array into an H×W
// matrix.
func (a *Array) Plane(c int) (*mat.Dense, error) {
	if len(a.shape) != 3 {
		return nil, fmt.Errorf("%w: plane extraction needs 3 dimensions, got %v", ErrShape, a.shape)
	}
	if c < 0 || c >= a.shape[0] {
		return nil, fmt.Errorf("%w: channel %d of %d", ErrAxis, c, a.shape[0])
	}
	h, w := a.shape[1], a.shape[2]
	if h == 0 || w == 0 {
		return nil, fmt.Errorf("%w: empty spatial dimensions %dx%d", ErrShape, h, w)
	}
	start := c * a.strides[0]
	vals := append([]float64(nil), a.data[start:start+h*w]...)
	return mat.NewDense(h, w, vals), nil
}

// StackPlanes builds a channel-first (C, H, W) array of dtype d from
// equally sized matrices.
func StackPlanes(d DType, planes []*mat.Dense) (*Array, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: no planes to stack", ErrShape)
	}
	h, w := planes[0].Dims()
	out := Zeros(d, len(planes), h, w)
	for c, p := range planes {
		ph, pw := p.Dims()
		if ph != h || pw != w {
			return nil, fmt.Errorf("%w: plane %d is %dx%d, want %dx%d", ErrShape, c, ph, pw, h, w)
		}
		base := c * h * w
		for r := 0; r < h; r++ {
			row := out.data[base+r*w : base+(r+1)*w]
			mat.Row(row, r, p)
			for i, v := range row {
				row[i] = d.cast(v)
			}
		}
	}
	return out, nil
}
