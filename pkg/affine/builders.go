package affine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/menta2k/image-augmentor/pkg/tensor"
)

// Builder produces a 3×3 homogeneous transform matrix for an image of the
// given spatial size. Random builders draw fresh parameters on every call.
type Builder interface {
	BuildMatrix(height, width int) *mat.Dense
}

// Rotate rotates by a random angle in (-Range, Range) degrees.
type Rotate struct {
	settings
	Range float64
}

// NewRotate creates a rotation builder for angles in (-degrees, degrees).
func NewRotate(degrees float64, opts ...Option) (*Rotate, error) {
	if degrees < 0 || math.IsNaN(degrees) {
		return nil, fmt.Errorf("%w: rotation range %v must be non-negative", ErrInvalidRange, degrees)
	}
	return &Rotate{settings: newSettings(opts), Range: degrees}, nil
}

// BuildMatrix samples an angle and returns its rotation matrix.
func (r *Rotate) BuildMatrix(_, _ int) *mat.Dense {
	theta := r.symmetric(r.Range) * math.Pi / 180
	return RotationMatrix(theta)
}

// Transform rotates x with the image fill.
func (r *Rotate) Transform(x *tensor.Array) (*tensor.Array, error) { return r.apply(r, x) }

// TransformPair rotates x and y by the same angle.
func (r *Rotate) TransformPair(x, y *tensor.Array) (*tensor.Array, *tensor.Array, error) {
	return r.applyPair(r, x, y)
}

func (r *Rotate) String() string { return fmt.Sprintf("rotate(±%g°)", r.Range) }

// Translate shifts by a random fraction of the image height and width.
type Translate struct {
	settings
	HeightRange float64
	WidthRange  float64
}

// NewTranslate creates a translation builder. Shifts along rows are drawn
// from (-heightFrac, heightFrac)·height and along columns from
// (-widthFrac, widthFrac)·width.
func NewTranslate(heightFrac, widthFrac float64, opts ...Option) (*Translate, error) {
	if heightFrac < 0 || widthFrac < 0 || math.IsNaN(heightFrac) || math.IsNaN(widthFrac) {
		return nil, fmt.Errorf("%w: translation range (%v, %v) must be non-negative", ErrInvalidRange, heightFrac, widthFrac)
	}
	return &Translate{settings: newSettings(opts), HeightRange: heightFrac, WidthRange: widthFrac}, nil
}

// NewTranslateUniform uses the same fraction for both axes.
func NewTranslateUniform(frac float64, opts ...Option) (*Translate, error) {
	return NewTranslate(frac, frac, opts...)
}

// BuildMatrix samples a shift. An axis with a zero range does not touch
// the random source and always shifts by exactly 0.
func (t *Translate) BuildMatrix(height, width int) *mat.Dense {
	var tx, ty float64
	if t.HeightRange > 0 {
		tx = t.symmetric(t.HeightRange) * float64(height)
	}
	if t.WidthRange > 0 {
		ty = t.symmetric(t.WidthRange) * float64(width)
	}
	return TranslationMatrix(tx, ty)
}

// Transform shifts x with the image fill.
func (t *Translate) Transform(x *tensor.Array) (*tensor.Array, error) { return t.apply(t, x) }

// TransformPair shifts x and y by the same amount.
func (t *Translate) TransformPair(x, y *tensor.Array) (*tensor.Array, *tensor.Array, error) {
	return t.applyPair(t, x, y)
}

func (t *Translate) String() string {
	return fmt.Sprintf("translate(±%g·h, ±%g·w)", t.HeightRange, t.WidthRange)
}

// Shear applies a random shear angle in (-Range, Range) radians.
type Shear struct {
	settings
	Range float64
}

// NewShear creates a shear builder for angles in (-radians, radians).
func NewShear(radians float64, opts ...Option) (*Shear, error) {
	if radians < 0 || math.IsNaN(radians) {
		return nil, fmt.Errorf("%w: shear range %v must be non-negative", ErrInvalidRange, radians)
	}
	return &Shear{settings: newSettings(opts), Range: radians}, nil
}

// BuildMatrix samples a shear angle and returns its matrix.
func (s *Shear) BuildMatrix(_, _ int) *mat.Dense {
	return ShearMatrix(s.symmetric(s.Range))
}

// Transform shears x with the image fill.
func (s *Shear) Transform(x *tensor.Array) (*tensor.Array, error) { return s.apply(s, x) }

// TransformPair shears x and y by the same angle.
func (s *Shear) TransformPair(x, y *tensor.Array) (*tensor.Array, *tensor.Array, error) {
	return s.applyPair(s, x, y)
}

func (s *Shear) String() string { return fmt.Sprintf("shear(±%g rad)", s.Range) }

// Zoom scales each axis by an independent factor drawn from [Low, High].
// Factors below 1 zoom in, above 1 zoom out.
type Zoom struct {
	settings
	Low  float64
	High float64
}

// NewZoom creates a zoom builder. zoomRange must hold exactly two positive
// values with low <= high; equal bounds give a fixed factor.
func NewZoom(zoomRange []float64, opts ...Option) (*Zoom, error) {
	if len(zoomRange) != 2 {
		return nil, fmt.Errorf("%w: zoom range must have 2 values, got %d", ErrInvalidRange, len(zoomRange))
	}
	lo, hi := zoomRange[0], zoomRange[1]
	if !(lo > 0) || !(hi > 0) {
		return nil, fmt.Errorf("%w: zoom bounds (%v, %v) must be positive", ErrInvalidRange, lo, hi)
	}
	if lo > hi {
		return nil, fmt.Errorf("%w: zoom lower bound %v exceeds upper bound %v", ErrInvalidRange, lo, hi)
	}
	return &Zoom{settings: newSettings(opts), Low: lo, High: hi}, nil
}

// BuildMatrix samples zx and zy independently and returns diag(zx, zy, 1).
func (z *Zoom) BuildMatrix(_, _ int) *mat.Dense {
	zx := z.uniform(z.Low, z.High)
	zy := z.uniform(z.Low, z.High)
	return ScaleMatrix(zx, zy)
}

// Transform zooms x with the image fill.
func (z *Zoom) Transform(x *tensor.Array) (*tensor.Array, error) { return z.apply(z, x) }

// TransformPair zooms x and y by the same factors.
func (z *Zoom) TransformPair(x, y *tensor.Array) (*tensor.Array, *tensor.Array, error) {
	return z.applyPair(z, x, y)
}

func (z *Zoom) String() string { return fmt.Sprintf("zoom[%g, %g]", z.Low, z.High) }

// RotationMatrix returns the homogeneous rotation by theta radians.
func RotationMatrix(theta float64) *mat.Dense {
	sin, cos := math.Sincos(theta)
	return mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	})
}

// TranslationMatrix returns the homogeneous shift by (tx, ty).
func TranslationMatrix(tx, ty float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, tx,
		0, 1, ty,
		0, 0, 1,
	})
}

// ShearMatrix returns the homogeneous shear by angle radians.
func ShearMatrix(angle float64) *mat.Dense {
	sin, cos := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		1, -sin, 0,
		0, cos, 0,
		0, 0, 1,
	})
}

// ScaleMatrix returns diag(zx, zy, 1).
func ScaleMatrix(zx, zy float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		zx, 0, 0,
		0, zy, 0,
		0, 0, 1,
	})
}

func (s *settings) symmetric(r float64) float64 {
	if r == 0 {
		return 0
	}
	return s.uniform(-r, r)
}

// apply builds one matrix from b and resamples x with the image fill.
func (s *settings) apply(b Builder, x *tensor.Array) (*tensor.Array, error) {
	h, w, err := spatialDims(x, s.channelAxis)
	if err != nil {
		return nil, err
	}
	return ApplyTransform(x, b.BuildMatrix(h, w), s.fill, s.channelAxis)
}

// applyPair builds one matrix from b and resamples x with the image fill
// and y with the target fill.
func (s *settings) applyPair(b Builder, x, y *tensor.Array) (*tensor.Array, *tensor.Array, error) {
	h, w, err := spatialDims(x, s.channelAxis)
	if err != nil {
		return nil, nil, err
	}
	if y == nil {
		out, err := ApplyTransform(x, b.BuildMatrix(h, w), s.fill, s.channelAxis)
		return out, nil, err
	}
	th, tw, err := spatialDims(y, s.channelAxis)
	if err != nil {
		return nil, nil, fmt.Errorf("target: %w", err)
	}
	if th != h || tw != w {
		return nil, nil, fmt.Errorf("%w: image is %dx%d, target is %dx%d", ErrShapeMismatch, h, w, th, tw)
	}
	m := b.BuildMatrix(h, w)
	xOut, err := ApplyTransform(x, m, s.fill, s.channelAxis)
	if err != nil {
		return nil, nil, err
	}
	yOut, err := ApplyTransform(y, m, s.targetFill, s.channelAxis)
	if err != nil {
		return nil, nil, fmt.Errorf("target: %w", err)
	}
	return xOut, yOut, nil
}
