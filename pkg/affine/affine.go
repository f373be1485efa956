// Package affine builds random geometric augmentations as 3×3 homogeneous
// matrices and applies them to image arrays.
//
// Each builder (Rotate, Translate, Shear, Zoom) samples its parameter and
// returns a matrix from BuildMatrix, or applies that matrix directly with
// Transform and TransformPair. A Composer multiplies the matrices of
// several builders so the image is resampled once:
//
//	c, err := affine.New(affine.Config{
//		RotationRange: 30,
//		ZoomRange:     []float64{0.8, 1.2},
//	}, affine.WithRand(affine.NewRand(42)))
//	if err != nil {
//		return err
//	}
//	img, label, err = c.TransformPair(img, label)
//
// Matrices map output pixel coordinates to input coordinates and are
// applied about the image centre (see OffsetCenter). Resampling is
// nearest-neighbour on each channel independently.
package affine

import "errors"

var (
	// ErrInvalidRange reports a builder configured with an unusable range.
	ErrInvalidRange = errors.New("affine: invalid range")
	// ErrNoTransforms reports a composer with nothing to compose.
	ErrNoTransforms = errors.New("affine: no transforms configured")
	// ErrShapeMismatch reports an image and target with different spatial sizes.
	ErrShapeMismatch = errors.New("affine: image and target shapes differ")
	// ErrUnknownFillMode reports a fill mode outside the supported set.
	ErrUnknownFillMode = errors.New("affine: unknown fill mode")
	// ErrBadShape reports an array or matrix of the wrong rank or size.
	ErrBadShape = errors.New("affine: bad shape")
)
