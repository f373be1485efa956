package affine

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/menta2k/image-augmentor/pkg/tensor"
)

// Config declares which random stages an affine composer should contain.
// A zero or empty field contributes no stage.
type Config struct {
	// RotationRange bounds the rotation angle in degrees.
	RotationRange float64
	// TranslationRange holds one fraction for both axes or a
	// (height, width) pair of fractions.
	TranslationRange []float64
	// ShearRange bounds the shear angle in radians.
	ShearRange float64
	// ZoomRange holds the (low, high) zoom factors.
	ZoomRange []float64
}

// Composer chains builders into a single transform so that an image is
// resampled exactly once however many perturbations are applied.
type Composer struct {
	settings
	stages []Builder
}

// New builds a composer from a declarative config. Stages run in the
// order rotation, translation, shear, zoom and share the composer's
// random source.
func New(cfg Config, opts ...Option) (*Composer, error) {
	s := newSettings(opts)
	shared := []Option{WithRand(s.rng), WithChannelAxis(s.channelAxis), WithLogger(s.logger)}

	var stages []Builder
	if cfg.RotationRange != 0 {
		b, err := NewRotate(cfg.RotationRange, shared...)
		if err != nil {
			return nil, err
		}
		stages = append(stages, b)
	}
	if len(cfg.TranslationRange) > 2 {
		return nil, fmt.Errorf("%w: translation range must have 1 or 2 values, got %d", ErrInvalidRange, len(cfg.TranslationRange))
	}
	if hasNonZero(cfg.TranslationRange) {
		var (
			b   *Translate
			err error
		)
		if len(cfg.TranslationRange) == 1 {
			b, err = NewTranslateUniform(cfg.TranslationRange[0], shared...)
		} else {
			b, err = NewTranslate(cfg.TranslationRange[0], cfg.TranslationRange[1], shared...)
		}
		if err != nil {
			return nil, err
		}
		stages = append(stages, b)
	}
	if cfg.ShearRange != 0 {
		b, err := NewShear(cfg.ShearRange, shared...)
		if err != nil {
			return nil, err
		}
		stages = append(stages, b)
	}
	if len(cfg.ZoomRange) > 0 {
		b, err := NewZoom(cfg.ZoomRange, shared...)
		if err != nil {
			return nil, err
		}
		stages = append(stages, b)
	}
	return newComposer(s, stages)
}

// NewCompose chains caller-built builders in the given order. Each
// builder keeps its own random source; only its matrix is used.
func NewCompose(builders []Builder, opts ...Option) (*Composer, error) {
	for i, b := range builders {
		if b == nil {
			return nil, fmt.Errorf("affine: builder %d is nil", i)
		}
	}
	return newComposer(newSettings(opts), append([]Builder(nil), builders...))
}

func newComposer(s settings, stages []Builder) (*Composer, error) {
	if len(stages) == 0 {
		return nil, ErrNoTransforms
	}
	return &Composer{settings: s, stages: stages}, nil
}

// BuildMatrix draws every stage's matrix and multiplies them in declared
// order: M = M0·M1·…·Mn.
func (c *Composer) BuildMatrix(height, width int) *mat.Dense {
	m := c.stages[0].BuildMatrix(height, width)
	for _, b := range c.stages[1:] {
		var next mat.Dense
		next.Mul(m, b.BuildMatrix(height, width))
		m = &next
	}
	return m
}

// Transform composes one matrix and applies it to x.
func (c *Composer) Transform(x *tensor.Array) (*tensor.Array, error) {
	c.logger.Debug("affine transform", "stages", c.String(), "shape", x.Shape())
	return c.apply(c, x)
}

// TransformPair composes one matrix and applies it to x with the image
// fill and to y with the target fill. y may be nil.
func (c *Composer) TransformPair(x, y *tensor.Array) (*tensor.Array, *tensor.Array, error) {
	c.logger.Debug("affine pair transform", "stages", c.String(), "shape", x.Shape())
	return c.applyPair(c, x, y)
}

// Stages describes each stage in order.
func (c *Composer) Stages() []string {
	out := make([]string, len(c.stages))
	for i, b := range c.stages {
		out[i] = fmt.Sprint(b)
	}
	return out
}

func (c *Composer) String() string {
	return strings.Join(c.Stages(), " · ")
}

func hasNonZero(vals []float64) bool {
	for _, v := range vals {
		if v != 0 {
			return true
		}
	}
	return false
}
