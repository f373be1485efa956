// Package transforms sequences array transforms into a pipeline and
// provides the small reshaping and encoding transforms that sit around
// the geometric ones.
package transforms

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/menta2k/image-augmentor/pkg/tensor"
)

// Transformer maps one array to another.
type Transformer interface {
	Transform(x *tensor.Array) (*tensor.Array, error)
}

// PairTransformer applies one random draw to an image and its target.
type PairTransformer interface {
	TransformPair(x, y *tensor.Array) (*tensor.Array, *tensor.Array, error)
}

// Fitter is implemented by transforms that learn parameters from data.
type Fitter interface {
	Fit(x, y *tensor.Array) error
}

// Resetter is implemented by transforms holding state that should be
// cleared between epochs.
type Resetter interface {
	Reset()
}

// Lambda adapts a function to Transformer.
type Lambda func(x *tensor.Array) (*tensor.Array, error)

// Transform calls fn(x).
func (fn Lambda) Transform(x *tensor.Array) (*tensor.Array, error) { return fn(x) }

// Compose runs transforms in sequence.
type Compose struct {
	stages []Transformer
	logger *log.Logger
}

// ComposeOption configures a Compose.
type ComposeOption func(*Compose)

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(l *log.Logger) ComposeOption {
	return func(c *Compose) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCompose creates a pipeline from stages.
func NewCompose(stages []Transformer, opts ...ComposeOption) (*Compose, error) {
	for i, s := range stages {
		if s == nil {
			return nil, fmt.Errorf("transforms: stage %d is nil", i)
		}
	}
	c := &Compose{stages: append([]Transformer(nil), stages...), logger: log.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Len returns the number of stages.
func (c *Compose) Len() int { return len(c.stages) }

// Fit fits every stage that implements Fitter, in order.
func (c *Compose) Fit(x, y *tensor.Array) error {
	for i, s := range c.stages {
		f, ok := s.(Fitter)
		if !ok {
			continue
		}
		if err := f.Fit(x, y); err != nil {
			return fmt.Errorf("stage %d (%T) fit: %w", i, s, err)
		}
	}
	return nil
}

// Transform threads x through every stage.
func (c *Compose) Transform(x *tensor.Array) (*tensor.Array, error) {
	for i, s := range c.stages {
		out, err := s.Transform(x)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%T): %w", i, s, err)
		}
		c.logger.Debug("pipeline stage", "index", i, "stage", fmt.Sprintf("%T", s), "shape", out.Shape(), "dtype", out.DType())
		x = out
	}
	return x, nil
}

// TransformPair threads x and its target y through every stage. A stage
// implementing PairTransformer sees both arrays in one call; any other
// stage is applied to each array on its own.
func (c *Compose) TransformPair(x, y *tensor.Array) (*tensor.Array, *tensor.Array, error) {
	for i, s := range c.stages {
		var err error
		if p, ok := s.(PairTransformer); ok {
			x, y, err = p.TransformPair(x, y)
		} else if x, err = s.Transform(x); err == nil {
			y, err = s.Transform(y)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("stage %d (%T): %w", i, s, err)
		}
		c.logger.Debug("pipeline stage", "index", i, "stage", fmt.Sprintf("%T", s), "shape", x.Shape(), "target", y.Shape())
	}
	return x, y, nil
}

// Reset resets every stage that implements Resetter.
func (c *Compose) Reset() {
	for _, s := range c.stages {
		if r, ok := s.(Resetter); ok {
			r.Reset()
		}
	}
}
