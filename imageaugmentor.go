// Package imageaugmentor provides random geometric augmentation of images
// and their paired label images for training data.
//
// This package combines the affine matrix builders with array conversion
// so that an image is rotated, shifted, sheared and zoomed in a single
// nearest-neighbour resampling pass.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		imageaugmentor "github.com/menta2k/image-augmentor"
//		"github.com/menta2k/image-augmentor/pkg/affine"
//	)
//
//	func main() {
//		opts := imageaugmentor.DefaultOptions()
//		opts.Affine = affine.Config{
//			RotationRange:    20,
//			TranslationRange: []float64{0.1, 0.1},
//			ZoomRange:        []float64{0.9, 1.1},
//		}
//		opts.Rand = affine.NewRand(42)
//
//		aug, err := imageaugmentor.NewWithOptions(opts)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// img and mask are image.Image values of the same size
//		out, outMask, err := aug.AugmentImagePair(img, mask)
//		if err != nil {
//			log.Fatal(err)
//		}
//		_, _ = out, outMask
//	}
//
// The package consists of three main components:
//
// 1. Tensor (pkg/tensor): N-dimensional arrays and image conversion
// 2. Affine (pkg/affine): Matrix builders, composition and resampling
// 3. Transforms (pkg/transforms): Pipelines and array utilities
//
// Every call draws fresh random parameters. The same composed matrix is
// applied to an image and its target, with separate fill behaviour so
// that label images can repeat edge labels instead of inventing a
// background class.
package imageaugmentor

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/menta2k/image-augmentor/pkg/affine"
	"github.com/menta2k/image-augmentor/pkg/tensor"
	"github.com/menta2k/image-augmentor/pkg/transforms"
)

// Version of the image augmentor library
const Version = "1.0.0"

// Options configures an Augmenter. Arrays passed to Augment and
// AugmentPair are channel-last (height, width, channels).
type Options struct {
	Affine     affine.Config
	Fill       affine.Fill
	TargetFill affine.Fill

	// Cast, when set, casts outputs to OutputDType instead of leaving
	// them as float32.
	Cast        bool
	OutputDType tensor.DType

	// GrayTarget converts target images to a single luminance channel
	// in AugmentImagePair.
	GrayTarget bool

	// Rand is the random source. nil uses a randomly seeded one.
	Rand   *rand.Rand
	Logger *log.Logger
}

// DefaultOptions returns a mild augmentation: ±15° rotation, 10% shifts,
// zoom in [0.9, 1.1], constant black fill and nearest-fill gray targets.
func DefaultOptions() Options {
	return Options{
		Affine: affine.Config{
			RotationRange:    15,
			TranslationRange: []float64{0.1, 0.1},
			ZoomRange:        []float64{0.9, 1.1},
		},
		Fill:       affine.Fill{Mode: affine.Constant},
		TargetFill: affine.Fill{Mode: affine.Nearest},
		GrayTarget: true,
	}
}

// Augmenter applies one configured random affine augmentation per call.
// It is not safe for concurrent use; create one per worker.
type Augmenter struct {
	opts     Options
	composer *affine.Composer
	pipeline *transforms.Compose
}

// New creates an Augmenter with DefaultOptions.
func New() (*Augmenter, error) {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates an Augmenter with custom options.
func NewWithOptions(opts Options) (*Augmenter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	composer, err := affine.New(opts.Affine,
		affine.WithFill(opts.Fill.Mode, opts.Fill.Value),
		affine.WithTargetFill(opts.TargetFill.Mode, opts.TargetFill.Value),
		affine.WithRand(opts.Rand),
		affine.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid affine configuration: %w", err)
	}

	stages := []transforms.Transformer{composer}
	if opts.Cast {
		stages = append(stages, transforms.TypeCast{DType: opts.OutputDType})
	}
	pipeline, err := transforms.NewCompose(stages, transforms.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Augmenter{
		opts:     opts,
		composer: composer,
		pipeline: pipeline,
	}, nil
}

// Stages describes the affine stages in application order.
func (a *Augmenter) Stages() []string {
	return a.composer.Stages()
}

// Augment applies one random augmentation to a channel-last array.
func (a *Augmenter) Augment(x *tensor.Array) (*tensor.Array, error) {
	return a.pipeline.Transform(x)
}

// AugmentPair applies the same random augmentation to x and its target y.
func (a *Augmenter) AugmentPair(x, y *tensor.Array) (*tensor.Array, *tensor.Array, error) {
	if y == nil {
		return nil, nil, errors.New("augment pair: target is nil")
	}
	return a.pipeline.TransformPair(x, y)
}

// AugmentImage applies one random augmentation to an image.
func (a *Augmenter) AugmentImage(img image.Image) (image.Image, error) {
	out, err := a.Augment(tensor.FromImage(img))
	if err != nil {
		return nil, fmt.Errorf("augmentation failed: %w", err)
	}
	outImg, err := tensor.ToImage(out)
	if err != nil {
		return nil, err
	}
	return outImg, nil
}

// AugmentImagePair applies the same random augmentation to an image and
// its label image.
func (a *Augmenter) AugmentImagePair(img, label image.Image) (image.Image, image.Image, error) {
	target := tensor.FromImage(label)
	if a.opts.GrayTarget {
		target = tensor.FromGray(label)
	}
	xOut, yOut, err := a.AugmentPair(tensor.FromImage(img), target)
	if err != nil {
		return nil, nil, fmt.Errorf("augmentation failed: %w", err)
	}
	outImg, err := tensor.ToImage(xOut)
	if err != nil {
		return nil, nil, err
	}
	outLabel, err := tensor.ToImage(yOut)
	if err != nil {
		return nil, nil, err
	}
	return outImg, outLabel, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
