package affine

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"
)

type settings struct {
	fill        Fill
	targetFill  Fill
	channelAxis int
	rng         *rand.Rand
	logger      *log.Logger
}

// Option configures a builder or composer.
type Option func(*settings)

// WithFill sets the fill used for the input image. Defaults to constant 0.
func WithFill(mode FillMode, value float64) Option {
	return func(s *settings) { s.fill = Fill{Mode: mode, Value: value} }
}

// WithTargetFill sets the fill used for the paired target image.
// Defaults to nearest, which keeps label images free of invented classes.
func WithTargetFill(mode FillMode, value float64) Option {
	return func(s *settings) { s.targetFill = Fill{Mode: mode, Value: value} }
}

// WithChannelAxis sets the channel axis of the arrays being transformed.
// Defaults to -1 (channel last).
func WithChannelAxis(axis int) Option {
	return func(s *settings) { s.channelAxis = axis }
}

// WithRand sets the random source parameters are drawn from. A *rand.Rand
// is not safe for concurrent use; give each worker its own.
func WithRand(r *rand.Rand) Option {
	return func(s *settings) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewRand returns a PCG-backed source seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newSettings(opts []Option) settings {
	s := settings{
		fill:        Fill{Mode: Constant},
		targetFill:  Fill{Mode: Nearest},
		channelAxis: -1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

func (s *settings) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}
