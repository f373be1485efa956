package affine

import (
	"fmt"
	"math"
	"strings"
)

// FillMode decides what an output pixel receives when its source location
// falls outside the input.
type FillMode string

const (
	// Constant fills with Fill.Value.
	Constant FillMode = "constant"
	// Nearest repeats the closest edge pixel.
	Nearest FillMode = "nearest"
	// Reflect mirrors about the pixel edge (d c b a | a b c d | d c b a).
	Reflect FillMode = "reflect"
	// Mirror mirrors about the edge pixel centre (d c b | a b c d | c b a).
	Mirror FillMode = "mirror"
	// Wrap tiles the input periodically.
	Wrap FillMode = "wrap"
)

// Fill pairs a mode with the value used by Constant.
type Fill struct {
	Mode  FillMode
	Value float64
}

// ParseFillMode validates a fill mode name.
func ParseFillMode(s string) (FillMode, error) {
	m := FillMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFillMode, s)
	}
	return m, nil
}

func (m FillMode) valid() bool {
	switch m {
	case Constant, Nearest, Reflect, Mirror, Wrap:
		return true
	}
	return false
}

// indexLimit keeps float-to-int conversion of far out-of-range
// coordinates well defined.
const indexLimit = 1 << 40

// roundIndex rounds a source coordinate to the nearest pixel index.
func roundIndex(v float64) int {
	v = math.Floor(v + 0.5)
	switch {
	case math.IsNaN(v):
		return -indexLimit
	case v > indexLimit:
		return indexLimit
	case v < -indexLimit:
		return -indexLimit
	}
	return int(v)
}

// resolve maps index i onto [0, n). ok is false when the pixel must take
// the constant fill value.
func (m FillMode) resolve(i, n int) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	switch m {
	case Nearest:
		if i < 0 {
			return 0, true
		}
		return n - 1, true
	case Reflect:
		period := 2 * n
		i = mod(i, period)
		if i >= n {
			i = period - 1 - i
		}
		return i, true
	case Mirror:
		if n == 1 {
			return 0, true
		}
		period := 2 * (n - 1)
		i = mod(i, period)
		if i >= n {
			i = period - i
		}
		return i, true
	case Wrap:
		return mod(i, n), true
	default:
		return 0, false
	}
}

func mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
