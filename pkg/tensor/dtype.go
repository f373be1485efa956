package tensor

import (
	"fmt"
	"math"
	"strings"
)

// DType tags the numeric type an Array's values are constrained to.
// Values are always held as float64; the tag decides how they are cast.
type DType int

const (
	Float64 DType = iota
	Float32
	Int64
	Int32
	Int16
	Int8
	Uint16
	Uint8
	Bool
)

var dtypeNames = map[DType]string{
	Float64: "float64",
	Float32: "float32",
	Int64:   "int64",
	Int32:   "int32",
	Int16:   "int16",
	Int8:    "int8",
	Uint16:  "uint16",
	Uint8:   "uint8",
	Bool:    "bool",
}

func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// ParseDType maps a name such as "float32" or "uint8" to its DType.
// "float" and "int" are accepted as aliases for float64 and int64.
func ParseDType(s string) (DType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "float":
		return Float64, nil
	case "int":
		return Int64, nil
	}
	for d, n := range dtypeNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("tensor: unknown dtype %q", s)
}

// cast converts v to the value it would have when stored as d.
// Integer types truncate toward zero and wrap to their width.
func (d DType) cast(v float64) float64 {
	switch d {
	case Float32:
		return float64(float32(v))
	case Int64:
		return float64(truncInt(v))
	case Int32:
		return float64(int32(truncInt(v)))
	case Int16:
		return float64(int16(truncInt(v)))
	case Int8:
		return float64(int8(truncInt(v)))
	case Uint16:
		return float64(uint16(truncInt(v)))
	case Uint8:
		return float64(uint8(truncInt(v)))
	case Bool:
		if v != 0 {
			return 1
		}
		return 0
	default:
		return v
	}
}

func truncInt(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	return int64(math.Trunc(v))
}
