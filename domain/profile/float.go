package profile

import (
	"fmt"
	"math"
	"strconv"
)

// Float is a JSON-safe float64. Profiles travel as JSON documents, and raw
// IEEE-754 NaN/Infinity are not valid JSON, so NaN marshals to null and
// infinities marshal to sentinel strings.
type Float float64

// F wraps a float64, mapping NaN to nil so callers can assign statistics
// without checking them first.
func F(v float64) *Float {
	if math.IsNaN(v) {
		return nil
	}
	f := Float(v)
	return &f
}

// Value returns the underlying float64.
func (f Float) Value() float64 {
	return float64(f)
}

// IsInf reports whether the value is infinite in either direction.
func (f Float) IsInf() bool {
	return math.IsInf(float64(f), 0)
}

// MarshalJSON keeps the wire format valid JSON for any float64.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte("null"), nil
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts numbers, null and the infinity sentinels.
func (f *Float) UnmarshalJSON(data []byte) error {
	s := string(data)
	switch s {
	case "null":
		*f = Float(math.NaN())
		return nil
	case `"Infinity"`:
		*f = Float(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*f = Float(math.Inf(-1))
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid float value %s: %w", s, err)
	}
	*f = Float(v)
	return nil
}
