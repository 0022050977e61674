package analysis

import (
	"fmt"
	"math"
)

// Range is an inclusive numeric band.
type Range struct {
	Min int `yaml:"min" json:"min" validate:"gte=0"`
	Max int `yaml:"max" json:"max" validate:"gtefield=Min"`
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 {
	return float64(r.Min+r.Max) / 2
}

// Distance returns how far n is from the midpoint.
func (r Range) Distance(n int) float64 {
	return math.Abs(float64(n) - r.Mid())
}

// Delta returns the smallest change that brings n into the range: positive
// when n is short, negative when it is over, zero when it already fits.
func (r Range) Delta(n int) int {
	switch {
	case n < r.Min:
		return r.Min - n
	case n > r.Max:
		return r.Max - n
	}
	return 0
}

// Validate rejects negative or inverted ranges.
func (r Range) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("range min %d is negative", r.Min)
	}
	if r.Min > r.Max {
		return fmt.Errorf("range min %d exceeds max %d", r.Min, r.Max)
	}
	return nil
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
