package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// SearchSpace is an axis-aligned box [Lower, Upper]. It is immutable once
// built; accessors return copies.
type SearchSpace struct {
	lower []float64
	upper []float64
	width []float64
}

// NewSearchSpace validates and copies the bounds. Every dimension needs
// lower[i] < upper[i] with both ends finite.
func NewSearchSpace(lower, upper []float64) (*SearchSpace, error) {
	if len(lower) == 0 {
		return nil, spaceError("no dimensions")
	}
	if len(lower) != len(upper) {
		return nil, spaceError(fmt.Sprintf("lower has %d entries, upper has %d", len(lower), len(upper)))
	}
	for i := range lower {
		l, u := lower[i], upper[i]
		if math.IsNaN(l) || math.IsNaN(u) || math.IsInf(l, 0) || math.IsInf(u, 0) {
			return nil, spaceError(fmt.Sprintf("dimension %d has non-finite bounds [%v, %v]", i, l, u))
		}
		if !(l < u) {
			return nil, spaceError(fmt.Sprintf("dimension %d has lower %v >= upper %v", i, l, u))
		}
	}

	s := &SearchSpace{
		lower: append([]float64(nil), lower...),
		upper: append([]float64(nil), upper...),
		width: make([]float64, len(lower)),
	}
	floats.SubTo(s.width, s.upper, s.lower)
	return s, nil
}

// NewSearchSpaceFromBounds builds a space from [min, max] pairs.
func NewSearchSpaceFromBounds(bounds [][2]float64) (*SearchSpace, error) {
	lower := make([]float64, len(bounds))
	upper := make([]float64, len(bounds))
	for i, b := range bounds {
		lower[i], upper[i] = b[0], b[1]
	}
	return NewSearchSpace(lower, upper)
}

func spaceError(reason string) error {
	return &Error{
		Op:        "NewSearchSpace",
		Component: "optimization",
		Err:       &InvalidSearchSpaceError{Reason: reason},
	}
}

// Dim returns the number of dimensions.
func (s *SearchSpace) Dim() int { return len(s.lower) }

// Lower returns a copy of the lower bounds.
func (s *SearchSpace) Lower() []float64 { return append([]float64(nil), s.lower...) }

// Upper returns a copy of the upper bounds.
func (s *SearchSpace) Upper() []float64 { return append([]float64(nil), s.upper...) }

// Width returns a copy of upper - lower.
func (s *SearchSpace) Width() []float64 { return append([]float64(nil), s.width...) }

// Bounds returns the box as [min, max] pairs.
func (s *SearchSpace) Bounds() [][2]float64 {
	b := make([][2]float64, len(s.lower))
	for i := range s.lower {
		b[i] = [2]float64{s.lower[i], s.upper[i]}
	}
	return b
}

// Center returns the midpoint of the box.
func (s *SearchSpace) Center() []float64 {
	c := make([]float64, len(s.lower))
	for i := range c {
		c[i] = s.lower[i] + s.width[i]/2
	}
	return c
}

// Contains reports whether x lies inside the closed box.
func (s *SearchSpace) Contains(x []float64) bool {
	if len(x) != len(s.lower) {
		return false
	}
	for i, v := range x {
		if !(v >= s.lower[i] && v <= s.upper[i]) {
			return false
		}
	}
	return true
}

// CheckPoint verifies that x has the dimension of the space.
func (s *SearchSpace) CheckPoint(x []float64) error {
	if len(x) != len(s.lower) {
		return &Error{
			Op:        "CheckPoint",
			Component: "optimization",
			Err:       &InvalidSearchSpaceError{Reason: fmt.Sprintf("point has %d entries, space has %d", len(x), len(s.lower))},
		}
	}
	return nil
}

// Clamp writes x clamped into the box to dst and returns it. dst may alias x.
// NaN entries become the lower bound.
func (s *SearchSpace) Clamp(dst, x []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for i, v := range x {
		dst[i] = s.clampAt(i, v, s.lower[i])
	}
	return dst
}

// Step writes clamp(x + z*width) to dst and returns it. Infinite entries of z
// land on the matching boundary; a NaN entry leaves that coordinate at
// clamp(x[i]).
func (s *SearchSpace) Step(dst, x, z []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for i := range x {
		cur := s.clampAt(i, x[i], s.lower[i])
		dst[i] = s.clampAt(i, x[i]+z[i]*s.width[i], cur)
	}
	return dst
}

func (s *SearchSpace) clampAt(i int, v, nan float64) float64 {
	switch {
	case math.IsNaN(v):
		return nan
	case v < s.lower[i]:
		return s.lower[i]
	case v > s.upper[i]:
		return s.upper[i]
	}
	return v
}
