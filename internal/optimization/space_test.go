package optimization

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearchSpace(t *testing.T) {
	tests := []struct {
		name    string
		lower   []float64
		upper   []float64
		wantErr bool
	}{
		{name: "valid box", lower: []float64{-1, 0}, upper: []float64{1, 10}},
		{name: "empty", lower: nil, upper: nil, wantErr: true},
		{name: "length mismatch", lower: []float64{0}, upper: []float64{1, 2}, wantErr: true},
		{name: "degenerate dimension", lower: []float64{0, 1}, upper: []float64{1, 1}, wantErr: true},
		{name: "inverted dimension", lower: []float64{2}, upper: []float64{1}, wantErr: true},
		{name: "infinite bound", lower: []float64{math.Inf(-1)}, upper: []float64{1}, wantErr: true},
		{name: "nan bound", lower: []float64{0}, upper: []float64{math.NaN()}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSearchSpace(tt.lower, tt.upper)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidSearchSpace))
				var se *InvalidSearchSpaceError
				assert.True(t, errors.As(err, &se))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.lower), s.Dim())
		})
	}
}

func TestSearchSpaceCopiesBounds(t *testing.T) {
	lower := []float64{0, 0}
	upper := []float64{1, 2}
	s, err := NewSearchSpace(lower, upper)
	require.NoError(t, err)

	lower[0] = -100
	upper[1] = 100
	assert.Equal(t, []float64{0, 0}, s.Lower())
	assert.Equal(t, []float64{1, 2}, s.Upper())

	got := s.Lower()
	got[0] = 42
	assert.Equal(t, []float64{0, 0}, s.Lower())
}

func TestSearchSpaceAccessors(t *testing.T) {
	s, err := NewSearchSpaceFromBounds([][2]float64{{-10, 10}, {0, 1}})
	require.NoError(t, err)

	assertFloat64SlicesEqual(t, s.Width(), []float64{20, 1}, 0)
	assertFloat64SlicesEqual(t, s.Center(), []float64{0, 0.5}, 0)
	assert.Equal(t, [][2]float64{{-10, 10}, {0, 1}}, s.Bounds())

	assert.True(t, s.Contains([]float64{10, 0}))
	assert.False(t, s.Contains([]float64{10.5, 0}))
	assert.False(t, s.Contains([]float64{0}))
	assert.False(t, s.Contains([]float64{math.NaN(), 0}))

	assert.NoError(t, s.CheckPoint([]float64{1, 1}))
	assert.ErrorIs(t, s.CheckPoint([]float64{1}), ErrInvalidSearchSpace)
}

func TestSearchSpaceClamp(t *testing.T) {
	s, err := NewSearchSpace([]float64{-1, -1, -1}, []float64{1, 1, 1})
	require.NoError(t, err)

	got := s.Clamp(nil, []float64{-5, 0.5, math.NaN()})
	assertFloat64SlicesEqual(t, got, []float64{-1, 0.5, -1}, 0)

	x := []float64{3, -3, 0}
	s.Clamp(x, x)
	assertFloat64SlicesEqual(t, x, []float64{1, -1, 0}, 0)
}

func TestSearchSpaceStep(t *testing.T) {
	s, err := NewSearchSpace([]float64{-10, 0, 0, 0}, []float64{10, 1, 1, 1})
	require.NoError(t, err)

	x := []float64{0, 0.5, 0.5, 0.5}
	z := []float64{0.1, math.Inf(1), math.Inf(-1), math.NaN()}
	got := s.Step(nil, x, z)

	// 0 + 0.1*20 = 2; infinities land on the boundary; NaN keeps the coordinate.
	assertFloat64SlicesEqual(t, got, []float64{2, 1, 0, 0.5}, 1e-12)
	assert.True(t, s.Contains(got))

	// A start outside the box is pulled inside even for NaN steps.
	got = s.Step(nil, []float64{50, 0, 0, 7}, []float64{0, 0, 0, math.NaN()})
	assertFloat64SlicesEqual(t, got, []float64{10, 0, 0, 1}, 0)
}

func TestSolutionClone(t *testing.T) {
	var nilSol *Solution
	assert.Nil(t, nilSol.Clone())

	s := &Solution{Parameters: []float64{1, 2}, Value: 3}
	c := s.Clone()
	c.Parameters[0] = 99
	assert.Equal(t, 1.0, s.Parameters[0])
	assert.Equal(t, 3.0, c.Value)

	v, err := sphere(c.Parameters)
	require.NoError(t, err)
	assert.Equal(t, 99.0*99.0+4.0, v)
}
