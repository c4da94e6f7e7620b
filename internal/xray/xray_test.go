package xray

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization/gsa"
)

func TestSimulatedDataset(t *testing.T) {
	m, lower, upper, x0 := SimulatedDataset()
	require.NoError(t, m.Validate())

	require.Len(t, m.Thickness, 10)
	assert.InDelta(t, 0.1, m.Thickness[0], 1e-12)
	assert.InDelta(t, 1.0, m.Thickness[9], 1e-12)
	assert.InDelta(t, math.Exp(-0.25), m.Measured[4], 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0}, lower)
	assert.Equal(t, []float64{10, 10, 1, 1}, upper)
	assert.Equal(t, []float64{1, 1, 0.5, 0.5}, x0)
}

func TestTransmission(t *testing.T) {
	m, _, _, x0 := SimulatedDataset()

	assert.InDelta(t, 0.490007698, m.Transmission(x0, 0.5), 1e-8)

	// With r = 1 and v = 0 the model is the nominal exponential.
	pure := []float64{3, 7, 0, 1}
	for _, d := range m.Thickness {
		assert.InDelta(t, math.Exp(-0.5*d), m.Transmission(pure, d), 1e-12)
	}

	// r = 0 leaves the characteristic lines only.
	lines := m.Transmission([]float64{1, 1, 1, 0}, 0)
	assert.InDelta(t, 0.6, lines, 1e-12)
}

func TestResidual(t *testing.T) {
	m, _, _, x0 := SimulatedDataset()

	assert.InDelta(t, 0.87614703, m.Residual(x0), 1e-7)
	assert.InDelta(t, 0, m.Residual([]float64{10, 10, 0, 1}), 1e-12)

	f := m.Objective()
	v, err := f(x0)
	require.NoError(t, err)
	assert.Equal(t, m.Residual(x0), v)

	_, err = f([]float64{1, 2})
	assert.Error(t, err)
}

func TestHalfValueLayer(t *testing.T) {
	m, _, _, x0 := SimulatedDataset()

	assert.InDelta(t, 0.5, HalfValueLayer(m.Thickness, m.Curve(nil, x0)), 1e-12)
	// The measured curve never drops to 0.5, so the thickest sample is closest.
	assert.InDelta(t, 1.0, HalfValueLayer(m.Thickness, m.Measured), 1e-12)
	// Ties go to the first sample.
	assert.Equal(t, 1.0, HalfValueLayer([]float64{1, 2}, []float64{0.25, 0.75}))
	assert.True(t, math.IsNaN(HalfValueLayer(nil, nil)))
	assert.True(t, math.IsNaN(HalfValueLayer([]float64{1}, []float64{0.4, 0.6})))
}

func TestObjectiveRejectsMalformedModel(t *testing.T) {
	m := &Model{Thickness: []float64{0.1, 0.2}, Measured: []float64{1}}
	_, err := m.Objective()([]float64{1, 1, 0.5, 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 measurements for 2 thicknesses")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		model Model
	}{
		{"empty", Model{}},
		{"measured mismatch", Model{Thickness: []float64{1, 2}, Measured: []float64{1}}},
		{"lines mismatch", Model{Thickness: []float64{1}, Measured: []float64{1}, Abundance: []float64{0.1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.model.Validate())
		})
	}
}

func TestFitSimulatedDataset(t *testing.T) {
	m, lower, upper, x0 := SimulatedDataset()

	for seed := uint64(1); seed <= 3; seed++ {
		res, err := gsa.Minimize(m.Objective(), x0, lower, upper,
			gsa.WithMaxIterations(50), gsa.WithSeed(seed))
		require.NoError(t, err)

		assert.Less(t, res.F, 1e-3, "seed %d", seed)
		assert.Equal(t, 50*10+1, res.Evaluations)
		for i := range res.X {
			assert.GreaterOrEqual(t, res.X[i], lower[i])
			assert.LessOrEqual(t, res.X[i], upper[i])
		}
	}
}
