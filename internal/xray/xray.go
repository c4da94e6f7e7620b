// Package xray fits X-ray transmission curves. A parameter vector
// p = (a, b, v, r) describes the bremsstrahlung part of the beam through
// r*((a*b)/((d+a)*(d+b)))^v*exp(-muM0*d); the remaining 1-r is spread over
// characteristic lines with abundances C_i and attenuation mu_i.
package xray

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
)

// NumParams is the length of a parameter vector (a, b, v, r).
const NumParams = 4

// Model holds a measured transmission curve and the attenuation data used
// to fit it.
type Model struct {
	// Thickness of each measurement, in cm.
	Thickness []float64
	// Measured transmission at each thickness.
	Measured []float64
	// MuM0 is the nominal mass attenuation coefficient.
	MuM0 float64
	// Abundance of each characteristic line.
	Abundance []float64
	// MuLines is the attenuation coefficient of each characteristic line.
	MuLines []float64
}

// Validate checks that the slices line up.
func (m *Model) Validate() error {
	switch {
	case len(m.Thickness) == 0:
		return optimization.NewError("no thicknesses").WithComponent("xray").WithOperation("Validate")
	case len(m.Measured) != len(m.Thickness):
		return optimization.NewErrorf("%d measurements for %d thicknesses", len(m.Measured), len(m.Thickness)).
			WithComponent("xray").WithOperation("Validate")
	case len(m.Abundance) != len(m.MuLines):
		return optimization.NewErrorf("%d abundances for %d lines", len(m.Abundance), len(m.MuLines)).
			WithComponent("xray").WithOperation("Validate")
	}
	return nil
}

// Transmission evaluates the model at thickness d.
func (m *Model) Transmission(p []float64, d float64) float64 {
	a, b, v, r := p[0], p[1], p[2], p[3]

	brems := r * math.Pow((a*b)/((d+a)*(d+b)), v) * math.Exp(-m.MuM0*d)

	var lines float64
	for i, c := range m.Abundance {
		lines += c * math.Exp(-m.MuLines[i]*d)
	}
	return brems + (1-r)*lines
}

// Curve evaluates the model at every thickness into dst and returns it.
func (m *Model) Curve(dst, p []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(m.Thickness))
	}
	for i, d := range m.Thickness {
		dst[i] = m.Transmission(p, d)
	}
	return dst
}

// Residual is the Euclidean norm of Measured - Curve(p).
func (m *Model) Residual(p []float64) float64 {
	diff := m.Curve(nil, p)
	floats.Sub(diff, m.Measured)
	return floats.Norm(diff, 2)
}

// Objective adapts Residual to the optimizer. It is safe for concurrent use.
// A malformed model yields an objective that fails on every call.
func (m *Model) Objective() optimization.ObjectiveFunction {
	if err := m.Validate(); err != nil {
		return func([]float64) (float64, error) { return 0, err }
	}
	return func(p []float64) (float64, error) {
		if len(p) != NumParams {
			return 0, fmt.Errorf("xray: parameter vector has %d entries, want %d", len(p), NumParams)
		}
		return m.Residual(p), nil
	}
}

// HalfValueLayer returns the thickness whose transmission is closest to 0.5.
// Ties go to the thinner sample. It is NaN when there are no samples.
func HalfValueLayer(thickness, transmission []float64) float64 {
	if len(transmission) == 0 || len(thickness) < len(transmission) {
		return math.NaN()
	}
	best, bestDist := 0, math.Inf(1)
	for i, t := range transmission {
		if dist := math.Abs(t - 0.5); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return thickness[best]
}

// SimulatedDataset returns a synthetic measurement of a pure exponential
// attenuation exp(-0.5*d) at ten thicknesses in [0.1, 1] cm, together with
// the fitting box and start point used for it.
func SimulatedDataset() (m *Model, lower, upper, x0 []float64) {
	d := floats.Span(make([]float64, 10), 0.1, 1.0)
	measured := make([]float64, len(d))
	for i, v := range d {
		measured[i] = math.Exp(-0.5 * v)
	}

	m = &Model{
		Thickness: d,
		Measured:  measured,
		MuM0:      0.5,
		Abundance: []float64{0.3, 0.2, 0.1},
		MuLines:   []float64{0.4, 0.6, 0.8},
	}
	return m,
		[]float64{0, 0, 0, 0},
		[]float64{10, 10, 1, 1},
		[]float64{1, 1, 0.5, 0.5}
}
