// Package refine polishes an annealing result with a derivative-free local
// search restricted to the search box.
package refine

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
)

// Settings controls the Nelder-Mead polish.
type Settings struct {
	// MaxEvaluations caps objective calls; 0 means unlimited.
	MaxEvaluations int
	// Tolerance is the absolute and relative function convergence threshold.
	Tolerance float64
	// SimplexScale sizes the initial simplex as a fraction of each box width.
	SimplexScale float64
}

// DefaultSettings returns the settings used by the server and the CLI.
func DefaultSettings() Settings {
	return Settings{
		MaxEvaluations: 2000,
		Tolerance:      1e-10,
		SimplexScale:   0.05,
	}
}

// Result of a polish.
type Result struct {
	X []float64
	F float64
	// Improved reports whether X is strictly better than the start point.
	Improved    bool
	Evaluations int
	Status      string
}

// Polish runs Nelder-Mead from x0, whose objective value f0 is already
// known. Every trial point is clamped into space before f sees it. When the
// search finds nothing strictly better than f0, the returned result is x0
// itself with Improved false. The first objective error aborts the search
// and is returned.
func Polish(f optimization.ObjectiveFunction, space *optimization.SearchSpace, x0 []float64, f0 float64, s Settings) (*Result, error) {
	if f == nil {
		return nil, optimization.NewError("objective function is required").WithComponent("refine").WithOperation("Polish")
	}
	if err := space.CheckPoint(x0); err != nil {
		return nil, err
	}
	if s.SimplexScale <= 0 {
		s.SimplexScale = DefaultSettings().SimplexScale
	}

	start := space.Clamp(nil, x0)
	dim := space.Dim()
	scratch := make([]float64, dim)
	evals := 0
	var objErr error

	eval := func(x []float64) float64 {
		if objErr != nil {
			return math.Inf(1)
		}
		space.Clamp(scratch, x)
		v, err := f(scratch)
		evals++
		if err != nil {
			objErr = err
			return math.Inf(1)
		}
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}

	// Initial simplex: the start point plus one vertex per axis, stepping
	// towards the interior so that no vertex collapses onto a face.
	width := space.Width()
	upper := space.Upper()
	vertices := make([][]float64, dim+1)
	values := make([]float64, dim+1)
	vertices[0] = append([]float64(nil), start...)
	values[0] = eval(start)
	for i := 0; i < dim; i++ {
		v := append([]float64(nil), start...)
		step := s.SimplexScale * width[i]
		if v[i]+step > upper[i] {
			step = -step
		}
		v[i] += step
		vertices[i+1] = v
		values[i+1] = eval(v)
	}
	if objErr != nil {
		return nil, polishError(objErr)
	}

	settings := &optimize.Settings{
		InitValues: &optimize.Location{F: values[0]},
		Converger: &optimize.FunctionConverge{
			Absolute:   s.Tolerance,
			Relative:   s.Tolerance,
			Iterations: 100,
		},
		FuncEvaluations: s.MaxEvaluations,
	}
	method := &optimize.NelderMead{
		InitialVertices: vertices,
		InitialValues:   values,
	}

	out := &Result{X: append([]float64(nil), x0...), F: f0}
	res, err := optimize.Minimize(optimize.Problem{Func: eval}, start, settings, method)
	out.Evaluations = evals
	if objErr != nil {
		return nil, polishError(objErr)
	}
	if err != nil && res == nil {
		out.Status = err.Error()
		return out, nil
	}
	out.Status = res.Status.String()

	// The simplex may have stepped outside; report the point f actually saw.
	best, bestF := space.Clamp(nil, res.X), res.F
	if i := floats.MinIdx(values); values[i] < bestF {
		best, bestF = space.Clamp(nil, vertices[i]), values[i]
	}
	if bestF < f0 {
		out.X, out.F, out.Improved = best, bestF, true
	}
	return out, nil
}

func polishError(err error) error {
	return optimization.WrapError(err, "objective failed during refinement").
		WithComponent("refine").WithOperation("Polish")
}
