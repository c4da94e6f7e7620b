// Package objectives is the registry of named objective functions that the
// server and the CLI can minimize.
package objectives

import (
	"fmt"
	"math"
	"sort"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
	"github.com/EGRM23/fisica-computacional-2024/internal/xray"
)

// Objective describes a registered function with a default problem setup.
type Objective struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	// MinDim and MaxDim bound the accepted dimension; MaxDim 0 means unbounded.
	MinDim int `json:"min_dim" yaml:"min_dim"`
	MaxDim int `json:"max_dim,omitempty" yaml:"max_dim,omitempty"`
	// Lower, Upper and X0 are the defaults used when a caller gives no bounds.
	Lower []float64 `json:"lower" yaml:"lower"`
	Upper []float64 `json:"upper" yaml:"upper"`
	X0    []float64 `json:"x0" yaml:"x0"`

	Func optimization.ObjectiveFunction `json:"-" yaml:"-"`
}

// CheckDim reports whether n is an accepted dimension.
func (o Objective) CheckDim(n int) error {
	if n < o.MinDim || (o.MaxDim > 0 && n > o.MaxDim) {
		return &optimization.Error{
			Op:        "CheckDim",
			Component: "objectives",
			Err: &optimization.InvalidSearchSpaceError{
				Reason: dimReason(o, n),
			},
		}
	}
	return nil
}

func dimReason(o Objective, n int) string {
	if o.MaxDim > 0 && o.MinDim == o.MaxDim {
		return fmt.Sprintf("%s needs exactly %d dimensions, got %d", o.Name, o.MinDim, n)
	}
	if n < o.MinDim {
		return fmt.Sprintf("%s needs at least %d dimensions, got %d", o.Name, o.MinDim, n)
	}
	return fmt.Sprintf("%s accepts at most %d dimensions, got %d", o.Name, o.MaxDim, n)
}

var registry = map[string]Objective{}

func register(o Objective) {
	registry[o.Name] = o
}

func init() {
	register(Objective{
		Name:        "sphere",
		Description: "sum of x_i^2, minimum 0 at the origin",
		MinDim:      1,
		Lower:       []float64{-5, -5},
		Upper:       []float64{5, 5},
		X0:          []float64{4, 4},
		Func:        Sphere,
	})
	register(Objective{
		Name:        "shifted",
		Description: "sum of (x_i-3)^2, minimum 0 at x_i = 3",
		MinDim:      1,
		Lower:       []float64{-10},
		Upper:       []float64{10},
		X0:          []float64{0},
		Func:        Shifted,
	})
	register(Objective{
		Name:        "rastrigin",
		Description: "10n + sum of x_i^2 - 10cos(2 pi x_i), minimum 0 at the origin",
		MinDim:      1,
		Lower:       []float64{-5.12, -5.12},
		Upper:       []float64{5.12, 5.12},
		X0:          []float64{3, -2},
		Func:        Rastrigin,
	})
	register(Objective{
		Name:        "rosenbrock",
		Description: "sum of 100(x_{i+1}-x_i^2)^2 + (1-x_i)^2, minimum 0 at x_i = 1",
		MinDim:      2,
		Lower:       []float64{-2, -2},
		Upper:       []float64{2, 2},
		X0:          []float64{-1.5, 1.5},
		Func:        Rosenbrock,
	})

	model, lower, upper, x0 := xray.SimulatedDataset()
	register(Objective{
		Name:        "transmission",
		Description: "residual of the X-ray transmission model (a, b, v, r) against a simulated attenuation curve",
		MinDim:      xray.NumParams,
		MaxDim:      xray.NumParams,
		Lower:       lower,
		Upper:       upper,
		X0:          x0,
		Func:        model.Objective(),
	})
}

// Lookup returns the objective registered under name. The returned slices
// are copies.
func Lookup(name string) (Objective, error) {
	o, ok := registry[name]
	if !ok {
		return Objective{}, optimization.NewErrorf("unknown objective %q", name).
			WithComponent("objectives").WithOperation("Lookup")
	}
	o.Lower = append([]float64(nil), o.Lower...)
	o.Upper = append([]float64(nil), o.Upper...)
	o.X0 = append([]float64(nil), o.X0...)
	return o, nil
}

// Names returns the registered names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every objective sorted by name.
func All() []Objective {
	out := make([]Objective, 0, len(registry))
	for _, name := range Names() {
		o, _ := Lookup(name)
		out = append(out, o)
	}
	return out
}

// Sphere is sum of x_i^2.
func Sphere(x []float64) (float64, error) {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return s, nil
}

// Shifted is sum of (x_i-3)^2.
func Shifted(x []float64) (float64, error) {
	var s float64
	for _, v := range x {
		s += (v - 3) * (v - 3)
	}
	return s, nil
}

// Rastrigin is 10n + sum of x_i^2 - 10cos(2 pi x_i).
func Rastrigin(x []float64) (float64, error) {
	s := 10 * float64(len(x))
	for _, v := range x {
		s += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return s, nil
}

// Rosenbrock is the banana function; it needs at least two dimensions.
func Rosenbrock(x []float64) (float64, error) {
	if len(x) < 2 {
		return 0, optimization.NewErrorf("rosenbrock needs 2 dimensions, got %d", len(x)).WithComponent("objectives")
	}
	var s float64
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		s += 100*a*a + b*b
	}
	return s, nil
}
