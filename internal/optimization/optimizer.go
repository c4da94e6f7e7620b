package optimization

import (
	"context"
	"time"
)

// Optimizer defines the interface for optimization algorithms
type Optimizer interface {
	// Optimize runs the optimization process to completion
	Optimize(config OptimizerConfig) (*OptimizationResult, error)

	// GetBestSolution returns the best solution found so far
	GetBestSolution() *Solution
}

// OptimizerConfig contains the problem handed to an optimizer
type OptimizerConfig struct {
	// Objective function to minimize
	Objective ObjectiveFunction

	// Starting point, may lie outside the box
	X0 []float64

	// Search box
	Space *SearchSpace
}

// ObjectiveFunction defines the function to be minimized. A returned error
// aborts the run that called it.
type ObjectiveFunction func([]float64) (float64, error)

// WithContext makes f fail with ctx.Err() once ctx is done, so a run
// stops at its next evaluation.
func WithContext(ctx context.Context, f ObjectiveFunction) ObjectiveFunction {
	return func(x []float64) (float64, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return f(x)
	}
}

// Solution is a point of the search space together with its objective value.
type Solution struct {
	Parameters []float64
	Value      float64
}

// Clone returns a deep copy of the solution.
func (s *Solution) Clone() *Solution {
	if s == nil {
		return nil
	}
	return &Solution{
		Parameters: append([]float64(nil), s.Parameters...),
		Value:      s.Value,
	}
}

// Evaluation represents the best solution at the end of an outer iteration
type Evaluation struct {
	Iteration int
	Solution  *Solution
}

// OptimizationResult contains the result of an optimization run
type OptimizationResult struct {
	BestSolution *Solution
	History      []Evaluation
	Iterations   int
	Evaluations  int
	Elapsed      time.Duration
}
