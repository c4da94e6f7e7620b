package gsa

import (
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
)

// Result is the outcome of a run.
type Result struct {
	// X is the best point and F its objective value.
	X []float64
	F float64
	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration
	// Evaluations is Imax*(Imax/5)+1 for a completed run.
	Evaluations int
	Accepted    int
	Iterations  int
	History     []optimization.Evaluation
}

// Solution returns the best candidate as an optimization.Solution.
func (r *Result) Solution() *optimization.Solution {
	return &optimization.Solution{Parameters: append([]float64(nil), r.X...), Value: r.F}
}

// Optimizer runs GSA with a fixed configuration. Successive runs continue
// drawing from the same random source.
type Optimizer struct {
	config     Config
	rng        *rand.Rand
	sampler    *Sampler
	schedule   Schedule
	acceptance Acceptance
	logger     *zap.Logger

	mu   sync.RWMutex
	best *optimization.Solution
}

var _ optimization.Optimizer = (*Optimizer)(nil)

// NewOptimizer applies opts over DefaultConfig and validates the result.
func NewOptimizer(opts ...Option) (*Optimizer, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := cfg.source()
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Optimizer{
		config:     cfg,
		rng:        rand.New(src),
		sampler:    NewSampler(cfg.Visit, src),
		schedule:   NewSchedule(cfg.Visit, cfg.MaxIterations),
		acceptance: NewAcceptance(cfg.Accept, cfg.Boltzmann, cfg.Policy),
		logger:     logger.With(zap.String("component", "gsa"), zap.Int("run", cfg.runIndex)),
	}, nil
}

// Minimize runs GSA on f from x0 inside [lower, upper].
func Minimize(f optimization.ObjectiveFunction, x0, lower, upper []float64, opts ...Option) (*Result, error) {
	start := time.Now()
	o, err := NewOptimizer(opts...)
	if err != nil {
		return nil, err
	}
	space, err := optimization.NewSearchSpace(lower, upper)
	if err != nil {
		return nil, err
	}
	res, err := o.Run(f, x0, space)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// Config returns the validated configuration.
func (o *Optimizer) Config() Config { return o.config }

// GetBestSolution returns the best solution of the current or last run.
func (o *Optimizer) GetBestSolution() *optimization.Solution {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.best.Clone()
}

// Optimize implements optimization.Optimizer.
func (o *Optimizer) Optimize(config optimization.OptimizerConfig) (*optimization.OptimizationResult, error) {
	if config.Space == nil {
		return nil, &optimization.Error{
			Op:        "Optimize",
			Component: "gsa",
			Err:       &optimization.InvalidSearchSpaceError{Reason: "no search space"},
		}
	}
	res, err := o.Run(config.Objective, config.X0, config.Space)
	if err != nil {
		return nil, err
	}
	return &optimization.OptimizationResult{
		BestSolution: res.Solution(),
		History:      res.History,
		Iterations:   res.Iterations,
		Evaluations:  res.Evaluations,
		Elapsed:      res.Elapsed,
	}, nil
}

// Run minimizes f from x0 over space. The objective is called exactly
// Imax*(Imax/5)+1 times unless it fails, in which case its error is returned
// wrapped and the run stops.
func (o *Optimizer) Run(f optimization.ObjectiveFunction, x0 []float64, space *optimization.SearchSpace) (*Result, error) {
	start := time.Now()
	if f == nil {
		return nil, optimization.NewError("objective function is required").WithComponent("gsa").WithOperation("Run")
	}
	if err := space.CheckPoint(x0); err != nil {
		return nil, err
	}

	imax := o.config.MaxIterations
	inner := imax / 5
	dim := space.Dim()

	x := append([]float64(nil), x0...)
	fx, err := f(x)
	if err != nil {
		return nil, evalError(err, 0)
	}
	current := &optimization.Solution{Parameters: x, Value: fx}
	best := current.Clone()
	o.setBest(best)

	res := &Result{Evaluations: 1}
	if o.config.RecordHistory {
		res.History = make([]optimization.Evaluation, 0, imax)
	}

	z := make([]float64, dim)
	for t := 1; t <= imax; t++ {
		visitTemp, acceptTemp := o.schedule.Temperatures(t)

		for i := 0; i < inner; i++ {
			o.sampler.Sample(z, dim, visitTemp)
			xNew := space.Step(nil, current.Parameters, z)

			fNew, err := f(xNew)
			res.Evaluations++
			if err != nil {
				return nil, evalError(err, t)
			}

			ok, err := o.acceptance.Accept(current.Value, fNew, acceptTemp, o.rng.Float64)
			if err != nil {
				return nil, optimization.WrapErrorf(err, "acceptance at iteration %d", t).
					WithComponent("gsa").WithOperation("Run")
			}
			if ok {
				current = &optimization.Solution{Parameters: xNew, Value: fNew}
				res.Accepted++
			}

			if current.Value < best.Value {
				best = current.Clone()
				o.setBest(best)
			}
		}

		res.Iterations = t
		if res.History != nil {
			res.History = append(res.History, optimization.Evaluation{Iteration: t, Solution: best})
		}
		if ce := o.logger.Check(zap.DebugLevel, "gsa iteration"); ce != nil {
			ce.Write(
				zap.Int("iteration", t),
				zap.Float64("visit_temp", visitTemp),
				zap.Float64("accept_temp", acceptTemp),
				zap.Float64("current", current.Value),
				zap.Float64("best", best.Value),
				zap.Int("accepted", res.Accepted),
			)
		}
		if o.config.Observer != nil {
			o.config.Observer.OnIteration(Progress{
				Run:           o.config.runIndex,
				Iteration:     t,
				MaxIterations: imax,
				VisitTemp:     visitTemp,
				AcceptTemp:    acceptTemp,
				Best:          best,
				Evaluations:   res.Evaluations,
				Accepted:      res.Accepted,
			})
		}
	}

	res.X = append([]float64(nil), best.Parameters...)
	res.F = best.Value
	res.Elapsed = time.Since(start)
	return res, nil
}

func (o *Optimizer) setBest(s *optimization.Solution) {
	o.mu.Lock()
	o.best = s
	o.mu.Unlock()
}

func evalError(err error, t int) error {
	return optimization.WrapErrorf(err, "objective failed at iteration %d", t).
		WithComponent("gsa").WithOperation("Run")
}
