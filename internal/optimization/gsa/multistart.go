package gsa

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
)

// MultiStartResult aggregates independent runs.
type MultiStartResult struct {
	// Best is the run with the lowest value; ties go to the lower index.
	Best    *Result
	BestRun int
	Runs    []*Result
	Elapsed time.Duration
}

// MultiStart runs one GSA per start point on up to workers goroutines. Run i
// is seeded with seed+i, where seed comes from opts (time based when zero), so
// the aggregate is reproducible. Each run owns its optimizer; f must be safe
// for concurrent calls. A Source in opts is ignored.
//
// ctx only gates runs that have not started yet; a started run always
// completes or fails on its own.
func MultiStart(ctx context.Context, f optimization.ObjectiveFunction, starts [][]float64, space *optimization.SearchSpace, workers int, opts ...Option) (*MultiStartResult, error) {
	begin := time.Now()
	if len(starts) == 0 {
		return nil, optimization.NewError("at least one start point is required").WithComponent("gsa").WithOperation("MultiStart")
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if workers < 1 {
		workers = 1
	}

	runs := make([]*Result, len(starts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, x0 := range starts {
		runOpts := append(append([]Option(nil), opts...),
			WithSource(nil),
			WithSeed(seed+uint64(i)),
			withRunIndex(i),
		)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o, err := NewOptimizer(runOpts...)
			if err != nil {
				return err
			}
			res, err := o.Run(f, x0, space)
			if err != nil {
				return err
			}
			runs[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &MultiStartResult{Runs: runs, Best: runs[0]}
	for i, r := range runs[1:] {
		if r.F < out.Best.F {
			out.Best = r
			out.BestRun = i + 1
		}
	}
	out.Elapsed = time.Since(begin)
	return out, nil
}

// RandomStarts returns x0 followed by n-1 points drawn uniformly from space
// with a source derived from seed.
func RandomStarts(space *optimization.SearchSpace, x0 []float64, n int, seed uint64) [][]float64 {
	if n < 1 {
		n = 1
	}
	starts := make([][]float64, n)
	starts[0] = append([]float64(nil), x0...)

	rng := rand.New(rand.NewPCG(seed, ^seed))
	lower, width := space.Lower(), space.Width()
	for i := 1; i < n; i++ {
		p := make([]float64, len(lower))
		for j := range p {
			p[j] = lower[j] + rng.Float64()*width[j]
		}
		starts[i] = p
	}
	return starts
}
