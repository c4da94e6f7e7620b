package gsa

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
)

// BenchmarkMinimize measures a full run on a 5-D shifted quadratic.
func BenchmarkMinimize(b *testing.B) {
	lower := []float64{-10, -10, -10, -10, -10}
	upper := []float64{10, 10, 10, 10, 10}
	x0 := make([]float64, len(lower))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Minimize(shifted, x0, lower, upper, WithMaxIterations(100), WithSeed(42)); err != nil {
			b.Fatalf("Minimize failed: %v", err)
		}
	}
}

// BenchmarkSample measures a single 5-D visiting draw.
func BenchmarkSample(b *testing.B) {
	for _, qv := range []float64{1.5, 2, 2.7} {
		b.Run(fmt.Sprintf("qv=%g", qv), func(b *testing.B) {
			s := NewSampler(qv, rand.NewPCG(42, 42))
			dst := make([]float64, 5)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				dst = s.Sample(dst, 5, 1.0)
			}
		})
	}
}

// BenchmarkMultiStart measures eight restarts on four workers.
func BenchmarkMultiStart(b *testing.B) {
	space, err := optimization.NewSearchSpace([]float64{-10, -10}, []float64{10, 10})
	if err != nil {
		b.Fatal(err)
	}
	starts := RandomStarts(space, []float64{0, 0}, 8, 42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := MultiStart(context.Background(), shifted, starts, space, 4, WithMaxIterations(50), WithSeed(42)); err != nil {
			b.Fatalf("MultiStart failed: %v", err)
		}
	}
}
