// Package metrics exposes Prometheus collectors for optimization runs.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization/gsa"
)

// Run statuses used as the status label of RunsTotal.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

var (
	// RunsTotal counts finished runs by status
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gsa_runs_total",
			Help: "The total number of finished optimization runs",
		},
		[]string{"status"},
	)

	// ObjectiveEvaluations counts objective function calls
	ObjectiveEvaluations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gsa_objective_evaluations_total",
			Help: "The total number of objective function evaluations",
		},
	)

	// AcceptedMoves counts proposals accepted by the acceptance rule
	AcceptedMoves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gsa_accepted_moves_total",
			Help: "The total number of accepted moves",
		},
	)

	// RunDuration tracks the wall time of runs
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gsa_run_duration_seconds",
			Help:    "The duration of optimization runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 12), // From 1ms to ~70min
		},
	)

	// JobsActive tracks jobs currently running
	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gsa_jobs_active",
			Help: "The number of optimization jobs currently running",
		},
	)
)

// ObserveRun records a finished run.
func ObserveRun(status string, elapsed time.Duration) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(elapsed.Seconds())
}

// Recorder is a gsa.Observer that turns the cumulative counts of each
// progress report into counter increments. One Recorder serves every run of
// a MultiStart.
type Recorder struct {
	mu       sync.Mutex
	evals    map[int]int
	accepted map[int]int
	next     gsa.Observer
}

var _ gsa.Observer = (*Recorder)(nil)

// NewRecorder returns a Recorder that forwards reports to next, if not nil.
func NewRecorder(next gsa.Observer) *Recorder {
	return &Recorder{
		evals:    make(map[int]int),
		accepted: make(map[int]int),
		next:     next,
	}
}

// OnIteration implements gsa.Observer.
func (r *Recorder) OnIteration(p gsa.Progress) {
	r.mu.Lock()
	dEvals := p.Evaluations - r.evals[p.Run]
	dAccepted := p.Accepted - r.accepted[p.Run]
	r.evals[p.Run] = p.Evaluations
	r.accepted[p.Run] = p.Accepted
	r.mu.Unlock()

	if dEvals > 0 {
		ObjectiveEvaluations.Add(float64(dEvals))
	}
	if dAccepted > 0 {
		AcceptedMoves.Add(float64(dAccepted))
	}
	if r.next != nil {
		r.next.OnIteration(p)
	}
}
