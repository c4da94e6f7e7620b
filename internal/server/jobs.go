package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	apperrors "github.com/EGRM23/fisica-computacional-2024/internal/errors"
	"github.com/EGRM23/fisica-computacional-2024/internal/logging"
	"github.com/EGRM23/fisica-computacional-2024/internal/metrics"
	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
	"github.com/EGRM23/fisica-computacional-2024/internal/optimization/gsa"
	"github.com/EGRM23/fisica-computacional-2024/internal/optimization/refine"
)

// Job statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// OptimizationState tracks one job. All fields are guarded by
// Server.optimizationsMu.
type OptimizationState struct {
	ID          string
	Objective   string
	Status      string
	StartTime   time.Time
	EndTime     *time.Time
	LastUpdated time.Time

	Seed          uint64
	Restarts      int
	MaxIterations int
	// iterations holds the last finished outer iteration of each run and
	// evaluations its cumulative objective calls.
	iterations  []int
	evaluations []int

	BestSolution *optimization.Solution
	Result       *JobResult
	Error        string

	CancelFunc context.CancelFunc
}

// JobResult is the outcome of a completed job.
type JobResult struct {
	X           []float64
	F           float64
	Evaluations int
	Accepted    int
	BestRun     int
	Refined     bool
	// RefineEvaluations counts the objective calls of the local polish.
	RefineEvaluations int
	Elapsed           time.Duration
}

// Progress is the fraction of outer iterations finished over all runs.
func (st *OptimizationState) Progress() float64 {
	total := st.Restarts * st.MaxIterations
	if total == 0 {
		return 0
	}
	done := 0
	for _, it := range st.iterations {
		done += it
	}
	return float64(done) / float64(total)
}

// Evaluations is the number of objective calls reported so far.
func (st *OptimizationState) Evaluations() int {
	n := 0
	for _, e := range st.evaluations {
		n += e
	}
	return n
}

func (st *OptimizationState) terminal() bool {
	switch st.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// startJob validates p, registers a pending job and launches it.
func (s *Server) startJob(p StartParams) (*OptimizationState, error) {
	spec, err := s.resolve(p)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ctx, cancel := context.WithCancel(context.Background())
	state := &OptimizationState{
		ID:            fmt.Sprintf("opt_%d_%d", now.UnixNano(), s.seq.Add(1)),
		Objective:     spec.objective.Name,
		Status:        StatusPending,
		StartTime:     now,
		LastUpdated:   now,
		Seed:          spec.config.Seed,
		Restarts:      len(spec.starts),
		MaxIterations: spec.config.MaxIterations,
		iterations:    make([]int, len(spec.starts)),
		evaluations:   make([]int, len(spec.starts)),
		CancelFunc:    cancel,
	}

	s.optimizationsMu.Lock()
	s.pruneLocked(now)
	s.optimizations[state.ID] = state
	s.optimizationsMu.Unlock()

	s.wg.Add(1)
	go s.runOptimization(ctx, state, spec)
	return state, nil
}

// runOptimization waits for a worker slot, then runs the job to completion.
func (s *Server) runOptimization(ctx context.Context, state *OptimizationState, spec *jobSpec) {
	defer s.wg.Done()
	defer state.CancelFunc()

	logger := s.logger.WithFields(map[string]interface{}{
		"optimization_id": state.ID,
		"objective":       state.Objective,
	})

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		s.finish(state, nil, ctx.Err(), logger)
		return
	}

	s.optimizationsMu.Lock()
	if state.terminal() {
		s.optimizationsMu.Unlock()
		s.finish(state, nil, context.Canceled, logger)
		return
	}
	state.Status = StatusRunning
	state.LastUpdated = s.now()
	s.optimizationsMu.Unlock()

	metrics.JobsActive.Inc()
	defer metrics.JobsActive.Dec()

	logger.Info("Optimization started", map[string]interface{}{
		"restarts":       state.Restarts,
		"max_iterations": state.MaxIterations,
		"seed":           state.Seed,
	})

	begin := time.Now()
	f := optimization.WithContext(ctx, spec.objective.Func)
	ms, err := gsa.MultiStart(ctx, f, spec.starts, spec.space, s.cfg.GSA.Workers,
		gsa.WithConfig(spec.config),
		gsa.WithObserver(metrics.NewRecorder(gsa.ObserverFunc(func(p gsa.Progress) {
			s.onProgress(state, p)
		}))),
		gsa.WithLogger(logging.NewZapLogger(logger)),
	)
	if err != nil {
		s.finish(state, nil, err, logger)
		return
	}

	best := ms.Best
	res := &JobResult{
		X:       best.X,
		F:       best.F,
		BestRun: ms.BestRun,
	}
	for _, r := range ms.Runs {
		res.Evaluations += r.Evaluations
		res.Accepted += r.Accepted
	}

	if spec.refine {
		polished, err := refine.Polish(f, spec.space, best.X, best.F, refine.DefaultSettings())
		if err != nil {
			s.finish(state, nil, err, logger)
			return
		}
		res.RefineEvaluations = polished.Evaluations
		if polished.Improved {
			res.X, res.F, res.Refined = polished.X, polished.F, true
		}
	}
	res.Elapsed = time.Since(begin)
	s.finish(state, res, nil, logger)
}

// onProgress records an observer report.
func (s *Server) onProgress(state *OptimizationState, p gsa.Progress) {
	s.optimizationsMu.Lock()
	defer s.optimizationsMu.Unlock()

	state.iterations[p.Run] = p.Iteration
	state.evaluations[p.Run] = p.Evaluations
	if state.BestSolution == nil || p.Best.Value < state.BestSolution.Value {
		state.BestSolution = p.Best.Clone()
	}
	state.LastUpdated = s.now()
}

// finish moves the job to its terminal status. A job cancelled by the user
// stays cancelled whatever the run returned.
func (s *Server) finish(state *OptimizationState, res *JobResult, err error, logger *logging.Logger) {
	s.optimizationsMu.Lock()
	now := s.now()
	if !state.terminal() {
		switch {
		case err == nil:
			state.Status = StatusCompleted
			state.Result = res
			state.BestSolution = &optimization.Solution{Parameters: res.X, Value: res.F}
		case errors.Is(err, context.Canceled):
			state.Status = StatusCancelled
		default:
			state.Status = StatusFailed
			state.Error = err.Error()
		}
		state.EndTime = &now
	}
	status := state.Status
	elapsed := state.EndTime.Sub(state.StartTime)
	state.LastUpdated = now
	s.optimizationsMu.Unlock()

	metrics.ObserveRun(status, elapsed)

	fields := map[string]interface{}{"status": status, "elapsed": elapsed}
	switch status {
	case StatusCompleted:
		fields["best_value"] = res.F
		fields["evaluations"] = res.Evaluations
		logger.Info("Optimization finished", fields)
	case StatusFailed:
		if oe, ok := optimization.IsOptimizationError(err); ok {
			fields["component"] = oe.Component
			fields["operation"] = oe.Op
		}
		logger.WithError(err).Error("Optimization failed", fields)
	default:
		logger.Info("Optimization cancelled", fields)
	}
}

// cancelJob cancels a pending or running job.
func (s *Server) cancelJob(id string) error {
	s.optimizationsMu.Lock()
	defer s.optimizationsMu.Unlock()

	state, ok := s.optimizations[id]
	if !ok {
		return errNotFound(id)
	}
	if state.terminal() {
		return apperrors.Errorf("cannot cancel optimization with status: %s", state.Status).WithCode(CodeConflict)
	}

	state.CancelFunc()
	now := s.now()
	state.Status = StatusCancelled
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("Optimization cancelled", map[string]interface{}{
		"optimization_id": id,
	})
	return nil
}

// pruneLocked drops finished jobs older than the configured TTL.
func (s *Server) pruneLocked(now time.Time) {
	ttl := s.cfg.GSA.JobTTL
	if ttl <= 0 {
		return
	}
	for id, st := range s.optimizations {
		if st.EndTime != nil && now.Sub(*st.EndTime) > ttl {
			delete(s.optimizations, id)
		}
	}
}

func errNotFound(id string) *apperrors.Error {
	return apperrors.Errorf("optimization %s not found", id).WithCode(CodeNotFound)
}

// StatusResponse is the view of a job returned by status queries.
type StatusResponse struct {
	ID           string        `json:"optimization_id"`
	Objective    string        `json:"objective"`
	Status       string        `json:"status"`
	Progress     float64       `json:"progress"`
	Evaluations  int           `json:"evaluations"`
	Seed         uint64        `json:"seed"`
	Restarts     int           `json:"restarts"`
	StartTime    string        `json:"start_time"`
	LastUpdate   string        `json:"last_update"`
	EndTime      string        `json:"end_time,omitempty"`
	Elapsed      float64       `json:"elapsed_seconds"`
	BestSolution *SolutionView `json:"best_solution,omitempty"`
	Result       *ResultView   `json:"result,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// SolutionView is a JSON-safe solution; Value is null when not finite.
type SolutionView struct {
	Parameters []float64 `json:"parameters"`
	Value      *float64  `json:"value"`
}

// ResultView is the JSON form of JobResult.
type ResultView struct {
	X                 []float64 `json:"x"`
	F                 *float64  `json:"f"`
	Evaluations       int       `json:"evaluations"`
	Accepted          int       `json:"accepted"`
	BestRun           int       `json:"best_run"`
	Refined           bool      `json:"refined"`
	RefineEvaluations int       `json:"refine_evaluations,omitempty"`
	Elapsed           float64   `json:"elapsed_seconds"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// status returns a snapshot of job id.
func (s *Server) status(id string) (*StatusResponse, error) {
	s.optimizationsMu.RLock()
	defer s.optimizationsMu.RUnlock()

	st, ok := s.optimizations[id]
	if !ok {
		return nil, errNotFound(id)
	}

	end := s.now()
	resp := &StatusResponse{
		ID:          st.ID,
		Objective:   st.Objective,
		Status:      st.Status,
		Progress:    st.Progress(),
		Evaluations: st.Evaluations(),
		Seed:        st.Seed,
		Restarts:    st.Restarts,
		StartTime:   st.StartTime.Format(time.RFC3339),
		LastUpdate:  st.LastUpdated.Format(time.RFC3339),
		Error:       st.Error,
	}
	if st.EndTime != nil {
		end = *st.EndTime
		resp.EndTime = st.EndTime.Format(time.RFC3339)
	}
	resp.Elapsed = end.Sub(st.StartTime).Seconds()

	if st.BestSolution != nil {
		resp.BestSolution = &SolutionView{
			Parameters: st.BestSolution.Parameters,
			Value:      finite(st.BestSolution.Value),
		}
	}
	if r := st.Result; r != nil {
		resp.Progress = 1
		resp.Evaluations = r.Evaluations + r.RefineEvaluations
		resp.Result = &ResultView{
			X:                 r.X,
			F:                 finite(r.F),
			Evaluations:       r.Evaluations,
			Accepted:          r.Accepted,
			BestRun:           r.BestRun,
			Refined:           r.Refined,
			RefineEvaluations: r.RefineEvaluations,
			Elapsed:           r.Elapsed.Seconds(),
		}
	}
	return resp, nil
}
