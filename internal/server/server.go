package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/EGRM23/fisica-computacional-2024/internal/config"
	apperrors "github.com/EGRM23/fisica-computacional-2024/internal/errors"
	"github.com/EGRM23/fisica-computacional-2024/internal/logging"
	"github.com/EGRM23/fisica-computacional-2024/internal/objectives"
)

// Logger defines the logging interface used by the server
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Error codes attached to service errors and mapped onto JSON-RPC and HTTP
// status codes.
const (
	CodeInvalidParams = "invalid_params"
	CodeNotFound      = "not_found"
	CodeConflict      = "conflict"
)

// Server implements the HTTP and JSON-RPC API of the optimization service.
// Jobs run in the background; at most cfg.GSA.Workers run at once and the
// rest wait as pending.
type Server struct {
	cfg    *config.Config
	logger Logger

	optimizations   map[string]*OptimizationState
	optimizationsMu sync.RWMutex

	sem    chan struct{}
	wg     sync.WaitGroup
	seq    atomic.Uint64
	now    func() time.Time
	lookup func(name string) (objectives.Objective, error)
}

// NewServer creates a new server instance with the given config and logger
func NewServer(cfg *config.Config, logger Logger) *Server {
	workers := cfg.GSA.Workers
	if workers < 1 {
		workers = 1
	}
	return &Server{
		cfg:           cfg,
		logger:        logger,
		optimizations: make(map[string]*OptimizationState),
		sem:           make(chan struct{}, workers),
		now:           time.Now,
		lookup:        objectives.Lookup,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/optimization/{id}", s.handleCancel)
		r.Get("/objectives", s.handleObjectives)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// Close cancels every job and waits for their goroutines to return.
func (s *Server) Close() error {
	s.optimizationsMu.Lock()
	for _, opt := range s.optimizations {
		if opt.CancelFunc != nil {
			opt.CancelFunc()
		}
	}
	s.optimizationsMu.Unlock()

	s.wg.Wait()
	return nil
}

// httpStatus maps a service error onto an HTTP status code.
func httpStatus(err error) int {
	switch apperrors.CodeOf(err) {
	case CodeInvalidParams:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), map[string]interface{}{
		"error": err.Error(),
	})
}

// handleOptimize handles POST /api/v1/optimize
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var params StartParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Sprintf("Invalid request body: %v", err),
		})
		return
	}

	state, err := s.startJob(params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"optimization_id": state.ID,
		"status":          StatusPending,
	})
}

// handleStatus handles GET /api/v1/status/{id}
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.status(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCancel handles DELETE /api/v1/optimization/{id}
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.cancelJob(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "cancellation requested",
	})
}

// handleObjectives handles GET /api/v1/objectives
func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, objectives.All())
}
