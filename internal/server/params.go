package server

import (
	"time"

	apperrors "github.com/EGRM23/fisica-computacional-2024/internal/errors"
	"github.com/EGRM23/fisica-computacional-2024/internal/objectives"
	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
	"github.com/EGRM23/fisica-computacional-2024/internal/optimization/gsa"
)

// maxRestarts caps the multi-start width of a single job.
const maxRestarts = 64

// StartParams are the parameters of optimization.start and POST /optimize.
// Optional hyperparameters fall back to the service configuration.
type StartParams struct {
	Objective     string      `json:"objective"`
	Bounds        [][]float64 `json:"bounds,omitempty"`
	X0            []float64   `json:"x0,omitempty"`
	Visit         *float64    `json:"qv,omitempty"`
	Accept        *float64    `json:"qa,omitempty"`
	MaxIterations *int        `json:"max_iterations,omitempty"`
	Seed          *uint64     `json:"seed,omitempty"`
	DomainPolicy  string      `json:"domain_policy,omitempty"`
	Restarts      int         `json:"restarts,omitempty"`
	Refine        bool        `json:"refine,omitempty"`
}

// IDParams identify a job in optimization.status and optimization.cancel.
type IDParams struct {
	OptimizationID string `json:"optimization_id"`
}

// jobSpec is a validated start request.
type jobSpec struct {
	objective objectives.Objective
	space     *optimization.SearchSpace
	starts    [][]float64
	config    gsa.Config
	refine    bool
}

func invalidParams(err error) *apperrors.Error {
	return apperrors.Wrap(err, "invalid params").WithCode(CodeInvalidParams)
}

// resolve validates p against the service defaults. Bounds default to the
// objective's box; x0 defaults to the objective's start point when the box
// is the default one and to the box centre otherwise.
func (s *Server) resolve(p StartParams) (*jobSpec, error) {
	if p.Objective == "" {
		return nil, apperrors.New("objective is required").WithCode(CodeInvalidParams)
	}
	obj, err := s.lookup(p.Objective)
	if err != nil {
		return nil, invalidParams(err)
	}

	var space *optimization.SearchSpace
	x0 := p.X0
	if len(p.Bounds) == 0 {
		space, err = optimization.NewSearchSpace(obj.Lower, obj.Upper)
		if x0 == nil {
			x0 = obj.X0
		}
	} else {
		bounds := make([][2]float64, len(p.Bounds))
		for i, b := range p.Bounds {
			if len(b) != 2 {
				return nil, apperrors.Errorf("bounds[%d] must be [min, max]", i).WithCode(CodeInvalidParams)
			}
			bounds[i] = [2]float64{b[0], b[1]}
		}
		space, err = optimization.NewSearchSpaceFromBounds(bounds)
	}
	if err != nil {
		return nil, invalidParams(err)
	}
	if err := obj.CheckDim(space.Dim()); err != nil {
		return nil, invalidParams(err)
	}
	if x0 == nil {
		x0 = space.Center()
	}
	if err := space.CheckPoint(x0); err != nil {
		return nil, invalidParams(err)
	}

	cfg, err := s.cfg.GSAConfig()
	if err != nil {
		return nil, invalidParams(err)
	}
	if p.Visit != nil {
		cfg.Visit = *p.Visit
	}
	if p.Accept != nil {
		cfg.Accept = *p.Accept
	}
	if p.MaxIterations != nil {
		cfg.MaxIterations = *p.MaxIterations
	}
	if p.Seed != nil {
		cfg.Seed = *p.Seed
	}
	if p.DomainPolicy != "" {
		if cfg.Policy, err = gsa.ParseDomainPolicy(p.DomainPolicy); err != nil {
			return nil, invalidParams(err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, invalidParams(err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	restarts := p.Restarts
	if restarts == 0 {
		restarts = 1
	}
	if restarts < 1 || restarts > maxRestarts {
		return nil, invalidParams(&optimization.ParameterRangeError{
			Name:     "restarts",
			Value:    float64(restarts),
			Interval: "[1, 64]",
		})
	}

	return &jobSpec{
		objective: obj,
		space:     space,
		starts:    gsa.RandomStarts(space, x0, restarts, cfg.Seed),
		config:    cfg,
		refine:    p.Refine,
	}, nil
}
