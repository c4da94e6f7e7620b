package gsa

import (
	"math"
)

// Regime is the cooling law selected from the visit parameter.
type Regime int

const (
	// VisitLog cools as T0/ln(1+t) (qv == 1).
	VisitLog Regime = iota
	// VisitLinear cools as T0/(1+t) (qv == 2).
	VisitLinear
	// VisitGeneral cools as T0*(2^(qv-1)-1)/((1+t)^(qv-1)-1).
	VisitGeneral
)

func (r Regime) String() string {
	switch r {
	case VisitLog:
		return "visit-log"
	case VisitLinear:
		return "visit-linear"
	case VisitGeneral:
		return "visit-general"
	default:
		return "unknown"
	}
}

// RegimeFor returns the cooling regime used for qv.
func RegimeFor(qv float64) Regime {
	switch qv {
	case 1:
		return VisitLog
	case 2:
		return VisitLinear
	default:
		return VisitGeneral
	}
}

// Schedule computes the visiting and acceptance temperatures of each outer
// iteration. The regime is fixed at construction.
type Schedule struct {
	regime Regime
	qv     float64
	t0     float64
	// 2^(qv-1) - 1, the general-regime numerator
	scale float64
}

// NewSchedule builds the schedule for visit parameter qv and an iteration
// budget of maxIterations, which is also the initial temperature.
func NewSchedule(qv float64, maxIterations int) Schedule {
	return Schedule{
		regime: RegimeFor(qv),
		qv:     qv,
		t0:     float64(maxIterations),
		scale:  math.Pow(2, qv-1) - 1,
	}
}

// Regime returns the cooling regime.
func (s Schedule) Regime() Regime { return s.regime }

// Temperatures returns (Tqv, Tqa) for outer iteration t >= 1.
func (s Schedule) Temperatures(t int) (visit, accept float64) {
	ft := float64(t)
	switch s.regime {
	case VisitLog:
		visit = s.t0 / math.Log1p(ft)
	case VisitLinear:
		visit = s.t0 / (1 + ft)
	default:
		visit = s.t0 * s.scale / (math.Pow(1+ft, s.qv-1) - 1)
	}
	return visit, visit / ft
}
