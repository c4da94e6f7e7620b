package gsa

import (
	"fmt"
	"math"
	"strings"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
)

// DomainPolicy selects what happens when the acceptance base
// 1 + (qa-1)*Δf/(k*Tqa) is negative.
type DomainPolicy int

const (
	// DomainClamp clamps the base to zero, so the move is rejected.
	DomainClamp DomainPolicy = iota
	// DomainAbort aborts the run with a NumericDomainError.
	DomainAbort
)

func (p DomainPolicy) String() string {
	switch p {
	case DomainClamp:
		return "clamp"
	case DomainAbort:
		return "abort"
	default:
		return fmt.Sprintf("DomainPolicy(%d)", int(p))
	}
}

// ParseDomainPolicy parses "clamp" or "abort".
func ParseDomainPolicy(s string) (DomainPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return DomainClamp, nil
	case "abort":
		return DomainAbort, nil
	}
	return DomainClamp, optimization.NewErrorf("unknown domain policy %q", s).WithOperation("ParseDomainPolicy")
}

// Acceptance is the generalized Metropolis criterion with acceptance
// parameter qa and constant k.
type Acceptance struct {
	qa     float64
	k      float64
	policy DomainPolicy
}

// NewAcceptance builds the rule.
func NewAcceptance(qa, k float64, policy DomainPolicy) Acceptance {
	return Acceptance{qa: qa, k: k, policy: policy}
}

// Probability returns the probability of moving from fx to fxNew at
// acceptance temperature acceptTemp. Downhill moves have probability exactly
// 1. Uphill moves get base^(1/(1-qa)) with base = 1 + (qa-1)*Δf/(k*Tqa).
func (a Acceptance) Probability(fx, fxNew, acceptTemp float64) (float64, error) {
	delta := fxNew - fx
	if delta < 0 {
		return 1, nil
	}

	base := 1 + (a.qa-1)*delta/(a.k*acceptTemp)
	if base < 0 {
		if a.policy == DomainAbort {
			return 0, &optimization.NumericDomainError{Base: base, Exponent: 1 / (a.qa - 1)}
		}
		base = 0
	}
	// Tsallis form base^(1/(1-qa)), written as a reciprocal power.
	return 1 / math.Pow(base, 1/(a.qa-1)), nil
}

// Accept decides a proposal. draw supplies the uniform variate and is only
// called for uphill moves. A NaN objective value is always rejected.
func (a Acceptance) Accept(fx, fxNew, acceptTemp float64, draw func() float64) (bool, error) {
	p, err := a.Probability(fx, fxNew, acceptTemp)
	if err != nil {
		return false, err
	}
	if p == 1 && fxNew < fx {
		return true, nil
	}
	return draw() < p, nil
}
