package gsa

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws step vectors from the Tsallis (q-Gaussian) visiting
// distribution. It is not safe for concurrent use.
type Sampler struct {
	qv     float64
	normal distuv.Normal
	gamma  distuv.Gamma
	// sqrt(2(qv-1)), the temperature-free part of the scale
	base float64
	// 1/(3-qv)
	tempExp float64
	u       []float64
}

// NewSampler returns a sampler for visit parameter qv in [1, 3] drawing from
// src. qv == 1 uses the Gaussian limit and qv == 3 the degenerate limit in
// which every component is infinite.
func NewSampler(qv float64, src rand.Source) *Sampler {
	s := &Sampler{
		qv:     qv,
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
	if qv > 1 && qv < 3 {
		n := (3 - qv) / (qv - 1)
		// Shape n/2, scale 2 is rate 1/2.
		s.gamma = distuv.Gamma{Alpha: n / 2, Beta: 0.5, Src: src}
		s.base = math.Sqrt(2 * (qv - 1))
		s.tempExp = 1 / (3 - qv)
	}
	return s
}

// Sample fills dst with one draw at visiting temperature visitTemp and returns
// it. A nil dst is allocated with length dim.
//
// Components are unbounded. When the gamma draw is zero the component is ±Inf
// (NaN if the normal draw is zero too); callers clamp the step into the box.
func (s *Sampler) Sample(dst []float64, dim int, visitTemp float64) []float64 {
	if dst == nil {
		dst = make([]float64, dim)
	}
	for i := range dst {
		dst[i] = s.normal.Rand()
	}

	switch {
	case s.qv == 1:
		// Tsallis -> Gaussian with standard deviation sqrt(T)/2.
		floats.Scale(math.Sqrt(visitTemp)/2, dst)
		return dst
	case s.qv >= 3:
		for i, x := range dst {
			dst[i] = degenerate(x)
		}
		return dst
	}

	if cap(s.u) < len(dst) {
		s.u = make([]float64, len(dst))
	}
	u := s.u[:len(dst)]
	for i := range u {
		u[i] = s.gamma.Rand()
	}

	scale := s.base / math.Pow(visitTemp, s.tempExp)
	for i := range dst {
		dst[i] /= scale * math.Sqrt(u[i])
	}
	return dst
}

// degenerate is x/0 under IEEE rules.
func degenerate(x float64) float64 {
	switch {
	case x > 0:
		return math.Inf(1)
	case x < 0:
		return math.Inf(-1)
	}
	return math.NaN()
}
