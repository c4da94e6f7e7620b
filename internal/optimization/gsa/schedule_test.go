package gsa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegimeFor(t *testing.T) {
	tests := []struct {
		qv   float64
		want Regime
		name string
	}{
		{qv: 1, want: VisitLog, name: "visit-log"},
		{qv: 2, want: VisitLinear, name: "visit-linear"},
		{qv: 2.7, want: VisitGeneral, name: "visit-general"},
		{qv: 1.5, want: VisitGeneral, name: "visit-general"},
		{qv: 3, want: VisitGeneral, name: "visit-general"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RegimeFor(tt.qv), "qv=%v", tt.qv)
		assert.Equal(t, tt.name, RegimeFor(tt.qv).String())
	}
	assert.Equal(t, "unknown", Regime(42).String())
}

func TestScheduleFirstIteration(t *testing.T) {
	const imax = 400

	visit, accept := NewSchedule(2.7, imax).Temperatures(1)
	assert.InDelta(t, imax, visit, 1e-9, "general regime starts at T0")
	assert.InDelta(t, visit, accept, 1e-12)

	visit, accept = NewSchedule(2, imax).Temperatures(1)
	assert.InDelta(t, imax/2.0, visit, 1e-12)
	assert.InDelta(t, imax/2.0, accept, 1e-12)

	visit, _ = NewSchedule(1, imax).Temperatures(1)
	assert.InDelta(t, imax/math.Ln2, visit, 1e-9)
}

func TestScheduleAcceptTemperature(t *testing.T) {
	s := NewSchedule(2.7, 50)
	for _, it := range []int{1, 2, 7, 50} {
		visit, accept := s.Temperatures(it)
		assert.InDelta(t, visit/float64(it), accept, 1e-15)
	}
}

func TestScheduleStrictlyDecreasing(t *testing.T) {
	for _, qv := range []float64{1, 1.3, 2, 2.5, 2.7, 3} {
		s := NewSchedule(qv, 400)
		prevVisit, prevAccept := s.Temperatures(1)
		for it := 2; it <= 2000; it++ {
			visit, accept := s.Temperatures(it)
			if !assert.Less(t, visit, prevVisit, "qv=%v t=%d visit", qv, it) {
				return
			}
			if !assert.Less(t, accept, prevAccept, "qv=%v t=%d accept", qv, it) {
				return
			}
			assert.Greater(t, visit, 0.0)
			prevVisit, prevAccept = visit, accept
		}
	}
}
