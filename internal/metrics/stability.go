package metrics

import "github.com/pistonlab/pistonsim/internal/dynamo"

// Stability reports 1 while the state norm stays under a bound and 0 once
// it has ever exceeded it.
type Stability struct {
	bound    float64
	exceeded bool
}

func NewStability(bound float64) *Stability {
	return &Stability{bound: bound}
}

func (s *Stability) Name() string { return "stable" }

func (s *Stability) Observe(x dynamo.State, t float64) {
	if x.Norm() > s.bound {
		s.exceeded = true
	}
}

func (s *Stability) Value() float64 {
	if s.exceeded {
		return 0
	}
	return 1
}

func (s *Stability) Reset() { s.exceeded = false }
