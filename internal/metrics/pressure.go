package metrics

import (
	"math"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

// MinPressure tracks the lowest chamber pressure over a run, using the
// model's own pressure evaluator.
type MinPressure struct {
	pv      dynamo.PressureVolume
	min     float64
	samples int
}

func NewMinPressure(pv dynamo.PressureVolume) *MinPressure {
	return &MinPressure{pv: pv, min: math.Inf(1)}
}

func (m *MinPressure) Name() string { return "min_pressure" }

func (m *MinPressure) Observe(x dynamo.State, t float64) {
	p := m.pv.Pressure(x)
	if p < m.min {
		m.min = p
	}
	m.samples++
}

func (m *MinPressure) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *MinPressure) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}
