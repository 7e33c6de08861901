package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// System is the right-hand side of an autonomous ODE. Derive must be pure:
// no mutation of x, no internal state. The time argument exists only because
// integrators pass it; launcher dynamics do not depend on it.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// PressureVolume is implemented by gas-spring systems that can report the
// instantaneous chamber pressure and volume for a given state. The values
// must match what Derive computes internally at the same state.
type PressureVolume interface {
	Pressure(x State) float64
	Volume(x State) float64
}

// SpringLoaded is implemented by systems carrying a mechanical spring.
type SpringLoaded interface {
	SpringForce(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// AdaptiveIntegrator steps with embedded error control. StepAdaptive may
// accept a smaller step than requested when error control rejects the
// requested size, so it returns both the step actually taken and the
// suggested size for the next step. Callers must advance time by the taken
// step, never the requested one.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (next State, taken, suggested float64, err error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(x State, t float64)
}

type Config struct {
	EndTime       float64
	Samples       int
	Dt            float64 // initial step hint; 0 means EndTime/1000
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		EndTime:       0.02,
		Samples:       1500,
		Tolerance:     1e-8,
		MaxDt:         1e-3,
		MinDt:         1e-14,
		ValidateState: true,
	}
}

// Result holds the sampled trajectory and the derived series recomputed
// over it after integration. Immutable once returned.
type Result struct {
	Times       []float64
	States      []State
	Pressure    []float64
	Volume      []float64
	SpringForce []float64
	Metrics     map[string]float64
	StepsTaken  int
}

func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// Series extracts one state component across all samples. It panics on an
// index outside the state dimension, like slice indexing would.
func (r *Result) Series(idx int) []float64 {
	out := make([]float64, len(r.States))
	for i, s := range r.States {
		if idx < 0 || idx >= len(s) {
			panic(fmt.Sprintf("dynamo: series index %d out of range for %d-state result", idx, len(s)))
		}
		out[i] = s[idx]
	}
	return out
}
