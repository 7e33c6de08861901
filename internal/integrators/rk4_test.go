package integrators

import (
	"math"
	"testing"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

func TestEuler_Step(t *testing.T) {
	integrator := NewEuler()
	dyn := &harmonicOscillator{}

	x := integrator.Step(dyn, dynamo.State{1.0, 0.0}, 0, 0.01)

	if x[0] != 1.0 {
		t.Errorf("expected position 1.0 after one Euler step from rest, got %f", x[0])
	}
	if math.Abs(x[1]+0.01) > 1e-12 {
		t.Errorf("expected velocity -0.01, got %f", x[1])
	}
}

func TestRK4_Accuracy(t *testing.T) {
	integrator := NewRK4()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	dt := 0.01
	steps := int(math.Round(2 * math.Pi / dt))
	for i := 0; i < steps; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	// After one full period the oscillator should be back near [1, 0].
	if math.Abs(x[0]-math.Cos(float64(steps)*dt)) > 1e-6 {
		t.Errorf("RK4 position error too large: got %f", x[0])
	}
}

func TestRK4_ScratchReuse(t *testing.T) {
	integrator := NewRK4()
	dyn := &harmonicOscillator{}

	a := integrator.Step(dyn, dynamo.State{1.0, 0.0}, 0, 0.01)
	b := integrator.Step(dyn, dynamo.State{1.0, 0.0}, 0, 0.01)

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("scratch reuse changed results: %v vs %v", a, b)
		}
	}
}
