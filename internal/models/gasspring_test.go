package models

import (
	"math"
	"testing"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

func TestGasSpringDimensions(t *testing.T) {
	g := NewGasSpring()
	if g.StateDim() != 2 {
		t.Errorf("expected state dim 2, got %d", g.StateDim())
	}
}

func TestGasSpringRestAcceleration(t *testing.T) {
	// With equal initial and ambient pressure the pressure terms cancel and
	// the rest acceleration is exactly -friction/mass.
	g := NewGasSpring()
	g.InitialPressure = 101325
	g.AmbientPressure = 101325

	dx := g.Derive(dynamo.State{0, 0}, 0)

	if dx[0] != 0 {
		t.Errorf("expected zero velocity at rest, got %f", dx[0])
	}

	want := -g.StaticFriction / g.Mass
	if dx[1] != want {
		t.Errorf("expected acceleration %f, got %f", want, dx[1])
	}
}

func TestGasSpringDriveDirection(t *testing.T) {
	g := NewGasSpring()

	dx := g.Derive(dynamo.State{0, 0}, 0)

	if dx[1] <= 0 {
		t.Errorf("pre-charged spring should accelerate forward at rest, got %f", dx[1])
	}
}

func TestGasSpringClampKeepsDerivativeFinite(t *testing.T) {
	g := NewGasSpring()

	// Drive the raw volume negative; the ratio clamp must keep the
	// derivative finite.
	pos := -2 * g.RestVolume / (math.Pi * g.Diameter * g.Diameter / 4)
	x := dynamo.State{pos, 0}

	if g.Volume(x) >= 0 {
		t.Fatalf("test setup: expected negative raw volume, got %e", g.Volume(x))
	}

	dx := g.Derive(x, 0)
	if !dx.IsValid() {
		t.Errorf("derivative not finite under clamped volume: %v", dx)
	}

	if p := g.Pressure(x); math.IsNaN(p) || math.IsInf(p, 0) {
		t.Errorf("pressure not finite under clamped volume: %f", p)
	}
}

func TestGasSpringFrictionThreshold(t *testing.T) {
	g := NewGasSpring()

	if f := g.Friction(0); f != g.StaticFriction {
		t.Errorf("below threshold: expected static friction %f, got %f", g.StaticFriction, f)
	}
	if f := g.Friction(g.Threshold); f != g.StaticFriction {
		t.Errorf("at threshold: expected static friction %f, got %f", g.StaticFriction, f)
	}
	if f := g.Friction(g.Threshold + 1e-6); f != g.DynamicFriction {
		t.Errorf("above threshold: expected dynamic friction %f, got %f", g.DynamicFriction, f)
	}
}

func TestGasSpringFrictionStaticOnly(t *testing.T) {
	g := NewGasSpring()
	g.Mode = FrictionStaticOnly

	if f := g.Friction(g.Threshold + 1.0); f != g.StaticFriction {
		t.Errorf("static-only mode: expected %f everywhere, got %f", g.StaticFriction, f)
	}
}

func TestGasSpringDerivedConsistency(t *testing.T) {
	// The acceleration must be reconstructible from the reported pressure,
	// i.e. the derived-quantity evaluator and the derivative share formulas.
	g := NewGasSpring()

	for _, pos := range []float64{0, 0.001, 0.01, 0.05} {
		x := dynamo.State{pos, 0}
		dx := g.Derive(x, 0)

		area := math.Pi * g.Diameter * g.Diameter / 4
		want := ((g.Pressure(x)-g.AmbientPressure)*area - g.Friction(pos)) / g.Mass

		if math.Abs(dx[1]-want) > math.Abs(want)*1e-12 {
			t.Errorf("pos %f: derivative accel %g != reconstructed %g", pos, dx[1], want)
		}
	}
}
