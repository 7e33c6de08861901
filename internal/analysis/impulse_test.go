package analysis

import (
	"math"
	"testing"
)

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return out
}

func TestTrapezoidLinearExact(t *testing.T) {
	// The trapezoid rule is exact for linear integrands.
	ts := linspace(0, 2, 11)
	ys := make([]float64, len(ts))
	for i, x := range ts {
		ys[i] = 3*x + 1
	}

	got, err := Trapezoid(ts, ys)
	if err != nil {
		t.Fatal(err)
	}

	want := 8.0 // ∫0..2 (3x+1) dx = 6 + 2
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestTrapezoidErrors(t *testing.T) {
	if _, err := Trapezoid([]float64{0, 1}, []float64{0}); err == nil {
		t.Error("expected length mismatch error")
	}
	if _, err := Trapezoid([]float64{0}, []float64{0}); err == nil {
		t.Error("expected too-few-samples error")
	}
}

func TestCumulativeTrapezoid(t *testing.T) {
	ts := linspace(0, 1, 5)
	ys := []float64{1, 1, 1, 1, 1}

	out, err := CumulativeTrapezoid(ts, ys)
	if err != nil {
		t.Fatal(err)
	}

	if out[0] != 0 {
		t.Errorf("expected 0 at start, got %f", out[0])
	}
	if math.Abs(out[4]-1.0) > 1e-12 {
		t.Errorf("expected 1.0 at end, got %f", out[4])
	}
	if math.Abs(out[2]-0.5) > 1e-12 {
		t.Errorf("expected 0.5 at midpoint, got %f", out[2])
	}
}

func TestImpulseConstantPressure(t *testing.T) {
	ts := linspace(0, 0.01, 100)
	ps := make([]float64, len(ts))
	for i := range ps {
		ps[i] = 201325
	}

	area := 1e-4
	got, err := Impulse(ts, ps, 101325, area)
	if err != nil {
		t.Fatal(err)
	}

	want := 100000 * area * 0.01
	if math.Abs(got-want) > want*1e-12 {
		t.Errorf("expected impulse %g, got %g", want, got)
	}
}

func TestEfficiency(t *testing.T) {
	if e := Efficiency(1, 4); e != 0.25 {
		t.Errorf("expected 0.25, got %f", e)
	}
	if e := Efficiency(1, 0); e != 0 {
		t.Errorf("expected 0 for zero stored energy, got %f", e)
	}
}

func TestKineticEnergy(t *testing.T) {
	if ke := KineticEnergy(0.0012, 100); math.Abs(ke-6.0) > 1e-12 {
		t.Errorf("expected 6.0 J, got %f", ke)
	}
}
