package models

import (
	"math"
	"testing"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

func TestDartPlungerDimensions(t *testing.T) {
	d := NewDartPlunger()
	if d.StateDim() != 4 {
		t.Errorf("expected state dim 4, got %d", d.StateDim())
	}
}

func TestDartPlungerNoDriveAtRest(t *testing.T) {
	// With no spring and equal pressures there is no driving force at all.
	d := NewDartPlunger()
	d.SpringK = 0

	dx := d.Derive(dynamo.State{0, 0, 0, 0}, 0)

	for i, v := range dx {
		if v != 0 {
			t.Errorf("component %d: expected exactly zero, got %g", i, v)
		}
	}
}

func TestDartPlungerSpringDrivesPlunger(t *testing.T) {
	d := NewDartPlunger()

	dx := d.Derive(dynamo.State{0, 0, 0, 0}, 0)

	// At rest the gas is at ambient pressure, so the only force is the
	// fully compressed spring pushing the plunger forward.
	want := d.SpringK * (d.Precompression + d.FreeLength) / d.PlungerMass
	if math.Abs(dx[3]-want) > math.Abs(want)*1e-12 {
		t.Errorf("expected plunger acceleration %f, got %f", want, dx[3])
	}

	if dx[1] != 0 {
		t.Errorf("dart should feel no force at ambient pressure, got %f", dx[1])
	}
}

func TestDartPlungerRestPressureAndVolume(t *testing.T) {
	d := NewDartPlunger()
	x := dynamo.State{0, 0, 0, 0}

	if p := d.Pressure(x); math.Abs(p-d.InitialPressure) > 1e-9 {
		t.Errorf("rest pressure: expected %f, got %f", d.InitialPressure, p)
	}

	wantV := d.FreeLength * math.Pi * d.PlungerDiameter * d.PlungerDiameter / 4
	if v := d.Volume(x); math.Abs(v-wantV) > 1e-15 {
		t.Errorf("rest volume: expected %e, got %e", wantV, v)
	}
}

func TestDartPlungerCompressionRaisesPressure(t *testing.T) {
	d := NewDartPlunger()

	// Plunger advanced halfway, dart still seated: volume halves, pressure
	// rises by 2^gamma.
	x := dynamo.State{0, 0, d.FreeLength / 2, 0}

	want := d.InitialPressure * math.Pow(2, d.Gamma)
	if p := d.Pressure(x); math.Abs(p-want) > want*1e-12 {
		t.Errorf("expected pressure %f, got %f", want, p)
	}
}

func TestDartPlungerClampKeepsDerivativeFinite(t *testing.T) {
	d := NewDartPlunger()

	// Plunger overshot the end of the tube with the dart seated: raw volume
	// is negative, the clamp must keep everything finite.
	x := dynamo.State{0, 0, 2 * d.FreeLength, 0}

	if d.Volume(x) >= 0 {
		t.Fatalf("test setup: expected negative raw volume, got %e", d.Volume(x))
	}

	dx := d.Derive(x, 0)
	if !dx.IsValid() {
		t.Errorf("derivative not finite under clamped volume: %v", dx)
	}
}

func TestDartPlungerDerivedConsistency(t *testing.T) {
	d := NewDartPlunger()
	d.InitialPressure = 130000

	states := []dynamo.State{
		{0, 0, 0, 0},
		{0.01, 2, 0.02, 1},
		{0.05, 30, 0.08, 5},
	}

	for _, x := range states {
		dx := d.Derive(x, 0)

		p := d.Pressure(x)
		ab := math.Pi * d.BarrelDiameter * d.BarrelDiameter / 4
		ap := math.Pi * d.PlungerDiameter * d.PlungerDiameter / 4

		wantDart := (p - d.AmbientPressure) * ab / d.DartMass
		wantPlunger := ((d.AmbientPressure-p)*ap + d.SpringForce(x)) / d.PlungerMass

		if math.Abs(dx[1]-wantDart) > math.Abs(wantDart)*1e-12+1e-15 {
			t.Errorf("dart accel %g != reconstructed %g", dx[1], wantDart)
		}
		if math.Abs(dx[3]-wantPlunger) > math.Abs(wantPlunger)*1e-12+1e-15 {
			t.Errorf("plunger accel %g != reconstructed %g", dx[3], wantPlunger)
		}
	}
}

func TestDartPlungerStoredEnergy(t *testing.T) {
	d := NewDartPlunger()

	xsf := d.Precompression + d.FreeLength
	want := 0.5 * d.SpringK * (xsf*xsf - d.Precompression*d.Precompression)

	if got := d.StoredEnergy(); math.Abs(got-want) > 1e-12 {
		t.Errorf("stored energy: expected %f, got %f", want, got)
	}
	if d.StoredEnergy() <= 0 {
		t.Error("stored energy must be positive for a primed spring")
	}
}
