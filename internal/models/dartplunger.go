package models

import (
	"math"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

// DartPlunger is the two-body model: a spring-driven plunger compresses the
// gas in a wide tube, and the gas accelerates a dart down a narrow barrel.
// State is [dartPos, dartVel, plungerPos, plungerVel]. Plunger position is
// measured in its travel direction, so the occupied tube length shrinks as
// the plunger advances.
type DartPlunger struct {
	InitialPressure float64 // Pa
	AmbientPressure float64 // Pa
	BarrelDiameter  float64 // m
	PlungerDiameter float64 // m
	Gamma           float64 // adiabatic index
	DartMass        float64 // kg
	PlungerMass     float64 // kg
	Precompression  float64 // m, spring compression before priming
	FreeLength      float64 // m, plunger tube length at rest
	SpringK         float64 // N/m
}

// NewDartPlunger returns the stock dart launcher configuration.
func NewDartPlunger() *DartPlunger {
	return &DartPlunger{
		InitialPressure: 101325,
		AmbientPressure: 101325,
		BarrelDiameter:  0.0127,
		PlungerDiameter: 0.035052,
		Gamma:           1.4,
		DartMass:        0.0012,
		PlungerMass:     0.06,
		Precompression:  0.0254,
		FreeLength:      0.1016,
		SpringK:         523 * 11.0 / 5.0,
	}
}

func (d *DartPlunger) StateDim() int { return 4 }

// BarrelArea is the bore cross-section, used both in the force balance and
// by the impulse analysis.
func (d *DartPlunger) BarrelArea() float64 {
	return math.Pi * d.BarrelDiameter * d.BarrelDiameter / 4
}

func (d *DartPlunger) plungerArea() float64 {
	return math.Pi * d.PlungerDiameter * d.PlungerDiameter / 4
}

// restVolume is the gas volume with the plunger fully retracted and the
// dart seated.
func (d *DartPlunger) restVolume() float64 {
	return d.FreeLength * d.plungerArea()
}

// totalCompression is the spring compression with the plunger fully
// retracted: precompression plus the full tube length.
func (d *DartPlunger) totalCompression() float64 {
	return d.Precompression + d.FreeLength
}

func (d *DartPlunger) Derive(x dynamo.State, t float64) dynamo.State {
	dartVel, plungerPos, plungerVel := x[1], x[2], x[3]

	p := d.Pressure(x)

	springForce := d.SpringK * (d.totalCompression() - plungerPos)
	plungerAccel := ((d.AmbientPressure-p)*d.plungerArea() + springForce) / d.PlungerMass
	dartAccel := (p - d.AmbientPressure) * d.BarrelArea() / d.DartMass

	return dynamo.State{dartVel, dartAccel, plungerVel, plungerAccel}
}

func (d *DartPlunger) Volume(x dynamo.State) float64 {
	dartPos, plungerPos := x[0], x[2]
	return (d.FreeLength-plungerPos)*d.plungerArea() + dartPos*d.BarrelArea()
}

func (d *DartPlunger) Pressure(x dynamo.State) float64 {
	ratio := math.Max(d.Volume(x)/d.restVolume(), RatioFloor)
	return d.InitialPressure / math.Pow(ratio, d.Gamma)
}

func (d *DartPlunger) SpringForce(x dynamo.State) float64 {
	return d.SpringK * (d.totalCompression() - x[2])
}

// StoredEnergy is the spring potential released over the full plunger
// stroke, used by the analysis layer for transfer efficiency.
func (d *DartPlunger) StoredEnergy() float64 {
	xsf := d.totalCompression()
	return 0.5 * d.SpringK * (xsf*xsf - d.Precompression*d.Precompression)
}
