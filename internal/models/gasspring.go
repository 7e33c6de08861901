package models

import (
	"math"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

// RatioFloor is the minimum volume ratio fed to the polytropic exponent.
const RatioFloor = 1e-10

// FrictionMode selects how the position-dependent friction term is applied.
type FrictionMode int

const (
	// FrictionThreshold applies the friction value selected by the position
	// threshold: static below, dynamic above.
	FrictionThreshold FrictionMode = iota

	// FrictionStaticOnly applies the static value regardless of position.
	// This reproduces the historical single-body behavior where the
	// threshold selection existed but was never used in the force balance.
	FrictionStaticOnly
)

const DefaultFrictionThreshold = 0.005

// GasSpring is the single-body model: one mass pushed along a bore by an
// expanding gas charge. State is [position, velocity].
type GasSpring struct {
	InitialPressure float64 // Pa
	AmbientPressure float64 // Pa
	Diameter        float64 // m, bore diameter
	Gamma           float64 // adiabatic index
	RestVolume      float64 // m^3, gas volume at zero displacement
	Mass            float64 // kg
	StaticFriction  float64 // N
	DynamicFriction float64 // N
	Threshold       float64 // m, position at which friction switches
	Mode            FrictionMode
}

// NewGasSpring returns the stock pre-charged configuration.
func NewGasSpring() *GasSpring {
	return &GasSpring{
		InitialPressure: 501325,
		AmbientPressure: 101325,
		Diameter:        0.013,
		Gamma:           1.4,
		RestVolume:      1.74e-5,
		Mass:            0.0012,
		StaticFriction:  0.4,
		DynamicFriction: 0.2,
		Threshold:       DefaultFrictionThreshold,
		Mode:            FrictionThreshold,
	}
}

func (g *GasSpring) StateDim() int { return 2 }

func (g *GasSpring) area() float64 {
	return math.Pi * g.Diameter * g.Diameter / 4
}

// Friction returns the friction magnitude applied at the given position.
func (g *GasSpring) Friction(pos float64) float64 {
	if g.Mode == FrictionStaticOnly {
		return g.StaticFriction
	}
	if pos <= g.Threshold {
		return g.StaticFriction
	}
	return g.DynamicFriction
}

func (g *GasSpring) Derive(x dynamo.State, t float64) dynamo.State {
	pos, vel := x[0], x[1]

	p := g.Pressure(x)
	accel := ((p-g.AmbientPressure)*g.area() - g.Friction(pos)) / g.Mass

	return dynamo.State{vel, accel}
}

func (g *GasSpring) Volume(x dynamo.State) float64 {
	return g.RestVolume + g.area()*x[0]
}

func (g *GasSpring) Pressure(x dynamo.State) float64 {
	ratio := math.Max(g.Volume(x)/g.RestVolume, RatioFloor)
	return g.InitialPressure / math.Pow(ratio, g.Gamma)
}
