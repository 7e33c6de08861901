// Package models provides the launcher dynamics as [dynamo.System]
// implementations.
//
//   - [GasSpring]: single moving body driven by a polytropic gas spring
//   - [DartPlunger]: dart in a barrel coupled to a spring-driven plunger
//     through a shared gas volume
//
// Both right-hand sides are pure functions of the state. The polytropic
// pressure relation p = p0 / (V/V0)^gamma is shared; the volume ratio is
// floored at [RatioFloor] before exponentiation so that overshooting steps
// of an adaptive integrator cannot produce a zero or negative base.
//
// Models also implement [dynamo.PressureVolume] (and [dynamo.SpringLoaded]
// for the plunger variant) so that derived trajectories recomputed after
// integration match the derivative-internal values exactly.
package models
