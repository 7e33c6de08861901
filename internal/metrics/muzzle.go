package metrics

import (
	"math"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

// MuzzleVelocity tracks the peak projectile speed seen over a run. Both
// launcher models keep the projectile velocity at state index 1.
type MuzzleVelocity struct {
	velIndex int
	peak     float64
}

func NewMuzzleVelocity(velIndex int) *MuzzleVelocity {
	return &MuzzleVelocity{velIndex: velIndex}
}

func (m *MuzzleVelocity) Name() string { return "muzzle_velocity" }

func (m *MuzzleVelocity) Observe(x dynamo.State, t float64) {
	if m.velIndex >= len(x) {
		return
	}
	v := math.Abs(x[m.velIndex])
	if v > m.peak {
		m.peak = v
	}
}

func (m *MuzzleVelocity) Value() float64 { return m.peak }

func (m *MuzzleVelocity) Reset() { m.peak = 0 }
