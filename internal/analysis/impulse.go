// Package analysis provides post-run trajectory analysis: trapezoidal
// integration of sampled series, pressure impulse on the projectile, and
// spring-to-dart energy transfer efficiency.
package analysis

import "fmt"

// Trapezoid integrates y over t with the composite trapezoid rule.
func Trapezoid(t, y []float64) (float64, error) {
	if len(t) != len(y) {
		return 0, fmt.Errorf("analysis: length mismatch: %d times vs %d values", len(t), len(y))
	}
	if len(t) < 2 {
		return 0, fmt.Errorf("analysis: need at least 2 samples, got %d", len(t))
	}

	sum := 0.0
	for i := 1; i < len(t); i++ {
		sum += 0.5 * (y[i] + y[i-1]) * (t[i] - t[i-1])
	}
	return sum, nil
}

// CumulativeTrapezoid returns the running integral of y over t, with
// out[0] = 0.
func CumulativeTrapezoid(t, y []float64) ([]float64, error) {
	if len(t) != len(y) {
		return nil, fmt.Errorf("analysis: length mismatch: %d times vs %d values", len(t), len(y))
	}
	if len(t) < 2 {
		return nil, fmt.Errorf("analysis: need at least 2 samples, got %d", len(t))
	}

	out := make([]float64, len(t))
	for i := 1; i < len(t); i++ {
		out[i] = out[i-1] + 0.5*(y[i]+y[i-1])*(t[i]-t[i-1])
	}
	return out, nil
}

// Impulse integrates the net pressure force on the projectile over the run:
// ∫ (p(t) − ambient) · area dt.
func Impulse(times, pressure []float64, ambient, area float64) (float64, error) {
	force := make([]float64, len(pressure))
	for i, p := range pressure {
		force[i] = (p - ambient) * area
	}
	return Trapezoid(times, force)
}

// KineticEnergy is the translational energy of a body.
func KineticEnergy(mass, velocity float64) float64 {
	return 0.5 * mass * velocity * velocity
}

// Efficiency is the fraction of stored spring energy that ended up as
// projectile kinetic energy. Returns 0 when nothing was stored.
func Efficiency(dartKE, storedEnergy float64) float64 {
	if storedEnergy <= 0 {
		return 0
	}
	return dartKE / storedEnergy
}
