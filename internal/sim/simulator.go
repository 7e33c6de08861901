// Package sim drives a launcher model through an integrator, sampling the
// trajectory on an evenly spaced output grid and recomputing the derived
// quantities (pressure, volume, spring force) over the full sample set
// afterwards.
package sim

import (
	"context"
	"fmt"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

type Simulator struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(dyn dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 over [0, cfg.EndTime], producing exactly
// cfg.Samples output samples. The adaptive integrator free-steps between
// grid times and is clamped so every step lands exactly on the next sample.
// A non-finite state or a collapsed timestep fails the whole run; no
// partial results are returned.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &dynamo.Result{
		Times:   make([]float64, 0, cfg.Samples),
		States:  make([]dynamo.State, 0, cfg.Samples),
		Metrics: make(map[string]float64),
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt
	if dt <= 0 {
		dt = cfg.EndTime / 1000
	}

	adaptive, isAdaptive := s.integrator.(dynamo.AdaptiveIntegrator)

	s.takeSample(result, x, t)

	for i := 1; i < cfg.Samples; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		target := cfg.EndTime * float64(i) / float64(cfg.Samples-1)

		for t < target {
			step := dt
			if cfg.MaxDt > 0 && step > cfg.MaxDt {
				step = cfg.MaxDt
			}
			if t+step > target {
				step = target - t
			}

			// The adaptive integrator may accept a shorter step than
			// requested; time advances by the step actually taken.
			var next dynamo.State
			advance := step
			if isAdaptive {
				var taken, suggested float64
				var err error
				next, taken, suggested, err = adaptive.StepAdaptive(s.dyn, x, t, step, cfg.Tolerance)
				if err != nil {
					return nil, s.fail(i, t, err)
				}
				advance = taken
				dt = suggested
			} else {
				next = s.integrator.Step(s.dyn, x, t, step)
			}

			if cfg.ValidateState && !next.IsValid() {
				return nil, s.fail(i, t, dynamo.ErrInvalidState)
			}
			if dt < cfg.MinDt {
				return nil, s.fail(i, t, dynamo.ErrStepTooSmall)
			}

			x = next
			t += advance
			result.StepsTaken++
		}

		// Pin the sample time to the exact grid value; accumulated
		// float addition may sit a few ulps off.
		t = target
		s.takeSample(result, x, t)
	}

	s.evaluateDerived(result)

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) takeSample(result *dynamo.Result, x dynamo.State, t float64) {
	result.Times = append(result.Times, t)
	result.States = append(result.States, x.Clone())

	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, o := range s.observers {
		o.OnSample(x, t)
	}
}

// evaluateDerived recomputes pressure/volume/spring force over the whole
// trajectory using the model's own evaluators, so the series match the
// derivative-internal values exactly.
func (s *Simulator) evaluateDerived(result *dynamo.Result) {
	pv, hasPV := s.dyn.(dynamo.PressureVolume)
	sl, hasSpring := s.dyn.(dynamo.SpringLoaded)

	if hasPV {
		result.Pressure = make([]float64, len(result.States))
		result.Volume = make([]float64, len(result.States))
		for i, x := range result.States {
			result.Pressure[i] = pv.Pressure(x)
			result.Volume[i] = pv.Volume(x)
		}
	}
	if hasSpring {
		result.SpringForce = make([]float64, len(result.States))
		for i, x := range result.States {
			result.SpringForce[i] = sl.SpringForce(x)
		}
	}
}

func (s *Simulator) fail(sample int, t float64, err error) error {
	return &dynamo.SimulationError{
		Step:    sample,
		Time:    t,
		Wrapped: fmt.Errorf("%w: %w", dynamo.ErrNonConvergence, err),
	}
}

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	if cfg.EndTime <= 0 {
		return fmt.Errorf("%w: end time must be positive, got %g", dynamo.ErrParameterBounds, cfg.EndTime)
	}
	if cfg.Samples < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", dynamo.ErrParameterBounds, cfg.Samples)
	}
	if _, ok := s.integrator.(dynamo.AdaptiveIntegrator); ok && cfg.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", dynamo.ErrParameterBounds)
	}
	return nil
}
