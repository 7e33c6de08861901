package sim

import (
	"context"
	"sync/atomic"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

// Runner enforces the single-flight policy: one simulation run at a time.
// A request arriving while another run is in flight is rejected with
// ErrRunInFlight rather than queued or superseded, which keeps result
// consumers single-writer.
type Runner struct {
	busy atomic.Bool
}

func NewRunner() *Runner {
	return &Runner{}
}

// Do executes one run through the simulator. It returns ErrRunInFlight
// without touching the simulator if another Do call is still active.
func (r *Runner) Do(ctx context.Context, s *Simulator, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, dynamo.ErrRunInFlight
	}
	defer r.busy.Store(false)

	return s.Run(ctx, x0, cfg)
}

// Busy reports whether a run is currently in flight.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}
