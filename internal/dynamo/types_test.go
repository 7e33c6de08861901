package dynamo

import (
	"math"
	"testing"
)

func TestStateIsValid(t *testing.T) {
	if !(State{0.05, 40, 0.08, 2}).IsValid() {
		t.Error("finite state reported invalid")
	}
	if (State{0, math.NaN()}).IsValid() {
		t.Error("NaN state reported valid")
	}
	if (State{math.Inf(1), 0}).IsValid() {
		t.Error("Inf state reported valid")
	}
}

func TestResultSeries(t *testing.T) {
	r := &Result{
		Times: []float64{0, 0.01, 0.02},
		States: []State{
			{0, 0},
			{0.05, 40},
			{0.12, 55},
		},
	}

	vel := r.Series(1)
	if len(vel) != 3 || vel[1] != 40 || vel[2] != 55 {
		t.Errorf("series 1: expected [0 40 55], got %v", vel)
	}
}

func TestResultSeriesOutOfRangePanics(t *testing.T) {
	r := &Result{
		States: []State{{0.05, 40}},
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for index beyond state dimension")
		}
	}()
	r.Series(2)
}
