package environment

import (
	"testing"

	ts "github.com/samuelfneumann/racetrack/timestep"
	"gonum.org/v1/gonum/mat"
)

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)
	obs := mat.NewVecDense(1, nil)

	step := ts.New(ts.Mid, -1, obs, 2)
	if limit.End(&step) || step.Last() {
		t.Errorf("step 2 should not be ended: %v", step)
	}

	step = ts.New(ts.Mid, -1, obs, 3)
	if !limit.End(&step) || !step.Last() || step.EndType() != ts.Timeout {
		t.Errorf("step 3 should be ended by timeout: %v", step)
	}
}
