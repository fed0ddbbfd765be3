package environment

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSpecContains(t *testing.T) {
	shape := mat.NewVecDense(2, nil)
	low := mat.NewVecDense(2, []float64{-1, -1})
	high := mat.NewVecDense(2, []float64{1, 1})

	discrete := NewSpec(shape, Action, low, high, Discrete)
	continuous := NewSpec(shape, Action, low, high, Continuous)

	tests := []struct {
		v                        []float64
		inDiscrete, inContinuous bool
	}{
		{[]float64{0, 1}, true, true},
		{[]float64{-1, -1}, true, true},
		{[]float64{0.4, 0.6}, false, true},
		{[]float64{1, -0.5}, false, true},
		{[]float64{2, 0}, false, false},
		{[]float64{0, -1.5}, false, false},
	}

	for _, test := range tests {
		v := mat.NewVecDense(2, test.v)
		if have := discrete.Contains(v); have != test.inDiscrete {
			t.Errorf("discrete contains %v: want %v, have %v", test.v,
				test.inDiscrete, have)
		}
		if have := continuous.Contains(v); have != test.inContinuous {
			t.Errorf("continuous contains %v: want %v, have %v", test.v,
				test.inContinuous, have)
		}
	}

	if discrete.Contains(mat.NewVecDense(3, nil)) {
		t.Error("vector of the wrong length should not be contained")
	}
}
