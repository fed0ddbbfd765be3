package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalStarter returns starting states sampled uniformly from a
// fixed set of candidate states. Each row of the candidates matrix is
// one starting state.
type CategoricalStarter struct {
	candidates *mat.Dense
	seed       uint64
	rand       distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter which samples
// uniformly over the rows of candidates
func NewCategoricalStarter(candidates *mat.Dense,
	seed uint64) (*CategoricalStarter, error) {
	if candidates == nil || candidates.IsEmpty() {
		return nil, fmt.Errorf("newCategoricalStarter: no candidate states")
	}
	source := rand.NewSource(seed)

	// Create the weights for the uniform categorical distribution
	r, _ := candidates.Dims()
	weights := make([]float64, r)
	for i := range weights {
		weights[i] = 1.0 / float64(len(weights))
	}

	return &CategoricalStarter{
		candidates: mat.DenseCopyOf(candidates),
		seed:       seed,
		rand:       distuv.NewCategorical(weights, source),
	}, nil
}

// Start returns a starting state vector
func (c *CategoricalStarter) Start() *mat.VecDense {
	row := int(c.rand.Rand())
	return mat.VecDenseCopyOf(c.candidates.RowView(row))
}

// Len returns the number of candidate starting states
func (c *CategoricalStarter) Len() int {
	r, _ := c.candidates.Dims()
	return r
}
