// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"github.com/samuelfneumann/racetrack/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes should end. If End returns true, it
// must also have modified the TimeStep so that its StepType is
// timestep.Last and its EndType describes the ending.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Environment implements a simulated environment. Environments are
// ready to use once constructed and must be Reset between episodes.
type Environment interface {
	Reset() timestep.TimeStep
	Step(action *mat.VecDense) (timestep.TimeStep, bool)
	CurrentTimeStep() timestep.TimeStep
	RewardSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
