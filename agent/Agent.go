// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/racetrack/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns from experience, and
// a Policy which chooses actions in each state. The Policy chooses
// which actions are taken, and the Learner uses these actions to
// update the Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how an agent's
// estimates are updated.
//
// Episodic learners may defer all updates until EndEpisode is called.
type Learner interface {
	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep)

	// Observe records that an action lead to some timestep
	Observe(action *mat.VecDense, nextObs timestep.TimeStep)

	// EndEpisode performs any updates that need the whole episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. For a given agent, the
// Policy and Learner should share the same tables so that any changes
// the learner makes are reflected in the actions the Policy chooses.
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}
