package montecarlo

import "github.com/samuelfneumann/racetrack/environment/racetrack"

// Step is a single step of an episode: the state the agent was in, the
// action index it took, and the reward it received
type Step struct {
	State  racetrack.State
	Action int
	Reward float64
}

// Episode is the ordered trace of the steps of one episode
type Episode []Step

// Rewards returns the rewards of each step in the episode
func (e Episode) Rewards() []float64 {
	rewards := make([]float64, len(e))
	for i, step := range e {
		rewards[i] = step.Reward
	}
	return rewards
}

// Returns computes the undiscounted return from each step of an
// episode to its end, given the rewards of each step
func Returns(rewards []float64) []float64 {
	returns := make([]float64, len(rewards))

	g := 0.0
	for i := len(rewards) - 1; i >= 0; i-- {
		g += rewards[i]
		returns[i] = g
	}
	return returns
}

// Return returns the total undiscounted return of the episode
func (e Episode) Return() float64 {
	total := 0.0
	for _, step := range e {
		total += step.Reward
	}
	return total
}
