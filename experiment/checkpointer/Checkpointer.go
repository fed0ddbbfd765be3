// Package checkpointer implements Checkpointers, which save agents
// during an experiment
package checkpointer

import ts "github.com/samuelfneumann/racetrack/timestep"

// Serializable is an object that can be saved to a file
type Serializable interface {
	Save(filename string) error
}

// Checkpointer checkpoints/saves serializable objects based on
// timestep.TimeSteps. Checkpoint should be called on every TimeStep of
// an experiment, in order.
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}
