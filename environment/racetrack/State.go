package racetrack

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Speed bounds for each velocity component
const (
	MinSpeed  = 0
	MaxSpeed  = 4
	NumSpeeds = MaxSpeed - MinSpeed + 1
)

// Position is a (row, col) location on the racetrack. A Position may
// lie outside the Map for the single step on which the car leaves it.
type Position struct {
	Row, Col int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Velocity is the speed of the car along each axis. Row speed moves
// the car up the track (decreasing row), column speed moves the car
// right (increasing column).
type Velocity struct {
	Row, Col int
}

func (v Velocity) String() string {
	return fmt.Sprintf("(%d, %d)", v.Row, v.Col)
}

// State is the full state of the car, and is what agents index their
// tables with
type State struct {
	Row, Col           int
	RowSpeed, ColSpeed int
}

// NewState returns the State of a car at position p moving with
// velocity v
func NewState(p Position, v Velocity) State {
	return State{p.Row, p.Col, v.Row, v.Col}
}

// Position returns the position component of the State
func (s State) Position() Position {
	return Position{s.Row, s.Col}
}

// Velocity returns the velocity component of the State
func (s State) Velocity() Velocity {
	return Velocity{s.RowSpeed, s.ColSpeed}
}

// Observation returns the State as a vector of
// (row, col, row speed, col speed)
func (s State) Observation() *mat.VecDense {
	return mat.NewVecDense(4, []float64{
		float64(s.Row),
		float64(s.Col),
		float64(s.RowSpeed),
		float64(s.ColSpeed),
	})
}

// StateOf converts an observation returned by a Racetrack back into a
// State. StateOf panics if the observation does not have 4 elements.
func StateOf(obs mat.Vector) State {
	if obs.Len() != 4 {
		panic(fmt.Sprintf("stateOf: observation must have 4 elements, "+
			"have %d", obs.Len()))
	}
	return State{
		Row:      int(math.Round(obs.AtVec(0))),
		Col:      int(math.Round(obs.AtVec(1))),
		RowSpeed: int(math.Round(obs.AtVec(2))),
		ColSpeed: int(math.Round(obs.AtVec(3))),
	}
}

func (s State) String() string {
	return fmt.Sprintf("State | At: (%d, %d)  |  Velocity: (%d, %d)",
		s.Row, s.Col, s.RowSpeed, s.ColSpeed)
}
