package montecarlo

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NumActions is the number of actions available to the agent: every
// combination of -1, 0, and +1 acceleration along each axis
const NumActions = 9

// actionToAcceleration maps action indices to (row, col) accelerations
var actionToAcceleration = [NumActions][2]int{
	{1, 1},
	{0, 1},
	{1, 0},
	{0, 0},
	{-1, 0},
	{0, -1},
	{1, -1},
	{-1, 1},
	{-1, -1},
}

// Acceleration returns the (row, col) acceleration of an action index.
// Acceleration panics if the action is not in [0, NumActions).
func Acceleration(action int) (row, col int) {
	if action < 0 || action >= NumActions {
		panic(fmt.Sprintf("acceleration: action %d not in [0, %d)", action,
			NumActions))
	}
	accel := actionToAcceleration[action]
	return accel[0], accel[1]
}

// ActionIndex returns the action index of a (row, col) acceleration.
// The returned bool is false if no action has that acceleration.
func ActionIndex(row, col int) (int, bool) {
	for i, accel := range actionToAcceleration {
		if accel[0] == row && accel[1] == col {
			return i, true
		}
	}
	return -1, false
}

// AccelerationVec returns the acceleration of an action index as a
// vector of (row, col) acceleration, the action format of the
// racetrack environment
func AccelerationVec(action int) *mat.VecDense {
	row, col := Acceleration(action)
	return mat.NewVecDense(2, []float64{float64(row), float64(col)})
}
