// Package racetrack implements the racetrack environment of Sutton and
// Barto's Reinforcement Learning: An Introduction (Exercise 5.12).
//
// A car starts on a random cell of the starting line and must reach the
// finish line as quickly as possible. On each step the agent
// accelerates the car by -1, 0, or +1 along each axis. Each velocity
// component is bounded to [0, 4] and the car can never stand still.
// What happens when the car leaves the track depends on the Racetrack's
// Policy: a Strict Racetrack ends the episode, while a Recovering
// Racetrack puts the car back on the track and continues.
package racetrack

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/racetrack/environment"
	ts "github.com/samuelfneumann/racetrack/timestep"
	"github.com/samuelfneumann/racetrack/utils/intutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Default rewards
const (
	StepReward                  float64 = -1.0
	OutOfBoundsReward           float64 = -10000.0
	RecoveringOutOfBoundsReward float64 = -100.0
)

// Policy determines what happens when the car leaves the track
type Policy int

const (
	// Strict ends the episode as soon as the car leaves the track
	Strict Policy = iota

	// Recovering moves the car back onto the track and continues the
	// episode
	Recovering
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "Strict"
	case Recovering:
		return "Recovering"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy returns the Policy with the given name
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "Strict", "strict":
		return Strict, nil
	case "Recovering", "recovering":
		return Recovering, nil
	}
	return Strict, fmt.Errorf("parsePolicy: no such policy %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (p Policy) MarshalText() ([]byte, error) {
	if p != Strict && p != Recovering {
		return nil, fmt.Errorf("marshalText: no such policy %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Policy) UnmarshalText(text []byte) error {
	policy, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

// Config configures the dynamics and rewards of a Racetrack
type Config struct {
	Policy Policy

	// Noise is the probability with which the car is displaced one
	// extra cell up or right on each step
	Noise float64

	StepReward        float64
	OutOfBoundsReward float64
}

// DefaultConfig returns the default Config for a Racetrack with the
// given Policy
func DefaultConfig(p Policy) Config {
	c := Config{
		Policy:            p,
		StepReward:        StepReward,
		OutOfBoundsReward: OutOfBoundsReward,
	}
	if p == Recovering {
		c.OutOfBoundsReward = RecoveringOutOfBoundsReward
	}
	return c
}

// Validate returns an error if the Config is not valid
func (c Config) Validate() error {
	if c.Policy != Strict && c.Policy != Recovering {
		return fmt.Errorf("validate: no such policy %v", c.Policy)
	}
	if c.Noise < 0 || c.Noise > 1 {
		return fmt.Errorf("validate: noise %v not in [0, 1]", c.Noise)
	}
	return nil
}

// nudges are the moves tried, in order, when putting a car that left
// the track back onto it: down first, then the diagonals
var nudges = []Position{
	{1, 0},
	{1, 1},
	{-1, 1},
	{1, -1},
	{-1, -1},
}

// Racetrack implements the racetrack environment
type Racetrack struct {
	track  *Map
	config Config

	starter *environment.CategoricalStarter
	rng     *rand.Rand
	noise   distuv.Bernoulli
	cutoff  environment.Ender

	position Position
	velocity Velocity
	done     bool
	endType  ts.EndType

	currentStep ts.TimeStep
}

// New creates a new Racetrack on the given Map. The Racetrack starts
// reset and ready to use.
//
// A Recovering Racetrack requires that every drivable cell of the Map
// has at least one neighbouring cell that the car could be nudged onto
// after leaving the track. Maps that do not satisfy this are rejected.
func New(track *Map, c Config, seed uint64) (*Racetrack, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if c.Policy == Recovering {
		if err := checkRecoverable(track); err != nil {
			return nil, fmt.Errorf("new: %w", err)
		}
	}

	starter, err := environment.NewCategoricalStarter(track.startMatrix(),
		seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create starter: %w", err)
	}

	source := rand.NewSource(seed + 1)
	r := &Racetrack{
		track:   track,
		config:  c,
		starter: starter,
		rng:     rand.New(source),
		noise:   distuv.Bernoulli{P: c.Noise, Src: source},
	}
	r.Reset()

	return r, nil
}

// SetCutoff sets an Ender which may end episodes stepped through the
// Step method early. Act is never cut off.
func (r *Racetrack) SetCutoff(e environment.Ender) {
	r.cutoff = e
}

// Map returns the Map of the racetrack
func (r *Racetrack) Map() *Map {
	return r.track
}

// Config returns the Config of the racetrack
func (r *Racetrack) Config() Config {
	return r.config
}

// Reset starts a new episode with the car on a random start cell
func (r *Racetrack) Reset() ts.TimeStep {
	start := r.starter.Start()
	r.position = Position{int(start.AtVec(0)), int(start.AtVec(1))}
	r.velocity = Velocity{}
	r.done = false
	r.endType = ts.Unended

	r.currentStep = ts.New(ts.First, 0, r.State().Observation(), 0)
	return r.currentStep
}

// State returns the current state of the car
func (r *Racetrack) State() State {
	return NewState(r.position, r.velocity)
}

// Position returns the current position of the car
func (r *Racetrack) Position() Position {
	return r.position
}

// Velocity returns the current velocity of the car
func (r *Racetrack) Velocity() Velocity {
	return r.velocity
}

// Done returns whether the current episode has ended
func (r *Racetrack) Done() bool {
	return r.done
}

// EndType returns how the current episode ended
func (r *Racetrack) EndType() ts.EndType {
	return r.endType
}

// Act accelerates the car by accelRow along the rows and accelCol
// along the columns, moves the car, and returns the reward for the
// move.
//
// Act panics if the episode has ended or if either acceleration is not
// one of -1, 0, or 1.
func (r *Racetrack) Act(accelRow, accelCol int) float64 {
	if r.done {
		panic("act: episode has ended, call Reset first")
	}
	if accelRow < -1 || accelRow > 1 || accelCol < -1 || accelCol > 1 {
		panic(fmt.Sprintf("act: acceleration (%d, %d) not in {-1, 0, 1}",
			accelRow, accelCol))
	}

	r.velocity = r.correctVelocity(Velocity{
		Row: r.velocity.Row + accelRow,
		Col: r.velocity.Col + accelCol,
	})

	previous := r.position
	r.position = Position{
		Row: previous.Row - r.velocity.Row,
		Col: previous.Col + r.velocity.Col,
	}

	if r.config.Noise > 0 && r.noise.Rand() == 1 {
		if r.rng.Intn(2) == 0 {
			r.position.Row--
		} else {
			r.position.Col++
		}
	}

	if r.finished(r.position) {
		r.end(ts.TerminalStateReached)
		return r.config.StepReward
	}

	if r.valid(r.position) {
		return r.config.StepReward
	}

	switch r.config.Policy {
	case Strict:
		r.end(ts.OutOfBounds)

	case Recovering:
		r.recover(previous)
		if r.finished(r.position) {
			r.end(ts.TerminalStateReached)
		}
	}
	return r.config.OutOfBoundsReward
}

// Step takes one step in the environment. The action must be a vector
// of (row acceleration, column acceleration) within the ActionSpec.
func (r *Racetrack) Step(action *mat.VecDense) (ts.TimeStep, bool) {
	if !r.ActionSpec().Contains(action) {
		panic(fmt.Sprintf("step: action %v not in action space",
			mat.Formatted(action.T())))
	}

	reward := r.Act(int(action.AtVec(0)), int(action.AtVec(1)))

	stepType := ts.Mid
	if r.done {
		stepType = ts.Last
	}
	step := ts.New(stepType, reward, r.State().Observation(),
		r.currentStep.Number+1)

	if r.done {
		step.SetEnd(r.endType)
	} else if r.cutoff != nil && r.cutoff.End(&step) {
		r.end(step.EndType())
	}

	r.currentStep = step
	return step, step.Last()
}

// CurrentTimeStep returns the last TimeStep returned by Reset or Step
func (r *Racetrack) CurrentTimeStep() ts.TimeStep {
	return r.currentStep
}

// ObservationSpec returns the observation specification of the
// environment: (row, col, row speed, col speed). The last observation
// of a Strict episode that leaves the track lies outside these bounds,
// since the car is not moved back onto the map.
func (r *Racetrack) ObservationSpec() environment.Spec {
	rows, cols := r.track.Dims()
	shape := mat.NewVecDense(4, nil)
	lowerBound := mat.NewVecDense(4, []float64{0, 0, MinSpeed, MinSpeed})
	upperBound := mat.NewVecDense(4, []float64{
		float64(rows - 1),
		float64(cols - 1),
		MaxSpeed,
		MaxSpeed,
	})

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Discrete)
}

// ActionSpec returns the action specification of the environment:
// (row acceleration, column acceleration)
func (r *Racetrack) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(2, nil)
	lowerBound := mat.NewVecDense(2, []float64{-1, -1})
	upperBound := mat.NewVecDense(2, []float64{1, 1})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// RewardSpec returns the reward specification of the environment
func (r *Racetrack) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	low := math.Min(r.config.StepReward, r.config.OutOfBoundsReward)
	high := math.Max(r.config.StepReward, r.config.OutOfBoundsReward)

	return environment.NewSpec(shape, environment.Reward,
		mat.NewVecDense(1, []float64{low}),
		mat.NewVecDense(1, []float64{high}), environment.Continuous)
}

func (r *Racetrack) String() string {
	rows, cols := r.track.Dims()
	str := "Racetrack | At: %v  |  Velocity: %v  |  Bounds: (%d, %d)  |  " +
		"Policy: %v"
	return fmt.Sprintf(str, r.position, r.velocity, rows, cols,
		r.config.Policy)
}

// correctVelocity clips each component of v to [MinSpeed, MaxSpeed]
// and makes sure the car keeps moving
func (r *Racetrack) correctVelocity(v Velocity) Velocity {
	v.Row = intutils.Clip(v.Row, MinSpeed, MaxSpeed)
	v.Col = intutils.Clip(v.Col, MinSpeed, MaxSpeed)

	if v.Row == 0 && v.Col == 0 {
		if r.rng.Intn(2) == 0 {
			v = Velocity{1, 0}
		} else {
			v = Velocity{0, 1}
		}
	}
	return v
}

// finished returns whether p is on the finish line. Columns past either
// side of the track are treated as the nearest column on the track so
// that overshooting the finish line still counts.
func (r *Racetrack) finished(p Position) bool {
	rows, cols := r.track.Dims()
	if p.Row < 0 || p.Row >= rows {
		return false
	}
	return r.track.At(p.Row, intutils.Clip(p.Col, 0, cols-1)) == Finish
}

// valid returns whether the car may be at p
func (r *Racetrack) valid(p Position) bool {
	return validOn(r.track, p)
}

// recover puts a car that left the track back on it. The car is moved
// back to previous, the last position it was validly at, stopped, and
// nudged one cell so that it does not stay on the same cell.
func (r *Racetrack) recover(previous Position) {
	r.velocity = Velocity{}

	next, ok := nudge(r.track, previous)
	if !ok {
		// Unreachable for maps accepted by New
		panic(fmt.Sprintf("recover: no cell to move car to from %v",
			previous))
	}
	r.position = next
}

func (r *Racetrack) end(e ts.EndType) {
	r.done = true
	r.endType = e
}

func validOn(m *Map, p Position) bool {
	return m.InBounds(p.Row, p.Col) && m.At(p.Row, p.Col) != Grass
}

// nudge returns the first cell adjacent to p that a car can be moved
// onto
func nudge(m *Map, p Position) (Position, bool) {
	for _, n := range nudges {
		next := Position{p.Row + n.Row, p.Col + n.Col}
		if validOn(m, next) {
			return next, true
		}
	}
	return Position{}, false
}

// checkRecoverable returns an error if a car could leave the track
// from some cell of m and have nowhere to be nudged to
func checkRecoverable(m *Map) error {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if cell := m.At(i, j); cell != Track && cell != Start {
				continue
			}
			if _, ok := nudge(m, Position{i, j}); !ok {
				return fmt.Errorf("checkRecoverable: car at (%d, %d) "+
					"could not be recovered", i, j)
			}
		}
	}
	return nil
}
