// Package montecarlo implements an every-visit Monte Carlo control
// agent with ε-greedy exploration for the racetrack environment
package montecarlo

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/racetrack/environment/racetrack"
	"github.com/samuelfneumann/racetrack/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MonteCarlo implements on-policy every-visit Monte Carlo control.
//
// Each (state, action) pair of an episode is updated with the
// undiscounted return that followed it, using an incremental sample
// mean. Exploration happens when actions are selected: the greedy
// policy table itself always holds the greedy action.
//
// MonteCarlo can be used in two ways. PlayEpisode drives the racetrack
// directly for a whole episode. Otherwise, MonteCarlo implements
// agent.Agent, records the episode through ObserveFirst and Observe,
// and learns when EndEpisode is called.
type MonteCarlo struct {
	env     *racetrack.Racetrack
	tables  *Tables
	epsilon float64

	rng     *rand.Rand
	explore distuv.Bernoulli

	eval bool

	// Episode recorded through the agent.Agent interface
	episode      Episode
	currentState racetrack.State
	lastAction   int
}

// New creates a new MonteCarlo agent for the given racetrack
func New(env *racetrack.Racetrack, c Config, seed uint64) (*MonteCarlo,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	rows, cols := env.Map().Dims()
	source := rand.NewSource(seed)

	return &MonteCarlo{
		env:        env,
		tables:     NewTables(rows, cols, c.InitialValue),
		epsilon:    c.Epsilon,
		rng:        rand.New(source),
		explore:    distuv.Bernoulli{P: c.Epsilon, Src: source},
		lastAction: -1,
	}, nil
}

// Tables returns the tables of the agent. Changes made to the returned
// Tables are seen by the agent.
func (m *MonteCarlo) Tables() *Tables {
	return m.tables
}

// SetTables sets the tables of the agent, for example to continue
// from Tables loaded with LoadTables
func (m *MonteCarlo) SetTables(t *Tables) error {
	rows, cols := m.env.Map().Dims()
	if r, c := t.Dims(); r != rows || c != cols {
		return fmt.Errorf("setTables: tables for (%d, %d) racetrack, "+
			"want (%d, %d)", r, c, rows, cols)
	}
	m.tables = t
	return nil
}

// Epsilon returns the exploration probability of the agent
func (m *MonteCarlo) Epsilon() float64 {
	return m.epsilon
}

// Save saves the tables of the agent to a file
func (m *MonteCarlo) Save(filename string) error {
	return m.tables.Save(filename)
}

// PlayEpisode runs the racetrack from its current state until the
// episode ends. If explore is true, actions are selected ε-greedily,
// otherwise greedily. If learn is true, the action-value estimates are
// updated with the returns of the episode. The greedy policy is not
// changed: call UpdatePolicy for that.
//
// PlayEpisode returns the total return of the episode and the episode
// itself.
func (m *MonteCarlo) PlayEpisode(explore, learn bool) (float64, Episode) {
	return m.PlayEpisodeLimit(explore, learn, 0)
}

// PlayEpisodeLimit is like PlayEpisode, but stops after at most
// maxSteps steps even if the episode has not ended. A maxSteps of 0
// means no limit. A greedy policy on a Recovering racetrack may never
// finish, so greedy episodes there should be limited.
//
// If the episode was stopped early, the racetrack is left mid-episode
// and the returns used for learning are those of the partial episode.
func (m *MonteCarlo) PlayEpisodeLimit(explore, learn bool,
	maxSteps int) (float64, Episode) {
	var episode Episode

	for !m.env.Done() && (maxSteps <= 0 || len(episode) < maxSteps) {
		state := m.env.State()
		action := m.selectAction(state, explore)

		accelRow, accelCol := Acceleration(action)
		reward := m.env.Act(accelRow, accelCol)

		episode = append(episode, Step{state, action, reward})
	}

	returns := Returns(episode.Rewards())
	if learn {
		m.learn(episode, returns)
	}

	if len(returns) == 0 {
		return 0, episode
	}
	return returns[0], episode
}

// UpdatePolicy sets the greedy policy of every state to the action
// with the highest estimated value
func (m *MonteCarlo) UpdatePolicy() {
	m.tables.UpdatePolicy()
}

// ObserveFirst observes the first timestep of an episode
func (m *MonteCarlo) ObserveFirst(t timestep.TimeStep) {
	if !t.First() {
		panic(fmt.Sprintf("observeFirst: timestep is not first, have %v",
			t.StepType))
	}
	m.episode = m.episode[:0]
	m.currentState = racetrack.StateOf(t.Observation)
	m.lastAction = -1
}

// SelectAction selects an action in the state of the timestep. In
// training mode actions are selected ε-greedily, in evaluation mode
// greedily. The action is a vector of (row, col) acceleration.
func (m *MonteCarlo) SelectAction(t timestep.TimeStep) *mat.VecDense {
	state := racetrack.StateOf(t.Observation)
	action := m.selectAction(state, !m.eval)

	m.currentState = state
	m.lastAction = action
	return AccelerationVec(action)
}

// Observe records that taking action led to the timestep next
func (m *MonteCarlo) Observe(action *mat.VecDense, next timestep.TimeStep) {
	if action.Len() != 2 {
		panic(fmt.Sprintf("observe: action must have 2 elements, have %d",
			action.Len()))
	}

	row, col := action.AtVec(0), action.AtVec(1)
	index, ok := ActionIndex(int(row), int(col))
	if !ok || row != math.Trunc(row) || col != math.Trunc(col) {
		panic(fmt.Sprintf("observe: no action with acceleration %v",
			mat.Formatted(action.T())))
	}

	m.episode = append(m.episode, Step{m.currentState, index, next.Reward})
	m.currentState = racetrack.StateOf(next.Observation)
}

// EndEpisode learns from the episode recorded since the last call to
// ObserveFirst and updates the greedy policy. Nothing is learned in
// evaluation mode.
func (m *MonteCarlo) EndEpisode() {
	if !m.eval {
		m.learn(m.episode, Returns(m.episode.Rewards()))
		m.UpdatePolicy()
	}
	m.episode = m.episode[:0]
}

// Eval sets the agent into evaluation mode
func (m *MonteCarlo) Eval() {
	m.eval = true
}

// Train sets the agent into training mode
func (m *MonteCarlo) Train() {
	m.eval = false
}

// IsEval returns whether the agent is in evaluation mode
func (m *MonteCarlo) IsEval() bool {
	return m.eval
}

// selectAction returns the greedy action in state s. If explore is
// true, a uniformly random action is returned instead with probability
// ε.
func (m *MonteCarlo) selectAction(s racetrack.State, explore bool) int {
	if explore && m.epsilon > 0 && m.explore.Rand() == 1 {
		return m.rng.Intn(NumActions)
	}
	return m.tables.Action(s)
}

// learn updates the action-value estimates of every step of an
// episode with the return that followed it
func (m *MonteCarlo) learn(episode Episode, returns []float64) {
	for i, step := range episode {
		m.tables.Update(step.State, step.Action, returns[i])
	}
}
