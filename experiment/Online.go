package experiment

import (
	"fmt"

	"github.com/samuelfneumann/racetrack/agent"
	env "github.com/samuelfneumann/racetrack/environment"
	"github.com/samuelfneumann/racetrack/experiment/checkpointer"
	"github.com/samuelfneumann/racetrack/experiment/tracker"
	ts "github.com/samuelfneumann/racetrack/timestep"
	"gonum.org/v1/gonum/stat"
)

// Evaluation is the result of evaluating the greedy policy of an agent
type Evaluation struct {
	Episode int // Training episodes completed before the evaluation
	Returns []float64
}

// Mean returns the mean return of the evaluation
func (e Evaluation) Mean() float64 {
	return stat.Mean(e.Returns, nil)
}

// Online is an Experiment that trains an agent online for a number of
// episodes. Every so often, training is paused and the agent is
// evaluated in evaluation mode, without learning.
type Online struct {
	env.Environment
	agent.Agent

	episodes       int
	currentEpisode int

	evalEvery    int
	evalEpisodes int
	evaluations  []Evaluation

	trackers      []tracker.Tracker
	evalTrackers  []tracker.Tracker
	checkpointers []checkpointer.Checkpointer

	// OnEpisode, if not nil, is called after every training episode
	// with the number of the episode and its return
	OnEpisode func(episode int, ret float64)

	// OnEvaluation, if not nil, is called after every evaluation
	OnEvaluation func(Evaluation)
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The agent is trained for episodes
// episodes, and every evalEvery episodes it is evaluated for
// evalEpisodes episodes. An evalEvery of 0 disables evaluation. The t
// parameter is a slice of tracker.Tracker which track training data.
func NewOnline(e env.Environment, a agent.Agent, episodes, evalEvery,
	evalEpisodes int, t ...tracker.Tracker) *Online {
	return &Online{
		Environment:  e,
		Agent:        a,
		episodes:     episodes,
		evalEvery:    evalEvery,
		evalEpisodes: evalEpisodes,
		trackers:     t,
	}
}

// Register registers a tracker.Tracker with the experiment so that
// data generated during training can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RegisterEval registers a tracker.Tracker with the experiment so that
// data generated during evaluation can be tracked and saved
func (o *Online) RegisterEval(t tracker.Tracker) {
	o.evalTrackers = append(o.evalTrackers, t)
}

// RegisterCheckpointer registers a checkpointer.Checkpointer which is
// given every TimeStep of training
func (o *Online) RegisterCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// Evaluations returns the evaluations run so far
func (o *Online) Evaluations() []Evaluation {
	return o.evaluations
}

// Best returns the evaluation with the highest mean return. The
// returned bool is false if no evaluation has been run.
func (o *Online) Best() (Evaluation, bool) {
	if len(o.evaluations) == 0 {
		return Evaluation{}, false
	}

	best := o.evaluations[0]
	for _, e := range o.evaluations[1:] {
		if e.Mean() > best.Mean() {
			best = e
		}
	}
	return best, true
}

// Episode returns the number of training episodes completed
func (o *Online) Episode() int {
	return o.currentEpisode
}

// RunEpisode runs a single training episode of the experiment and
// returns its return
func (o *Online) RunEpisode() (float64, error) {
	o.Agent.Train()
	ret, err := o.runEpisode(o.trackers, o.checkpointers)
	if err != nil {
		return ret, fmt.Errorf("runEpisode: %w", err)
	}

	o.currentEpisode++
	if o.OnEpisode != nil {
		o.OnEpisode(o.currentEpisode, ret)
	}
	return ret, nil
}

// Evaluate runs the agent in evaluation mode for the configured number
// of evaluation episodes
func (o *Online) Evaluate() (Evaluation, error) {
	o.Agent.Eval()
	defer o.Agent.Train()

	e := Evaluation{Episode: o.currentEpisode}
	for i := 0; i < o.evalEpisodes; i++ {
		ret, err := o.runEpisode(o.evalTrackers, nil)
		if err != nil {
			return e, fmt.Errorf("evaluate: %w", err)
		}
		e.Returns = append(e.Returns, ret)
	}

	o.evaluations = append(o.evaluations, e)
	if o.OnEvaluation != nil {
		o.OnEvaluation(e)
	}
	return e, nil
}

// Run runs the entire experiment for all episodes
func (o *Online) Run() error {
	for o.currentEpisode < o.episodes {
		if _, err := o.RunEpisode(); err != nil {
			return fmt.Errorf("run: %w", err)
		}

		if o.evalEvery > 0 && o.currentEpisode%o.evalEvery == 0 {
			if _, err := o.Evaluate(); err != nil {
				return fmt.Errorf("run: %w", err)
			}
		}
	}
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() {
	for _, t := range o.trackers {
		t.Save()
	}
	for _, t := range o.evalTrackers {
		t.Save()
	}
}

// runEpisode runs one episode, sending each TimeStep to the trackers
// and checkpointers, and returns the episode's return. The last
// TimeStep is checkpointed after the agent has learned from the
// episode.
func (o *Online) runEpisode(trackers []tracker.Tracker,
	checkpointers []checkpointer.Checkpointer) (float64, error) {
	ret := 0.0

	step := o.Environment.Reset()
	o.Agent.ObserveFirst(step)
	track(step, trackers)
	if err := checkpoint(step, checkpointers); err != nil {
		return ret, err
	}

	for !step.Last() {
		action := o.Agent.SelectAction(step)
		step, _ = o.Environment.Step(action)
		ret += step.Reward

		o.Agent.Observe(action, step)
		track(step, trackers)
		if step.Last() {
			break
		}
		if err := checkpoint(step, checkpointers); err != nil {
			return ret, err
		}
	}

	o.Agent.EndEpisode()
	return ret, checkpoint(step, checkpointers)
}

// track sends a TimeStep to each tracker
func track(t ts.TimeStep, trackers []tracker.Tracker) {
	for _, tr := range trackers {
		tr.Track(t)
	}
}

// checkpoint sends a TimeStep to each checkpointer
func checkpoint(t ts.TimeStep, checkpointers []checkpointer.Checkpointer) error {
	for _, c := range checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return fmt.Errorf("could not checkpoint: %w", err)
		}
	}
	return nil
}
